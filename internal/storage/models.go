package storage

import "time"

// PartitionRecord represents a team partition in the database.
type PartitionRecord struct {
	ID        int
	Name      string
	RootPath  string
	CreatedAt time.Time
}

// FileRecord represents an uploaded file in the database.
type FileRecord struct {
	ID          string // UUID
	PartitionID int    // Foreign key to partitions.id
	Name        string // Base file name inside the partition directory
	Format      string
	Size        int64
	Hash        string // SHA256 hex string of file content
	UploadedBy  string
	UploadedAt  time.Time
}
