package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_file_store.go -package=mocks mga-chatbot/internal/storage FileStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// FileStore defines the interface for uploaded file metadata.
type FileStore interface {
	// Upsert inserts a file record or replaces the one with the same partition and name.
	// A new record gets a generated ID; the stored ID is written back to rec.
	Upsert(ctx context.Context, rec *FileRecord) error
	// GetByName returns ErrNotFound if the partition has no file with that name.
	GetByName(ctx context.Context, partitionID int, name string) (*FileRecord, error)
	// ListByPartition returns the partition's file records ordered by name.
	ListByPartition(ctx context.Context, partitionID int) ([]FileRecord, error)
}

// FileRepo provides methods for file record operations.
// It implements the FileStore interface.
type FileRepo struct {
	db *sql.DB
}

// NewFileRepo creates a new FileRepo.
func NewFileRepo(db *sql.DB) *FileRepo {
	return &FileRepo{db: db}
}

// Upsert inserts a new file record or updates an existing one.
func (r *FileRepo) Upsert(ctx context.Context, rec *FileRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO files (id, partition_id, name, format, size, hash, uploaded_by, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(partition_id, name) DO UPDATE SET
			format = excluded.format,
			size = excluded.size,
			hash = excluded.hash,
			uploaded_by = excluded.uploaded_by,
			uploaded_at = excluded.uploaded_at`,
		rec.ID, rec.PartitionID, rec.Name, rec.Format, rec.Size, rec.Hash, rec.UploadedBy, rec.UploadedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	// On conflict the existing row keeps its ID.
	err = r.db.QueryRowContext(ctx,
		"SELECT id FROM files WHERE partition_id = ? AND name = ?",
		rec.PartitionID, rec.Name,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to read file id: %w", err)
	}

	return nil
}

// GetByName gets a file record by partition ID and file name.
func (r *FileRepo) GetByName(ctx context.Context, partitionID int, name string) (*FileRecord, error) {
	var rec FileRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT id, partition_id, name, format, size, hash, uploaded_by, uploaded_at
		FROM files WHERE partition_id = ? AND name = ?`,
		partitionID, name,
	).Scan(&rec.ID, &rec.PartitionID, &rec.Name, &rec.Format, &rec.Size, &rec.Hash, &rec.UploadedBy, &rec.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return &rec, nil
}

// ListByPartition lists the file records of a partition ordered by name.
func (r *FileRepo) ListByPartition(ctx context.Context, partitionID int) ([]FileRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, partition_id, name, format, size, hash, uploaded_by, uploaded_at
		FROM files WHERE partition_id = ? ORDER BY name`,
		partitionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []FileRecord
	for rows.Next() {
		var rec FileRecord
		if err := rows.Scan(&rec.ID, &rec.PartitionID, &rec.Name, &rec.Format, &rec.Size, &rec.Hash, &rec.UploadedBy, &rec.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
