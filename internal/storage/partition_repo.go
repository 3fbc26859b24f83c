package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_partition_store.go -package=mocks mga-chatbot/internal/storage PartitionStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PartitionStore defines the interface for partition storage operations.
type PartitionStore interface {
	// GetOrCreateByName gets an existing partition by name, or creates it.
	GetOrCreateByName(ctx context.Context, name, rootPath string) (PartitionRecord, error)
	// ListAll returns all partitions ordered by name.
	ListAll(ctx context.Context) ([]PartitionRecord, error)
}

// PartitionRepo provides methods for partition operations.
// It implements the PartitionStore interface.
type PartitionRepo struct {
	db *sql.DB
}

// NewPartitionRepo creates a new PartitionRepo.
func NewPartitionRepo(db *sql.DB) *PartitionRepo {
	return &PartitionRepo{db: db}
}

// GetOrCreateByName gets an existing partition by name, or creates it if it doesn't exist.
func (r *PartitionRepo) GetOrCreateByName(ctx context.Context, name, rootPath string) (PartitionRecord, error) {
	// INSERT OR IGNORE keeps concurrent first logins of the same team from racing.
	if _, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO partitions (name, root_path) VALUES (?, ?)",
		name, rootPath,
	); err != nil {
		return PartitionRecord{}, fmt.Errorf("failed to create partition: %w", err)
	}

	var p PartitionRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, root_path, created_at FROM partitions WHERE name = ?",
		name,
	).Scan(&p.ID, &p.Name, &p.RootPath, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return PartitionRecord{}, ErrNotFound
	}
	if err != nil {
		return PartitionRecord{}, fmt.Errorf("failed to get partition: %w", err)
	}

	return p, nil
}

// ListAll returns all partitions ordered by name.
func (r *PartitionRepo) ListAll(ctx context.Context) ([]PartitionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, root_path, created_at FROM partitions ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var partitions []PartitionRecord
	for rows.Next() {
		var p PartitionRecord
		if err := rows.Scan(&p.ID, &p.Name, &p.RootPath, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan partition: %w", err)
		}
		partitions = append(partitions, p)
	}

	return partitions, rows.Err()
}
