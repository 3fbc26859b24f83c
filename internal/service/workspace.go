package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_file_store.go -package=mocks mga-chatbot/internal/service FileStore
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_workspace_service.go -package=mocks -mock_names=WorkspaceService=MockWorkspaceService mga-chatbot/internal/service WorkspaceService

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/domain"
	"mga-chatbot/internal/index"
	"mga-chatbot/internal/rag"
	"mga-chatbot/internal/storage"
)

// FileStore writes uploads into a partition and lists their metadata.
type FileStore interface {
	StoreFile(ctx context.Context, p domain.Partition, name string, r io.Reader) (domain.RawFile, error)
	FileRecords(ctx context.Context, p domain.Partition) ([]storage.FileRecord, error)
}

// Upload is one file of a multi-file upload.
type Upload struct {
	Name    string
	Content io.Reader
}

// UploadResult is the outcome of storing one uploaded file.
type UploadResult struct {
	Name        string `json:"name"`
	Stored      bool   `json:"stored"`
	Size        int64  `json:"size,omitempty"`
	Unsupported bool   `json:"unsupported,omitempty"`
	Error       string `json:"error,omitempty"`
}

// UploadReport summarises a multi-file upload and the rebuild it triggered.
// IndexError is set when files were stored but the rebuild failed.
type UploadReport struct {
	Partition  string            `json:"partition"`
	Files      []UploadResult    `json:"files"`
	Stored     int               `json:"stored"`
	Index      *index.BuildStats `json:"index,omitempty"`
	IndexError string            `json:"index_error,omitempty"`
}

// FileInfo describes a stored file.
type FileInfo struct {
	Name       string    `json:"name"`
	Format     string    `json:"format"`
	Size       int64     `json:"size"`
	Hash       string    `json:"hash"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// WorkspaceService manages the files of the caller's team.
type WorkspaceService interface {
	// Upload stores every file it can and rebuilds the team index once.
	Upload(ctx context.Context, files []Upload) (UploadReport, error)
	// Files lists the team's uploaded files.
	Files(ctx context.Context) ([]FileInfo, error)
	// Rebuild forces a fresh index for the team.
	Rebuild(ctx context.Context) (index.BuildStats, error)
}

// workspaceService implements WorkspaceService.
type workspaceService struct {
	partitions Partitions
	files      FileStore
	engine     rag.Engine
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(partitions Partitions, files FileStore, engine rag.Engine) WorkspaceService {
	return &workspaceService{
		partitions: partitions,
		files:      files,
		engine:     engine,
	}
}

func (s *workspaceService) partition(ctx context.Context) (domain.Partition, error) {
	id, ok := contextutil.IdentityFromContext(ctx)
	if !ok {
		return domain.Partition{}, &domain.AuthError{Reason: "no identity on request"}
	}
	p, err := s.partitions.EnsurePartition(ctx, id)
	if err != nil {
		return domain.Partition{}, WrapError(err, "failed to resolve partition")
	}
	return p, nil
}

// Upload stores the files in the caller's partition. A file that cannot be
// stored is reported and does not stop the others. The index is rebuilt
// synchronously when at least one file was stored, so the next question
// sees the new content.
func (s *workspaceService) Upload(ctx context.Context, files []Upload) (UploadReport, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(files) == 0 {
		return UploadReport{}, &ValidationError{Field: "files", Message: "at least one file is required"}
	}

	p, err := s.partition(ctx)
	if err != nil {
		return UploadReport{}, err
	}

	report := UploadReport{Partition: p.Name, Files: make([]UploadResult, 0, len(files))}
	for _, f := range files {
		raw, err := s.files.StoreFile(ctx, p, f.Name, f.Content)
		if err != nil {
			logger.WarnContext(ctx, "upload rejected", "file", f.Name, "error", err)
			report.Files = append(report.Files, UploadResult{
				Name:        f.Name,
				Unsupported: errors.Is(err, domain.ErrUnsupportedFormat),
				Error:       err.Error(),
			})
			continue
		}
		report.Stored++
		report.Files = append(report.Files, UploadResult{Name: raw.Name, Stored: true, Size: raw.Size})
	}

	if report.Stored == 0 {
		logger.WarnContext(ctx, "no files stored", "partition", p.Name, "rejected", len(files))
		return report, nil
	}

	stats, err := s.engine.Rebuild(ctx, p)
	if err != nil {
		logger.ErrorContext(ctx, "failed to rebuild index after upload", "partition", p.Name, "error", err)
		report.IndexError = "index rebuild failed; it will be retried on the next question"
		return report, nil
	}
	report.Index = &stats

	logger.InfoContext(ctx, "upload completed",
		"partition", p.Name,
		"stored", report.Stored,
		"rejected", len(files)-report.Stored,
		"chunks", stats.Chunks,
	)
	return report, nil
}

// Files lists the caller's uploaded files.
func (s *workspaceService) Files(ctx context.Context) ([]FileInfo, error) {
	p, err := s.partition(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.files.FileRecords(ctx, p)
	if err != nil {
		return nil, WrapError(err, "failed to list files")
	}

	infos := make([]FileInfo, 0, len(records))
	for _, r := range records {
		infos = append(infos, FileInfo{
			Name:       r.Name,
			Format:     r.Format,
			Size:       r.Size,
			Hash:       r.Hash,
			UploadedBy: r.UploadedBy,
			UploadedAt: r.UploadedAt,
		})
	}
	return infos, nil
}

// Rebuild forces a fresh index for the caller's partition.
func (s *workspaceService) Rebuild(ctx context.Context) (index.BuildStats, error) {
	p, err := s.partition(ctx)
	if err != nil {
		return index.BuildStats{}, err
	}

	stats, err := s.engine.Rebuild(ctx, p)
	if err != nil {
		return index.BuildStats{}, fmt.Errorf("failed to rebuild index: %w", err)
	}
	return stats, nil
}
