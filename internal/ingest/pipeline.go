// Package ingest reads a partition's raw files and produces the documents
// that the chunker and index builder consume.
package ingest

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_file_lister.go -package=mocks mga-chatbot/internal/ingest FileLister

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/domain"
)

// FileLister lists the raw files of a partition.
type FileLister interface {
	ListFiles(ctx context.Context, p domain.Partition) ([]domain.RawFile, error)
}

// Extractor converts one raw file into documents.
type Extractor interface {
	Extract(ctx context.Context, file domain.RawFile) ([]domain.Document, error)
}

// SkippedFile records a file that contributed no documents.
type SkippedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	// Unsupported is true when the file's extension has no extractor.
	Unsupported bool `json:"unsupported"`
}

// Result is the outcome of one ingestion run.
type Result struct {
	Files     []domain.RawFile
	Documents []domain.Document
	Skipped   []SkippedFile
}

// Pipeline turns the files of a partition into an ordered document sequence.
type Pipeline struct {
	files     FileLister
	extractor Extractor
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(files FileLister, extractor Extractor) *Pipeline {
	return &Pipeline{
		files:     files,
		extractor: extractor,
	}
}

// Ingest extracts every file of the partition in name order. A file that
// cannot be extracted is recorded in Result.Skipped and does not stop the
// run. If no documents remain the result is returned together with
// domain.ErrEmptyCorpus.
func (p *Pipeline) Ingest(ctx context.Context, part domain.Partition) (*Result, error) {
	logger := contextutil.LoggerFromContext(ctx).With("partition", part.Name)

	files, err := p.files.ListFiles(ctx, part)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	res := &Result{Files: files}
	logger.InfoContext(ctx, "starting ingestion", "total_files", len(files))

	for _, file := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		docs, err := p.extractor.Extract(ctx, file)
		if err != nil {
			res.Skipped = append(res.Skipped, skip(ctx, logger, file, err))
			continue
		}
		if len(docs) == 0 {
			logger.WarnContext(ctx, "file has no extractable text", "file", file.Name)
			res.Skipped = append(res.Skipped, SkippedFile{Name: file.Name, Reason: "no extractable text"})
			continue
		}

		res.Documents = append(res.Documents, docs...)
		logger.DebugContext(ctx, "file ingested", "file", file.Name, "documents", len(docs))
	}

	logger.InfoContext(ctx, "ingestion completed",
		"total_files", len(files),
		"documents", len(res.Documents),
		"skipped", len(res.Skipped),
	)

	if len(res.Documents) == 0 {
		return res, domain.ErrEmptyCorpus
	}
	return res, nil
}

func skip(ctx context.Context, logger *slog.Logger, file domain.RawFile, err error) SkippedFile {
	if errors.Is(err, domain.ErrUnsupportedFormat) {
		logger.WarnContext(ctx, "skipping file with unsupported format", "file", file.Name, "format", file.Format)
		return SkippedFile{Name: file.Name, Reason: err.Error(), Unsupported: true}
	}
	logger.ErrorContext(ctx, "failed to extract file", "file", file.Name, "error", err)
	return SkippedFile{Name: file.Name, Reason: err.Error()}
}
