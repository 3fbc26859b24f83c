package rag

import (
	"context"
	"errors"
	"fmt"

	"mga-chatbot/internal/domain"
	"mga-chatbot/internal/index"
	"mga-chatbot/internal/ingest"
	"mga-chatbot/internal/workspace"
)

// FileLister lists the raw files of a partition.
type FileLister interface {
	ListFiles(ctx context.Context, p domain.Partition) ([]domain.RawFile, error)
}

// Ingester extracts the documents of a partition.
type Ingester interface {
	Ingest(ctx context.Context, p domain.Partition) (*ingest.Result, error)
}

// Splitter cuts documents into chunks.
type Splitter interface {
	Split(docs []domain.Document) []domain.Chunk
}

// CorpusLoader produces partition corpora from the workspace, the ingestion
// pipeline and the chunker. It implements index.Loader.
type CorpusLoader struct {
	files    FileLister
	ingester Ingester
	splitter Splitter
}

// NewCorpusLoader creates a new CorpusLoader.
func NewCorpusLoader(files FileLister, ingester Ingester, splitter Splitter) *CorpusLoader {
	return &CorpusLoader{files: files, ingester: ingester, splitter: splitter}
}

// Fingerprint identifies the partition's current file set.
func (l *CorpusLoader) Fingerprint(ctx context.Context, p domain.Partition) (string, error) {
	files, err := l.files.ListFiles(ctx, p)
	if err != nil {
		return "", err
	}
	return workspace.Fingerprint(files), nil
}

// Load ingests and chunks the partition. A partition without documents
// yields a Corpus with no chunks.
func (l *CorpusLoader) Load(ctx context.Context, p domain.Partition) (index.Corpus, error) {
	res, err := l.ingester.Ingest(ctx, p)
	if err != nil && !errors.Is(err, domain.ErrEmptyCorpus) {
		return index.Corpus{}, fmt.Errorf("failed to ingest: %w", err)
	}

	corpus := index.Corpus{
		Fingerprint: workspace.Fingerprint(res.Files),
		Files:       len(res.Files),
		Documents:   len(res.Documents),
	}
	for _, s := range res.Skipped {
		corpus.Skipped = append(corpus.Skipped, s.Name)
	}
	if len(res.Documents) > 0 {
		corpus.Chunks = l.splitter.Split(res.Documents)
	}
	return corpus, nil
}
