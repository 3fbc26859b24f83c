// Package extract turns raw uploaded files into plain-text documents,
// one extractor per supported format.
package extract

import (
	"context"
	"fmt"

	"mga-chatbot/internal/domain"
)

// Extractor produces the documents of one raw file, in source order.
type Extractor interface {
	Extract(ctx context.Context, file domain.RawFile) ([]domain.Document, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, file domain.RawFile) ([]domain.Document, error)

// Extract calls f(ctx, file).
func (f ExtractorFunc) Extract(ctx context.Context, file domain.RawFile) ([]domain.Document, error) {
	return f(ctx, file)
}

// Registry dispatches raw files to the extractor registered for their format.
type Registry struct {
	extractors map[domain.Format]Extractor
}

// NewRegistry returns a registry with an extractor for every supported format.
func NewRegistry() *Registry {
	return &Registry{
		extractors: map[domain.Format]Extractor{
			domain.FormatTXT:  ExtractorFunc(Text),
			domain.FormatPDF:  ExtractorFunc(PDF),
			domain.FormatDOCX: ExtractorFunc(DOCX),
			domain.FormatCSV:  ExtractorFunc(CSV),
			domain.FormatXLSX: ExtractorFunc(XLSX),
		},
	}
}

// Register installs or replaces the extractor for a format.
func (r *Registry) Register(format domain.Format, e Extractor) {
	r.extractors[format] = e
}

// Extract runs the extractor for file.Format. Unknown formats fail with
// *domain.UnsupportedFormatError.
func (r *Registry) Extract(ctx context.Context, file domain.RawFile) ([]domain.Document, error) {
	e, ok := r.extractors[file.Format]
	if !ok {
		return nil, &domain.UnsupportedFormatError{Name: file.Name, Extension: string(file.Format)}
	}
	docs, err := e.Extract(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", file.Name, err)
	}
	return docs, nil
}

// single wraps text as the only document of file, or no document if text is blank.
func single(file domain.RawFile, text string) []domain.Document {
	if isBlank(text) {
		return nil
	}
	return []domain.Document{{Source: file, Text: text}}
}
