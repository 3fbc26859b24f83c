package extract

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"mga-chatbot/internal/domain"
)

// PDF extracts one document per page that carries text. Segment is the
// zero-based page number. Scanned pages without a text layer are skipped.
func PDF(ctx context.Context, file domain.RawFile) (docs []domain.Document, err error) {
	f, r, err := pdf.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	// The parser panics on some malformed content streams.
	defer func() {
		if rec := recover(); rec != nil {
			docs, err = nil, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}
		if isBlank(text) {
			continue
		}
		docs = append(docs, domain.Document{
			Source:  file,
			Segment: i - 1,
			Text:    normalizeNewlines(text),
		})
	}

	return docs, nil
}
