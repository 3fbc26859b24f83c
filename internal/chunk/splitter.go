// Package chunk splits documents into overlapping fixed-size windows.
package chunk

import (
	"fmt"

	"github.com/google/uuid"

	"mga-chatbot/internal/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of characters shared by neighbouring chunks.
const DefaultChunkOverlap = 50

// Splitter cuts document text into windows of size characters whose start
// advances by size-overlap. Sizes count runes, not bytes.
type Splitter struct {
	size    int
	overlap int
	newID   func() string
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithChunkSize sets the window size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		s.size = size
	}
}

// WithOverlap sets the number of characters shared with the previous window.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		s.overlap = overlap
	}
}

// New creates a Splitter. It fails with a *domain.ConfigError unless
// 0 <= overlap < size.
func New(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		size:    DefaultChunkSize,
		overlap: DefaultChunkOverlap,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.size <= 0 {
		return nil, &domain.ConfigError{Field: "chunk_size", Message: fmt.Sprintf("must be greater than 0, got %d", s.size)}
	}
	if s.overlap < 0 {
		return nil, &domain.ConfigError{Field: "chunk_overlap", Message: fmt.Sprintf("must not be negative, got %d", s.overlap)}
	}
	if s.overlap >= s.size {
		return nil, &domain.ConfigError{
			Field:   "chunk_overlap",
			Message: fmt.Sprintf("must be less than chunk_size (%d >= %d)", s.overlap, s.size),
		}
	}
	return s, nil
}

// Size returns the window size.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the overlap between neighbouring windows.
func (s *Splitter) Overlap() int { return s.overlap }

// Split chunks every document in order. Chunks of one document are
// contiguous in the result and numbered from 0.
func (s *Splitter) Split(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		for seq, text := range s.windows(doc.Text) {
			chunks = append(chunks, domain.Chunk{
				ID:     s.newID(),
				Source: doc,
				Seq:    seq,
				Text:   text,
			})
		}
	}
	return chunks
}

// windows returns the consecutive windows of text. The last window ends at
// the end of the text and may be shorter than the window size.
func (s *Splitter) windows(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := s.size - s.overlap
	out := make([]string, 0, len(runes)/step+1)
	for start := 0; ; start += step {
		end := start + s.size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

// Reassemble rebuilds a document's text from its chunks in Seq order by
// dropping the overlap each chunk shares with its successor.
func Reassemble(chunks []domain.Chunk, overlap int) string {
	var out []rune
	for i, c := range chunks {
		r := []rune(c.Text)
		if i < len(chunks)-1 {
			keep := len(r) - overlap
			if keep < 0 {
				keep = 0
			}
			r = r[:keep]
		}
		out = append(out, r...)
	}
	return string(out)
}
