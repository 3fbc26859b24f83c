// Package rag answers questions from a partition's documents by retrieving
// the closest chunks and handing them to a responder.
package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks mga-chatbot/internal/rag Engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/domain"
	"mga-chatbot/internal/index"
	"mga-chatbot/internal/responder"
)

const (
	// DefaultK is the number of chunks retrieved when the request sets none.
	DefaultK = 3
	// MaxK bounds the number of chunks retrieved per question.
	MaxK = 20
)

// Engine provides RAG (Retrieval-Augmented Generation) functionality.
type Engine interface {
	// Ask answers a question from the request partition's documents.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
	// Rebuild discards the partition's index and builds a new one.
	Rebuild(ctx context.Context, p domain.Partition) (index.BuildStats, error)
	// Invalidate marks the partition's index stale.
	Invalidate(partition string)
}

// Indexes resolves the current index of a partition.
type Indexes interface {
	Current(ctx context.Context, p domain.Partition) (*index.Index, error)
	Rebuild(ctx context.Context, p domain.Partition) (*index.Index, error)
	Invalidate(partition string)
}

// Responder turns a prompt into an answer.
type Responder interface {
	Respond(ctx context.Context, p responder.Prompt) (string, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	indexes           Indexes
	embedder          index.Embedder
	responder         Responder
	systemInstruction string
	defaultK          int
}

// Option configures the engine.
type Option func(*ragEngine)

// WithDefaultK sets the number of chunks retrieved when a request sets none.
func WithDefaultK(k int) Option {
	return func(e *ragEngine) {
		if k > 0 {
			e.defaultK = min(k, MaxK)
		}
	}
}

// WithSystemInstruction overrides the instruction sent to the responder.
func WithSystemInstruction(s string) Option {
	return func(e *ragEngine) {
		e.systemInstruction = s
	}
}

// NewEngine creates a new RAG engine. The embedder must be the one the
// indexes are built with.
func NewEngine(indexes Indexes, embedder index.Embedder, resp Responder, opts ...Option) Engine {
	e := &ragEngine{
		indexes:           indexes,
		embedder:          embedder,
		responder:         resp,
		systemInstruction: responder.DefaultSystemInstruction,
		defaultK:          DefaultK,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Ask answers a question using RAG.
func (e *ragEngine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx).With("partition", req.Partition.Name)

	ix, err := e.indexes.Current(ctx, req.Partition)
	if err != nil {
		logger.ErrorContext(ctx, "failed to resolve index", "error", err)
		return AskResponse{}, fmt.Errorf("failed to resolve index: %w", err)
	}
	if ix.Len() == 0 {
		logger.InfoContext(ctx, "question against empty partition")
		return AskResponse{}, domain.ErrEmptyCorpus
	}
	if ix.Provider() != e.embedder.ID() {
		return AskResponse{}, &domain.ProviderMismatchError{IndexProvider: ix.Provider(), QueryProvider: e.embedder.ID()}
	}

	vecs, err := e.embedder.Embed(ctx, []string{req.Question})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed question", "error", err)
		return AskResponse{}, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vecs) != 1 {
		return AskResponse{}, fmt.Errorf("no embedding returned for question")
	}

	k := clampK(req.K, e.defaultK)
	hits, err := ix.Search(ctx, vecs[0], k)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search index", "error", err)
		return AskResponse{}, fmt.Errorf("failed to search index: %w", err)
	}
	if len(hits) == 0 {
		return AskResponse{}, domain.ErrEmptyCorpus
	}
	logger.InfoContext(ctx, "chunks retrieved", "k", k, "hits", len(hits), "top_distance", hits[0].Distance)

	contextText := BuildContext(hits)
	answer, err := e.respond(ctx, responder.Prompt{
		SystemInstruction: e.systemInstruction,
		Context:           contextText,
		Question:          req.Question,
	})
	if err != nil {
		return AskResponse{}, err
	}

	cited := citedRanks(answer, len(hits))
	refs := make([]Reference, 0, len(hits))
	for i, h := range hits {
		refs = append(refs, Reference{
			Rank:     i + 1,
			File:     h.Chunk.SourceName(),
			Segment:  h.Chunk.Source.Segment,
			Seq:      h.Chunk.Seq,
			Distance: h.Distance,
			Cited:    cited[i+1],
		})
	}

	resp := AskResponse{Answer: answer, References: refs}
	if req.Debug {
		resp.Debug = buildDebugInfo(ix, req.Question, hits, contextText)
	}

	logger.InfoContext(ctx, "question answered", "chunks_used", len(hits), "answer_length", len(answer), "cited", len(cited))
	return resp, nil
}

// respond calls the responder and converts every failure, including a
// panic, into a *domain.AnswerGenerationError.
func (e *ragEngine) respond(ctx context.Context, p responder.Prompt) (answer string, err error) {
	defer func() {
		if r := recover(); r != nil {
			contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "responder panicked", "panic", r)
			answer, err = "", &domain.AnswerGenerationError{Err: fmt.Errorf("responder panic: %v", r)}
		}
	}()

	answer, err = e.responder.Respond(ctx, p)
	if err == nil {
		return answer, nil
	}

	var genErr *domain.AnswerGenerationError
	if errors.As(err, &genErr) {
		return "", err
	}
	return "", &domain.AnswerGenerationError{Err: err}
}

// Rebuild forces a fresh index for the partition.
func (e *ragEngine) Rebuild(ctx context.Context, p domain.Partition) (index.BuildStats, error) {
	e.indexes.Invalidate(p.Name)
	ix, err := e.indexes.Rebuild(ctx, p)
	if err != nil {
		return index.BuildStats{}, err
	}
	return ix.Stats(), nil
}

func (e *ragEngine) Invalidate(partition string) {
	e.indexes.Invalidate(partition)
}

// clampK applies the default for k <= 0 and caps k at MaxK.
func clampK(k, def int) int {
	if k <= 0 {
		return def
	}
	return min(k, MaxK)
}

func buildDebugInfo(ix *index.Index, question string, hits []index.Hit, contextText string) *DebugInfo {
	info := &DebugInfo{
		IndexVersion:    ix.Stats().IndexVersion,
		Provider:        ix.Provider(),
		RetrievedChunks: make([]RetrievedChunk, 0, len(hits)),
		Context:         contextText,
	}
	for i, h := range hits {
		info.RetrievedChunks = append(info.RetrievedChunks, RetrievedChunk{
			ChunkID:      h.Chunk.ID,
			File:         h.Chunk.SourceName(),
			Seq:          h.Chunk.Seq,
			ScoreVector:  float64(1 - h.Distance),
			ScoreLexical: float64(lexicalScore(question, h.Chunk.Text, strings.TrimSuffix(h.Chunk.SourceName(), "."+string(h.Chunk.Source.Source.Format)))),
			Text:         h.Chunk.Text,
			Rank:         i + 1,
		})
	}
	return info
}
