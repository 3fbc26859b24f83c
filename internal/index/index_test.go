package index_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"mga-chatbot/internal/domain"
	"mga-chatbot/internal/index"
	"mga-chatbot/internal/vectorstore"
	vsmocks "mga-chatbot/internal/vectorstore/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeEmbedder returns fixed vectors keyed by text. Unknown texts map to the zero vector.
type fakeEmbedder struct {
	id      string
	dim     int
	vectors map[string][]float32
	calls   int
	err     error
}

func (f *fakeEmbedder) ID() string     { return f.id }
func (f *fakeEmbedder) Dimension() int { return f.dim }

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := f.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = make([]float32, f.dim)
		}
	}
	return out, nil
}

func newChunk(partition, file string, seq int, text string) domain.Chunk {
	return domain.Chunk{
		ID:     fmt.Sprintf("%s-%s-%d", partition, file, seq),
		Source: domain.Document{Source: domain.RawFile{Partition: partition, Name: file}},
		Seq:    seq,
		Text:   text,
	}
}

func threeChunkEmbedder() *fakeEmbedder {
	return &fakeEmbedder{
		id:  "fake:2",
		dim: 2,
		vectors: map[string][]float32{
			"far":    {0, 1},
			"near":   {1, 0},
			"middle": {0.8, 0.6},
			"query":  {1, 0},
		},
	}
}

func TestIndex_Search_AscendingDistance(t *testing.T) {
	emb := threeChunkEmbedder()
	chunks := []domain.Chunk{
		newChunk("Equipe_1", "a.txt", 0, "far"),
		newChunk("Equipe_1", "a.txt", 1, "near"),
		newChunk("Equipe_1", "b.txt", 0, "middle"),
	}

	ix, err := index.NewBuilder(emb).Build(context.Background(), "Equipe_1", index.Corpus{Fingerprint: "fp", Chunks: chunks})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	hits, err := ix.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := []string{"near", "middle", "far"}
	if len(hits) != len(want) {
		t.Fatalf("Search() returned %d hits, want %d", len(hits), len(want))
	}
	for i, w := range want {
		if hits[i].Chunk.Text != w {
			t.Errorf("Search()[%d] = %q, want %q", i, hits[i].Chunk.Text, w)
		}
		if i > 0 && hits[i].Distance < hits[i-1].Distance {
			t.Errorf("Search() distances not ascending: %v then %v", hits[i-1].Distance, hits[i].Distance)
		}
	}
	if hits[0].Distance > 1e-6 {
		t.Errorf("Search()[0].Distance = %v, want 0", hits[0].Distance)
	}
}

func TestIndex_Search_TiesKeepInsertionOrder(t *testing.T) {
	emb := &fakeEmbedder{
		id:  "fake:2",
		dim: 2,
		vectors: map[string][]float32{
			"first":  {1, 1},
			"second": {1, 1},
			"third":  {1, 1},
		},
	}
	chunks := []domain.Chunk{
		newChunk("p", "a.txt", 0, "first"),
		newChunk("p", "a.txt", 1, "second"),
		newChunk("p", "a.txt", 2, "third"),
	}
	ix, err := index.NewBuilder(emb).Build(context.Background(), "p", index.Corpus{Chunks: chunks})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	hits, err := ix.Search(context.Background(), []float32{0, 5}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 || hits[0].Chunk.Text != "first" || hits[1].Chunk.Text != "second" {
		t.Errorf("Search() = %+v, want first then second", hits)
	}
}

func TestIndex_Search_Errors(t *testing.T) {
	emb := threeChunkEmbedder()
	ix, err := index.NewBuilder(emb).Build(context.Background(), "p", index.Corpus{
		Chunks: []domain.Chunk{newChunk("p", "a.txt", 0, "near")},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if _, err := ix.Search(context.Background(), []float32{1, 0}, 0); err == nil {
		t.Error("Search() with k=0 should fail")
	}

	_, err = ix.Search(context.Background(), []float32{1, 0, 0}, 1)
	var mismatch *domain.ProviderMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Search() error = %v, want *domain.ProviderMismatchError", err)
	}
	if mismatch.IndexProvider != "fake:2" {
		t.Errorf("IndexProvider = %q, want fake:2", mismatch.IndexProvider)
	}
}

func TestIndex_Search_KLargerThanIndex(t *testing.T) {
	ix, err := index.NewBuilder(threeChunkEmbedder()).Build(context.Background(), "p", index.Corpus{
		Chunks: []domain.Chunk{newChunk("p", "a.txt", 0, "near"), newChunk("p", "a.txt", 1, "unknown")},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	hits, err := ix.Search(context.Background(), []float32{1, 0}, 20)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("Search() returned %d hits, want 2", len(hits))
	}
	// The zero vector is unrelated to everything.
	if hits[1].Distance != 1 {
		t.Errorf("zero-vector distance = %v, want 1", hits[1].Distance)
	}
}

func TestIndex_Empty(t *testing.T) {
	ix, err := index.NewBuilder(threeChunkEmbedder()).Build(context.Background(), "p", index.Corpus{Fingerprint: "none"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if ix.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ix.Len())
	}
	hits, err := ix.Search(context.Background(), []float32{1, 0}, 3)
	if err != nil || len(hits) != 0 {
		t.Errorf("Search() = %v, %v; want no hits", hits, err)
	}
}

func TestBuilder_Build_Batches(t *testing.T) {
	emb := &fakeEmbedder{id: "fake:2", dim: 2}
	var chunks []domain.Chunk
	for i := 0; i < 5; i++ {
		chunks = append(chunks, newChunk("p", "a.txt", i, fmt.Sprintf("text %d", i)))
	}

	ix, err := index.NewBuilder(emb, index.WithBatchSize(2)).Build(context.Background(), "p", index.Corpus{
		Fingerprint: "fp",
		Files:       1,
		Documents:   1,
		Chunks:      chunks,
		Skipped:     []string{"photo.png"},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if emb.calls != 3 {
		t.Errorf("Embed() called %d times, want 3", emb.calls)
	}

	stats := ix.Stats()
	if stats.Chunks != 5 || stats.Files != 1 || stats.Documents != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
	if stats.Backend != index.BackendMemory || stats.Provider != "fake:2" {
		t.Errorf("Stats() backend/provider = %s/%s", stats.Backend, stats.Provider)
	}
	if stats.IndexVersion == "" || len(stats.Skipped) != 1 {
		t.Errorf("Stats() = %+v, want index version and one skipped file", stats)
	}
}

func TestBuilder_Build_EmbedError(t *testing.T) {
	emb := &fakeEmbedder{id: "fake:2", dim: 2, err: errors.New("model unavailable")}

	_, err := index.NewBuilder(emb).Build(context.Background(), "p", index.Corpus{
		Chunks: []domain.Chunk{newChunk("p", "a.txt", 0, "x")},
	})
	if err == nil || !strings.Contains(err.Error(), "model unavailable") {
		t.Errorf("Build() error = %v, want wrapped embed error", err)
	}
}

func TestBuilder_Build_WrongDimension(t *testing.T) {
	emb := &fakeEmbedder{id: "fake:3", dim: 3, vectors: map[string][]float32{"x": {1, 0}}}

	_, err := index.NewBuilder(emb).Build(context.Background(), "p", index.Corpus{
		Chunks: []domain.Chunk{newChunk("p", "a.txt", 0, "x")},
	})
	if err == nil {
		t.Error("Build() with wrong vector size should fail")
	}
}

func TestBuilder_Build_VectorStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := vsmocks.NewMockVectorStore(ctrl)
	emb := threeChunkEmbedder()

	chunks := []domain.Chunk{
		{ID: "7f8b2f7e-51f4-4c1b-9a35-0c2f0f3a1d11", Source: domain.Document{Source: domain.RawFile{Partition: "Equipe 1", Name: "a.txt"}}, Seq: 0, Text: "far"},
		{ID: "0e3c9e5a-2b1d-4b39-8f3e-77c0b6f0a2c4", Source: domain.Document{Source: domain.RawFile{Partition: "Equipe 1", Name: "a.txt"}}, Seq: 1, Text: "near"},
	}

	var collection string
	store.EXPECT().
		EnsureCollection(gomock.Any(), gomock.Any(), 2).
		DoAndReturn(func(_ context.Context, name string, _ int) error {
			collection = name
			return nil
		})
	store.EXPECT().
		Upsert(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, name string, points []vectorstore.Point) error {
			if name != collection {
				t.Errorf("Upsert() collection = %q, want %q", name, collection)
			}
			if len(points) != 2 || points[1].Meta["file"] != "a.txt" || points[1].Meta["seq"] != 1 {
				t.Errorf("Upsert() points = %+v", points)
			}
			return nil
		})

	ix, err := index.NewBuilder(emb, index.WithVectorStore(store, "chatbot")).Build(context.Background(), "Equipe 1", index.Corpus{Chunks: chunks})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.HasPrefix(collection, "chatbot_equipe_1_") {
		t.Errorf("collection = %q, want chatbot_equipe_1_ prefix", collection)
	}
	if ix.Collection() != collection || ix.Stats().Backend != index.BackendQdrant {
		t.Errorf("Index collection/backend = %q/%s", ix.Collection(), ix.Stats().Backend)
	}

	store.EXPECT().
		Search(gomock.Any(), collection, []float32{1, 0}, 2).
		Return([]vectorstore.SearchResult{
			{PointID: chunks[1].ID, Score: 1},
			{PointID: "unknown", Score: 0.5},
			{PointID: chunks[0].ID, Score: 0},
		}, nil)

	hits, err := ix.Search(context.Background(), []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 || hits[0].Chunk.Text != "near" || hits[1].Chunk.Text != "far" {
		t.Errorf("Search() = %+v, want near then far", hits)
	}
	if hits[1].Distance != 1 {
		t.Errorf("Search()[1].Distance = %v, want 1", hits[1].Distance)
	}
}

func TestBuilder_Build_VectorStoreUpsertFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := vsmocks.NewMockVectorStore(ctrl)

	store.EXPECT().EnsureCollection(gomock.Any(), gomock.Any(), 2).Return(nil)
	store.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("unavailable"))
	store.EXPECT().DeleteCollection(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	_, err := index.NewBuilder(threeChunkEmbedder(), index.WithVectorStore(store, "chatbot")).Build(context.Background(), "p", index.Corpus{
		Chunks: []domain.Chunk{newChunk("p", "a.txt", 0, "near")},
	})
	if err == nil {
		t.Error("Build() should fail when the vector store rejects points")
	}
}
