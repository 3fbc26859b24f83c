// Package index builds and serves per-partition similarity indexes over
// chunk embeddings.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/domain"
	"mga-chatbot/internal/vectorstore"
)

// Embedder converts texts into fixed-dimension vectors. ID names the
// provider and model so that vectors from different spaces are never mixed.
type Embedder interface {
	ID() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Hit is a search result. Distance is the cosine distance (1 - cosine
// similarity) between the query and the chunk; smaller is closer.
type Hit struct {
	Chunk    domain.Chunk
	Distance float32
}

// Index holds the chunks of one partition snapshot and their vectors.
// It is immutable once built and safe for concurrent Search.
type Index struct {
	partition   string
	fingerprint string
	provider    string
	dimension   int

	chunks  []domain.Chunk
	vectors [][]float32
	norms   []float64

	// Set when vectors also live in a remote collection.
	store      vectorstore.VectorStore
	collection string
	positions  map[string]int
	// retired is set once the remote collection is scheduled for deletion.
	// Searches on a retired index are served from the in-memory vectors.
	retired atomic.Bool

	stats BuildStats
}

// Partition returns the name of the partition the index was built for.
func (ix *Index) Partition() string { return ix.partition }

// Fingerprint identifies the file set the index was built from.
func (ix *Index) Fingerprint() string { return ix.fingerprint }

// Provider returns the ID of the embedder that produced the vectors.
func (ix *Index) Provider() string { return ix.provider }

// Dimension returns the vector size.
func (ix *Index) Dimension() int { return ix.dimension }

// Len returns the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.chunks) }

// Collection returns the remote collection name, or "" for memory-only indexes.
func (ix *Index) Collection() string { return ix.collection }

// Stats returns the statistics recorded when the index was built.
func (ix *Index) Stats() BuildStats { return ix.stats }

// Search returns the k chunks closest to query in ascending distance.
// Equal distances keep insertion order. A query whose dimension differs
// from the index fails with *domain.ProviderMismatchError.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}
	if len(query) != ix.dimension {
		return nil, &domain.ProviderMismatchError{
			IndexProvider: ix.provider,
			QueryProvider: fmt.Sprintf("vector of dimension %d", len(query)),
		}
	}
	if len(ix.chunks) == 0 {
		return nil, nil
	}

	if ix.store == nil || ix.retired.Load() {
		return ix.searchMemory(query, k), nil
	}

	hits, err := ix.searchRemote(ctx, query, k)
	if err != nil && ix.retired.Load() {
		// The collection was dropped while this search was in flight.
		contextutil.LoggerFromContext(ctx).DebugContext(ctx, "serving replaced index from memory", "collection", ix.collection)
		return ix.searchMemory(query, k), nil
	}
	return hits, err
}

func (ix *Index) searchMemory(query []float32, k int) []Hit {
	qnorm := norm(query)

	order := make([]int, len(ix.chunks))
	distances := make([]float32, len(ix.chunks))
	for i := range ix.chunks {
		order[i] = i
		distances[i] = cosineDistance(query, qnorm, ix.vectors[i], ix.norms[i])
	}

	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	hits := make([]Hit, k)
	for i := 0; i < k; i++ {
		hits[i] = Hit{Chunk: ix.chunks[order[i]], Distance: distances[order[i]]}
	}
	return hits
}

func (ix *Index) searchRemote(ctx context.Context, query []float32, k int) ([]Hit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	results, err := ix.store.Search(ctx, ix.collection, query, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search collection %s: %w", ix.collection, err)
	}

	type ranked struct {
		pos  int
		dist float32
	}
	found := make([]ranked, 0, len(results))
	for _, r := range results {
		pos, ok := ix.positions[r.PointID]
		if !ok {
			logger.WarnContext(ctx, "search returned unknown point", "collection", ix.collection, "point_id", r.PointID)
			continue
		}
		found = append(found, ranked{pos: pos, dist: 1 - r.Score})
	}

	sort.Slice(found, func(a, b int) bool {
		if found[a].dist != found[b].dist {
			return found[a].dist < found[b].dist
		}
		return found[a].pos < found[b].pos
	})

	hits := make([]Hit, len(found))
	for i, f := range found {
		hits[i] = Hit{Chunk: ix.chunks[f.pos], Distance: f.dist}
	}
	return hits, nil
}

// drop removes the remote collection backing the index, if any. Holders of
// the index keep searching its in-memory vectors afterwards.
func (ix *Index) drop(ctx context.Context) error {
	if ix == nil || ix.store == nil || ix.collection == "" {
		return nil
	}
	ix.retired.Store(true)
	return ix.store.DeleteCollection(ctx, ix.collection)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosineDistance treats a zero vector as unrelated to everything.
func cosineDistance(a []float32, anorm float64, b []float32, bnorm float64) float32 {
	if anorm == 0 || bnorm == 0 {
		return 1
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return float32(1 - dot/(anorm*bnorm))
}
