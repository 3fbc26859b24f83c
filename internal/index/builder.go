package index

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/domain"
	"mga-chatbot/internal/vectorstore"
)

// DefaultBatchSize is the number of chunks embedded per provider call.
const DefaultBatchSize = 32

// Backend names reported in BuildStats.
const (
	BackendMemory = "memory"
	BackendQdrant = "qdrant"
)

var collectionUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Builder embeds chunks and assembles an Index.
type Builder struct {
	embedder  Embedder
	store     vectorstore.VectorStore
	prefix    string
	batchSize int
	now       func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithVectorStore mirrors every built index into a fresh collection of store
// named "<prefix>_<partition>_<id>" and serves searches from it.
func WithVectorStore(store vectorstore.VectorStore, prefix string) BuilderOption {
	return func(b *Builder) {
		b.store = store
		b.prefix = prefix
	}
}

// WithBatchSize sets the number of chunks sent to the embedder at once.
func WithBatchSize(n int) BuilderOption {
	return func(b *Builder) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// NewBuilder creates a Builder for the given embedder.
func NewBuilder(embedder Embedder, opts ...BuilderOption) *Builder {
	b := &Builder{
		embedder:  embedder,
		batchSize: DefaultBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ProviderID returns the ID of the embedder used for builds.
func (b *Builder) ProviderID() string { return b.embedder.ID() }

// Build embeds corpus.Chunks and returns a new Index. Nothing is shared with
// previously built indexes.
func (b *Builder) Build(ctx context.Context, partition string, corpus Corpus) (*Index, error) {
	logger := contextutil.LoggerFromContext(ctx).With("partition", partition)
	started := b.now()

	ix := &Index{
		partition:   partition,
		fingerprint: corpus.Fingerprint,
		provider:    b.embedder.ID(),
		dimension:   b.embedder.Dimension(),
		chunks:      append([]domain.Chunk(nil), corpus.Chunks...),
		vectors:     make([][]float32, 0, len(corpus.Chunks)),
		norms:       make([]float64, 0, len(corpus.Chunks)),
	}

	for start := 0; start < len(ix.chunks); start += b.batchSize {
		end := min(start+b.batchSize, len(ix.chunks))

		texts := make([]string, 0, end-start)
		for _, c := range ix.chunks[start:end] {
			texts = append(texts, c.Text)
		}

		vecs, err := b.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunks %d-%d: %w", start, end, err)
		}
		if len(vecs) != len(texts) {
			return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(vecs))
		}
		for i, v := range vecs {
			if len(v) != ix.dimension {
				return nil, fmt.Errorf("embedding %d has dimension %d, want %d", start+i, len(v), ix.dimension)
			}
			ix.vectors = append(ix.vectors, v)
			ix.norms = append(ix.norms, norm(v))
		}
	}

	backend := BackendMemory
	if b.store != nil && len(ix.chunks) > 0 {
		if err := b.mirror(ctx, ix); err != nil {
			return nil, err
		}
		backend = BackendQdrant
	}

	ix.stats = BuildStats{
		Partition:    partition,
		Fingerprint:  corpus.Fingerprint,
		Provider:     ix.provider,
		Backend:      backend,
		Files:        corpus.Files,
		Documents:    corpus.Documents,
		Chunks:       len(ix.chunks),
		Skipped:      corpus.Skipped,
		TokenStats:   chunkTokenStats(ix.chunks),
		IndexVersion: indexVersion(ix.provider, corpus.Fingerprint),
		BuiltAt:      started,
		Duration:     b.now().Sub(started),
	}

	logger.InfoContext(ctx, "index built",
		"chunks", len(ix.chunks),
		"documents", corpus.Documents,
		"backend", backend,
		"index_version", ix.stats.IndexVersion,
	)
	return ix, nil
}

// mirror copies the index vectors into a new remote collection.
func (b *Builder) mirror(ctx context.Context, ix *Index) error {
	logger := contextutil.LoggerFromContext(ctx)
	collection := b.collectionName(ix.partition)

	if err := b.store.EnsureCollection(ctx, collection, ix.dimension); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", collection, err)
	}

	ix.positions = make(map[string]int, len(ix.chunks))
	points := make([]vectorstore.Point, 0, b.batchSize)
	flush := func() error {
		if len(points) == 0 {
			return nil
		}
		if err := b.store.Upsert(ctx, collection, points); err != nil {
			return fmt.Errorf("failed to upsert vectors: %w", err)
		}
		points = points[:0]
		return nil
	}

	for i, c := range ix.chunks {
		id := c.ID
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(c.ID)).String()
		}
		ix.positions[id] = i
		points = append(points, vectorstore.Point{
			ID:  id,
			Vec: ix.vectors[i],
			Meta: map[string]any{
				"partition": ix.partition,
				"file":      c.SourceName(),
				"segment":   c.Source.Segment,
				"seq":       c.Seq,
			},
		})
		if len(points) == b.batchSize {
			if err := flush(); err != nil {
				b.discard(ctx, collection)
				return err
			}
		}
	}
	if err := flush(); err != nil {
		b.discard(ctx, collection)
		return err
	}

	ix.store = b.store
	ix.collection = collection
	logger.DebugContext(ctx, "vectors mirrored", "collection", collection, "points", len(ix.chunks))
	return nil
}

func (b *Builder) discard(ctx context.Context, collection string) {
	if err := b.store.DeleteCollection(ctx, collection); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to drop partial collection", "collection", collection, "error", err)
	}
}

func (b *Builder) collectionName(partition string) string {
	name := strings.ToLower(collectionUnsafe.ReplaceAllString(partition, "_"))
	return fmt.Sprintf("%s_%s_%s", b.prefix, name, uuid.New().String()[:8])
}
