package index

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_loader.go -package=mocks mga-chatbot/internal/index Loader

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"mga-chatbot/internal/contextutil"
	"mga-chatbot/internal/domain"
)

// Corpus is the chunked content of one partition snapshot.
type Corpus struct {
	Fingerprint string
	Files       int
	Documents   int
	Chunks      []domain.Chunk
	Skipped     []string
}

// Loader reads a partition's current file set.
type Loader interface {
	// Fingerprint identifies the partition's current file set without reading file contents.
	Fingerprint(ctx context.Context, p domain.Partition) (string, error)
	// Load ingests and chunks the partition. An empty partition yields an empty Corpus.
	Load(ctx context.Context, p domain.Partition) (Corpus, error)
}

// Registry keeps the current Index of every partition. An index is reused
// while the partition's fingerprint is unchanged; otherwise a new one is
// built and swapped in. Concurrent rebuilds of one partition share a
// single build.
type Registry struct {
	loader  Loader
	builder *Builder

	mu      sync.RWMutex
	current map[string]*Index
	stale   map[string]bool
	// builds numbers rebuilds in start order; installed records the number
	// of the build currently swapped in per partition.
	builds    uint64
	installed map[string]uint64

	group singleflight.Group
}

// NewRegistry creates a new Registry.
func NewRegistry(loader Loader, builder *Builder) *Registry {
	return &Registry{
		loader:  loader,
		builder: builder,
		current:   make(map[string]*Index),
		stale:     make(map[string]bool),
		installed: make(map[string]uint64),
	}
}

// Current returns the partition's index, rebuilding it first if the file set
// changed since the last build.
func (r *Registry) Current(ctx context.Context, p domain.Partition) (*Index, error) {
	fingerprint, err := r.loader.Fingerprint(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint partition %s: %w", p.Name, err)
	}

	r.mu.RLock()
	ix, stale := r.current[p.Name], r.stale[p.Name]
	r.mu.RUnlock()

	if ix != nil && !stale && ix.Fingerprint() == fingerprint && ix.Provider() == r.builder.ProviderID() {
		return ix, nil
	}

	contextutil.LoggerFromContext(ctx).DebugContext(ctx, "index stale", "partition", p.Name, "fingerprint", fingerprint)
	return r.Rebuild(ctx, p)
}

// Rebuild builds a fresh index for the partition and swaps it in. Searches
// running against the previous index are unaffected.
func (r *Registry) Rebuild(ctx context.Context, p domain.Partition) (*Index, error) {
	// The build may be shared with other callers, so one caller's
	// cancellation must not abort it.
	buildCtx := context.WithoutCancel(ctx)

	v, err, shared := r.group.Do(p.Name, func() (any, error) {
		return r.rebuild(buildCtx, p)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		contextutil.LoggerFromContext(ctx).DebugContext(ctx, "joined in-flight rebuild", "partition", p.Name)
	}
	return v.(*Index), nil
}

func (r *Registry) rebuild(ctx context.Context, p domain.Partition) (*Index, error) {
	logger := contextutil.LoggerFromContext(ctx)

	r.mu.Lock()
	r.builds++
	build := r.builds
	r.mu.Unlock()

	corpus, err := r.loader.Load(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to load partition %s: %w", p.Name, err)
	}

	ix, err := r.builder.Build(ctx, p.Name, corpus)
	if err != nil {
		return nil, fmt.Errorf("failed to build index for %s: %w", p.Name, err)
	}

	r.mu.Lock()
	if build < r.installed[p.Name] {
		// A build that started later has already been swapped in.
		r.mu.Unlock()
		logger.DebugContext(ctx, "discarding superseded build", "partition", p.Name, "fingerprint", ix.Fingerprint())
		if err := ix.drop(ctx); err != nil {
			logger.WarnContext(ctx, "failed to drop superseded collection", "collection", ix.Collection(), "error", err)
		}
		return ix, nil
	}
	old := r.current[p.Name]
	r.current[p.Name] = ix
	r.installed[p.Name] = build
	delete(r.stale, p.Name)
	r.mu.Unlock()

	if old != nil && old.Collection() != ix.Collection() {
		if err := old.drop(ctx); err != nil {
			logger.WarnContext(ctx, "failed to drop replaced collection", "collection", old.Collection(), "error", err)
		}
	}
	return ix, nil
}

// Invalidate marks the partition's index stale so the next Current rebuilds
// it. The stale index keeps serving searches already in progress. A build
// already in flight may have read the old file set, so later callers start
// a new one instead of joining it.
func (r *Registry) Invalidate(partition string) {
	r.mu.Lock()
	if _, ok := r.current[partition]; ok {
		r.stale[partition] = true
	}
	r.mu.Unlock()
	r.group.Forget(partition)
}

// Stats returns the build statistics of the partition's current index.
func (r *Registry) Stats(partition string) (BuildStats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ix, ok := r.current[partition]
	if !ok {
		return BuildStats{}, false
	}
	return ix.Stats(), true
}

// Close drops the remote collections of every held index.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	held := r.current
	r.current = make(map[string]*Index)
	r.stale = make(map[string]bool)
	r.mu.Unlock()

	var firstErr error
	for _, ix := range held {
		if err := ix.drop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
