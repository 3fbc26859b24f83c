package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"mga-chatbot/internal/auth"
	"mga-chatbot/internal/chunk"
	"mga-chatbot/internal/config"
	"mga-chatbot/internal/domain"
	"mga-chatbot/internal/embedding"
	"mga-chatbot/internal/handlers"
	"mga-chatbot/internal/index"
	"mga-chatbot/internal/ingest"
	"mga-chatbot/internal/ingest/extract"
	"mga-chatbot/internal/llm"
	"mga-chatbot/internal/rag"
	"mga-chatbot/internal/responder"
	"mga-chatbot/internal/service"
	"mga-chatbot/internal/storage"
	"mga-chatbot/internal/vectorstore"
	"mga-chatbot/internal/workspace"
)

// app is the assembled object graph shared by the subcommands.
type app struct {
	db        *sql.DB
	workspace *workspace.Manager
	registry  *index.Registry
	engine    rag.Engine
	sessions  *auth.Sessions
	qdrant    *vectorstore.QdrantStore

	chatService      service.ChatService
	workspaceService service.WorkspaceService
}

// newApp opens storage and wires every component selected by c.
func newApp(ctx context.Context, c *config.Config) (*app, error) {
	db, err := storage.New(c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database initialized", "path", c.DBPath)

	a := &app{db: db}
	if err := a.wire(ctx, c); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context, c *config.Config) error {
	manager, err := workspace.NewManager(c.DataDir, storage.NewPartitionRepo(a.db), storage.NewFileRepo(a.db))
	if err != nil {
		return fmt.Errorf("failed to initialize workspace: %w", err)
	}
	a.workspace = manager
	slog.Info("Workspace initialized", "data_dir", c.DataDir)

	splitter, err := chunk.New(chunk.WithChunkSize(c.ChunkSize), chunk.WithOverlap(c.ChunkOverlap))
	if err != nil {
		return err
	}

	embedder, err := newEmbedder(ctx, c)
	if err != nil {
		return err
	}

	var builderOpts []index.BuilderOption
	if c.IndexBackend == config.IndexBackendQdrant {
		store, err := vectorstore.NewQdrantStore(c.QdrantURL)
		if err != nil {
			return err
		}
		a.qdrant = store
		builderOpts = append(builderOpts, index.WithVectorStore(store, c.QdrantCollectionPrefix))
		slog.Info("Qdrant index backend enabled", "url", c.QdrantURL, "prefix", c.QdrantCollectionPrefix)
	}

	pipeline := ingest.NewPipeline(manager, extract.NewRegistry())
	loader := rag.NewCorpusLoader(manager, pipeline, splitter)
	a.registry = index.NewRegistry(loader, index.NewBuilder(embedder, builderOpts...))

	resp, err := newResponder(c)
	if err != nil {
		return err
	}
	a.engine = rag.NewEngine(a.registry, embedder, resp, rag.WithDefaultK(c.TopK))
	slog.Info("RAG engine initialized", "provider", embedder.ID(), "responder", c.Responder, "top_k", c.TopK)

	credentials, err := auth.LoadFile(ctx, c.UsersFile)
	if err != nil {
		return err
	}
	a.sessions = auth.NewSessions(credentials, c.SessionTTL)
	slog.Info("Credentials loaded", "users", credentials.Len(), "path", c.UsersFile)

	a.chatService = service.NewChatService(manager, a.engine, a.sessions)
	a.workspaceService = service.NewWorkspaceService(manager, manager, a.engine)
	return nil
}

// newEmbedder builds the configured embedding provider. A remote provider is
// probed once so a wrong vector size fails at startup.
func newEmbedder(ctx context.Context, c *config.Config) (index.Embedder, error) {
	switch c.EmbeddingProvider {
	case config.EmbeddingProviderHashing:
		h, err := embedding.NewHashing(c.EmbeddingDimension)
		if err != nil {
			return nil, &domain.ConfigError{Field: "EMBEDDING_DIMENSION", Message: err.Error()}
		}
		return h, nil
	case config.EmbeddingProviderOpenAI:
		embedder := llm.NewEmbeddingsClient(c.EmbeddingBaseURL, c.LLMAPIKey, c.EmbeddingModelName, c.EmbeddingDimension)
		vectors, err := embedder.Embed(ctx, []string{"test"})
		if err != nil {
			return nil, fmt.Errorf("failed to validate embedding client: %w", err)
		}
		if len(vectors) == 0 || len(vectors[0]) != c.EmbeddingDimension {
			return nil, &domain.ConfigError{
				Field:   "EMBEDDING_DIMENSION",
				Message: fmt.Sprintf("embedding server returned vectors of a different size than %d", c.EmbeddingDimension),
			}
		}
		slog.Info("Embedding client validated", "vector_size", c.EmbeddingDimension)
		return embedder, nil
	default:
		return nil, &domain.ConfigError{Field: "EMBEDDING_PROVIDER", Message: fmt.Sprintf("unknown provider %q", c.EmbeddingProvider)}
	}
}

// newResponder builds the configured answer strategy.
func newResponder(c *config.Config) (rag.Responder, error) {
	if c.Responder == config.ResponderTemplate {
		return responder.NewTemplate(""), nil
	}

	var client responder.ChatClient
	switch c.LLMProvider {
	case config.LLMProviderAnthropic:
		lc, err := llm.NewAnthropicClient(c.LLMAPIKey, c.LLMModelName)
		if err != nil {
			return nil, err
		}
		client = lc
	default:
		client = llm.NewClient(c.LLMBaseURL, c.LLMAPIKey, c.LLMModelName)
	}
	slog.Debug("LLM configuration", "provider", c.LLMProvider, "base_url", c.LLMBaseURL, "model", c.LLMModelName)

	return responder.NewDelegating(client,
		responder.WithTimeout(c.LLMTimeout),
		responder.WithRateLimit(c.LLMRateLimit),
	), nil
}

// healthChecks names the dependencies probed by GET /api/health.
func (a *app) healthChecks() map[string]handlers.CheckFunc {
	checks := map[string]handlers.CheckFunc{
		"database": a.db.PingContext,
	}
	if a.qdrant != nil {
		checks["vector_store"] = a.qdrant.HealthCheck
	}
	return checks
}

// partitionFor resolves a team name to its partition as the given operator.
func (a *app) partitionFor(ctx context.Context, operator, team string) (domain.Partition, error) {
	return a.workspace.EnsurePartition(ctx, domain.Identity{Username: operator, Team: team})
}

// Close releases remote collections and the database.
func (a *app) Close(ctx context.Context) error {
	var firstErr error
	if a.registry != nil {
		if err := a.registry.Close(ctx); err != nil {
			firstErr = err
		}
	}
	if a.qdrant != nil {
		if err := a.qdrant.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
