package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"knowledge-search/internal/blobstore"
	"knowledge-search/internal/cache"
	"knowledge-search/internal/config"
	"knowledge-search/internal/extract"
	"knowledge-search/internal/indexer"
	"knowledge-search/internal/llm"
	"knowledge-search/internal/rag"
	"knowledge-search/internal/service"
	"knowledge-search/internal/storage"
	"knowledge-search/internal/vectorstore"
)

// app holds the wired components shared by every command.
type app struct {
	cfg         *config.Config
	vectorStore vectorstore.VectorStore
	// cache is nil when REDIS_URL is unset.
	cache     *cache.EmbeddingCache
	documents service.DocumentService
	engine    rag.Engine
	closers   []func() error
}

// newApp opens storage, connects the gateways and builds the pipelines.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}
	ready := false
	defer func() {
		if !ready {
			_ = a.Close()
		}
	}()

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	if err := storage.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	documentRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	blobs, err := blobstore.NewLocalStore(cfg.BlobDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}

	if err := a.openVectorStore(ctx); err != nil {
		return nil, err
	}

	var embedder llm.Embedder = llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingDimensions)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		a.closers = append(a.closers, client.Close)
		a.cache = cache.NewEmbeddingCache(client, embedder, cfg.EmbeddingModelName, cfg.EmbeddingCacheTTL)
		if err := a.cache.Ping(ctx); err != nil {
			// The cache falls through to the provider while Redis is down.
			slog.Warn("Embedding cache unreachable", "error", err)
		} else {
			slog.Info("Embedding cache enabled", "ttl", cfg.EmbeddingCacheTTL)
		}
		embedder = a.cache
	}

	chatClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)
	synthesizer := llm.NewSynthesizer(chatClient, float32(cfg.LLMTemperature))

	pipeline := indexer.NewPipeline(
		documentRepo,
		embedder,
		a.vectorStore,
		cfg.QdrantCollection,
		indexer.NewTextChunker(cfg.ChunkMaxTokens),
		indexer.WithConcurrency(cfg.EmbedConcurrency),
	)

	a.documents = service.NewDocumentService(
		extract.New(cfg.PDFToTextPath, nil),
		pipeline,
		documentRepo,
		blobs,
		a.vectorStore,
		cfg.QdrantCollection,
		indexer.NewStatsCollector(documentRepo, chunkRepo, cfg.EmbeddingModelName, cfg.ChunkMaxTokens),
		cfg.MaxUploadBytes,
	)

	a.engine = rag.NewEngine(embedder, a.vectorStore, cfg.QdrantCollection, synthesizer, cfg.RAGTopK)
	slog.Info("RAG engine initialized", "model", cfg.LLMModelName, "top_k", cfg.RAGTopK)

	ready = true
	return a, nil
}

// openVectorStore connects the configured backend and ensures the collection exists.
func (a *app) openVectorStore(ctx context.Context) error {
	cfg := a.cfg
	switch cfg.VectorStore {
	case config.VectorStoreMemory:
		store := vectorstore.NewMemoryStore(cfg.EmbeddingDimensions)
		if err := store.EnsureCollection(ctx, cfg.QdrantCollection, cfg.EmbeddingDimensions); err != nil {
			return fmt.Errorf("failed to create in-memory collection: %w", err)
		}
		slog.Warn("Using in-memory vector store; vectors are lost on exit")
		a.vectorStore = store
	default:
		store, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			return fmt.Errorf("failed to create Qdrant client: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		if err := store.EnsureCollection(ctx, cfg.QdrantCollection, cfg.EmbeddingDimensions); err != nil {
			return fmt.Errorf("failed to ensure Qdrant collection: %w", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.EmbeddingDimensions)
		a.vectorStore = store
	}
	return nil
}

// Close releases connections in reverse order of opening.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
