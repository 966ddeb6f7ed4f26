package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qrscanner/internal/barcode"
	"qrscanner/internal/config"
	"qrscanner/internal/describe"
	"qrscanner/internal/handlers"
	"qrscanner/internal/http"
	"qrscanner/internal/indexer"
	"qrscanner/internal/llm"
	"qrscanner/internal/prefs"
	"qrscanner/internal/product"
	"qrscanner/internal/service"
	"qrscanner/internal/storage"
	"qrscanner/internal/urlinfo"
	"qrscanner/internal/vectorstore"
)

const (
	shutdownTimeout = 15 * time.Second
	drainTimeout    = 2 * time.Second
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	version, err := storage.SchemaVersion(db)
	if err != nil {
		slog.Warn("Failed to read schema version", "error", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath, "schema_version", version)

	scanRepo := storage.NewScanRepo(db)
	prefStore := prefs.NewFileStore(cfg.PrefsPath)

	// Product lookup, optionally cached in Redis
	products := product.NewClient(cfg.ProductLookupURL, cfg.HTTPTimeout)
	if cfg.CacheEnabled() {
		rdb, err := product.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.HTTPTimeout)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer func() {
			_ = rdb.Close()
		}()
		products = products.WithCache(product.NewRedisCache(rdb), cfg.ProductCacheTTL)
		slog.Info("Product cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.ProductCacheTTL)
	}

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName, cfg.HTTPTimeout)
	describer := describe.New(llmClient, cfg.DescriptionCooldown).WithParams(llm.ChatParams{
		Model:       cfg.DescribeModel,
		MaxTokens:   cfg.DescribeMaxTokens,
		Temperature: cfg.DescribeTemperature,
	})

	// Related-scan index is optional; the interfaces stay nil when it is off.
	var (
		scanIndex service.ScanIndex
		inspector handlers.CollectionInspector
		ix        *indexer.Indexer
	)
	if cfg.IndexEnabled() {
		vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		defer func() {
			_ = vectorStore.Close()
		}()

		// Validate embedding client vector size (fail-fast)
		embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize, cfg.HTTPTimeout)
		testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
		if err != nil {
			log.Fatalf("Failed to validate embedding client: %v", err)
		}
		if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
			log.Fatalf("Embedding vector size mismatch: expected %d", cfg.QdrantVectorSize)
		}

		ix = indexer.New(vectorStore, embedder, cfg.QdrantCollection, cfg.QdrantVectorSize, cfg.EmbeddingModelName)
		if err := ix.Ensure(ctx); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

		scanIndex = ix
		inspector = vectorStore
	}

	scanService := service.NewScanService(service.ScanDeps{
		Decoder:       barcode.NewZXingDecoder(),
		Products:      products,
		Describer:     describer,
		URLInfo:       urlinfo.NewFetcher(cfg.HTTPTimeout),
		History:       scanRepo,
		Prefs:         prefStore,
		Index:         scanIndex,
		FrameInterval: cfg.FrameInterval,
	})

	router := http.NewRouter(&http.Deps{
		ScanService:     scanService,
		HistoryService:  service.NewHistoryService(scanRepo, scanIndex),
		SettingsService: service.NewSettingsService(prefStore),
		DB:              db,
		VectorStore:     inspector,
		CollectionName:  cfg.QdrantCollection,
	})

	// Start indexing in background after router is ready
	if ix != nil {
		go func() {
			slog.Info("Starting background indexing of history")
			stats, err := ix.IndexAll(ctx, scanRepo)
			if err != nil {
				slog.Error("Indexing completed with errors", "error", err)
				return
			}
			slog.Info("Indexing completed successfully", "indexed", stats.ScansIndexed, "index_version", stats.IndexVersion)
		}()
	}

	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("Starting API server", "addr", srv.Addr)
		slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}
	// Let in-flight scans finish writing to history before the database closes.
	if err := scanService.Wait(shutdownCtx); err != nil {
		slog.Warn("Background scans did not finish, cancelled", "error", err)
		// Cancelled scans still unwind through history writes; give them a moment.
		drainCtx, drainCancel := context.WithTimeout(context.Background(), drainTimeout)
		if err := scanService.Wait(drainCtx); err != nil {
			slog.Warn("Background scans still running at exit", "error", err)
		}
		drainCancel()
	}
	slog.Info("Goodbye")
}
