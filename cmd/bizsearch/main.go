package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yellowbooks/bizsearch/internal/config"
	dbRedis "github.com/yellowbooks/bizsearch/internal/db/redis"
	"github.com/yellowbooks/bizsearch/internal/domain"
	logpkg "github.com/yellowbooks/bizsearch/internal/logger"
	"github.com/yellowbooks/bizsearch/internal/metrics"
	businessrepo "github.com/yellowbooks/bizsearch/internal/repository/business"
	"github.com/yellowbooks/bizsearch/internal/repository/resultcache"
	chiTransport "github.com/yellowbooks/bizsearch/internal/transport/chi"
	geminiProvider "github.com/yellowbooks/bizsearch/internal/transport/gemini"
	openaiProvider "github.com/yellowbooks/bizsearch/internal/transport/openai"
	healthuc "github.com/yellowbooks/bizsearch/internal/usecase/health"
	searchuc "github.com/yellowbooks/bizsearch/internal/usecase/search"
	"github.com/yellowbooks/bizsearch/internal/version"
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting bizsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("embedding_provider", cfg.AI.EmbeddingProvider),
		zap.String("chat_provider", cfg.AI.ChatProvider),
	)

	ctx := context.Background()

	// Directory database
	pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
	if err != nil {
		logger.Fatal("Failed to create postgres pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Postgres not ready", zap.Error(err))
	}
	logger.Info("Connected to postgres")

	// Result cache store. An empty addrs list disables caching entirely;
	// the search service then recomputes every answer.
	var cache searchuc.ResultCache = resultcache.NewNoop()
	var cachePinger healthuc.CachePinger
	if len(cfg.Cache.Addrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to cache store", zap.Strings("addrs", cfg.Cache.Addrs))

		cache = resultcache.New(store, logger)
		cachePinger = store
	} else {
		logger.Warn("Cache disabled, search results will not be cached")
	}

	// Register AI metrics explicitly (no init())
	metrics.RegisterAIMetrics()

	// Build providers — composition root. The embedding and chat selectors
	// are independent, so each side resolves its own client.
	embedder, err := buildEmbedder(ctx, cfg.AI, logger)
	if err != nil {
		logger.Fatal("Failed to create embedding provider", zap.Error(err))
	}
	chat, err := buildChatModel(ctx, cfg.AI, logger)
	if err != nil {
		logger.Fatal("Failed to create chat provider", zap.Error(err))
	}

	repo := businessrepo.New(pool, cfg.Search.CandidateLimit)

	searchSvc := searchuc.New(cache, repo, embedder, chat, logger).
		WithCaching(time.Duration(cfg.Search.CacheTTLSec) * time.Second).
		WithDefaultTopN(cfg.Search.DefaultTopN)

	healthSvc := healthuc.New(pool, cachePinger, newProviderHealthChecker(embedder))

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder resolves the embedding provider client from config.
func buildEmbedder(ctx context.Context, ai config.AIConfig, logger *zap.Logger) (domain.Embedder, error) {
	provCfg := ai.Providers[ai.EmbeddingProvider]
	switch ai.EmbeddingProvider {
	case "gemini":
		return geminiProvider.New(ctx, &geminiProvider.Config{
			APIKey:     provCfg.APIKey,
			EmbedModel: provCfg.EmbedModel,
			ChatModel:  provCfg.ChatModel,
			Logger:     logger,
		})
	default:
		return openaiProvider.New(&openaiProvider.Config{
			APIKey:     provCfg.APIKey,
			BaseURL:    provCfg.BaseURL,
			EmbedModel: provCfg.EmbedModel,
			ChatModel:  provCfg.ChatModel,
			Logger:     logger,
		}), nil
	}
}

// buildChatModel resolves the chat provider client from config.
func buildChatModel(ctx context.Context, ai config.AIConfig, logger *zap.Logger) (domain.ChatModel, error) {
	provCfg := ai.Providers[ai.ChatProvider]
	switch ai.ChatProvider {
	case "gemini":
		return geminiProvider.New(ctx, &geminiProvider.Config{
			APIKey:     provCfg.APIKey,
			EmbedModel: provCfg.EmbedModel,
			ChatModel:  provCfg.ChatModel,
			Logger:     logger,
		})
	default:
		return openaiProvider.New(&openaiProvider.Config{
			APIKey:     provCfg.APIKey,
			BaseURL:    provCfg.BaseURL,
			EmbedModel: provCfg.EmbedModel,
			ChatModel:  provCfg.ChatModel,
			Logger:     logger,
		}), nil
	}
}

// providerHealthChecker wraps domain.Embedder to implement health.ProviderChecker.
type providerHealthChecker struct {
	embedder domain.Embedder
}

func newProviderHealthChecker(embedder domain.Embedder) *providerHealthChecker {
	return &providerHealthChecker{embedder: embedder}
}

func (h *providerHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("provider health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
