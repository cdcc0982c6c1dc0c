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
	"go.uber.org/zap"

	"github.com/kailas-cloud/reliefqa/internal/config"
	dbRedis "github.com/kailas-cloud/reliefqa/internal/db/redis"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/endpoint"
	"github.com/kailas-cloud/reliefqa/internal/domain/search/query"
	logpkg "github.com/kailas-cloud/reliefqa/internal/logger"
	"github.com/kailas-cloud/reliefqa/internal/metrics"
	budgetrepo "github.com/kailas-cloud/reliefqa/internal/repository/budget"
	"github.com/kailas-cloud/reliefqa/internal/repository/searchcache"
	sessionrepo "github.com/kailas-cloud/reliefqa/internal/repository/session"
	chiTransport "github.com/kailas-cloud/reliefqa/internal/transport/chi"
	"github.com/kailas-cloud/reliefqa/internal/transport/htmltext"
	llm "github.com/kailas-cloud/reliefqa/internal/transport/openai"
	"github.com/kailas-cloud/reliefqa/internal/transport/reliefweb"
	budgetuc "github.com/kailas-cloud/reliefqa/internal/usecase/budget"
	chatuc "github.com/kailas-cloud/reliefqa/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/reliefqa/internal/usecase/health"
	searchuc "github.com/kailas-cloud/reliefqa/internal/usecase/search"
	usageuc "github.com/kailas-cloud/reliefqa/internal/usecase/usage"
	"github.com/kailas-cloud/reliefqa/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting reliefqa API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("reliefweb", cfg.ReliefWeb.BaseURL),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	// Register metrics explicitly (no init())
	metrics.Register()

	ctx := context.Background()

	// ReliefWeb fetcher: search API + page bodies share one HTTP client
	rwTimeout := time.Duration(cfg.ReliefWeb.TimeoutSec) * time.Second
	httpClient := &http.Client{Timeout: rwTimeout}
	rwClient := reliefweb.NewClient(&reliefweb.Config{
		BaseURL:    cfg.ReliefWeb.BaseURL,
		HTTPClient: httpClient,
		Bodies: htmltext.New(htmltext.Config{
			Client:    httpClient,
			UserAgent: cfg.ReliefWeb.UserAgent,
			Logger:    logger,
		}),
		BodyConcurrency: cfg.ReliefWeb.BodyConcurrency,
		Timeout:         rwTimeout,
		UserAgent:       cfg.ReliefWeb.UserAgent,
		Logger:          logger,
	})

	// Optional cache store: search results and token budget counters.
	// Pass nil interfaces (not typed nil pointers!) when the cache is off.
	var store *dbRedis.Store
	var fetcher searchuc.Fetcher = rwClient
	var cachePinger healthuc.CachePinger
	if cfg.Cache.Enabled {
		store, err = dbRedis.NewStore(dbRedis.Config{
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

		fetcher = searchcache.New(rwClient, store, searchcache.Config{
			KeyPrefix:  cfg.Cache.KeyPrefix,
			TTL:        time.Duration(cfg.Cache.TTLSec) * time.Second,
			CacheTotal: metrics.SearchCacheTotal,
			Logger:     logger,
		})
		cachePinger = store
	}

	// Token budget shared by the language model client and the usage report.
	var tracker *budgetuc.Tracker
	if cfg.LLM.Budget.Enabled() {
		tracker = budgetuc.NewTracker(budgetuc.Config{
			Model:        cfg.LLM.Model,
			DailyLimit:   cfg.LLM.Budget.DailyTokenLimit,
			MonthlyLimit: cfg.LLM.Budget.MonthlyTokenLimit,
			Action:       budgetuc.Action(cfg.LLM.Budget.Action),
			KeyPrefix:    cfg.Cache.KeyPrefix,
			Logger:       logger,
		})
		if store != nil {
			tracker.WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
		}
	}
	var tokenBudget llm.TokenBudget
	var budgetReader usageuc.BudgetReader
	if tracker != nil {
		tokenBudget = tracker
		budgetReader = tracker
	}

	// Language model
	llmClient := llm.NewClient(&llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		Budget:      tokenBudget,
		Logger:      logger,
	})
	var refiner chatuc.IntentRefiner
	if cfg.LLM.RefineIntent {
		refiner = llmClient
	}
	chatCfg := chatuc.Config{
		Endpoint: endpoint.Endpoint(cfg.Chat.Endpoint),
		Limit:    cfg.Chat.Limit,
	}
	if cfg.LLM.ExtractEntities {
		chatCfg.Entities = llmClient
	}
	if cfg.LLM.CheckGroundedness {
		chatCfg.Grader = llmClient
	}

	// Use case services
	searchSvc := searchuc.New(query.NewBuilder(cfg.ReliefWeb.AppName), fetcher)
	chatSvc := chatuc.New(
		sessionrepo.New(cfg.Chat.MaxSessions),
		searchSvc,
		llmClient,
		refiner,
		chatCfg,
	)
	healthSvc := healthuc.New(cachePinger, llmClient)
	usageSvc := usageuc.New(budgetReader)

	// Create chi server
	server := chiTransport.NewServer(chatSvc, searchSvc, healthSvc, usageSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
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
	if tracker != nil {
		tracker.Flush()
	}

	logger.Info("Server stopped gracefully")
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
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// One line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", chi.RouteContext(r.Context()).RoutePattern()),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
