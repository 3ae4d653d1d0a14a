// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/replyhq/reply/internal/app"
	"github.com/replyhq/reply/internal/audio"
	"github.com/replyhq/reply/internal/cache"
	"github.com/replyhq/reply/internal/config"
	"github.com/replyhq/reply/internal/engine"
	"github.com/replyhq/reply/internal/events"
	"github.com/replyhq/reply/internal/handler"
	"github.com/replyhq/reply/internal/middleware"
	"github.com/replyhq/reply/internal/model"
	"github.com/replyhq/reply/internal/session"
	"github.com/replyhq/reply/internal/store"
	"github.com/replyhq/reply/internal/syncer"
	"github.com/replyhq/reply/pkg/logger"
	"github.com/replyhq/reply/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "reply", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS when configured; events degrade to no-ops without it
	var bus events.Publisher = events.Noop{}
	var natsClient *events.Client
	if cfg.NATSURL != "" {
		natsClient, err = events.Connect(events.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer natsClient.Close()

		eventBus := events.NewBus(natsClient, log)
		if err := eventBus.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure stream", zap.Error(err))
			os.Exit(1)
		}
		bus = eventBus
	}

	// Connect to the backend store
	db := store.Open(cfg.DatabaseDSN)
	defer db.Close()
	remote := store.New(db, log)
	if err := remote.EnsureSchema(ctx); err != nil {
		log.Error("failed to ensure schema", zap.Error(err))
		os.Exit(1)
	}

	// Local guest cache
	localCache, err := cache.New(cfg.DataDir, log)
	if err != nil {
		log.Error("failed to create local cache", zap.Error(err))
		os.Exit(1)
	}

	// Sessions and per-device state. History changes made while no session
	// is attached persist to the local cache.
	sessions := session.NewManager(cfg.JWTSecret, cfg.SessionFile, log)
	states := app.NewManager(func(deviceID string, history []model.Conversation) {
		if sessions.Current(deviceID) == nil {
			if err := localCache.Save(deviceID, history); err != nil {
				log.Warn("failed to persist guest history", zap.Error(err))
			}
		}
	})

	// Generative providers
	gemini, err := engine.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel,
		engine.WithTTSModel(cfg.GeminiTTSModel))
	if err != nil {
		log.Error("failed to create Gemini client", zap.Error(err))
		os.Exit(1)
	}
	fallback := buildFallback(cfg, log)
	eng := engine.New(gemini, fallback, log)

	// Sync orchestration runs on session transitions
	orchestrator := syncer.New(remote, localCache, states, bus, log)
	sessions.Subscribe(orchestrator.OnTransition)
	sessions.Resolve(ctx)

	// Initialize handlers
	player := &audio.Player{}
	healthHandler := handler.NewHealthHandler(db, natsClient)
	sessionHandler := handler.NewSessionHandler(sessions, log)
	settingsHandler := handler.NewSettingsHandler(orchestrator, remote, eng, log)
	stateHandler := handler.NewStateHandler(orchestrator)
	threadHandler := handler.NewThreadHandler(orchestrator)
	suggestionHandler := handler.NewSuggestionHandler(orchestrator, remote, eng, bus, log)
	historyHandler := handler.NewHistoryHandler(orchestrator, remote, bus, log)
	speechHandler := handler.NewSpeechHandler(orchestrator, gemini, player)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Device-ID"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no device scope required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Device-scoped API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Device(sessions))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/session", sessionHandler.SignIn)
		r.Delete("/session", sessionHandler.SignOut)

		r.Get("/settings", settingsHandler.Get)
		r.Put("/settings", settingsHandler.Update)
		r.Post("/settings/finalize", settingsHandler.Finalize)
		r.Post("/settings/refine", settingsHandler.Refine)
		r.Get("/catalog", settingsHandler.Catalog)

		r.Get("/state", stateHandler.Get)

		r.Route("/thread", func(r chi.Router) {
			r.Post("/messages", threadHandler.AddMessage)
			r.Delete("/messages/{index}", threadHandler.RemoveMessage)
			r.Delete("/", threadHandler.Clear)
			r.Post("/reply-used", threadHandler.ReplyUsed)
		})

		r.Post("/suggestions", suggestionHandler.Generate)
		r.Post("/review", suggestionHandler.Review)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyHandler.List)
			r.Post("/{id}/select", historyHandler.Select)
			r.Delete("/{id}", historyHandler.Delete)
		})

		r.Post("/speech", speechHandler.Synthesize)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

// buildFallback selects the secondary provider for reply generation.
// Nothing configured means no fallback path.
func buildFallback(cfg *config.Config, log *logger.Logger) engine.Provider {
	switch cfg.FallbackKind {
	case "openrouter":
		if cfg.OpenRouterKey == "" {
			log.Warn("fallback provider openrouter selected but no API key set")
			return nil
		}
		p, err := engine.NewOpenRouterProvider(cfg.OpenRouterKey, cfg.OpenRouterURL, cfg.OpenRouterModel)
		if err != nil {
			log.Warn("failed to create OpenRouter provider", zap.Error(err))
			return nil
		}
		return p
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Warn("fallback provider anthropic selected but no API key set")
			return nil
		}
		p, err := engine.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		if err != nil {
			log.Warn("failed to create Anthropic provider", zap.Error(err))
			return nil
		}
		return p
	case "", "none":
		return nil
	default:
		log.Warn("unknown fallback provider", zap.String("kind", cfg.FallbackKind))
		return nil
	}
}
