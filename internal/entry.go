// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/larder/internal/api"
	"github.com/starford/larder/internal/index"
	"github.com/starford/larder/internal/mcpserver"
	"github.com/starford/larder/internal/recipeservice"
	"github.com/starford/larder/internal/sse"
	"github.com/starford/larder/internal/storage"
)

// kitchen bundles the pieces every command needs.
type kitchen struct {
	store storage.Provider
	db    *index.DB
	svc   *recipeservice.Service
}

func (k *kitchen) Close() error {
	return k.db.Close()
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

func (c *Config) serviceConfig() recipeservice.Config {
	return recipeservice.Config{
		QuickBitesPath: c.Kitchen.QuickBites,
		AisleOrder:     c.Kitchen.AisleOrder,
		Omit:           c.Kitchen.Omit,
		GlobalCatalog:  c.Catalog.Global,
		KitchenCatalog: c.Catalog.Kitchen,
	}
}

// openKitchen opens storage and the index, runs the initial sync and builds
// the recipe service. Recipes touched by the sync get fresh nutrition.
func openKitchen(ctx context.Context, cfg *Config, logger *slog.Logger, opts ...recipeservice.Option) (*kitchen, error) {
	if err := os.MkdirAll(cfg.Kitchen.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create kitchen dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Kitchen.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	touched, err := index.Sync(db, store, logger, cfg.Kitchen.QuickBites)
	if err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	opts = append([]recipeservice.Option{recipeservice.WithLogger(logger)}, opts...)
	svc, err := recipeservice.New(store, db, cfg.serviceConfig(), opts...)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init recipe service: %w", err)
	}
	svc.Refresh(ctx, touched...)

	return &kitchen{store: store, db: db, svc: svc}, nil
}

// Run starts the HTTP server, file watcher and SSE broker.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts...)

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("kitchen_path", cfg.Kitchen.Path),
		slog.String("global_catalog", cfg.Catalog.Global),
		slog.String("kitchen_catalog", cfg.Catalog.Kitchen),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	k, err := openKitchen(ctx, cfg, logger, recipeservice.WithEvents(broker))
	if err != nil {
		return err
	}
	defer k.Close()

	apiRouter := api.NewRouter(k.svc, api.RouterConfig{
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Token:       cfg.Auth.Token,
		RateLimit:   cfg.App.HTTP.RateLimit,
		RateBurst:   cfg.App.HTTP.RateBurst,
	}, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := k.db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher; edits made outside the API re-index and cascade.
	g.Go(func() error {
		return index.Watch(gCtx, k.db, k.store, cfg.Kitchen.Path, logger, func(kind, path, slug string) {
			k.svc.HandleFileEvent(gCtx, kind, path, slug)
		}, cfg.Kitchen.QuickBites)
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools over stdio. Logs go to stderr so stdout stays
// reserved for the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts...)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	logger := newLogger(app.config, os.Stderr)
	slog.SetDefault(logger)

	k, err := openKitchen(ctx, app.config, logger)
	if err != nil {
		return err
	}
	defer k.Close()

	logger.Info("MCP server starting", slog.String("kitchen_path", app.config.Kitchen.Path))
	return mcpserver.New(k.svc, app.version).ServeStdio()
}
