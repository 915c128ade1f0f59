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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/rolodex/internal/api"
	"github.com/starford/rolodex/internal/book"
	"github.com/starford/rolodex/internal/contactservice"
	"github.com/starford/rolodex/internal/mcpserver"
	"github.com/starford/rolodex/internal/sse"
	"github.com/starford/rolodex/internal/storage"
	"github.com/starford/rolodex/internal/watcher"
)

// NewLogger returns a JSON logger writing to w at level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// OpenBook loads the book described by cfg.
func OpenBook(cfg *Config, logger *slog.Logger) (*book.Book, error) {
	b, err := book.New(storage.NewFile(cfg.Book.Path, cfg.Book.WriteMode()), book.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open book: %w", err)
	}
	return b, nil
}

// Run starts the HTTP server and the book watcher with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(os.Stdout, opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := NewLogger(app.logOut, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("book_path", cfg.Book.Path),
		slog.Bool("atomic_writes", cfg.Book.AtomicWrites),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// The watcher needs the directory to exist before the first save.
	if err := os.MkdirAll(filepath.Dir(cfg.Book.Path), 0o755); err != nil {
		return fmt.Errorf("create book dir: %w", err)
	}

	b, err := OpenBook(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("Book loaded", slog.Int("contacts", b.Len()))

	broker := sse.NewBroker(cfg.Events.StatsThrottle)
	defer broker.Close()

	svc := contactservice.NewService(b, broker)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
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
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := watcher.Watch(gCtx, cfg.Book.Path, logger, func() {
			if err := svc.ReloadIfChanged(gCtx); err != nil {
				logger.Error("reload failed", slog.String("error", err.Error()))
			}
		})
		if err != nil {
			logger.Warn("watcher disabled", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the contact tools over stdio until stdin closes.
func RunMCP(_ context.Context, opts ...Option) error {
	app := newApplication(os.Stderr, opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := NewLogger(app.logOut, cfg.App.LogLevel)
	slog.SetDefault(logger)

	b, err := OpenBook(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("MCP server starting",
		slog.String("book_path", cfg.Book.Path),
		slog.Int("contacts", b.Len()))

	srv := mcpserver.New(contactservice.NewService(b, nil), app.version)
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp: serve stdio: %w", err)
	}
	return nil
}
