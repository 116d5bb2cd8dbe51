package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/pinvault/internal/adapter/driven/gemini"
	"github.com/ericfisherdev/pinvault/internal/adapter/driven/memory"
	sqliteadapter "github.com/ericfisherdev/pinvault/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/pinvault/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/pinvault/internal/adapter/driving/web"
	"github.com/ericfisherdev/pinvault/internal/application"
	"github.com/ericfisherdev/pinvault/internal/config"
	"github.com/ericfisherdev/pinvault/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on malformed env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"seed_demo", cfg.SeedDemo,
		"gemini_model", cfg.GeminiModel,
		"ai_enabled", cfg.HasGeminiKey(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Choose the record store. Without a DB path records live in memory
	// and are gone on restart.
	var store driven.RecordStore
	if cfg.UsesSQLite() {
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		slog.Info("database opened", "path", db.Path())

		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			return err
		}
		slog.Info("migrations complete")

		store = sqliteadapter.NewRecordRepo(db)
	} else {
		store = memory.NewStore()
		slog.Info("using in-memory record store")
	}

	// 4. Create the assistant client. An empty key yields a disabled client.
	assistant := gemini.NewClient(cfg.GeminiAPIKey,
		gemini.WithModel(cfg.GeminiModel),
		gemini.WithBaseURL(cfg.GeminiBaseURL),
		gemini.WithTimeout(cfg.AITimeout),
		gemini.WithLogger(slog.Default()),
	)
	if assistant.Enabled() {
		pingCtx, cancel := context.WithTimeout(ctx, cfg.AITimeout)
		if err := assistant.Ping(pingCtx); err != nil {
			slog.Warn("gemini model lookup failed, assistant calls may fail", "model", cfg.GeminiModel, "error", err)
		} else {
			slog.Info("gemini assistant ready", "model", cfg.GeminiModel)
		}
		cancel()
	} else {
		slog.Info("no gemini api key configured, smart search and password analysis disabled")
	}

	// 5. Create application services.
	gate := application.NewGate(cfg.UnlockPIN)
	vaultSvc := application.NewVaultService(store, gate, slog.Default())
	assistSvc := application.NewAssistService(assistant, slog.Default())

	if cfg.SeedDemo {
		n, err := vaultSvc.SeedDemo(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			slog.Info("demo records seeded", "count", n)
		}
	}

	// 6. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(vaultSvc, assistSvc, slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	// 7. Create web handler and register GUI routes.
	webHandler := webhandler.NewHandler(vaultSvc, assistSvc, cfg.HasGeminiKey(), slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	// Assistant calls run inside a request, so the write timeout has to
	// outlast them.
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.AITimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("pinvault started", "listen_addr", cfg.ListenAddr)

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 9. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
