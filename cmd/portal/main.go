package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/campus-portal/internal/backend"
	"github.com/example/campus-portal/internal/catalog"
	"github.com/example/campus-portal/internal/config"
	httptransport "github.com/example/campus-portal/internal/http"
	"github.com/example/campus-portal/internal/logging"
	"github.com/example/campus-portal/internal/registration"
	"github.com/example/campus-portal/internal/session"
)

func main() {
	bootstrap := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		bootstrap.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, logCloser, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		bootstrap.Error("failed to open log output", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open session store", "error", err, "store", cfg.SessionStore)
		os.Exit(1)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close session store", "error", cerr)
		}
	}()

	var manager *session.Manager
	client, err := backend.New(cfg.BackendURL,
		backend.WithHTTPClient(&http.Client{Timeout: cfg.BackendTimeout}),
		backend.WithTokenSource(func() string { return manager.Token() }),
		backend.WithUnauthorizedHook(func(ctx context.Context) {
			manager.Invalidate(ctx, session.ReasonExpired)
		}),
		backend.WithLogger(logger),
	)
	if err != nil {
		logger.Error("invalid backend configuration", "error", err)
		os.Exit(1)
	}

	manager = session.NewManager(client, store,
		session.WithLogger(logger),
		session.WithProfile(cfg.Profile),
	)
	courses := catalog.NewProviderWithLogger(client, cfg.CatalogTTL, logger)
	registrar := registration.NewRegistrarWithLogger(client, courses, logger)
	registrationHandler := httptransport.NewRegistrationHandler(courses, registrar, logger)

	unsubscribe := manager.Subscribe(func(event session.Event) {
		if event.Kind != session.EventSignedOut {
			return
		}
		registrationHandler.Reset()
		courses.Flush()
		logger.Info("session ended", "reason", event.Reason)
	})
	defer unsubscribe()

	if restored, ok := manager.Restore(ctx); ok {
		logger.Info("session restored", "principal_id", restored.Principal.ID, "role", restored.Role())
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(manager, logger),
		Pages:        httptransport.NewPageHandler(logger),
		Registration: registrationHandler,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.CORS(cfg.CORSOrigins),
			httptransport.RequestLogger(logger),
			httptransport.RouteGuard(manager, logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("campus portal listening", "addr", server.Addr, "backend", cfg.BackendURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
