package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/example/campus-portal/internal/backend"
	"github.com/example/campus-portal/internal/catalog"
	"github.com/example/campus-portal/internal/config"
	"github.com/example/campus-portal/internal/logging"
	"github.com/example/campus-portal/internal/registration"
	"github.com/example/campus-portal/internal/session"
	"github.com/example/campus-portal/internal/storage/bolt"
)

// env holds the services one command invocation works with.
type env struct {
	logger    *slog.Logger
	sessions  *session.Manager
	catalog   *catalog.Provider
	registrar *registration.Registrar

	closers []io.Closer
}

func defaultLogFile() string {
	return filepath.Join(xdg.StateHome, config.AppName, "campus.log")
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logFile := cfg.LogFile
	if logFile == "" {
		logFile = defaultLogFile()
	}
	logger, logCloser, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: logFile})
	if err != nil {
		return nil, err
	}

	store, err := bolt.Open(cfg.BoltPath, "")
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}

	e := &env{logger: logger, closers: []io.Closer{store, logCloser}}
	client, err := backend.New(cfg.BackendURL,
		backend.WithHTTPClient(&http.Client{Timeout: cfg.BackendTimeout}),
		backend.WithTokenSource(func() string { return e.sessions.Token() }),
		backend.WithUnauthorizedHook(func(ctx context.Context) {
			e.sessions.Invalidate(ctx, session.ReasonExpired)
		}),
		backend.WithLogger(logger),
	)
	if err != nil {
		e.Close()
		return nil, err
	}

	e.sessions = session.NewManager(client, store, session.WithLogger(logger), session.WithProfile(cfg.Profile))
	e.catalog = catalog.NewProviderWithLogger(client, cfg.CatalogTTL, logger)
	e.registrar = registration.NewRegistrarWithLogger(client, e.catalog, logger)
	e.sessions.Restore(ctx)
	return e, nil
}

func (e *env) Close() {
	for _, c := range e.closers {
		if err := c.Close(); err != nil {
			e.logger.Warn("close failed", "error", err)
		}
	}
}

// student returns the signed-in student's id.
func (e *env) student() (string, error) {
	current := e.sessions.Current()
	if !current.Authenticated() {
		return "", errNotSignedIn
	}
	if current.Role() != session.RoleStudent {
		return "", errNotStudent
	}
	return current.Principal.ID, nil
}
