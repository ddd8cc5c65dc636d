package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/freshmart/storefront/internal/adapter/outbound/localstore"
	"github.com/freshmart/storefront/internal/api"
	"github.com/freshmart/storefront/internal/config"
	"github.com/freshmart/storefront/internal/domain/cart"
	"github.com/freshmart/storefront/internal/domain/session"
)

// app bundles the wired-up stores for a command invocation. The two stores
// are explicit objects constructed once here and passed by reference; no
// ambient singletons.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	storage *localstore.Store
	client  *api.Client
	cart    *cart.Store
	session *session.Store
}

// newApp loads the configuration and constructs storage, API client, cart
// store, and session store. The session is hydrated from any persisted
// credential before newApp returns; a dead network at that point leaves the
// command running unauthenticated.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))

	storage, err := localstore.Open(cfg.Storage.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}

	client := api.NewClient(
		api.WithBaseURL(cfg.API.BaseURL),
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
		api.WithTokenFunc(func() string {
			token, _ := storage.Get(session.KeyAccessToken)
			return token
		}),
	)

	cartStore := cart.NewStore(storage, logger)
	sessionStore := session.NewStore(client, storage, cartStore, logger)

	if err := sessionStore.Hydrate(ctx); err != nil {
		logger.Debug("session hydration failed, continuing unauthenticated", "error", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		storage: storage,
		client:  client,
		cart:    cartStore,
		session: sessionStore,
	}, nil
}

// requireAuth fails the command when no authenticated session exists.
func (a *app) requireAuth() error {
	if !a.session.IsAuthenticated() {
		return errors.New("not logged in; run 'storefront login' first")
	}
	return nil
}

// parseLogLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
