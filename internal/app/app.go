// Package app initializes and holds long-lived application services, acting
// as a dependency injection container for the serve command.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/archivemark/urlcanon/internal/config"
	"github.com/archivemark/urlcanon/internal/dedup"
	"github.com/archivemark/urlcanon/internal/logging"
)

// App holds the shared, long-lived services for the service binary. It is
// initialized once at startup and passed to the components that need it.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	store  dedup.Store
}

// New builds an App from configuration: logger first, then the record store
// selected by store.provider. It fails fast if any service cannot be
// initialized.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	var store dedup.Store
	switch cfg.Store.Provider {
	case "postgres":
		logger.Info("connecting to postgres", zap.String("table", cfg.Store.Table))
		store, err = dedup.NewPostgresStore(ctx, cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	case "memory":
		logger.Info("using in-memory record store; records are lost on restart")
		store = dedup.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store provider: %s", cfg.Store.Provider)
	}

	return &App{cfg: cfg, logger: logger, store: store}, nil
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the shared zap logger instance.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Store returns the configured dedup record store.
func (a *App) Store() dedup.Store {
	return a.store
}

// Close shuts down services in reverse initialization order.
func (a *App) Close() {
	if a.store != nil {
		a.store.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync() // best-effort flush
	}
}
