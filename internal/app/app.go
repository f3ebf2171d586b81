// internal/app/app.go
package app

import (
	"context"
	"expense-ledger/internal/auth"
	"expense-ledger/internal/config"
	"expense-ledger/internal/service"
	"expense-ledger/internal/storage"
	"expense-ledger/internal/storage/memory"
	"expense-ledger/internal/storage/postgres"
	"fmt"
	"log/slog"
)

// App holds the services shared by the binaries.
type App struct {
	Store      storage.Storage
	Tokens     *auth.TokenService
	Resolver   *auth.Resolver
	Accounts   *service.AccountService
	Categories *service.CategoryService
	Expenses   *service.ExpenseService

	close func()
}

// New opens the configured storage backend and builds the services on top.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	store, closeFn, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenService(cfg)
	resolver := auth.NewResolver(store)
	return &App{
		Store:      store,
		Tokens:     tokens,
		Resolver:   resolver,
		Accounts:   service.NewAccountService(store, tokens),
		Categories: service.NewCategoryService(store),
		Expenses:   service.NewExpenseService(tokens, resolver, store),
		close:      closeFn,
	}, nil
}

func (a *App) Close() {
	if a.close != nil {
		a.close()
	}
}

func openStorage(ctx context.Context, cfg config.Config) (storage.Storage, func(), error) {
	switch cfg.StorageBackend {
	case "memory":
		slog.Warn("Using in-memory storage, data is lost on exit")
		return memory.NewStorage(), nil, nil
	case "postgres", "":
		pool, err := postgres.Connect(ctx, cfg.DBConn, cfg.DBMaxConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		slog.Info("Connected to postgres", "max_conns", cfg.DBMaxConns)
		return postgres.NewStorage(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
