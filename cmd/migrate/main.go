// cmd/migrate/main.go
package main

import (
	"database/sql"
	"expense-ledger/internal/config"
	"expense-ledger/internal/logger"
	"expense-ledger/migrations"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	cfg := config.MustLoad()
	logger.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	db, err := sql.Open("pgx", cfg.DBConn)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("Applying migrations")
	if err := migrations.Up(db); err != nil {
		slog.Error("Migrations failed", "error", err)
		os.Exit(1)
	}
	slog.Info("✅ Migrations applied")
}
