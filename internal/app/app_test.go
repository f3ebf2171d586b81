package app

import (
	"context"
	"expense-ledger/internal/auth"
	"expense-ledger/internal/config"
	"expense-ledger/internal/domain"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MemoryBackend(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, config.Config{StorageBackend: "memory", JWTSecret: "secret", JWTExpiresIn: time.Hour})
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Accounts.Register(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	token, err := a.Accounts.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)

	cat, err := a.Categories.Create(ctx, "food")
	require.NoError(t, err)

	e, err := a.Expenses.Create(ctx, auth.BearerPrefix+token, domain.NewExpense{
		Title:      "lunch",
		Amount:     decimal.RequireFromString("9.90"),
		Date:       time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		CategoryID: cat.ID,
	})
	require.NoError(t, err)
	assert.Positive(t, e.ID)
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), config.Config{StorageBackend: "sqlite"})
	assert.ErrorContains(t, err, "unknown storage backend")
}
