package postgres

import (
	"context"
	"database/sql"
	"expense-ledger/internal/domain"
	"expense-ledger/migrations"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// PostgresTestSuite runs against a disposable database named by
// TEST_DATABASE_URL; every table is truncated before each test.
type PostgresTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Storage
	owner *domain.Account
	food  *domain.Category
}

func (s *PostgresTestSuite) SetupSuite() {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		s.T().Skip("TEST_DATABASE_URL not set")
	}
	s.ctx = context.Background()

	db, err := sql.Open("pgx", dsn)
	s.Require().NoError(err)
	defer db.Close()
	s.Require().NoError(migrations.Up(db))

	pool, err := Connect(s.ctx, dsn, 2)
	s.Require().NoError(err)
	s.T().Cleanup(pool.Close)
	s.store = NewStorage(pool)
}

func (s *PostgresTestSuite) SetupTest() {
	_, err := s.store.db.Exec(s.ctx, `TRUNCATE expenses, categories, users RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)

	s.owner, err = s.store.CreateAccount(s.ctx, "owner@example.com", "hash")
	s.Require().NoError(err)
	s.food, err = s.store.CreateCategory(s.ctx, "food")
	s.Require().NoError(err)
}

func (s *PostgresTestSuite) insert(owner int64, day, amount string) *domain.Expense {
	date, err := time.Parse(domain.DateLayout, day)
	s.Require().NoError(err)
	e := &domain.Expense{
		Title:      "item " + day,
		Amount:     decimal.RequireFromString(amount),
		Date:       date,
		UserID:     owner,
		CategoryID: s.food.ID,
	}
	s.Require().NoError(s.store.InsertExpense(s.ctx, e))
	return e
}

func (s *PostgresTestSuite) TestUniqueConstraints() {
	_, err := s.store.CreateAccount(s.ctx, "OWNER@example.com", "hash")
	s.ErrorIs(err, domain.ErrEmailTaken)

	_, err = s.store.CreateCategory(s.ctx, "food")
	s.ErrorIs(err, domain.ErrCategoryExists)
}

func (s *PostgresTestSuite) TestExpenseRoundTrip() {
	e := s.insert(s.owner.ID, "2024-01-15", "12.34")
	s.NotZero(e.ID)
	s.Equal("food", e.Category.Name)

	got, err := s.store.FindOwnedExpense(s.ctx, s.owner.ID, e.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.True(got.Amount.Equal(decimal.RequireFromString("12.34")))
	s.Equal("2024-01-15", got.Date.Format(domain.DateLayout))

	other, err := s.store.FindOwnedExpense(s.ctx, s.owner.ID+1, e.ID)
	s.NoError(err)
	s.Nil(other)
}

func (s *PostgresTestSuite) TestListFilters() {
	s.insert(s.owner.ID, "2024-01-01", "1")
	s.insert(s.owner.ID, "2024-01-15", "2")
	s.insert(s.owner.ID, "2024-02-01", "3")

	day := func(v string) *time.Time {
		t, _ := time.Parse(domain.DateLayout, v)
		return &t
	}

	got, total, err := s.store.ListOwnedExpenses(s.ctx, s.owner.ID, domain.ExpenseFilter{
		Page: 1, Limit: 10, StartDate: day("2024-01-01"), EndDate: day("2024-01-31"),
	})
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Len(got, 2)

	_, total, err = s.store.ListOwnedExpenses(s.ctx, s.owner.ID, domain.ExpenseFilter{Page: 1, Limit: 10, StartDate: day("2024-01-15")})
	s.Require().NoError(err)
	s.Equal(2, total)

	got, total, err = s.store.ListOwnedExpenses(s.ctx, s.owner.ID, domain.ExpenseFilter{Page: 1, Limit: 10, EndDate: day("2024-01-01")})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Equal("2024-01-01", got[0].Date.Format(domain.DateLayout))
}

func (s *PostgresTestSuite) TestUpdateAndSoftDelete() {
	e := s.insert(s.owner.ID, "2024-01-01", "5.00")

	e.Title = "renamed"
	ok, err := s.store.UpdateOwnedExpense(s.ctx, e)
	s.Require().NoError(err)
	s.True(ok)

	foreign := *e
	foreign.UserID = s.owner.ID + 1
	ok, err = s.store.UpdateOwnedExpense(s.ctx, &foreign)
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.store.SoftDeleteOwnedExpense(s.ctx, s.owner.ID, e.ID)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.SoftDeleteOwnedExpense(s.ctx, s.owner.ID, e.ID)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *PostgresTestSuite) TestAccountLifecycle() {
	other, err := s.store.CreateAccount(s.ctx, "other@example.com", "hash")
	s.Require().NoError(err)

	accounts, total, err := s.store.ListAccounts(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Len(accounts, 2)

	updated, err := s.store.UpdateAccountPassword(s.ctx, other.ID, "new-hash")
	s.Require().NoError(err)
	s.Require().NotNil(updated)
	s.Equal("new-hash", updated.PasswordHash)

	ok, err := s.store.SoftDeleteAccount(s.ctx, other.ID)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.SoftDeleteAccount(s.ctx, other.ID)
	s.Require().NoError(err)
	s.False(ok)

	gone, err := s.store.FindAccountByID(s.ctx, other.ID)
	s.NoError(err)
	s.Nil(gone)

	missing, err := s.store.UpdateAccountPassword(s.ctx, other.ID, "x")
	s.NoError(err)
	s.Nil(missing)
}

func (s *PostgresTestSuite) TestSumByCategory() {
	s.insert(s.owner.ID, "2024-01-01", "30.00")
	s.insert(s.owner.ID, "2024-01-02", "70.00")
	s.insert(s.owner.ID, "2024-03-01", "5.00")

	start, _ := time.Parse(domain.DateLayout, "2024-01-01")
	end, _ := time.Parse(domain.DateLayout, "2024-01-31")
	report, err := s.store.SumByCategory(s.ctx, s.owner.ID, start, end)
	s.Require().NoError(err)
	s.Require().Len(report, 1)
	s.Equal("food", report[0].CategoryName)
	s.True(report[0].TotalAmount.Equal(decimal.RequireFromString("100.00")))
}

func TestPostgresTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresTestSuite))
}

func TestExpenseWhere(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	cat := int64(3)

	where, args := expenseWhere(7, domain.ExpenseFilter{})
	assert.Equal(t, " WHERE e.user_id = $1 AND e.deleted_at IS NULL", where)
	assert.Equal(t, []any{int64(7)}, args)

	where, args = expenseWhere(7, domain.ExpenseFilter{StartDate: &start, EndDate: &end, CategoryID: &cat})
	assert.True(t, strings.HasSuffix(where, "e.date >= $2 AND e.date <= $3 AND e.category_id = $4"))
	assert.Equal(t, []any{int64(7), start, end, cat}, args)

	where, _ = expenseWhere(7, domain.ExpenseFilter{EndDate: &end})
	assert.True(t, strings.HasSuffix(where, "e.date <= $2"))
	require.NotContains(t, where, ">=")
}
