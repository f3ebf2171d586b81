package memory

import (
	"context"
	"expense-ledger/internal/domain"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MemoryTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Storage
	food  *domain.Category
}

func (s *MemoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewStorage()

	food, err := s.store.CreateCategory(s.ctx, "food")
	s.Require().NoError(err)
	s.food = food
}

func (s *MemoryTestSuite) insert(owner int64, day string, amount string) *domain.Expense {
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

func (s *MemoryTestSuite) TestAccounts() {
	acc, err := s.store.CreateAccount(s.ctx, "a@example.com", "hash")
	s.Require().NoError(err)

	_, err = s.store.CreateAccount(s.ctx, "A@example.com", "hash")
	s.ErrorIs(err, domain.ErrEmailTaken)

	found, err := s.store.FindAccountByEmail(s.ctx, "a@example.com")
	s.Require().NoError(err)
	s.Equal(acc.ID, found.ID)

	updated, err := s.store.UpdateAccountPassword(s.ctx, acc.ID, "new-hash")
	s.Require().NoError(err)
	s.Equal("new-hash", updated.PasswordHash)

	other, err := s.store.CreateAccount(s.ctx, "b@example.com", "hash")
	s.Require().NoError(err)
	page, total, err := s.store.ListAccounts(s.ctx, 1, 1)
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Require().Len(page, 1)
	s.Equal(other.ID, page[0].ID)

	ok, err := s.store.SoftDeleteAccount(s.ctx, acc.ID)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.SoftDeleteAccount(s.ctx, acc.ID)
	s.Require().NoError(err)
	s.False(ok)

	gone, err := s.store.FindAccountByID(s.ctx, acc.ID)
	s.NoError(err)
	s.Nil(gone)

	missing, err := s.store.UpdateAccountPassword(s.ctx, acc.ID, "x")
	s.NoError(err)
	s.Nil(missing)

	_, total, err = s.store.ListAccounts(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Equal(1, total)
}

func (s *MemoryTestSuite) TestCategories() {
	_, err := s.store.CreateCategory(s.ctx, "food")
	s.ErrorIs(err, domain.ErrCategoryExists)

	transport, err := s.store.CreateCategory(s.ctx, "transport")
	s.Require().NoError(err)

	_, err = s.store.RenameCategory(s.ctx, transport.ID, "food")
	s.ErrorIs(err, domain.ErrCategoryExists)

	renamed, err := s.store.RenameCategory(s.ctx, transport.ID, "travel")
	s.Require().NoError(err)
	s.Equal("travel", renamed.Name)

	list, total, err := s.store.ListCategories(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Equal([]string{"food", "travel"}, []string{list[0].Name, list[1].Name})

	ok, err := s.store.SoftDeleteCategory(s.ctx, transport.ID)
	s.Require().NoError(err)
	s.True(ok)

	gone, err := s.store.FindCategoryByID(s.ctx, transport.ID)
	s.NoError(err)
	s.Nil(gone)

	_, total, err = s.store.ListCategories(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Equal(1, total)
}

func (s *MemoryTestSuite) TestInsertRejectsUnknownCategory() {
	err := s.store.InsertExpense(s.ctx, &domain.Expense{UserID: 1, CategoryID: 999, Amount: decimal.NewFromInt(1)})
	s.ErrorIs(err, errForeignKey)
}

func (s *MemoryTestSuite) TestFindOwnedExpenseIsScoped() {
	e := s.insert(1, "2024-01-01", "10.00")

	mine, err := s.store.FindOwnedExpense(s.ctx, 1, e.ID)
	s.Require().NoError(err)
	s.Require().NotNil(mine)
	s.Equal("food", mine.Category.Name)

	theirs, err := s.store.FindOwnedExpense(s.ctx, 2, e.ID)
	s.NoError(err)
	s.Nil(theirs)
}

func (s *MemoryTestSuite) TestUpdateCannotReassignOwner() {
	e := s.insert(1, "2024-01-01", "10.00")

	hijack := *e
	hijack.UserID = 2
	hijack.Title = "stolen"
	ok, err := s.store.UpdateOwnedExpense(s.ctx, &hijack)
	s.Require().NoError(err)
	s.False(ok)

	got, err := s.store.FindOwnedExpense(s.ctx, 1, e.ID)
	s.Require().NoError(err)
	s.Equal("item 2024-01-01", got.Title)
}

func (s *MemoryTestSuite) TestListOrderingAndWindow() {
	s.insert(1, "2024-02-01", "1")
	s.insert(1, "2024-01-01", "2")
	s.insert(1, "2024-01-01", "3")
	s.insert(2, "2024-01-01", "4")

	got, total, err := s.store.ListOwnedExpenses(s.ctx, 1, domain.ExpenseFilter{Page: 1, Limit: 2})
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Require().Len(got, 2)
	s.True(got[0].Amount.Equal(decimal.NewFromInt(2)))
	s.True(got[1].Amount.Equal(decimal.NewFromInt(3)))

	got, _, err = s.store.ListOwnedExpenses(s.ctx, 1, domain.ExpenseFilter{Page: 2, Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.True(got[0].Amount.Equal(decimal.NewFromInt(1)))

	got, _, err = s.store.ListOwnedExpenses(s.ctx, 1, domain.ExpenseFilter{Page: 5, Limit: 2})
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *MemoryTestSuite) TestSoftDeleteHidesExpense() {
	e := s.insert(1, "2024-01-01", "10.00")

	ok, err := s.store.SoftDeleteOwnedExpense(s.ctx, 2, e.ID)
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.store.SoftDeleteOwnedExpense(s.ctx, 1, e.ID)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.store.SoftDeleteOwnedExpense(s.ctx, 1, e.ID)
	s.Require().NoError(err)
	s.False(ok)

	_, total, err := s.store.ListOwnedExpenses(s.ctx, 1, domain.ExpenseFilter{Page: 1, Limit: 10})
	s.Require().NoError(err)
	s.Zero(total)
}

func TestMemoryTestSuite(t *testing.T) {
	suite.Run(t, new(MemoryTestSuite))
}

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, window(items, 2, 0))
	assert.Equal(t, []int{5}, window(items, 2, 4))
	assert.Equal(t, []int{}, window(items, 2, 5))
	assert.Equal(t, []int{3, 4, 5}, window(items, 0, 2))
}

func TestSumByCategory(t *testing.T) {
	ctx := context.Background()
	store := NewStorage()
	food, err := store.CreateCategory(ctx, "food")
	require.NoError(t, err)
	transport, err := store.CreateCategory(ctx, "transport")
	require.NoError(t, err)

	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	for _, e := range []domain.Expense{
		{UserID: 1, CategoryID: transport.ID, Amount: decimal.RequireFromString("20.00"), Date: day},
		{UserID: 1, CategoryID: food.ID, Amount: decimal.RequireFromString("30.00"), Date: day},
		{UserID: 1, CategoryID: food.ID, Amount: decimal.RequireFromString("70.00"), Date: day},
		{UserID: 2, CategoryID: food.ID, Amount: decimal.RequireFromString("999.00"), Date: day},
	} {
		e := e
		require.NoError(t, store.InsertExpense(ctx, &e))
	}

	report, err := store.SumByCategory(ctx, 1, day, day)
	require.NoError(t, err)
	require.Len(t, report, 2)
	assert.Equal(t, "food", report[0].CategoryName)
	assert.True(t, report[0].TotalAmount.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, "transport", report[1].CategoryName)
	assert.True(t, report[1].TotalAmount.Equal(decimal.RequireFromString("20.00")))
}
