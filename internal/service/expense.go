// internal/service/expense.go
package service

import (
	"context"
	"expense-ledger/internal/domain"
	"expense-ledger/internal/storage"
	"fmt"
	"log/slog"
	"math"
	"time"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit inside int for any allowed limit.
	MaxPage = math.MaxInt / MaxLimit
)

// CredentialValidator turns an Authorization header value into an identity.
type CredentialValidator interface {
	Validate(authHeader string) (domain.Identity, error)
}

// IdentityResolver confirms that an identity still maps to a live account.
type IdentityResolver interface {
	Resolve(ctx context.Context, id domain.Identity) (*domain.Account, error)
}

// ExpenseStore is the storage the expense service needs.
type ExpenseStore interface {
	storage.ExpenseStorage
	FindCategoryByID(ctx context.Context, id int64) (*domain.Category, error)
}

// ExpenseService runs every expense operation inside the caller's
// ownership scope. Each method verifies the credential and resolves the
// account before touching storage; errors outside the domain taxonomy are
// reported as *domain.StoreFailure.
type ExpenseService struct {
	tokens   CredentialValidator
	accounts IdentityResolver
	store    ExpenseStore
}

func NewExpenseService(tokens CredentialValidator, accounts IdentityResolver, store ExpenseStore) *ExpenseService {
	return &ExpenseService{tokens: tokens, accounts: accounts, store: store}
}

// authorize runs Validate then Resolve.
func (s *ExpenseService) authorize(ctx context.Context, credential string) (domain.Identity, error) {
	id, err := s.tokens.Validate(credential)
	if err != nil {
		return domain.Identity{}, err
	}
	if _, err := s.accounts.Resolve(ctx, id); err != nil {
		return domain.Identity{}, err
	}
	return id, nil
}

func (s *ExpenseService) requireCategory(ctx context.Context, id int64) (*domain.Category, error) {
	cat, err := s.store.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, fmt.Errorf("category %d: %w", id, domain.ErrCategoryNotFound)
	}
	return cat, nil
}

func (s *ExpenseService) Create(ctx context.Context, credential string, in domain.NewExpense) (*domain.Expense, error) {
	const op = "create expense"

	id, err := s.authorize(ctx, credential)
	if err != nil {
		return nil, domain.Guard(op, err)
	}
	cat, err := s.requireCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, domain.Guard(op, err)
	}

	e := &domain.Expense{
		Title:      in.Title,
		Amount:     in.Amount,
		Date:       domain.TruncateDate(in.Date),
		UserID:     id.UserID,
		CategoryID: cat.ID,
	}
	if err := s.store.InsertExpense(ctx, e); err != nil {
		slog.Error("Failed to insert expense", "error", err, "user_id", id.UserID)
		return nil, domain.Guard(op, err)
	}
	if e.Category == nil {
		e.Category = cat
	}

	slog.Info("Expense created", "expense_id", e.ID, "user_id", id.UserID, "category_id", cat.ID)
	return e, nil
}

// NormalizePage applies the paging policy: page < 1 becomes 1, page is
// capped at MaxPage, limit < 1 becomes DefaultLimit and limit is capped at
// MaxLimit.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func (s *ExpenseService) List(ctx context.Context, credential string, f domain.ExpenseFilter) (*domain.Page[domain.Expense], error) {
	const op = "list expenses"

	id, err := s.authorize(ctx, credential)
	if err != nil {
		return nil, domain.Guard(op, err)
	}

	f.Page, f.Limit = NormalizePage(f.Page, f.Limit)
	if f.StartDate != nil {
		d := domain.TruncateDate(*f.StartDate)
		f.StartDate = &d
	}
	if f.EndDate != nil {
		d := domain.TruncateDate(*f.EndDate)
		f.EndDate = &d
	}

	expenses, total, err := s.store.ListOwnedExpenses(ctx, id.UserID, f)
	if err != nil {
		slog.Error("Failed to list expenses", "error", err, "user_id", id.UserID)
		return nil, domain.Guard(op, err)
	}
	return domain.NewPage(expenses, total, f.Page, f.Limit), nil
}

// findOwned returns ErrExpenseNotFound for missing, deleted and foreign
// expenses alike.
func (s *ExpenseService) findOwned(ctx context.Context, ownerID, expenseID int64) (*domain.Expense, error) {
	e, err := s.store.FindOwnedExpense(ctx, ownerID, expenseID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("expense %d: %w", expenseID, domain.ErrExpenseNotFound)
	}
	return e, nil
}

func (s *ExpenseService) GetOne(ctx context.Context, credential string, expenseID int64) (*domain.Expense, error) {
	const op = "get expense"

	id, err := s.authorize(ctx, credential)
	if err != nil {
		return nil, domain.Guard(op, err)
	}
	e, err := s.findOwned(ctx, id.UserID, expenseID)
	return e, domain.Guard(op, err)
}

func (s *ExpenseService) Update(ctx context.Context, credential string, expenseID int64, patch domain.ExpensePatch) (*domain.Expense, error) {
	const op = "update expense"

	id, err := s.authorize(ctx, credential)
	if err != nil {
		return nil, domain.Guard(op, err)
	}
	e, err := s.findOwned(ctx, id.UserID, expenseID)
	if err != nil {
		return nil, domain.Guard(op, err)
	}
	if patch.CategoryID != nil {
		if _, err := s.requireCategory(ctx, *patch.CategoryID); err != nil {
			return nil, domain.Guard(op, err)
		}
	}

	patch.Apply(e)
	updated, err := s.store.UpdateOwnedExpense(ctx, e)
	if err != nil {
		slog.Error("Failed to update expense", "error", err, "expense_id", expenseID, "user_id", id.UserID)
		return nil, domain.Guard(op, err)
	}
	if !updated {
		// removed concurrently between lookup and update
		return nil, fmt.Errorf("expense %d: %w", expenseID, domain.ErrExpenseNotFound)
	}

	refreshed, err := s.findOwned(ctx, id.UserID, expenseID)
	if err != nil {
		return nil, domain.Guard(op, err)
	}
	slog.Info("Expense updated", "expense_id", expenseID, "user_id", id.UserID)
	return refreshed, nil
}

func (s *ExpenseService) Remove(ctx context.Context, credential string, expenseID int64) (*domain.Confirmation, error) {
	const op = "remove expense"

	id, err := s.authorize(ctx, credential)
	if err != nil {
		return nil, domain.Guard(op, err)
	}
	if _, err := s.findOwned(ctx, id.UserID, expenseID); err != nil {
		return nil, domain.Guard(op, err)
	}

	deleted, err := s.store.SoftDeleteOwnedExpense(ctx, id.UserID, expenseID)
	if err != nil {
		slog.Error("Failed to delete expense", "error", err, "expense_id", expenseID, "user_id", id.UserID)
		return nil, domain.Guard(op, err)
	}
	if !deleted {
		// removed concurrently between lookup and delete
		return nil, fmt.Errorf("expense %d: %w", expenseID, domain.ErrExpenseNotFound)
	}

	slog.Info("Expense soft deleted", "expense_id", expenseID, "user_id", id.UserID)
	return &domain.Confirmation{
		Message: fmt.Sprintf("Expense with ID %d has been soft deleted", expenseID),
	}, nil
}

// GenerateReport sums the caller's expenses per category over the
// inclusive [start, end] range. An empty result is ErrNoExpensesInRange.
func (s *ExpenseService) GenerateReport(ctx context.Context, credential string, start, end time.Time) ([]domain.ReportRow, error) {
	const op = "generate report"

	id, err := s.authorize(ctx, credential)
	if err != nil {
		return nil, domain.Guard(op, err)
	}

	report, err := s.store.SumByCategory(ctx, id.UserID, domain.TruncateDate(start), domain.TruncateDate(end))
	if err != nil {
		slog.Error("Failed to generate report", "error", err, "user_id", id.UserID)
		return nil, domain.Guard(op, err)
	}
	if len(report) == 0 {
		return nil, domain.ErrNoExpensesInRange
	}
	return report, nil
}
