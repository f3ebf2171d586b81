// internal/storage/storage.go
package storage

import (
	"context"
	"expense-ledger/internal/domain"
	"time"
)

// Lookups return nil, nil when the record does not exist or is soft-deleted.

type AccountStorage interface {
	CreateAccount(ctx context.Context, email, passwordHash string) (*domain.Account, error)
	FindAccountByID(ctx context.Context, id int64) (*domain.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, int, error)
	UpdateAccountPassword(ctx context.Context, id int64, passwordHash string) (*domain.Account, error)
	SoftDeleteAccount(ctx context.Context, id int64) (bool, error)
}

type CategoryStorage interface {
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	FindCategoryByID(ctx context.Context, id int64) (*domain.Category, error)
	FindCategoryByName(ctx context.Context, name string) (*domain.Category, error)
	ListCategories(ctx context.Context, limit, offset int) ([]domain.Category, int, error)
	RenameCategory(ctx context.Context, id int64, name string) (*domain.Category, error)
	SoftDeleteCategory(ctx context.Context, id int64) (bool, error)
}

// ExpenseStorage methods take the owner id explicitly; none of them can
// reach rows of another owner.
type ExpenseStorage interface {
	InsertExpense(ctx context.Context, e *domain.Expense) error
	FindOwnedExpense(ctx context.Context, ownerID, id int64) (*domain.Expense, error)
	ListOwnedExpenses(ctx context.Context, ownerID int64, f domain.ExpenseFilter) ([]domain.Expense, int, error)
	UpdateOwnedExpense(ctx context.Context, e *domain.Expense) (bool, error)
	SoftDeleteOwnedExpense(ctx context.Context, ownerID, id int64) (bool, error)
	SumByCategory(ctx context.Context, ownerID int64, start, end time.Time) ([]domain.ReportRow, error)
}

// Storage is what a backend has to provide to run the service.
type Storage interface {
	AccountStorage
	CategoryStorage
	ExpenseStorage
}
