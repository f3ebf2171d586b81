// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used on the wire and in filters.
const DateLayout = "2006-01-02"

// Identity is the verified owner of a request.
type Identity struct {
	UserID int64
}

type Account struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	DeletedAt    *time.Time `json:"deletedAt"`
}

type Category struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt"`
}

// Expense is a single spending record. UserID is set from the resolved
// identity when the expense is created and never changes afterwards.
type Expense struct {
	ID         int64
	Title      string
	Amount     decimal.Decimal
	Date       time.Time
	UserID     int64
	CategoryID int64
	Category   *Category
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// NewExpense is the client-supplied part of an expense.
type NewExpense struct {
	Title      string
	Amount     decimal.Decimal
	Date       time.Time
	CategoryID int64
}

// ExpensePatch carries a partial update; nil fields keep their value.
type ExpensePatch struct {
	Title      *string
	Amount     *decimal.Decimal
	Date       *time.Time
	CategoryID *int64
}

// Apply copies the present fields onto e.
func (p ExpensePatch) Apply(e *Expense) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.CategoryID != nil {
		e.CategoryID = *p.CategoryID
	}
}

// ExpenseFilter narrows a listing. StartDate and EndDate are inclusive.
type ExpenseFilter struct {
	Page       int
	Limit      int
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID *int64
}

// Offset returns the number of rows to skip for the filter's page.
func (f ExpenseFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPage builds a page, computing TotalPages as ceil(total/limit).
func NewPage[T any](data []T, total, page, limit int) *Page[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &Page[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// ReportRow is the sum of one category's expenses over a date range.
type ReportRow struct {
	CategoryID   int64           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

type Confirmation struct {
	Message string `json:"message"`
}

// TruncateDate drops the time of day, keeping the calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
