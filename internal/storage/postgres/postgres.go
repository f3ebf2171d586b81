// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"errors"
	"expense-ledger/internal/domain"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type Storage struct {
	db *pgxpool.Pool
}

func NewStorage(db *pgxpool.Pool) *Storage {
	return &Storage{db: db}
}

// Connect opens and pings a pool sized for maxConns.
func Connect(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = 0
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// === AccountStorage ===

const accountColumns = `id, email, password_hash, created_at, updated_at, deleted_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Storage) CreateAccount(ctx context.Context, email, passwordHash string) (*domain.Account, error) {
	acc, err := scanAccount(s.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING `+accountColumns, email, passwordHash))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return acc, nil
}

func (s *Storage) FindAccountByID(ctx context.Context, id int64) (*domain.Account, error) {
	acc, err := scanAccount(s.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return acc, nil
}

func (s *Storage) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	acc, err := scanAccount(s.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM users WHERE lower(email) = lower($1) AND deleted_at IS NULL`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return acc, nil
}

// ListAccounts pages live accounts in creation order.
func (s *Storage) ListAccounts(ctx context.Context, limit, offset int) ([]domain.Account, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+accountColumns+` FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, *acc)
	}
	return accounts, total, rows.Err()
}

func (s *Storage) UpdateAccountPassword(ctx context.Context, id int64, passwordHash string) (*domain.Account, error) {
	acc, err := scanAccount(s.db.QueryRow(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL
		RETURNING `+accountColumns, passwordHash, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update account password: %w", err)
	}
	return acc, nil
}

// SoftDeleteAccount marks an account deleted; its expenses stay in place.
func (s *Storage) SoftDeleteAccount(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.Exec(ctx, `
		UPDATE users SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return false, fmt.Errorf("soft delete account: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// === CategoryStorage ===

const categoryColumns = `id, name, created_at, updated_at, deleted_at`

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Storage) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	cat, err := scanCategory(s.db.QueryRow(ctx, `
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING `+categoryColumns, name))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrCategoryExists
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return cat, nil
}

func (s *Storage) FindCategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	cat, err := scanCategory(s.db.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return cat, nil
}

func (s *Storage) FindCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	cat, err := scanCategory(s.db.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name = $1 AND deleted_at IS NULL`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return cat, nil
}

func (s *Storage) ListCategories(ctx context.Context, limit, offset int) ([]domain.Category, int, error) {
	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM categories WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE deleted_at IS NULL
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *cat)
	}
	return categories, total, rows.Err()
}

func (s *Storage) RenameCategory(ctx context.Context, id int64, name string) (*domain.Category, error) {
	cat, err := scanCategory(s.db.QueryRow(ctx, `
		UPDATE categories SET name = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+categoryColumns, id, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrCategoryExists
		}
		return nil, fmt.Errorf("rename category: %w", err)
	}
	return cat, nil
}

func (s *Storage) SoftDeleteCategory(ctx context.Context, id int64) (bool, error) {
	result, err := s.db.Exec(ctx,
		`UPDATE categories SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return false, fmt.Errorf("soft delete category: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// === ExpenseStorage ===

const expenseSelect = `
	SELECT
		e.id, e.title, e.amount, e.date, e.user_id, e.category_id,
		e.created_at, e.updated_at,
		c.id, c.name, c.created_at, c.updated_at, c.deleted_at
	FROM expenses e
	JOIN categories c ON c.id = e.category_id`

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var e domain.Expense
	var c domain.Category
	err := row.Scan(
		&e.ID, &e.Title, &e.Amount, &e.Date, &e.UserID, &e.CategoryID,
		&e.CreatedAt, &e.UpdatedAt,
		&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Category = &c
	return &e, nil
}

func (s *Storage) InsertExpense(ctx context.Context, e *domain.Expense) error {
	e.Date = domain.TruncateDate(e.Date)
	err := s.db.QueryRow(ctx, `
		INSERT INTO expenses (title, amount, date, user_id, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, e.Title, e.Amount, e.Date, e.UserID, e.CategoryID).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	cat, err := scanCategory(s.db.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, e.CategoryID))
	if err != nil {
		return fmt.Errorf("load expense category: %w", err)
	}
	e.Category = cat

	slog.Debug("Expense inserted", "expense_id", e.ID, "user_id", e.UserID)
	return nil
}

func (s *Storage) FindOwnedExpense(ctx context.Context, ownerID, id int64) (*domain.Expense, error) {
	e, err := scanExpense(s.db.QueryRow(ctx, expenseSelect+`
		WHERE e.id = $1 AND e.user_id = $2 AND e.deleted_at IS NULL
	`, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find expense: %w", err)
	}
	return e, nil
}

// expenseWhere renders the owner scope plus the optional filters.
func expenseWhere(ownerID int64, f domain.ExpenseFilter) (string, []any) {
	conds := []string{"e.user_id = $1", "e.deleted_at IS NULL"}
	args := []any{ownerID}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	switch {
	case f.StartDate != nil && f.EndDate != nil:
		add("e.date >= $%d", *f.StartDate)
		add("e.date <= $%d", *f.EndDate)
	case f.StartDate != nil:
		add("e.date >= $%d", *f.StartDate)
	case f.EndDate != nil:
		add("e.date <= $%d", *f.EndDate)
	}
	if f.CategoryID != nil {
		add("e.category_id = $%d", *f.CategoryID)
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Storage) ListOwnedExpenses(ctx context.Context, ownerID int64, f domain.ExpenseFilter) ([]domain.Expense, int, error) {
	where, args := expenseWhere(ownerID, f)

	var total int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM expenses e`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	query := expenseSelect + where +
		fmt.Sprintf(" ORDER BY e.date ASC, e.id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := s.db.Query(ctx, query, append(args, f.Limit, f.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}
	return expenses, total, nil
}

// UpdateOwnedExpense writes the mutable fields. user_id is part of the
// WHERE clause only, so ownership can never change here.
// It reports false when no live row of that owner matched.
func (s *Storage) UpdateOwnedExpense(ctx context.Context, e *domain.Expense) (bool, error) {
	result, err := s.db.Exec(ctx, `
		UPDATE expenses
		SET title = $1, amount = $2, date = $3, category_id = $4, updated_at = now()
		WHERE id = $5 AND user_id = $6 AND deleted_at IS NULL
	`, e.Title, e.Amount, domain.TruncateDate(e.Date), e.CategoryID, e.ID, e.UserID)
	if err != nil {
		return false, fmt.Errorf("update expense: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func (s *Storage) SoftDeleteOwnedExpense(ctx context.Context, ownerID, id int64) (bool, error) {
	result, err := s.db.Exec(ctx, `
		UPDATE expenses SET deleted_at = now()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("soft delete expense: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func (s *Storage) SumByCategory(ctx context.Context, ownerID int64, start, end time.Time) ([]domain.ReportRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.name, SUM(e.amount)
		FROM expenses e
		JOIN categories c ON c.id = e.category_id
		WHERE e.user_id = $1
		AND e.deleted_at IS NULL
		AND e.date BETWEEN $2 AND $3
		GROUP BY c.id, c.name
		ORDER BY c.id
	`, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("sum expenses by category: %w", err)
	}
	defer rows.Close()

	report := []domain.ReportRow{}
	for rows.Next() {
		var r domain.ReportRow
		if err := rows.Scan(&r.CategoryID, &r.CategoryName, &r.TotalAmount); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		report = append(report, r)
	}
	return report, rows.Err()
}
