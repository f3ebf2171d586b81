// Package memory is an in-process storage backend. It mirrors the postgres
// queries closely enough to run the service in tests and local sessions.
package memory

import (
	"context"
	"expense-ledger/internal/domain"
	"sort"
	"strings"
	"sync"
	"time"
)

type Storage struct {
	mu         sync.RWMutex
	now        func() time.Time
	accounts   map[int64]*domain.Account
	categories map[int64]*domain.Category
	expenses   map[int64]*domain.Expense
	nextID     struct{ account, category, expense int64 }
}

func NewStorage() *Storage {
	return &Storage{
		now:        time.Now,
		accounts:   make(map[int64]*domain.Account),
		categories: make(map[int64]*domain.Category),
		expenses:   make(map[int64]*domain.Expense),
	}
}

// === AccountStorage ===

func (s *Storage) CreateAccount(_ context.Context, email, passwordHash string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return nil, domain.ErrEmailTaken
		}
	}
	s.nextID.account++
	now := s.now()
	acc := &domain.Account{
		ID:           s.nextID.account,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.accounts[acc.ID] = acc
	cp := *acc
	return &cp, nil
}

func (s *Storage) FindAccountByID(_ context.Context, id int64) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok || a.DeletedAt != nil {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *Storage) FindAccountByEmail(_ context.Context, email string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.DeletedAt == nil && strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// SoftDeleteAccount marks an account deleted; its expenses stay in place.
func (s *Storage) SoftDeleteAccount(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok || a.DeletedAt != nil {
		return false, nil
	}
	now := s.now()
	a.DeletedAt = &now
	return true, nil
}

func (s *Storage) ListAccounts(_ context.Context, limit, offset int) ([]domain.Account, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var live []domain.Account
	for _, a := range s.accounts {
		if a.DeletedAt == nil {
			live = append(live, *a)
		}
	}
	sort.Slice(live, func(i, j int) bool { return live[i].ID < live[j].ID })
	return window(live, limit, offset), len(live), nil
}

func (s *Storage) UpdateAccountPassword(_ context.Context, id int64, passwordHash string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok || a.DeletedAt != nil {
		return nil, nil
	}
	a.PasswordHash = passwordHash
	a.UpdatedAt = s.now()
	cp := *a
	return &cp, nil
}

// === CategoryStorage ===

func (s *Storage) CreateCategory(_ context.Context, name string) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.categoryByNameLocked(name) != nil {
		return nil, domain.ErrCategoryExists
	}
	s.nextID.category++
	now := s.now()
	cat := &domain.Category{ID: s.nextID.category, Name: name, CreatedAt: now, UpdatedAt: now}
	s.categories[cat.ID] = cat
	cp := *cat
	return &cp, nil
}

func (s *Storage) FindCategoryByID(_ context.Context, id int64) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok || c.DeletedAt != nil {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *Storage) FindCategoryByName(_ context.Context, name string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c := s.categoryByNameLocked(name); c != nil && c.DeletedAt == nil {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

// categoryByNameLocked also sees soft-deleted rows, like the unique index.
func (s *Storage) categoryByNameLocked(name string) *domain.Category {
	for _, c := range s.categories {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (s *Storage) ListCategories(_ context.Context, limit, offset int) ([]domain.Category, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	live := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		if c.DeletedAt == nil {
			live = append(live, *c)
		}
	}
	sort.Slice(live, func(i, j int) bool {
		if !live[i].CreatedAt.Equal(live[j].CreatedAt) {
			return live[i].CreatedAt.Before(live[j].CreatedAt)
		}
		return live[i].ID < live[j].ID
	})
	return window(live, limit, offset), len(live), nil
}

func (s *Storage) RenameCategory(_ context.Context, id int64, name string) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok || c.DeletedAt != nil {
		return nil, nil
	}
	if other := s.categoryByNameLocked(name); other != nil && other.ID != id {
		return nil, domain.ErrCategoryExists
	}
	c.Name = name
	c.UpdatedAt = s.now()
	cp := *c
	return &cp, nil
}

func (s *Storage) SoftDeleteCategory(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok || c.DeletedAt != nil {
		return false, nil
	}
	now := s.now()
	c.DeletedAt = &now
	return true, nil
}

// === ExpenseStorage ===

func (s *Storage) InsertExpense(_ context.Context, e *domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[e.CategoryID]; !ok {
		return errForeignKey
	}
	s.nextID.expense++
	now := s.now()
	e.ID = s.nextID.expense
	e.Date = domain.TruncateDate(e.Date)
	e.CreatedAt, e.UpdatedAt, e.DeletedAt = now, now, nil

	stored := *e
	stored.Category = nil
	s.expenses[e.ID] = &stored
	e.Category = s.categoryCopyLocked(e.CategoryID)
	return nil
}

func (s *Storage) FindOwnedExpense(_ context.Context, ownerID, id int64) (*domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[id]
	if !ok || e.DeletedAt != nil || e.UserID != ownerID {
		return nil, nil
	}
	cp := *e
	cp.Category = s.categoryCopyLocked(e.CategoryID)
	return &cp, nil
}

func (s *Storage) ListOwnedExpenses(_ context.Context, ownerID int64, f domain.ExpenseFilter) ([]domain.Expense, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.Expense
	for _, e := range s.expenses {
		if e.DeletedAt != nil || e.UserID != ownerID {
			continue
		}
		if f.StartDate != nil && e.Date.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && e.Date.After(*f.EndDate) {
			continue
		}
		if f.CategoryID != nil && e.CategoryID != *f.CategoryID {
			continue
		}
		cp := *e
		cp.Category = s.categoryCopyLocked(e.CategoryID)
		matched = append(matched, cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[i].ID < matched[j].ID
	})
	return window(matched, f.Limit, f.Offset()), len(matched), nil
}

func (s *Storage) UpdateOwnedExpense(_ context.Context, e *domain.Expense) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.expenses[e.ID]
	if !ok || cur.DeletedAt != nil || cur.UserID != e.UserID {
		return false, nil
	}
	if _, ok := s.categories[e.CategoryID]; !ok {
		return false, errForeignKey
	}
	cur.Title = e.Title
	cur.Amount = e.Amount
	cur.Date = domain.TruncateDate(e.Date)
	cur.CategoryID = e.CategoryID
	cur.UpdatedAt = s.now()
	return true, nil
}

func (s *Storage) SoftDeleteOwnedExpense(_ context.Context, ownerID, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[id]
	if !ok || e.DeletedAt != nil || e.UserID != ownerID {
		return false, nil
	}
	now := s.now()
	e.DeletedAt = &now
	return true, nil
}

func (s *Storage) SumByCategory(_ context.Context, ownerID int64, start, end time.Time) ([]domain.ReportRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make(map[int64]*domain.ReportRow)
	for _, e := range s.expenses {
		if e.DeletedAt != nil || e.UserID != ownerID {
			continue
		}
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		row, ok := rows[e.CategoryID]
		if !ok {
			row = &domain.ReportRow{CategoryID: e.CategoryID}
			if c, ok := s.categories[e.CategoryID]; ok {
				row.CategoryName = c.Name
			}
			rows[e.CategoryID] = row
		}
		row.TotalAmount = row.TotalAmount.Add(e.Amount)
	}

	report := make([]domain.ReportRow, 0, len(rows))
	for _, r := range rows {
		report = append(report, *r)
	}
	sort.Slice(report, func(i, j int) bool { return report[i].CategoryID < report[j].CategoryID })
	return report, nil
}

func (s *Storage) categoryCopyLocked(id int64) *domain.Category {
	c, ok := s.categories[id]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

func window[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
