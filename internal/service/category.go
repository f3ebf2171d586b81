// internal/service/category.go
package service

import (
	"context"
	"expense-ledger/internal/domain"
	"expense-ledger/internal/storage"
	"fmt"
	"log/slog"
	"strings"
)

// CategoryService is the plain CRUD collaborator for categories. Names are
// stored lower-cased.
type CategoryService struct {
	store storage.CategoryStorage
}

func NewCategoryService(store storage.CategoryStorage) *CategoryService {
	return &CategoryService{store: store}
}

func normalizeCategoryName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (s *CategoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	cat, err := s.store.CreateCategory(ctx, normalizeCategoryName(name))
	if err != nil {
		return nil, domain.Guard("create category", err)
	}
	slog.Info("Category created", "category_id", cat.ID, "name", cat.Name)
	return cat, nil
}

func (s *CategoryService) List(ctx context.Context, page, limit int) (*domain.Page[domain.Category], error) {
	page, limit = NormalizePage(page, limit)
	cats, total, err := s.store.ListCategories(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, domain.Guard("list categories", err)
	}
	return domain.NewPage(cats, total, page, limit), nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	cat, err := s.store.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, domain.Guard("get category", err)
	}
	if cat == nil {
		return nil, fmt.Errorf("category %d: %w", id, domain.ErrCategoryNotFound)
	}
	return cat, nil
}

// Rename is a no-op when the normalized name is unchanged.
func (s *CategoryService) Rename(ctx context.Context, id int64, name string) (*domain.Category, error) {
	cat, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	name = normalizeCategoryName(name)
	if name == cat.Name {
		return cat, nil
	}

	renamed, err := s.store.RenameCategory(ctx, id, name)
	if err != nil {
		return nil, domain.Guard("rename category", err)
	}
	if renamed == nil {
		return nil, fmt.Errorf("category %d: %w", id, domain.ErrCategoryNotFound)
	}
	return renamed, nil
}

func (s *CategoryService) Remove(ctx context.Context, id int64) (*domain.Confirmation, error) {
	deleted, err := s.store.SoftDeleteCategory(ctx, id)
	if err != nil {
		return nil, domain.Guard("remove category", err)
	}
	if !deleted {
		return nil, fmt.Errorf("category %d: %w", id, domain.ErrCategoryNotFound)
	}
	slog.Info("Category soft deleted", "category_id", id)
	return &domain.Confirmation{Message: fmt.Sprintf("Category with ID %d has been soft deleted", id)}, nil
}
