package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/restroflow/pos-api/internal/domain/entity"
	"github.com/restroflow/pos-api/internal/domain/repository"
	"github.com/restroflow/pos-api/pkg/apperror"
)

// MenuService exposes the read-only menu catalog
type MenuService struct {
	menuRepo repository.MenuRepository
}

// NewMenuService creates a new menu service
func NewMenuService(menuRepo repository.MenuRepository) *MenuService {
	return &MenuService{menuRepo: menuRepo}
}

// ListCategories lists all menu categories
func (s *MenuService) ListCategories(ctx context.Context) ([]entity.MenuCategory, error) {
	return s.menuRepo.ListCategories(ctx)
}

// ListItems lists menu items, optionally filtered by category or subcategory
func (s *MenuService) ListItems(ctx context.Context, params *repository.MenuFilterParams) ([]entity.MenuItem, error) {
	return s.menuRepo.ListItems(ctx, params)
}

// ListSizes lists menu item sizes, optionally filtered by category or subcategory
func (s *MenuService) ListSizes(ctx context.Context, params *repository.MenuFilterParams) ([]entity.MenuItemSize, error) {
	return s.menuRepo.ListSizes(ctx, params)
}

// GetItem retrieves a menu item by ID
func (s *MenuService) GetItem(ctx context.Context, id uuid.UUID) (*entity.MenuItem, error) {
	item, err := s.menuRepo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Menu item")
	}
	return item, nil
}

// FullMenu returns the whole catalog tree for POS clients that render the
// menu in one request.
func (s *MenuService) FullMenu(ctx context.Context) ([]entity.MenuCategory, error) {
	return s.menuRepo.FullMenu(ctx)
}
