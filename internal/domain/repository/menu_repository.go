package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/restroflow/pos-api/internal/domain/entity"
)

// MenuFilterParams narrows item/size listings. Nil fields mean no filter.
type MenuFilterParams struct {
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
}

// MenuRepository defines the interface for menu catalog data access.
// The catalog is read-only at runtime; it is populated by seeding.
type MenuRepository interface {
	ListCategories(ctx context.Context) ([]entity.MenuCategory, error)
	ListItems(ctx context.Context, params *MenuFilterParams) ([]entity.MenuItem, error)
	ListSizes(ctx context.Context, params *MenuFilterParams) ([]entity.MenuItemSize, error)
	GetItem(ctx context.Context, id uuid.UUID) (*entity.MenuItem, error)
	GetSize(ctx context.Context, id uuid.UUID) (*entity.MenuItemSize, error)

	// FullMenu returns the whole catalog tree with subcategories, items and
	// sizes preloaded.
	FullMenu(ctx context.Context) ([]entity.MenuCategory, error)
}
