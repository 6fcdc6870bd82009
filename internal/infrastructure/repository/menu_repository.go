package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/restroflow/pos-api/internal/domain/entity"
	domainRepo "github.com/restroflow/pos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type menuRepository struct {
	db *gorm.DB
}

// NewMenuRepository creates a new menu repository
func NewMenuRepository(db *gorm.DB) domainRepo.MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) ListCategories(ctx context.Context) ([]entity.MenuCategory, error) {
	var categories []entity.MenuCategory
	err := r.db.WithContext(ctx).
		Preload("Subcategories").
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *menuRepository) ListItems(ctx context.Context, params *domainRepo.MenuFilterParams) ([]entity.MenuItem, error) {
	var items []entity.MenuItem

	query := r.db.WithContext(ctx).Model(&entity.MenuItem{})
	query = applyMenuFilters(query, "menu_items", params)

	err := query.Order("menu_items.name ASC").Find(&items).Error
	return items, err
}

func (r *menuRepository) ListSizes(ctx context.Context, params *domainRepo.MenuFilterParams) ([]entity.MenuItemSize, error) {
	var sizes []entity.MenuItemSize

	query := r.db.WithContext(ctx).Model(&entity.MenuItemSize{})
	query = applyMenuFilters(query, "menu_item_sizes", params)

	err := query.Order("menu_item_sizes.name ASC").Find(&sizes).Error
	return sizes, err
}

// applyMenuFilters narrows an item or size query by subcategory, or by
// category via a join on menu_subcategories.
func applyMenuFilters(query *gorm.DB, table string, params *domainRepo.MenuFilterParams) *gorm.DB {
	if params == nil {
		return query
	}
	if params.SubcategoryID != nil {
		query = query.Where(table+".subcategory_id = ?", *params.SubcategoryID)
	}
	if params.CategoryID != nil {
		query = query.
			Joins("JOIN menu_subcategories ON menu_subcategories.id = "+table+".subcategory_id").
			Where("menu_subcategories.category_id = ?", *params.CategoryID)
	}
	return query
}

func (r *menuRepository) GetItem(ctx context.Context, id uuid.UUID) (*entity.MenuItem, error) {
	var item entity.MenuItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

func (r *menuRepository) GetSize(ctx context.Context, id uuid.UUID) (*entity.MenuItemSize, error) {
	var size entity.MenuItemSize
	err := r.db.WithContext(ctx).First(&size, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &size, err
}

func (r *menuRepository) FullMenu(ctx context.Context) ([]entity.MenuCategory, error) {
	var categories []entity.MenuCategory
	err := r.db.WithContext(ctx).
		Preload("Subcategories").
		Preload("Subcategories.MenuItems").
		Preload("Subcategories.ItemSizes").
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}
