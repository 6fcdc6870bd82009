package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MenuCategory is a top-level menu grouping (e.g. Drinks, Mains).
type MenuCategory struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name string    `gorm:"size:100;unique;not null" json:"name"`

	Subcategories []MenuSubcategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"subcategories,omitempty"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *MenuCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the MenuCategory model
func (MenuCategory) TableName() string {
	return "menu_categories"
}

// MenuSubcategory groups items under a category and carries the size/price
// options shared by its items.
type MenuSubcategory struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name       string    `gorm:"size:100;not null;uniqueIndex:uniq_subcategory_name" json:"name"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uniq_subcategory_name" json:"category_id"`

	Category  *MenuCategory  `gorm:"foreignKey:CategoryID" json:"-"`
	MenuItems []MenuItem     `gorm:"foreignKey:SubcategoryID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	ItemSizes []MenuItemSize `gorm:"foreignKey:SubcategoryID;constraint:OnDelete:CASCADE" json:"sizes,omitempty"`
}

// BeforeCreate generates a UUID before creating a new subcategory
func (s *MenuSubcategory) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the MenuSubcategory model
func (MenuSubcategory) TableName() string {
	return "menu_subcategories"
}

// MenuItem is a sellable dish or drink.
type MenuItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	SubcategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"subcategory_id"`
	Description   *string   `gorm:"type:text" json:"description,omitempty"`
	IsAvailable   bool      `gorm:"not null;default:true" json:"is_available"`

	Subcategory *MenuSubcategory `gorm:"foreignKey:SubcategoryID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new menu item
func (i *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the MenuItem model
func (MenuItem) TableName() string {
	return "menu_items"
}

// MenuItemSize is a price option (Small, Medium, Large...) for the items of
// a subcategory. It is the source a bill line's unit price is resolved from.
type MenuItemSize struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name          string          `gorm:"size:15;not null;uniqueIndex:uniq_size_name" json:"name"`
	Price         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	SubcategoryID uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:uniq_size_name" json:"subcategory_id"`

	Subcategory *MenuSubcategory `gorm:"foreignKey:SubcategoryID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new size
func (s *MenuItemSize) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the MenuItemSize model
func (MenuItemSize) TableName() string {
	return "menu_item_sizes"
}
