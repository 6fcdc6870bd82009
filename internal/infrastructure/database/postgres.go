package database

import (
	"fmt"

	"github.com/restroflow/pos-api/internal/config"
	"github.com/restroflow/pos-api/internal/domain/entity"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Map unique violations to gorm.ErrDuplicatedKey so repositories
		// can translate them.
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info().Msg("Connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")

	err := db.AutoMigrate(
		// Staff
		&entity.User{},

		// Menu catalog
		&entity.MenuCategory{},
		&entity.MenuSubcategory{},
		&entity.MenuItem{},
		&entity.MenuItemSize{},

		// Customers
		&entity.Customer{},

		// Billing
		&entity.Bill{},
		&entity.BillItem{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("Database migrations completed")
	return nil
}

// SeedDefaultData seeds the menu catalog and the admin user configured via
// environment variables.
func SeedDefaultData(db *gorm.DB) error {
	if err := seedMenu(db); err != nil {
		return err
	}
	return seedAdminUser(db)
}

type seedSize struct {
	name  string
	price string
}

type seedSubcategory struct {
	name  string
	items []string
	sizes []seedSize
}

var menuFixture = map[string][]seedSubcategory{
	"Pizza": {
		{
			name:  "Classic Pizzas",
			items: []string{"Margherita", "Pepperoni", "Veggie Supreme"},
			sizes: []seedSize{{"Small", "7.50"}, {"Medium", "10.00"}, {"Large", "13.50"}},
		},
		{
			name:  "Specialty Pizzas",
			items: []string{"BBQ Chicken", "Four Cheese"},
			sizes: []seedSize{{"Medium", "12.00"}, {"Large", "15.50"}},
		},
	},
	"Drinks": {
		{
			name:  "Soft Drinks",
			items: []string{"Cola", "Lemonade", "Sparkling Water"},
			sizes: []seedSize{{"Regular", "1.50"}, {"Large", "2.25"}},
		},
	},
	"Sides": {
		{
			name:  "Appetizers",
			items: []string{"Garlic Bread", "Chicken Wings", "Mozzarella Sticks"},
			sizes: []seedSize{{"Regular", "4.50"}, {"Family", "8.00"}},
		},
	},
}

func seedMenu(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.MenuCategory{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Info().Msg("Seeding menu catalog...")

	for categoryName, subcategories := range menuFixture {
		category := entity.MenuCategory{Name: categoryName}
		if err := db.Create(&category).Error; err != nil {
			return fmt.Errorf("failed to seed category %s: %w", categoryName, err)
		}

		for _, sub := range subcategories {
			subcategory := entity.MenuSubcategory{Name: sub.name, CategoryID: category.ID}
			if err := db.Create(&subcategory).Error; err != nil {
				return fmt.Errorf("failed to seed subcategory %s: %w", sub.name, err)
			}

			for _, itemName := range sub.items {
				item := entity.MenuItem{Name: itemName, SubcategoryID: subcategory.ID, IsAvailable: true}
				if err := db.Create(&item).Error; err != nil {
					return fmt.Errorf("failed to seed item %s: %w", itemName, err)
				}
			}

			for _, s := range sub.sizes {
				size := entity.MenuItemSize{
					Name:          s.name,
					Price:         decimal.RequireFromString(s.price),
					SubcategoryID: subcategory.ID,
				}
				if err := db.Create(&size).Error; err != nil {
					return fmt.Errorf("failed to seed size %s/%s: %w", sub.name, s.name, err)
				}
			}
		}
	}

	log.Info().Msg("Menu catalog seeded")
	return nil
}

func seedAdminUser(db *gorm.DB) error {
	adminEmail := viper.GetString("ADMIN_EMAIL")
	adminPassword := viper.GetString("ADMIN_PASSWORD")
	adminName := viper.GetString("ADMIN_NAME")

	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	var existing entity.User
	if err := db.Where("email = ?", adminEmail).First(&existing).Error; err == nil {
		log.Info().Str("email", adminEmail).Msg("Admin user already exists")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	if adminName == "" {
		adminName = "Admin"
	}

	admin := entity.User{
		Name:     adminName,
		Email:    adminEmail,
		Password: string(hashedPassword),
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Info().Str("email", adminEmail).Msg("Admin user created")
	return nil
}
