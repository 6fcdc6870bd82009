package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/restroflow/pos-api/internal/application/service"
	"github.com/restroflow/pos-api/internal/config"
	"github.com/restroflow/pos-api/internal/domain/entity"
	"github.com/restroflow/pos-api/internal/infrastructure/database"
	"github.com/restroflow/pos-api/internal/infrastructure/repository"
	"github.com/restroflow/pos-api/internal/presentation/http/handler"
	"github.com/restroflow/pos-api/internal/presentation/http/routes"
	"github.com/restroflow/pos-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	utils.InitLogger(cfg.App.Env)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed the menu catalog and admin user
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	billRepo := repository.NewBillRepository(db)
	billItemRepo := repository.NewBillItemRepository(db)

	// Initialize services
	rates := entity.DefaultTaxRatePolicy(cfg.Billing.CashTaxRate, cfg.Billing.DefaultTaxRate)
	recalculator := service.NewRecalculator(billRepo, rates)

	authService := service.NewAuthService(userRepo, jwtManager)
	menuService := service.NewMenuService(menuRepo)
	customerService := service.NewCustomerService(customerRepo)
	billingService := service.NewBillingService(
		billRepo,
		billItemRepo,
		menuRepo,
		customerRepo,
		recalculator,
		rates,
		cfg.Billing.AllowCancelledEdits,
	)

	// Initialize handlers
	h := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Menu:     handler.NewMenuHandler(menuService),
		Customer: handler.NewCustomerHandler(customerService),
		Bill:     handler.NewBillHandler(billingService),
	}

	// Setup routes and start the server
	router := routes.Setup(h, &routes.Deps{
		JWTManager: jwtManager,
		Cfg:        cfg,
	})

	log.Printf("Starting %s on port %s", cfg.App.Name, cfg.App.Port)
	if err := router.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
