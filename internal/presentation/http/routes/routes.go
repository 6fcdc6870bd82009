package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/restroflow/pos-api/internal/config"
	"github.com/restroflow/pos-api/internal/presentation/http/handler"
	"github.com/restroflow/pos-api/internal/presentation/http/middleware"
	"github.com/restroflow/pos-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth     *handler.AuthHandler
	Menu     *handler.MenuHandler
	Customer *handler.CustomerHandler
	Bill     *handler.BillHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager *utils.JWTManager
	Cfg        *config.Config
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		rateLimiter := middleware.NewIPRateLimiter(middleware.RateLimiterConfig{
			Requests: deps.Cfg.RateLimit.Requests,
			Duration: deps.Cfg.RateLimit.Duration,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h)
	}

	return router
}

func registerProtectedRoutes(g *gin.RouterGroup, h *Handlers) {
	g.GET("/profile", h.Auth.Profile)

	menu := g.Group("/menu")
	{
		menu.GET("", h.Menu.FullMenu)
		menu.GET("/categories", h.Menu.ListCategories)
		menu.GET("/items", h.Menu.ListItems)
		menu.GET("/sizes", h.Menu.ListSizes)
	}

	customers := g.Group("/customers")
	{
		customers.POST("", h.Customer.Create)
		customers.GET("", h.Customer.List)
		customers.GET("/by-phone", h.Customer.GetByPhone)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
	}

	bills := g.Group("/bills")
	{
		bills.POST("", h.Bill.Create)
		bills.GET("", h.Bill.List)
		bills.GET("/:id", h.Bill.Get)
		bills.PUT("/:id", h.Bill.Update)
		bills.POST("/:id/cancel", h.Bill.Cancel)
		bills.POST("/:id/tip", h.Bill.SetTip)
		bills.POST("/:id/pay", h.Bill.MarkPaid)
		bills.POST("/:id/items", h.Bill.AddItem)
	}

	billItems := g.Group("/bill-items")
	{
		billItems.PUT("/:id", h.Bill.UpdateItem)
		billItems.DELETE("/:id", h.Bill.RemoveItem)
	}
}
