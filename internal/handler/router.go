package handler

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/flicky/green-store/internal/middleware"
)

type Handlers struct {
	Auth           *AuthHandler
	Product        *ProductHandler
	Cart           *CartHandler
	Order          *OrderHandler
	Sustainability *SustainabilityHandler
	Health         *HealthHandler
}

type RouterConfig struct {
	JWTSecret    string
	AllowOrigins []string
	Log          *slog.Logger
}

// NewRouter mounts every route under /api plus the health checks at the root.
func NewRouter(h Handlers, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Log != nil {
		router.Use(middleware.RequestLogger(cfg.Log))
	}

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}))

	if h.Health != nil {
		router.GET("/healthz", h.Health.Healthz)
		router.GET("/readyz", h.Health.Readyz)
	}

	authed := middleware.AuthMiddleware(cfg.JWTSecret)
	admin := middleware.AdminOnly()

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/me", authed, h.Auth.Me)

		products := api.Group("/products")
		products.GET("", h.Product.List)
		products.GET("/export", authed, admin, h.Product.Export)
		products.GET("/:id", h.Product.GetByID)
		products.POST("", authed, admin, h.Product.Create)
		products.PUT("/:id", authed, admin, h.Product.Update)
		products.DELETE("/:id", authed, admin, h.Product.Delete)

		cart := api.Group("/cart", authed)
		cart.GET("", h.Cart.GetCart)
		cart.POST("", h.Cart.AddItem)
		cart.PUT("/:id", h.Cart.UpdateItem)
		cart.DELETE("/:id", h.Cart.DeleteItem)

		orders := api.Group("/orders", authed)
		orders.POST("", h.Order.CreateOrder)
		orders.GET("", h.Order.ListOrders)
		orders.GET("/:id", h.Order.GetOrder)
		orders.DELETE("/:id", h.Order.CancelOrder)
		orders.POST("/:id/complete", admin, h.Order.CompleteOrder)

		green := api.Group("/sustainability")
		green.GET("/leaderboard", h.Sustainability.Leaderboard)
		green.GET("/dashboard", authed, h.Sustainability.Dashboard)
		green.GET("/preferences", authed, h.Sustainability.GetPreferences)
		green.PUT("/preferences", authed, h.Sustainability.UpdatePreferences)
		green.GET("/cart-impact", authed, h.Sustainability.CartImpact)
	}

	return router
}
