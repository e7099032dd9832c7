package http

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quillstore/quill/internal/infrastructure/config"
	"github.com/quillstore/quill/internal/interfaces/http/middleware"
	"github.com/quillstore/quill/internal/shared/logger"
)

// Router owns the HTTP surface: it wires the container and mounts all
// routes on the Gin engine.
type Router struct {
	container *Container
}

// NewRouter creates a new HTTP router with all dependencies.
func NewRouter(db *gorm.DB, cfg *config.Config, log logger.Interface) *Router {
	return &Router{
		container: NewContainer(db, cfg, log),
	}
}

// SetupRoutes configures all HTTP routes.
func (r *Router) SetupRoutes() {
	c := r.container
	engine := c.engine
	cfg := c.cfg

	engine.Use(middleware.Logger(c.log))
	engine.Use(middleware.Recovery(c.log))
	engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	engine.Use(middleware.CSRF())

	engine.GET("/health", c.healthHandler.HealthCheck)

	// Fulfillment webhook. Authenticated by HMAC signature, not by
	// session, so it sits outside the auth middleware.
	webhooks := engine.Group("/webhooks")
	{
		webhooks.POST("/lemonsqueezy", c.rateLimiter.Limit(), c.webhookHandler.HandleOrderEvent)
	}

	// Public storefront catalog
	products := engine.Group("/products")
	{
		products.GET("", c.productHandler.ListProducts)
		products.GET("/:slug", c.productHandler.GetProduct)
	}

	// Buyer library, scoped to the session account
	library := engine.Group("/library")
	library.Use(c.authMiddleware.RequireAuth())
	{
		library.GET("", c.libraryHandler.GetMyLibrary)
		library.GET("/products/:sid", c.libraryHandler.CheckOwnership)
	}

	realtime := engine.Group("/realtime")
	realtime.Use(c.authMiddleware.RequireAuth())
	{
		realtime.GET("/library", c.realtimeHandler.StreamLibraryEvents)
	}

	// Admin surface
	adminProducts := engine.Group("/admin/products")
	adminProducts.Use(c.authMiddleware.RequireAuth(), c.authMiddleware.RequireAdmin())
	{
		adminProducts.POST("", c.adminProductHandler.CreateProduct)
		adminProducts.GET("", c.adminProductHandler.ListProducts)
		adminProducts.GET("/:sid", c.adminProductHandler.GetProduct)
		adminProducts.PATCH("/:sid", c.adminProductHandler.UpdateProduct)
		adminProducts.DELETE("/:sid", c.adminProductHandler.DeleteProduct)
		adminProducts.PATCH("/:sid/status", c.adminProductHandler.UpdateProductStatus)
		adminProducts.PUT("/:sid/provider", c.adminProductHandler.LinkProvider)
	}

	adminEntitlements := engine.Group("/admin/entitlements")
	adminEntitlements.Use(c.authMiddleware.RequireAuth(), c.authMiddleware.RequireAdmin())
	{
		adminEntitlements.POST("", c.adminEntHandler.GrantEntitlement)
		adminEntitlements.POST("/:sid/revoke", c.adminEntHandler.RevokeEntitlement)
		adminEntitlements.POST("/:sid/restore", c.adminEntHandler.RestoreEntitlement)
	}

	adminAccounts := engine.Group("/admin/accounts")
	adminAccounts.Use(c.authMiddleware.RequireAuth(), c.authMiddleware.RequireAdmin())
	{
		adminAccounts.GET("/:sid/entitlements", c.adminEntHandler.ListAccountEntitlements)
	}
}

// GetEngine returns the underlying Gin engine.
func (r *Router) GetEngine() *gin.Engine {
	return r.container.GetEngine()
}

// Run starts the HTTP server.
func (r *Router) Run(addr string) error {
	return r.container.engine.Run(addr)
}

// Shutdown gracefully shuts down the router.
func (r *Router) Shutdown() {
	r.container.Shutdown()
}
