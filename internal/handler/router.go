package handler

import (
	"net/http"

	"pantry-be/internal/auth"
	"pantry-be/internal/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter mounts every route under /api. Request ids, access logs and
// rate limits wrap the engine at the net/http level.
func NewRouter(h *Handlers, tokens *auth.TokenManager, corsOrigin string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.CORS(corsOrigin))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Public
	public := api.Group("")
	public.Use(middleware.OptionalAuthenticate(tokens))
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)
		public.POST("/auth/logout", h.Logout)

		public.GET("/products", h.ListProducts)
		public.GET("/products/:id", h.GetProduct)
		public.GET("/products/slug/:slug", h.GetProductBySlug)
		public.GET("/categories", h.ListCategories)
		public.GET("/uoms", h.ListUOMs)
	}

	// Login required
	authed := api.Group("")
	authed.Use(middleware.Authenticate(tokens))
	{
		authed.GET("/auth/me", h.Me)

		authed.POST("/orders", h.CreateOrder)
		authed.GET("/orders", h.ListOrders)
		authed.GET("/orders/:id", h.GetOrder)

		authed.POST("/coupons/validate", h.ValidateCoupon)

		authed.POST("/payments/intent", h.CreatePaymentIntent)
		authed.POST("/payments/verify", h.VerifyPayment)
	}

	// Back office
	admin := api.Group("")
	admin.Use(middleware.Authenticate(tokens), middleware.RequireAdmin())
	{
		admin.POST("/products", h.CreateProduct)
		admin.PUT("/products/:id", h.UpdateProduct)
		admin.DELETE("/products/:id", h.DeleteProduct)

		admin.POST("/categories", h.CreateCategory)
		admin.DELETE("/categories/:id", h.DeleteCategory)
		admin.POST("/uoms", h.CreateUOM)

		admin.GET("/inventory", h.ListStockTransactions)
		admin.POST("/inventory", h.AdjustStock)
		admin.GET("/inventory/low-stock", h.LowStock)

		admin.PUT("/orders/:id/status", h.UpdateOrderStatus)
		admin.POST("/orders/status/bulk", h.BulkUpdateOrderStatus)

		admin.POST("/pos/quote", h.QuotePOS)
		admin.POST("/pos/checkout", h.CheckoutPOS)
		admin.GET("/pos/receipt/:id", h.Receipt)

		admin.GET("/coupons", h.ListCoupons)
		admin.POST("/coupons", h.CreateCoupon)
		admin.DELETE("/coupons/:id", h.DeleteCoupon)

		admin.GET("/analytics/summary", h.AnalyticsSummary)
	}

	return router
}
