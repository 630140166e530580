package routes

import (
	"github.com/chisomo-dev/eddahpos/config"
	"github.com/chisomo-dev/eddahpos/controllers"
	"github.com/chisomo-dev/eddahpos/middleware"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	secret := cfg.SessionSecret
	if secret == "" {
		secret = "change-me-in-production"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		MaxAge:   60 * 60 * 12, // one shift
		Path:     "/",
		Secure:   cfg.Env == "production",
		HttpOnly: true,
	})
	router.Use(sessions.Sessions("eddahpos", store))

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/login", controllers.Login)
		auth.POST("/logout", controllers.Logout)
		auth.POST("/forgot-password", controllers.ForgotPassword)
		auth.POST("/reset-password", controllers.ResetPassword)
	}

	// Gateway webhook and human-facing result page. The webhook carries no
	// session; possession of tx_ref is its only credential.
	router.GET("/payment/callback", controllers.PaymentCallback)
	router.POST("/payment/callback", controllers.PaymentCallback)
	router.GET("/cashier/return", controllers.PaymentReturn)

	// Cashier AJAX API: session-authenticated, CSRF-checked on mutation.
	cashier := router.Group("/cashier")
	cashier.Use(middleware.RequireCashier())
	cashier.Use(middleware.CSRF())
	{
		cashier.GET("/session", controllers.SessionInfo)

		cashier.POST("/cart/add", controllers.AddToCart)
		cashier.POST("/cart/operation", controllers.CartOperation)
		cashier.GET("/cart", controllers.GetCartData)
		cashier.GET("/product-details", controllers.ProductDetails)

		cashier.POST("/process-payment", controllers.ProcessPayment)
		cashier.POST("/confirm-order", controllers.ConfirmOrder)
		cashier.POST("/mark-collected", controllers.MarkCollected)

		cashier.GET("/stats", controllers.Stats)
		cashier.GET("/orders/pending", controllers.PendingOrdersData)
		cashier.GET("/orders/completed", controllers.CompletedOrdersData)
		cashier.GET("/orders/:order_id", controllers.OrderDetails)
		cashier.GET("/orders/:order_id/receipt", controllers.OrderReceipt)
		cashier.GET("/sales-report", controllers.SalesReportData)
		cashier.GET("/sales-report/export", controllers.ExportSalesReport)
	}

	return router
}
