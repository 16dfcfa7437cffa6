package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminapi "github.com/itsNitinkumar/Skillarious-Backend/internal/api/admin"
	paymentsapi "github.com/itsNitinkumar/Skillarious-Backend/internal/api/payments"
	usersapi "github.com/itsNitinkumar/Skillarious-Backend/internal/api/users"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/app/http/middleware"
)

func RegisterRoutes(r *gin.Engine, payments *paymentsapi.Handler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "payment-settlement"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(), middleware.SanitizeInputMiddleware())

	auth.GET("/me", usersapi.GetCurrentUser)

	auth.POST("/payments/create", payments.CreatePayment)
	auth.POST("/payments/verify", payments.VerifyPayment)
	auth.GET("/payments/history", payments.GetHistory)
	auth.GET("/enrollments", payments.ListEnrollments)

	// Refunds are an operator action.
	auth.POST("/payments/refund", middleware.RequireRole("admin"), payments.RefundPayment)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/payments", adminapi.ListAllTransactions)
	admin.GET("/stats", adminapi.GetAdminStats)
}
