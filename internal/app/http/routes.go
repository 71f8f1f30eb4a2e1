package routes

import (
	adminapi "streaming-app/internal/api/admin"
	billingapi "streaming-app/internal/api/billing"
	plansapi "streaming-app/internal/api/plans"
	stripewebhooks "streaming-app/internal/api/stripewebhook"
	"streaming-app/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, billingHandler *billingapi.Handler, webhookHandler *stripewebhooks.Handler, adminHandler *adminapi.Handler) {
	api := r.Group("/api/v1")

	// The webhook stays outside the sanitized group: the signature is
	// computed over the untouched raw body.
	api.POST("/subscription/webhook", webhookHandler.HandleWebhook)

	api.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := api.Group("/")
	public.Use(middleware.SanitizeJSONInput())
	public.POST("/subscription/create-checkout-session", billingHandler.CreateCheckoutSession)
	public.GET("/subscription/verify-payment", billingHandler.VerifyPayment)
	public.GET("/subscription-plans", plansapi.ListPlans)
	public.GET("/subscription-plans/:id", plansapi.GetPlanDetails)

	// Admin routes
	admin := api.Group("/")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	admin.GET("/subscription/payments/list", billingHandler.ListPayments)
	admin.GET("/subscription/payments/details/:id", billingHandler.GetPaymentDetails)
	admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)
	admin.POST("/subscription-plans", plansapi.CreatePlan)
	admin.PUT("/subscription-plans/:id", plansapi.UpdatePlan)
	admin.DELETE("/subscription-plans/:id", plansapi.DeletePlan)
}
