package main

import (
	"time"

	"streaming-app/config"
	"streaming-app/database"
	adminapi "streaming-app/internal/api/admin"
	billingapi "streaming-app/internal/api/billing"
	stripewebhooks "streaming-app/internal/api/stripewebhook"
	routes "streaming-app/internal/app/http"
	"streaming-app/internal/app/jobs"
	"streaming-app/internal/domain/billing"
	"streaming-app/internal/domain/plans"
	"streaming-app/internal/infra/stripeclient"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	database.InitDB()

	store := billing.NewStore(database.DB)
	catalog := plans.NewCatalog(database.DB)
	provider := stripeclient.New(config.STRIPE_SECRET_KEY, config.STRIPE_WEBHOOK_SECRET)

	billingHandler := billingapi.NewHandler(store, catalog, provider)
	webhookHandler := stripewebhooks.NewHandler(store, catalog, provider)
	adminHandler := adminapi.NewHandler(store)

	jobs.StartExpirySweep(store)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, billingHandler, webhookHandler, adminHandler)

	r.Run(":" + config.PORT)
}
