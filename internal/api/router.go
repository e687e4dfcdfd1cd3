package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jm8gw/ai-photo-editor/config"
	imageRoutes "github.com/jm8gw/ai-photo-editor/internal/api/v1/image"
	paymentRoutes "github.com/jm8gw/ai-photo-editor/internal/api/v1/payment"
	userRoutes "github.com/jm8gw/ai-photo-editor/internal/api/v1/user"
	webhookRoutes "github.com/jm8gw/ai-photo-editor/internal/api/v1/webhook"
	"github.com/jm8gw/ai-photo-editor/internal/database"
	"github.com/jm8gw/ai-photo-editor/internal/identity"
	"github.com/jm8gw/ai-photo-editor/internal/media/cloudinary"
	"github.com/jm8gw/ai-photo-editor/internal/middleware"
	stripeDriver "github.com/jm8gw/ai-photo-editor/internal/payment/stripe"
	"github.com/jm8gw/ai-photo-editor/internal/services"
)

func NewRouter(cfg *config.Config, db *database.Database) (*gin.Engine, error) {
	// Vendor drivers
	transformer := cloudinary.NewDriver(
		cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	payDriver := stripeDriver.NewStripeDriver(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.StripeAPIBase)
	verifier, err := identity.NewWebhookVerifier(cfg.IdentityWebhookSecret)
	if err != nil {
		return nil, err
	}
	identityClient := identity.NewClient(cfg.IdentityAPIBase, cfg.IdentityAPIKey)

	// Services
	users := services.NewUserService(db.DB, db.Redis)
	images := services.NewImageService(db.DB, transformer)
	transformations := services.NewTransformationService(db.DB, transformer, users)
	transactions := services.NewTransactionService(db.DB, users)
	checkout := services.NewCheckoutService(payDriver, cfg.ServerURL)

	router := gin.New()
	router.Use(middleware.Logger(), gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ServerURL, "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API v1
	v1 := router.Group("/api/v1")
	{
		webhookRoutes.RegisterRoutes(v1, webhookRoutes.NewHandler(
			verifier, identityClient, users, payDriver, transactions))

		authorized := v1.Group("/")
		authorized.Use(middleware.AuthMiddleware(users, cfg.SessionSecret))
		{
			userRoutes.RegisterRoutes(authorized, userRoutes.NewHandler(users))
			imageRoutes.RegisterRoutes(authorized, imageRoutes.NewHandler(images, transformations))
			paymentRoutes.RegisterRoutes(authorized, paymentRoutes.NewHandler(checkout, transactions))
		}
	}

	return router, nil
}
