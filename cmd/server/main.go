// Platinum Motors Inventory API
// @title Platinum Motors API
// @version 1.0
// @description Dealer inventory API backed by a scheduled Autotrader scrape. Public endpoints serve the showroom site; admin endpoints manage stock, reviews and sync runs.
// @host localhost:8080
// @BasePath /

package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	_ "platinummotors/docs"
	"platinummotors/internal/cache"
	"platinummotors/internal/config"
	"platinummotors/internal/database"
	"platinummotors/internal/handlers"
	"platinummotors/internal/images"
	"platinummotors/internal/middleware"
	"platinummotors/internal/scraper"
	"platinummotors/internal/sync"
)

func main() {
	cfg := config.Load()

	db, err := database.NewDatabase(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer db.Close()

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal("Failed to hash admin password: ", err)
		}
		if _, err := db.EnsureAdminUser(cfg.AdminUsername, string(hash)); err != nil {
			log.Fatal("Failed to provision admin user: ", err)
		}
	} else {
		log.Println("ADMIN_USERNAME/ADMIN_PASSWORD not set, admin endpoints will be unreachable")
	}

	// Sync pipeline
	autotrader := scraper.New(cfg.DealerURL, cfg.ChromeBin, cfg.NavigationTimeout, cfg.SettleWait)
	store, err := images.NewDiskStore(cfg.ImageDir, cfg.ImageBaseURL)
	if err != nil {
		log.Fatal("Failed to create image store: ", err)
	}
	relocator := images.NewRelocator(store, cfg.RelocateWorkers)
	orchestrator := sync.NewOrchestrator(autotrader, relocator, db, cfg.SyncMarkMissing)

	if report, ok := cache.LoadReport(); ok {
		orchestrator.SeedReport(report)
	}

	// Initialize Gin router
	r := gin.Default()

	// Configure trusted proxies for Cloudflare Tunnels
	r.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
		"172.16.0.0/12",  // Docker networks
		"10.0.0.0/8",     // Private networks
		"192.168.0.0/16", // Private networks
	})

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.SecurityScanDetection())

	limiter := middleware.NewRateLimiter(rate.Limit(1), 60)
	r.Use(middleware.RateLimitMiddleware(limiter))

	// Relocated listing images
	r.Static("/images", cfg.ImageDir)

	authHandler := handlers.NewAuthHandler(db)
	carHandler := handlers.NewCarHandler(db)
	reviewHandler := handlers.NewReviewHandler(db)
	enquiryHandler := handlers.NewEnquiryHandler(db, cfg.EnquiryWebhookURL, cfg.EnquiryWebhookSecret)
	syncHandler := handlers.NewSyncHandler(orchestrator, cfg.EnquiryWebhookURL, cfg.EnquiryWebhookSecret)

	r.Use(authHandler.AuthMiddleware())

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	{
		api.GET("/cars", carHandler.GetCars)
		api.GET("/cars/:id", carHandler.GetCar)
		api.GET("/reviews", reviewHandler.GetReviews)
		api.POST("/reviews", reviewHandler.SubmitReview)
		api.POST("/enquiry", enquiryHandler.SubmitEnquiry)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/profile", authHandler.RequireAuth(), authHandler.GetProfile)
		}

		admin := api.Group("/admin")
		admin.Use(authHandler.RequireAuth())
		{
			admin.GET("/cars", carHandler.GetAllCars)
			admin.POST("/cars", carHandler.CreateCar)
			admin.PUT("/cars/:id", carHandler.UpdateCar)
			admin.DELETE("/cars/:id", carHandler.DeleteCar)

			admin.GET("/reviews", reviewHandler.GetAllReviews)
			admin.PUT("/reviews/:id", reviewHandler.ModerateReview)
			admin.DELETE("/reviews/:id", reviewHandler.DeleteReview)

			admin.POST("/autotrader/sync",
				middleware.SyncCooldownMiddleware(cfg.SyncCooldown), syncHandler.TriggerSync)
			admin.GET("/autotrader/sync/status", syncHandler.GetSyncStatus)
		}
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
