// File: /main.go
package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"eventdojo-api/config"
	"eventdojo-api/database"
	"eventdojo-api/jobs"
	"eventdojo-api/middleware"
	"eventdojo-api/routes"
	"eventdojo-api/services"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Seed reference data (categories, venues, demo events)
	if err := database.SeedData(db); err != nil {
		log.Printf("Warning: Failed to seed database: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Port == "8080" { // Development
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Services
	emailService := services.NewEmailService(cfg)
	feedService := services.NewFeedService(db)
	discoveryService := services.NewDiscoveryService(cfg)

	// Create router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(routes.SetupCORS())
	router.Use(middleware.SecurityHeaders())

	// Setup routes
	routes.SetupRoutes(router, db, cfg, emailService, feedService, discoveryService)

	// Hourly feed ingestion
	syncJob := jobs.NewFeedSyncJob(db, cfg.FeedSyncSchedule)
	if err := syncJob.Start(); err != nil {
		log.Fatal("Failed to start feed sync job:", err)
	}
	defer syncJob.Stop()

	// Start server
	log.Printf("Starting EventDojo API server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
