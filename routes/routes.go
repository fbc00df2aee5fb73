// File: /routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"eventdojo-api/config"
	"eventdojo-api/controllers"
	"eventdojo-api/middleware"
	"eventdojo-api/services"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, emailService *services.EmailService, feedService *services.FeedService, discoveryService *services.DiscoveryService) {
	// Controllers
	authController := controllers.NewAuthController(db, cfg.JWTSecret, emailService)
	eventController := controllers.NewEventController(db, discoveryService)
	attendanceController := controllers.NewAttendanceController(db)
	likeController := controllers.NewLikeController(db)
	categoryController := controllers.NewCategoryController(db)
	feedController := controllers.NewFeedController(db, feedService)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// API version 1
	v1 := r.Group("/api/v1")

	// Auth routes (public)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// Public routes (rate limited)
	public := v1.Group("/")
	public.Use(middleware.RateLimit(120, 30))
	{
		events := public.Group("/events")
		{
			events.GET("/all", eventController.GetAll)
			events.GET("/today", eventController.GetToday)
			events.GET("/upcoming", eventController.GetUpcoming)
			events.GET("/by-slug/:slug", eventController.GetBySlug)
			events.GET("/:id/counts", attendanceController.GetEventCounts)
		}

		public.GET("/categories", categoryController.List)

		// Creating an event is allowed anonymously; authenticated callers
		// become the event's owner.
		public.POST("/events", middleware.OptionalAuth(cfg.JWTSecret), eventController.CreateEvent)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		events := protected.Group("/events")
		{
			events.GET("/mine", eventController.GetMine)
			events.PUT("/:id", eventController.UpdateEvent)
			events.DELETE("/:id", eventController.DeleteEvent)
			events.POST("/:id/like", likeController.Toggle)
			events.GET("/:id/liked", likeController.IsLiked)
		}

		attendances := protected.Group("/attendances")
		{
			attendances.POST("/rsvp", attendanceController.RSVP)
			attendances.GET("/me", attendanceController.GetMine)
		}

		protected.GET("/likes/me", likeController.GetMine)

		feeds := protected.Group("/feeds")
		{
			feeds.GET("/", feedController.List)
			feeds.POST("/", feedController.Create)
			feeds.POST("/sync", feedController.Sync)
		}
	}
}
