// File: /controllers/feed_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"eventdojo-api/models"
	"eventdojo-api/services"
)

type FeedController struct {
	db          *gorm.DB
	feedService *services.FeedService
}

func NewFeedController(db *gorm.DB, feedService *services.FeedService) *FeedController {
	return &FeedController{db: db, feedService: feedService}
}

type CreateFeedRequest struct {
	URL     string `json:"url" binding:"required,url"`
	Enabled *bool  `json:"enabled"`
}

type SyncFeedsRequest struct {
	IDs []string `json:"ids"`
}

// Sync triggers an ingestion run for all enabled feeds, or the requested
// subset, and reports the per-feed outcome.
func (fc *FeedController) Sync(c *gin.Context) {
	var req SyncFeedsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	results := fc.feedService.SyncFeeds(c.Request.Context(), req.IDs)
	c.JSON(http.StatusOK, gin.H{"synced": results})
}

// Create subscribes a new calendar feed.
func (fc *FeedController) Create(c *gin.Context) {
	var req CreateFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	feed := models.Feed{
		ID:      uuid.New().String(),
		URL:     req.URL,
		Enabled: true,
	}
	if req.Enabled != nil {
		feed.Enabled = *req.Enabled
	}

	if err := fc.db.Create(&feed).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create feed"})
		return
	}

	c.JSON(http.StatusCreated, feed)
}

// List returns all subscribed feeds.
func (fc *FeedController) List(c *gin.Context) {
	var feeds []models.Feed
	if err := fc.db.Order("created_at ASC").Find(&feeds).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feeds"})
		return
	}
	c.JSON(http.StatusOK, feeds)
}
