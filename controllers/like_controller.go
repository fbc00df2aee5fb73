// File: /controllers/like_controller.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"eventdojo-api/models"
)

const likePageSize = 100

type LikeController struct {
	db *gorm.DB
}

func NewLikeController(db *gorm.DB) *LikeController {
	return &LikeController{db: db}
}

// Toggle flips the (user, event) like membership and returns the new state.
// The write is a single delete keyed on the pair, so there is no
// find-then-delete window; a request that loses an insert race against the
// unique index retries once against the now-current state.
func (lc *LikeController) Toggle(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	var event models.Event
	if err := lc.db.First(&event, "id = ?", eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	liked, err := lc.toggle(userID, eventID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle like"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

func (lc *LikeController) toggle(userID, eventID string) (bool, error) {
	liked, err := lc.toggleOnce(userID, eventID)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Concurrent toggle created the row between our delete and insert;
		// retry against current state.
		return lc.toggleOnce(userID, eventID)
	}
	return liked, err
}

// toggleOnce deletes the membership row by key and lets RowsAffected decide
// the outcome: removing a row is an unlike, removing nothing means the row is
// absent and the toggle becomes a like. Of two simultaneous unlikes exactly
// one sees the deleted row, so no toggle is ever lost.
func (lc *LikeController) toggleOnce(userID, eventID string) (bool, error) {
	res := lc.db.Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&models.EventLike{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}

	err := lc.db.Create(&models.EventLike{
		EventID: eventID,
		UserID:  userID,
	}).Error
	return true, err
}

// IsLiked reports whether the caller currently likes the event.
func (lc *LikeController) IsLiked(c *gin.Context) {
	userID := c.GetString("user_id")
	eventID := c.Param("id")

	var count int64
	if err := lc.db.Model(&models.EventLike{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check like"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": count > 0})
}

type likeWithEvent struct {
	models.EventLike
	Event models.Event `json:"event"`
}

// GetMine lists the caller's liked events, newest first. Likes whose event
// has since been deleted are dropped.
func (lc *LikeController) GetMine(c *gin.Context) {
	userID := c.GetString("user_id")

	var likes []models.EventLike
	if err := lc.db.Preload("Event").Preload("Event.Venue").Preload("Event.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").Limit(likePageSize).
		Find(&likes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch likes"})
		return
	}

	response := make([]likeWithEvent, 0, len(likes))
	for _, l := range likes {
		if l.Event.ID == "" {
			continue
		}
		event := l.Event
		l.Event = models.Event{}
		response = append(response, likeWithEvent{EventLike: l, Event: event})
	}

	c.JSON(http.StatusOK, response)
}
