// File: /controllers/attendance_controller.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"eventdojo-api/models"
)

const attendancePageSize = 100

type AttendanceController struct {
	db *gorm.DB
}

func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{db: db}
}

type RSVPRequest struct {
	EventID string `json:"event_id" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// RSVP records the caller's status for an event. There is at most one
// attendance row per (user, event): an existing row is updated in place, and
// a concurrent create that loses the race against the unique index is retried
// once as an update.
func (ac *AttendanceController) RSVP(c *gin.Context) {
	userID := c.GetString("user_id")

	var req RSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.IsValidRSVPStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RSVP status"})
		return
	}

	var event models.Event
	if err := ac.db.First(&event, "id = ?", req.EventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	attendance, err := ac.upsert(userID, req.EventID, req.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save RSVP"})
		return
	}

	c.JSON(http.StatusOK, attendance)
}

func (ac *AttendanceController) upsert(userID, eventID, status string) (models.Attendance, error) {
	var attendance models.Attendance
	err := ac.db.Where("user_id = ? AND event_id = ?", userID, eventID).
		First(&attendance).Error

	if err == nil {
		if uerr := ac.db.Model(&attendance).Update("status", status).Error; uerr != nil {
			return models.Attendance{}, uerr
		}
		attendance.Status = status
		return attendance, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Attendance{}, err
	}

	attendance = models.Attendance{
		EventID: eventID,
		UserID:  userID,
		Status:  status,
	}
	cerr := ac.db.Create(&attendance).Error
	if cerr == nil {
		return attendance, nil
	}

	// Lost a create race: another request inserted the row first. The unique
	// index guarantees exactly one row exists now, so retry as an update.
	if errors.Is(cerr, gorm.ErrDuplicatedKey) {
		if err := ac.db.Where("user_id = ? AND event_id = ?", userID, eventID).
			First(&attendance).Error; err != nil {
			return models.Attendance{}, err
		}
		if err := ac.db.Model(&attendance).Update("status", status).Error; err != nil {
			return models.Attendance{}, err
		}
		attendance.Status = status
		return attendance, nil
	}

	return models.Attendance{}, cerr
}

type attendanceWithEvent struct {
	models.Attendance
	Event models.EventWithCounts `json:"event"`
}

// GetMine lists the caller's RSVPs, newest first, with the event and its
// aggregate counts attached. RSVPs whose event has since been deleted are
// dropped from the response.
func (ac *AttendanceController) GetMine(c *gin.Context) {
	userID := c.GetString("user_id")

	var attendances []models.Attendance
	if err := ac.db.Preload("Event").Preload("Event.Venue").Preload("Event.Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").Limit(attendancePageSize).
		Find(&attendances).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch attendances"})
		return
	}

	response := make([]attendanceWithEvent, 0, len(attendances))
	for _, a := range attendances {
		if a.Event.ID == "" {
			// Orphaned RSVP, event deleted since.
			continue
		}
		event := a.Event
		a.Event = models.Event{}
		response = append(response, attendanceWithEvent{
			Attendance: a,
			Event: models.EventWithCounts{
				Event:            event,
				AttendanceCounts: attendanceCountsFor(ac.db, event.ID),
			},
		})
	}

	c.JSON(http.StatusOK, response)
}

// GetEventCounts exposes the aggregate RSVP counts for a single event.
func (ac *AttendanceController) GetEventCounts(c *gin.Context) {
	c.JSON(http.StatusOK, attendanceCountsFor(ac.db, c.Param("id")))
}
