// File: /controllers/like_toggle_test.go
package controllers

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"eventdojo-api/database"
	"eventdojo-api/models"
)

func newLikeTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func likeRowCount(t *testing.T, db *gorm.DB, userID, eventID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.EventLike{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error)
	return count
}

func TestToggleFlipsMembership(t *testing.T) {
	db := newLikeTestDB(t)
	lc := NewLikeController(db)

	userID := uuid.New().String()
	eventID := uuid.New().String()

	liked, err := lc.toggle(userID, eventID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), likeRowCount(t, db, userID, eventID))

	liked, err = lc.toggle(userID, eventID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, int64(0), likeRowCount(t, db, userID, eventID))
}

// A toggle that arrives after another request already removed the row must
// not report a lost unlike: with nothing left to delete it lands on liked,
// which is the serialized outcome of two back-to-back toggles.
func TestToggleAfterRowAlreadyRemoved(t *testing.T) {
	db := newLikeTestDB(t)
	lc := NewLikeController(db)

	userID := uuid.New().String()
	eventID := uuid.New().String()
	require.NoError(t, db.Create(&models.EventLike{EventID: eventID, UserID: userID}).Error)

	require.NoError(t, db.Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&models.EventLike{}).Error)

	liked, err := lc.toggle(userID, eventID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), likeRowCount(t, db, userID, eventID))
}
