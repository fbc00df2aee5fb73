// File: /controllers/helpers_test.go
package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"eventdojo-api/config"
	"eventdojo-api/database"
	"eventdojo-api/models"
	"eventdojo-api/routes"
	"eventdojo-api/services"
)

const testJWTSecret = "test-secret"

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          testJWTSecret,
		TicketmasterAPIKey: "test-key",
		BandsintownAppID:   "test-app",
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
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

type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	discovery *services.DiscoveryService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	db := setupTestDB(t)

	emailService := services.NewEmailService(cfg)
	feedService := services.NewFeedService(db)
	discoveryService := services.NewDiscoveryService(cfg)
	// Point external lookups nowhere unless a test wires stub servers.
	discoveryService.TicketmasterBaseURL = "http://127.0.0.1:0"
	discoveryService.BandsintownBaseURL = "http://127.0.0.1:0"

	router := gin.New()
	routes.SetupRoutes(router, db, cfg, emailService, feedService, discoveryService)

	return &testEnv{router: router, db: db, discovery: discoveryService}
}

func createTestUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()
	user := models.User{
		ID:       uuid.New().String(),
		Name:     name,
		Handle:   models.GenerateHandleFromName(name) + "_" + uuid.New().String()[:8],
		Email:    uuid.New().String()[:8] + "@example.com",
		Password: "$2a$10$dummy",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestEvent(t *testing.T, db *gorm.DB, title string, start time.Time, mutate ...func(*models.Event)) models.Event {
	t.Helper()
	event := models.Event{
		ID:        uuid.New().String(),
		Title:     title,
		Slug:      uuid.New().String(),
		StartDate: start,
		Source:    models.SourceManual,
	}
	for _, fn := range mutate {
		fn(&event)
	}
	require.NoError(t, db.Create(&event).Error)
	return event
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func doJSON(t *testing.T, router *gin.Engine, method, path, auth string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}
