package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"reinvent/internal/achievement"
	"reinvent/internal/db"
	"reinvent/internal/user"
	"reinvent/internal/weekly"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}

func setupAPIDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	dbConn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	// MIGRATE ALL MODELS USED IN TESTS!
	if err := dbConn.AutoMigrate(
		&user.User{},
		&weekly.Goal{},
		&weekly.Reflection{},
		&weekly.Progress{},
		&achievement.Award{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	db.DB = dbConn
	return dbConn
}

func testEngine() (*achievement.Engine, *weekly.Log, *achievement.GormLedger) {
	activity := weekly.NewLog(db.DB)
	ledger := achievement.NewGormLedger(db.DB)
	return achievement.NewEngine(activity, ledger), activity, ledger
}

// asUser injects the authenticated user the way the auth middleware
// does, so handlers can be tested without redis.
func asUser(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userId", id)
		c.Set("username", "tester")
		c.Set("userRole", "user")
		c.Next()
	}
}

func jsonRequest(t *testing.T, r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func seedUser(t *testing.T, username string) user.User {
	t.Helper()
	hash, err := user.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := user.User{Username: username, PasswordHash: hash, Role: user.RoleUser, TargetJob: "Backend Engineer"}
	if err := db.DB.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}
