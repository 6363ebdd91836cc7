package services

import (
	"testing"

	"payhost-backend/internal/database"
	"payhost-backend/internal/models"
	"payhost-backend/internal/payment"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	// Use in-memory SQLite for testing
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	// Drop tables to ensure a clean state between tests
	db.Migrator().DropTable(&models.PluginSetting{}, &models.DebugChange{})
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	database.DB = db
	database.RedisClient = nil
}

func setupMockRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	database.RedisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		database.RedisClient.Close()
		database.RedisClient = nil
		mr.Close()
	})
	return mr
}

func loadTestRegistry(t *testing.T, sandbox bool) *payment.Registry {
	t.Helper()

	reg := payment.NewRegistry()
	if err := LoadPlugins(reg, []string{"alipay", "wechatpay", "epay"}, sandbox); err != nil {
		t.Fatalf("failed to load plugins: %v", err)
	}
	return reg
}
