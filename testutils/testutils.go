// Package testutils holds helpers shared by package tests that need a live
// MongoDB or Redis.
package testutils

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"employee_tracker/config"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var envOnce sync.Once

// SetupTestEnvironment loads .env from the module root once and forces the
// test defaults.
func SetupTestEnvironment() {
	envOnce.Do(func() {
		if rootDir := findProjectRoot(); rootDir != "" {
			envPath := filepath.Join(rootDir, ".env")
			if err := godotenv.Load(envPath); err == nil {
				log.Printf("Loaded .env file from: %s", envPath)
			}
		}

		os.Setenv("GO_ENV", "test")
		if os.Getenv("JWT_SECRET_KEY") == "" {
			os.Setenv("JWT_SECRET_KEY", "test_secret_key")
		}
		if os.Getenv("TEST_MONGO_URI") == "" {
			os.Setenv("TEST_MONGO_URI", "mongodb://localhost:27017")
		}
		if os.Getenv("TEST_REDIS_ADDR") == "" {
			os.Setenv("TEST_REDIS_ADDR", "localhost:6379")
		}
	})
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// SetupTestDB connects to the test MongoDB and returns a throwaway database
// with the collection names tests should use. The test is skipped when no
// server is reachable. The cleanup drops the database.
func SetupTestDB(t *testing.T) (*mongo.Database, config.DatabaseConfig, func()) {
	t.Helper()
	SetupTestEnvironment()

	cfg := config.LoadDatabaseConfig()
	cfg.URI = os.Getenv("TEST_MONGO_URI")
	cfg.DatabaseName = "employee_tracker_test_" + uuid.New().String()[:8]
	cfg.MinPoolSize = 0

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, cfg.ClientOptions().SetServerSelectionTimeout(2*time.Second))
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("MongoDB not available: %v", err)
	}

	db := client.Database(cfg.DatabaseName)
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := db.Drop(ctx); err != nil {
			t.Logf("Warning: Failed to drop test database %s: %v", cfg.DatabaseName, err)
		}
		if err := client.Disconnect(ctx); err != nil {
			t.Logf("Warning: Failed to disconnect: %v", err)
		}
	}

	return db, cfg, cleanup
}

// SetupTestRedis returns a client on a scratch Redis database, skipping the
// test when Redis is not running.
func SetupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	SetupTestEnvironment()

	client := redis.NewClient(&redis.Options{
		Addr: os.Getenv("TEST_REDIS_ADDR"),
		DB:   1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available: %v", err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test Redis DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}
