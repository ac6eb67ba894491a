package repository

import (
	"context"
	"os"
	"testing"
	"time"

	pkgredis "github.com/piyawat-k/ticket-ledger/pkg/redis"
)

// getRedisClient creates a Redis client for testing
func getRedisClient(t *testing.T) *pkgredis.Client {
	skipIfNoIntegration(t)

	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		host = "localhost"
	}

	cfg := pkgredis.DefaultConfig()
	cfg.Host = host
	cfg.DB = 15 // keep test data away from real databases

	client, err := pkgredis.NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create Redis client: %v", err)
	}

	if err := client.Client().FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("Failed to flush test database: %v", err)
	}

	return client
}

func TestRedisAvailabilityRepository_SetGet(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	repo := NewRedisAvailabilityRepository(client)

	if err := repo.SetAvailability(ctx, "tt-001", 42, time.Minute); err != nil {
		t.Fatalf("SetAvailability() unexpected error = %v", err)
	}

	free, ok, err := repo.GetAvailability(ctx, "tt-001")
	if err != nil {
		t.Fatalf("GetAvailability() unexpected error = %v", err)
	}
	if !ok {
		t.Fatal("GetAvailability() expected cache hit")
	}
	if free != 42 {
		t.Errorf("GetAvailability() = %d, want 42", free)
	}
}

func TestRedisAvailabilityRepository_Miss(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	_, ok, err := NewRedisAvailabilityRepository(client).GetAvailability(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("GetAvailability() unexpected error = %v", err)
	}
	if ok {
		t.Error("GetAvailability() expected cache miss")
	}
}

func TestRedisAvailabilityRepository_TTLExpiry(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	repo := NewRedisAvailabilityRepository(client)

	if err := repo.SetAvailability(ctx, "tt-ttl", 7, 50*time.Millisecond); err != nil {
		t.Fatalf("SetAvailability() unexpected error = %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	_, ok, err := repo.GetAvailability(ctx, "tt-ttl")
	if err != nil {
		t.Fatalf("GetAvailability() unexpected error = %v", err)
	}
	if ok {
		t.Error("GetAvailability() expected entry to expire")
	}
}
