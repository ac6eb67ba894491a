package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/piyawat-k/ticket-ledger/internal/domain"
)

func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}
}

// getPostgresPool creates a PostgreSQL connection pool for testing
func getPostgresPool(t *testing.T) *pgxpool.Pool {
	skipIfNoIntegration(t)

	host := os.Getenv("TEST_POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}

	port := os.Getenv("TEST_POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}

	user := os.Getenv("TEST_POSTGRES_USER")
	if user == "" {
		user = "postgres"
	}

	password := os.Getenv("TEST_POSTGRES_PASSWORD")
	if password == "" {
		password = "postgres"
	}

	dbname := os.Getenv("TEST_POSTGRES_DB")
	if dbname == "" {
		dbname = "ticket_ledger_test"
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, dbname)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to create PostgreSQL pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping PostgreSQL: %v", err)
	}

	cleanupTestData(t, pool)

	return pool
}

func cleanupTestData(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()
	// Reverse dependency order
	tables := []string{"tickets", "orders", "ticket_types", "events"}

	for _, table := range tables {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Logf("Warning: failed to clean up %s: %v", table, err)
		}
	}
}

// seedEvent inserts an event and returns it
func seedEvent(t *testing.T, pool *pgxpool.Pool) *domain.Event {
	t.Helper()

	event := &domain.Event{
		ID:          uuid.New().String(),
		Name:        "Test Event",
		Description: "integration fixture",
		CreatedAt:   time.Now().UTC(),
	}
	if err := NewPostgresEventRepository(pool).Create(context.Background(), event); err != nil {
		t.Fatalf("Failed to seed event: %v", err)
	}
	return event
}

// seedTicketType inserts a ticket type with its full free-ticket pool
func seedTicketType(t *testing.T, pool *pgxpool.Pool, eventID string, quantity int) *domain.TicketType {
	t.Helper()

	tt := &domain.TicketType{
		ID:        uuid.New().String(),
		EventID:   eventID,
		Name:      "GA",
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	}
	if err := NewPostgresTicketRepository(pool).CreateTicketType(context.Background(), tt); err != nil {
		t.Fatalf("Failed to seed ticket type: %v", err)
	}
	return tt
}

// seedOrder inserts an unfulfilled order
func seedOrder(t *testing.T, pool *pgxpool.Pool, ticketTypeID string, quantity int, createdAt time.Time) *domain.Order {
	t.Helper()

	order := &domain.Order{
		ID:           uuid.New().String(),
		UserID:       "user-" + uuid.New().String()[:8],
		TicketTypeID: ticketTypeID,
		Quantity:     quantity,
		Fulfilled:    false,
		CreatedAt:    createdAt,
	}
	if err := NewPostgresOrderRepository(pool).Create(context.Background(), order); err != nil {
		t.Fatalf("Failed to seed order: %v", err)
	}
	return order
}
