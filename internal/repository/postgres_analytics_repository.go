package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/piyawat-k/ticket-ledger/internal/domain"
	"github.com/piyawat-k/ticket-ledger/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresAnalyticsRepository implements AnalyticsRepository using PostgreSQL with pgxpool
type PostgresAnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAnalyticsRepository creates a new PostgresAnalyticsRepository
func NewPostgresAnalyticsRepository(pool *pgxpool.Pool) *PostgresAnalyticsRepository {
	return &PostgresAnalyticsRepository{pool: pool}
}

// OrderStats aggregates order and cancellation figures for an event.
// A cancelled ticket is one still bound to an order whose fulfilled flag is
// false; tickets of deleted orders have no binding and are not counted.
func (r *PostgresAnalyticsRepository) OrderStats(ctx context.Context, eventID string) (*domain.EventStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.analytics.order_stats")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT
			COUNT(DISTINCT o.id) AS total_orders,
			COUNT(t.id) FILTER (WHERE NOT o.fulfilled) AS cancelled_tickets
		FROM orders o
		JOIN ticket_types tt ON tt.id = o.ticket_type_id
		LEFT JOIN tickets t ON t.order_id = o.id
		WHERE tt.event_id = $1
	`

	stats := &domain.EventStats{EventID: eventID}
	err := r.pool.QueryRow(ctx, query, eventID).Scan(&stats.TotalOrders, &stats.CancelledTickets)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to aggregate order stats: %w", err)
	}

	if stats.TotalOrders == 0 {
		span.SetStatus(codes.Error, "no orders")
		return nil, domain.ErrNoOrders
	}

	stats.CancellationRate = float64(stats.CancelledTickets) / float64(stats.TotalOrders) * 100

	span.SetAttributes(
		attribute.Int("total_orders", stats.TotalOrders),
		attribute.Int("cancelled_tickets", stats.CancelledTickets),
		attribute.Float64("cancellation_rate", stats.CancellationRate),
	)
	span.SetStatus(codes.Ok, "")
	return stats, nil
}

// PeakCancellationDate finds the UTC calendar date whose orders hold the most
// cancelled tickets. Ties resolve to the earliest date.
func (r *PostgresAnalyticsRepository) PeakCancellationDate(ctx context.Context, eventID string) (time.Time, int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.analytics.peak_cancellation")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT (o.created_at AT TIME ZONE 'UTC')::date AS day, COUNT(t.id) AS cancelled
		FROM orders o
		JOIN ticket_types tt ON tt.id = o.ticket_type_id
		JOIN tickets t ON t.order_id = o.id
		WHERE tt.event_id = $1 AND NOT o.fulfilled
		GROUP BY day
		ORDER BY cancelled DESC, day ASC
		LIMIT 1
	`

	var day time.Time
	var cancelled int
	err := r.pool.QueryRow(ctx, query, eventID).Scan(&day, &cancelled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "no cancelled tickets")
			return time.Time{}, 0, domain.ErrNoCancelledTickets
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return time.Time{}, 0, fmt.Errorf("failed to find peak cancellation date: %w", err)
	}

	span.SetAttributes(
		attribute.String("date", day.Format("2006-01-02")),
		attribute.Int("cancelled_tickets", cancelled),
	)
	span.SetStatus(codes.Ok, "")
	return day, cancelled, nil
}

// Ensure PostgresAnalyticsRepository implements AnalyticsRepository
var _ AnalyticsRepository = (*PostgresAnalyticsRepository)(nil)
