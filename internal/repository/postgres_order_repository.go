package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/piyawat-k/ticket-ledger/internal/domain"
	"github.com/piyawat-k/ticket-ledger/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL with pgxpool
type PostgresOrderRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository
func NewPostgresOrderRepository(pool *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{pool: pool}
}

// Create inserts a new unfulfilled order
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("order_id", order.ID),
		attribute.String("user_id", order.UserID),
		attribute.String("ticket_type_id", order.TicketTypeID),
		attribute.Int("quantity", order.Quantity),
	)

	query := `
		INSERT INTO orders (id, user_id, ticket_type_id, quantity, fulfilled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.TicketTypeID,
		order.Quantity,
		order.Fulfilled,
		order.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create order: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an order by its ID
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", id))

	query := `
		SELECT id, user_id, ticket_type_id, quantity, fulfilled, created_at
		FROM orders
		WHERE id = $1
	`

	order := &domain.Order{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.TicketTypeID,
		&order.Quantity,
		&order.Fulfilled,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrOrderNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return order, nil
}

// GetByUserID retrieves orders of a user, newest first
func (r *PostgresOrderRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.get_by_user_id")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	)

	query := `
		SELECT id, user_id, ticket_type_id, quantity, fulfilled, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get orders by user ID: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order := &domain.Order{}
		if err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.TicketTypeID,
			&order.Quantity,
			&order.Fulfilled,
			&order.CreatedAt,
		); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(orders)))
	span.SetStatus(codes.Ok, "")
	return orders, nil
}

// Book runs the booking transaction for an order.
//
// The free-ticket selection uses FOR UPDATE SKIP LOCKED: rows already locked
// by a concurrent booking are excluded from the candidate set instead of
// awaited, so two bookings against the same ticket type never block each
// other and never select the same ticket. Everything happens in one
// transaction; a shortfall rolls the bindings back and leaves the order
// untouched.
func (r *PostgresOrderRepository) Book(ctx context.Context, orderID string) (*domain.BookingResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.book")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the order row so a concurrent booking of the same order serializes
	// on the fulfilled check.
	var order domain.Order
	err = tx.QueryRow(ctx, `
		SELECT id, user_id, ticket_type_id, quantity, fulfilled, created_at
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`, orderID).Scan(
		&order.ID,
		&order.UserID,
		&order.TicketTypeID,
		&order.Quantity,
		&order.Fulfilled,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrOrderNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	if order.Fulfilled {
		span.SetStatus(codes.Error, "already fulfilled")
		return nil, domain.ErrOrderAlreadyFulfilled
	}

	tag, err := tx.Exec(ctx, `
		UPDATE tickets
		SET order_id = $1
		WHERE id IN (
			SELECT id
			FROM tickets
			WHERE ticket_type_id = $2 AND order_id IS NULL
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
	`, order.ID, order.TicketTypeID, order.Quantity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to bind tickets: %w", err)
	}

	bound := int(tag.RowsAffected())
	span.SetAttributes(
		attribute.Int("requested", order.Quantity),
		attribute.Int("bound", bound),
	)

	result := &domain.BookingResult{
		OrderID:   order.ID,
		Requested: order.Quantity,
		Reserved:  bound,
	}

	if bound < order.Quantity {
		// All-or-nothing: the deferred rollback discards every binding made
		// above; the order keeps fulfilled = false.
		span.SetStatus(codes.Ok, "insufficient inventory")
		return result, nil
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET fulfilled = TRUE WHERE id = $1`, order.ID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to mark order fulfilled: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	result.Fulfilled = true
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// Cancel flips a fulfilled order back to unfulfilled, leaving its tickets
// bound. Those tickets become the cancelled tickets the analytics queries
// count; they never rejoin the free pool.
func (r *PostgresOrderRepository) Cancel(ctx context.Context, orderID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.cancel")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	query := `UPDATE orders SET fulfilled = FALSE WHERE id = $1 AND fulfilled = TRUE`

	tag, err := r.pool.Exec(ctx, query, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to check order existence: %w", err)
		}
		if !exists {
			span.SetStatus(codes.Error, "not found")
			return domain.ErrOrderNotFound
		}
		span.SetStatus(codes.Error, "not fulfilled")
		return domain.ErrOrderNotFulfilled
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete removes an order. The tickets FK is ON DELETE SET NULL, so any bound
// tickets are released, not deleted.
func (r *PostgresOrderRepository) Delete(ctx context.Context, orderID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.order.delete")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrOrderNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Ensure PostgresOrderRepository implements OrderRepository
var _ OrderRepository = (*PostgresOrderRepository)(nil)
