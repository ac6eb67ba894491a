package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/piyawat-k/ticket-ledger/internal/domain"
	"github.com/piyawat-k/ticket-ledger/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresTicketRepository implements TicketRepository using PostgreSQL with pgxpool
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository creates a new PostgresTicketRepository
func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

// CreateTicketType inserts the ticket type and its full pool of free tickets
// in one transaction. The batch insert uses COPY, so a capacity of zero or a
// hundred thousand both commit as a single atomic step.
func (r *PostgresTicketRepository) CreateTicketType(ctx context.Context, ticketType *domain.TicketType) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.create_type")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_type_id", ticketType.ID),
		attribute.String("event_id", ticketType.EventID),
		attribute.Int("quantity", ticketType.Quantity),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO ticket_types (id, event_id, name, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = tx.Exec(ctx, query,
		ticketType.ID,
		ticketType.EventID,
		ticketType.Name,
		ticketType.Quantity,
		ticketType.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create ticket type: %w", err)
	}

	rows := make([][]any, ticketType.Quantity)
	for i := range rows {
		rows[i] = []any{uuid.New().String(), ticketType.ID}
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"tickets"},
		[]string{"id", "ticket_type_id"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to bulk insert tickets: %w", err)
	}
	if copied != int64(ticketType.Quantity) {
		err := fmt.Errorf("bulk insert created %d tickets, expected %d", copied, ticketType.Quantity)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetTicketType retrieves a ticket type by its ID
func (r *PostgresTicketRepository) GetTicketType(ctx context.Context, id string) (*domain.TicketType, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.get_type")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", id))

	query := `SELECT id, event_id, name, quantity, created_at FROM ticket_types WHERE id = $1`

	ticketType := &domain.TicketType{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticketType.ID,
		&ticketType.EventID,
		&ticketType.Name,
		&ticketType.Quantity,
		&ticketType.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrTicketTypeNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get ticket type: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return ticketType, nil
}

// ListTicketTypes retrieves all ticket types of an event
func (r *PostgresTicketRepository) ListTicketTypes(ctx context.Context, eventID string) ([]*domain.TicketType, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.list_types")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT id, event_id, name, quantity, created_at
		FROM ticket_types
		WHERE event_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list ticket types: %w", err)
	}
	defer rows.Close()

	var types []*domain.TicketType
	for rows.Next() {
		tt := &domain.TicketType{}
		if err := rows.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Quantity, &tt.CreatedAt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan ticket type: %w", err)
		}
		types = append(types, tt)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating ticket types: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(types)))
	span.SetStatus(codes.Ok, "")
	return types, nil
}

// FreeTickets returns the currently unbound tickets of a ticket type.
// This is a live query against committed state, not a cached snapshot.
func (r *PostgresTicketRepository) FreeTickets(ctx context.Context, ticketTypeID string) ([]*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.free")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", ticketTypeID))

	query := `
		SELECT id, ticket_type_id, order_id
		FROM tickets
		WHERE ticket_type_id = $1 AND order_id IS NULL
	`

	rows, err := r.pool.Query(ctx, query, ticketTypeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query free tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		t := &domain.Ticket{}
		if err := rows.Scan(&t.ID, &t.TicketTypeID, &t.OrderID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(tickets)))
	span.SetStatus(codes.Ok, "")
	return tickets, nil
}

// CountFreeTickets returns how many tickets of a type are unbound
func (r *PostgresTicketRepository) CountFreeTickets(ctx context.Context, ticketTypeID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.count_free")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", ticketTypeID))

	query := `SELECT COUNT(*) FROM tickets WHERE ticket_type_id = $1 AND order_id IS NULL`

	var count int
	if err := r.pool.QueryRow(ctx, query, ticketTypeID).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count free tickets: %w", err)
	}

	span.SetAttributes(attribute.Int("count", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

// TicketsByOrder returns the tickets bound to an order
func (r *PostgresTicketRepository) TicketsByOrder(ctx context.Context, orderID string) ([]*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.ticket.by_order")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	query := `SELECT id, ticket_type_id, order_id FROM tickets WHERE order_id = $1`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to query tickets by order: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		t := &domain.Ticket{}
		if err := rows.Scan(&t.ID, &t.TicketTypeID, &t.OrderID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(tickets)))
	span.SetStatus(codes.Ok, "")
	return tickets, nil
}

// Ensure PostgresTicketRepository implements TicketRepository
var _ TicketRepository = (*PostgresTicketRepository)(nil)
