package repository

import (
	"context"
	"time"

	"github.com/piyawat-k/ticket-ledger/internal/domain"
)

// EventRepository defines storage operations for events
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Event, error)
}

// TicketRepository defines storage operations for ticket types and tickets
type TicketRepository interface {
	// CreateTicketType persists the type and bulk-inserts exactly
	// ticketType.Quantity free tickets in the same transaction.
	CreateTicketType(ctx context.Context, ticketType *domain.TicketType) error
	GetTicketType(ctx context.Context, id string) (*domain.TicketType, error)
	ListTicketTypes(ctx context.Context, eventID string) ([]*domain.TicketType, error)

	// FreeTickets returns the currently unbound tickets of a type as a
	// materialized slice; it reflects every binding committed so far.
	FreeTickets(ctx context.Context, ticketTypeID string) ([]*domain.Ticket, error)
	CountFreeTickets(ctx context.Context, ticketTypeID string) (int, error)
	TicketsByOrder(ctx context.Context, orderID string) ([]*domain.Ticket, error)
}

// OrderRepository defines storage operations for orders and the booking
// transaction that binds tickets to them.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error)

	// Book atomically binds up to order.Quantity free tickets to the order
	// using non-blocking row reservation: tickets locked by a concurrent
	// booking are skipped, never awaited. When fewer than Quantity tickets
	// could be bound the whole transaction rolls back and the order stays
	// unfulfilled; that outcome is reported in the result, not as an error.
	// Booking an already fulfilled order fails with ErrOrderAlreadyFulfilled.
	Book(ctx context.Context, orderID string) (*domain.BookingResult, error)

	// Cancel flips a fulfilled order back to unfulfilled. Its tickets stay
	// bound; they become the cancelled tickets the analytics count and are
	// never returned to the free pool.
	Cancel(ctx context.Context, orderID string) error

	// Delete removes the order; the schema releases its tickets (order_id
	// set to NULL) rather than deleting them.
	Delete(ctx context.Context, orderID string) error
}

// AnalyticsRepository defines the read-only aggregation queries
type AnalyticsRepository interface {
	// OrderStats returns the order count and cancelled-ticket count for an
	// event. Zero orders → domain.ErrNoOrders.
	OrderStats(ctx context.Context, eventID string) (*domain.EventStats, error)

	// PeakCancellationDate returns the UTC calendar date whose orders hold
	// the most cancelled tickets, earliest date winning ties. No cancelled
	// tickets → domain.ErrNoCancelledTickets.
	PeakCancellationDate(ctx context.Context, eventID string) (time.Time, int, error)
}

// AvailabilityRepository caches free-ticket counts for cheap availability reads
type AvailabilityRepository interface {
	SetAvailability(ctx context.Context, ticketTypeID string, free int, ttl time.Duration) error
	GetAvailability(ctx context.Context, ticketTypeID string) (int, bool, error)
}
