package domain

import (
	"encoding/json"
	"time"
)

// Order is a request for Quantity tickets of one ticket type.
// Fulfilled flips to true only when a booking bound exactly Quantity tickets;
// an order that was never successfully booked owns zero tickets.
type Order struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	TicketTypeID string    `json:"ticket_type_id"`
	Quantity     int       `json:"quantity"`
	Fulfilled    bool      `json:"fulfilled"`
	CreatedAt    time.Time `json:"created_at"`
}

// BookingResult reports the outcome of one booking attempt.
// Fulfilled=false with a nil error means insufficient inventory: an ordinary,
// expected outcome, not a fault. Reserved carries how many free tickets the
// attempt could lock before giving up, for observability only; none of those
// bindings survive the rollback.
type BookingResult struct {
	OrderID   string `json:"order_id"`
	Requested int    `json:"requested"`
	Reserved  int    `json:"reserved"`
	Fulfilled bool   `json:"fulfilled"`
}

// OrderEventType identifies an order lifecycle event on the bus
type OrderEventType string

const (
	OrderEventCreated       OrderEventType = "order.created"
	OrderEventFulfilled     OrderEventType = "order.fulfilled"
	OrderEventBookingFailed OrderEventType = "order.booking_failed"
	OrderEventCancelled     OrderEventType = "order.cancelled"
)

// OrderEvent is the payload published for order lifecycle changes
type OrderEvent struct {
	EventID      string         `json:"event_id"`
	Type         OrderEventType `json:"type"`
	OrderID      string         `json:"order_id"`
	UserID       string         `json:"user_id"`
	TicketTypeID string         `json:"ticket_type_id"`
	Quantity     int            `json:"quantity"`
	Fulfilled    bool           `json:"fulfilled"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

// NewOrderEvent builds an event payload for the given order
func NewOrderEvent(eventType OrderEventType, order *Order, eventID string) *OrderEvent {
	return &OrderEvent{
		EventID:      eventID,
		Type:         eventType,
		OrderID:      order.ID,
		UserID:       order.UserID,
		TicketTypeID: order.TicketTypeID,
		Quantity:     order.Quantity,
		Fulfilled:    order.Fulfilled,
		OccurredAt:   time.Now().UTC(),
	}
}

// Key returns the partition key for the event
func (e *OrderEvent) Key() string {
	return e.OrderID
}

// Marshal serializes the event for the wire
func (e *OrderEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
