package domain

import "time"

// Event represents an event that sells tickets through one or more ticket types
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventStats is the aggregate the analytics engine produces per event
type EventStats struct {
	EventID          string  `json:"event_id"`
	TotalOrders      int     `json:"total_orders"`
	CancelledTickets int     `json:"cancelled_tickets"`
	CancellationRate float64 `json:"cancellation_rate"`
}
