package dto

import "time"

// EventResponse mirrors domain.Event for the API surface
type EventResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TicketTypeResponse includes the live free-ticket count next to the capacity
type TicketTypeResponse struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Available int       `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderResponse mirrors domain.Order
type OrderResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	TicketTypeID string    `json:"ticket_type_id"`
	Quantity     int       `json:"quantity"`
	Fulfilled    bool      `json:"fulfilled"`
	CreatedAt    time.Time `json:"created_at"`
}

// BookingResponse reports a booking attempt outcome
type BookingResponse struct {
	OrderID   string `json:"order_id"`
	Requested int    `json:"requested"`
	Fulfilled bool   `json:"fulfilled"`
}

// StatsResponse is the order/cancellation aggregate for an event
type StatsResponse struct {
	EventID          string  `json:"event_id"`
	TotalOrders      int     `json:"total_orders"`
	CancelledTickets int     `json:"cancelled_tickets"`
	CancellationRate float64 `json:"cancellation_rate"`
}

// PeakCancellationResponse carries the date with the most cancelled tickets
type PeakCancellationResponse struct {
	EventID          string    `json:"event_id"`
	Date             time.Time `json:"date"`
	CancelledTickets int       `json:"cancelled_tickets"`
}
