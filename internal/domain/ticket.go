package domain

import "time"

// TicketType is a fixed-capacity pool of tickets for an event.
// Quantity is set once at creation; the service exposes no way to change it,
// and exactly Quantity tickets are created together with the type.
type TicketType struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

// Ticket is one allocatable unit of a ticket type. OrderID is nil while the
// ticket is free and set exactly once when a booking binds it. A bound ticket
// never returns to the free pool; deleting its order clears the reference
// without deleting the row.
type Ticket struct {
	ID           string  `json:"id"`
	TicketTypeID string  `json:"ticket_type_id"`
	OrderID      *string `json:"order_id,omitempty"`
}

// Bound reports whether the ticket has been allocated to an order
func (t *Ticket) Bound() bool {
	return t.OrderID != nil
}
