package dto

// CreateEventRequest is the payload for POST /events
type CreateEventRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateTicketTypeRequest is the payload for POST /events/:id/ticket-types
type CreateTicketTypeRequest struct {
	Name     string `json:"name" binding:"required"`
	Quantity int    `json:"quantity" binding:"min=0"`
}

// CreateOrderRequest is the payload for POST /orders
type CreateOrderRequest struct {
	TicketTypeID string `json:"ticket_type_id" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required,gt=0"`
}
