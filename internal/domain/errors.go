package domain

import "errors"

// Domain errors
var (
	// Not found
	ErrEventNotFound      = errors.New("event not found")
	ErrTicketTypeNotFound = errors.New("ticket type not found")
	ErrOrderNotFound      = errors.New("order not found")

	// Booking conflicts
	ErrOrderAlreadyFulfilled = errors.New("order already fulfilled")
	ErrOrderNotFulfilled     = errors.New("order is not fulfilled")

	// Validation
	ErrInvalidEventID    = errors.New("invalid event id")
	ErrInvalidOrderID    = errors.New("invalid order id")
	ErrInvalidUserID     = errors.New("invalid user id")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInvalidCapacity   = errors.New("capacity cannot be negative")
	ErrInvalidTicketType = errors.New("invalid ticket type id")

	// Analytics: distinguished "no data" outcomes, never silent zero-division
	ErrNoOrders           = errors.New("event has no orders")
	ErrNoCancelledTickets = errors.New("event has no cancelled tickets")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrTicketTypeNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidOrderID) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrInvalidTicketType)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrOrderAlreadyFulfilled) ||
		errors.Is(err, ErrOrderNotFulfilled)
}

// IsNoDataError checks if the error is an empty-aggregate outcome
func IsNoDataError(err error) bool {
	return errors.Is(err, ErrNoOrders) ||
		errors.Is(err, ErrNoCancelledTickets)
}
