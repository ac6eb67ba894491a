package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/piyawat-k/ticket-ledger/internal/domain"
	"github.com/piyawat-k/ticket-ledger/internal/dto"
	"github.com/piyawat-k/ticket-ledger/internal/metrics"
	"github.com/piyawat-k/ticket-ledger/internal/repository"
	"github.com/piyawat-k/ticket-ledger/pkg/logger"
	"github.com/piyawat-k/ticket-ledger/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// BookingService defines the interface for order and booking business logic
type BookingService interface {
	// CreateOrder records a new unfulfilled order for a ticket type
	CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.OrderResponse, error)

	// BookTickets attempts to fulfill an order by binding tickets to it.
	// Insufficient inventory is an ordinary outcome reported in the response,
	// not an error.
	BookTickets(ctx context.Context, orderID string) (*dto.BookingResponse, error)

	// CancelOrder cancels a fulfilled order
	CancelOrder(ctx context.Context, orderID string) (*dto.OrderResponse, error)

	// DeleteOrder removes an order entirely, releasing its tickets
	DeleteOrder(ctx context.Context, orderID string) error

	// GetOrder retrieves an order by ID
	GetOrder(ctx context.Context, orderID string) (*dto.OrderResponse, error)

	// GetUserOrders retrieves the orders of a user by page
	GetUserOrders(ctx context.Context, userID string, page, pageSize int) ([]*dto.OrderResponse, error)
}

// bookingService implements BookingService
type bookingService struct {
	orderRepo  repository.OrderRepository
	ticketRepo repository.TicketRepository
	publisher  EventPublisher
}

// NewBookingService creates a new booking service
func NewBookingService(
	orderRepo repository.OrderRepository,
	ticketRepo repository.TicketRepository,
	publisher EventPublisher,
) BookingService {
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &bookingService{
		orderRepo:  orderRepo,
		ticketRepo: ticketRepo,
		publisher:  publisher,
	}
}

// CreateOrder records a new unfulfilled order for a ticket type
func (s *bookingService) CreateOrder(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.create_order")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("ticket_type_id", req.TicketTypeID),
		attribute.Int("quantity", req.Quantity),
	)

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user id")
		return nil, domain.ErrInvalidUserID
	}
	if req.Quantity <= 0 {
		span.SetStatus(codes.Error, "invalid quantity")
		return nil, domain.ErrInvalidQuantity
	}

	if _, err := s.ticketRepo.GetTicketType(ctx, req.TicketTypeID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	order := &domain.Order{
		ID:           uuid.New().String(),
		UserID:       userID,
		TicketTypeID: req.TicketTypeID,
		Quantity:     req.Quantity,
		Fulfilled:    false,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordOrderCreated(ctx, order.TicketTypeID, order.Quantity)

	if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
		// Publishing is best-effort; the order is already committed.
		logger.Get().Warn("failed to publish order created event",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}

	span.SetAttributes(attribute.String("order_id", order.ID))
	span.SetStatus(codes.Ok, "")
	return orderToResponse(order), nil
}

// BookTickets attempts to fulfill an order. The repository transaction either
// binds exactly order.Quantity tickets and marks the order fulfilled, or
// leaves the ledger untouched.
func (s *bookingService) BookTickets(ctx context.Context, orderID string) (*dto.BookingResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.book_tickets")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	if orderID == "" {
		span.SetStatus(codes.Error, "invalid order id")
		return nil, domain.ErrInvalidOrderID
	}

	start := time.Now()
	result, err := s.orderRepo.Book(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	elapsed := time.Since(start).Seconds()

	resp := &dto.BookingResponse{
		OrderID:   result.OrderID,
		Requested: result.Requested,
		Fulfilled: result.Fulfilled,
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		// The booking transaction already committed; a failed reload only
		// costs the metric labels and the event, not the outcome.
		logger.Get().Warn("failed to reload order after booking",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("fulfilled", result.Fulfilled))
		span.SetStatus(codes.Ok, "")
		return resp, nil
	}

	if result.Fulfilled {
		metrics.RecordBookingFulfilled(ctx, order.TicketTypeID, elapsed)
		if err := s.publisher.PublishOrderFulfilled(ctx, order); err != nil {
			logger.Get().Warn("failed to publish order fulfilled event",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
	} else {
		metrics.RecordBookingRejected(ctx, order.TicketTypeID, elapsed)
		logger.Get().Info("booking rejected, insufficient inventory",
			zap.String("order_id", order.ID),
			zap.Int("requested", result.Requested),
			zap.Int("reserved", result.Reserved),
		)
		if err := s.publisher.PublishBookingFailed(ctx, order); err != nil {
			logger.Get().Warn("failed to publish booking failed event",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}
	}

	span.SetAttributes(attribute.Bool("fulfilled", result.Fulfilled))
	span.SetStatus(codes.Ok, "")
	return resp, nil
}

// CancelOrder cancels a fulfilled order. The order's tickets stay bound and
// never return to the free pool.
func (s *bookingService) CancelOrder(ctx context.Context, orderID string) (*dto.OrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.cancel_order")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	if orderID == "" {
		span.SetStatus(codes.Error, "invalid order id")
		return nil, domain.ErrInvalidOrderID
	}

	if err := s.orderRepo.Cancel(ctx, orderID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordCancellation(ctx, order.TicketTypeID)

	if err := s.publisher.PublishOrderCancelled(ctx, order); err != nil {
		logger.Get().Warn("failed to publish order cancelled event",
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}

	span.SetStatus(codes.Ok, "")
	return orderToResponse(order), nil
}

// DeleteOrder removes an order entirely, releasing its tickets
func (s *bookingService) DeleteOrder(ctx context.Context, orderID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.delete_order")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	if orderID == "" {
		span.SetStatus(codes.Error, "invalid order id")
		return domain.ErrInvalidOrderID
	}

	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetOrder retrieves an order by ID
func (s *bookingService) GetOrder(ctx context.Context, orderID string) (*dto.OrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get_order")
	defer span.End()

	span.SetAttributes(attribute.String("order_id", orderID))

	if orderID == "" {
		span.SetStatus(codes.Error, "invalid order id")
		return nil, domain.ErrInvalidOrderID
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return orderToResponse(order), nil
}

// GetUserOrders retrieves the orders of a user by page
func (s *bookingService) GetUserOrders(ctx context.Context, userID string, page, pageSize int) ([]*dto.OrderResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.booking.get_user_orders")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	if userID == "" {
		span.SetStatus(codes.Error, "invalid user id")
		return nil, domain.ErrInvalidUserID
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize
	orders, err := s.orderRepo.GetByUserID(ctx, userID, pageSize, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.OrderResponse, len(orders))
	for i, o := range orders {
		responses[i] = orderToResponse(o)
	}

	span.SetAttributes(attribute.Int("count", len(responses)))
	span.SetStatus(codes.Ok, "")
	return responses, nil
}

func orderToResponse(order *domain.Order) *dto.OrderResponse {
	return &dto.OrderResponse{
		ID:           order.ID,
		UserID:       order.UserID,
		TicketTypeID: order.TicketTypeID,
		Quantity:     order.Quantity,
		Fulfilled:    order.Fulfilled,
		CreatedAt:    order.CreatedAt,
	}
}
