package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/piyawat-k/ticket-ledger/internal/dto"
	"github.com/piyawat-k/ticket-ledger/internal/service"
	"github.com/piyawat-k/ticket-ledger/pkg/response"
	"github.com/piyawat-k/ticket-ledger/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// OrderHandler handles order and booking HTTP requests
type OrderHandler struct {
	bookingService service.BookingService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(bookingService service.BookingService) *OrderHandler {
	return &OrderHandler{bookingService: bookingService}
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.order.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		span.SetStatus(codes.Error, "user id required")
		response.BadRequest(c, "X-User-ID header required")
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("ticket_type_id", req.TicketTypeID),
		attribute.Int("quantity", req.Quantity),
	)

	result, err := h.bookingService.CreateOrder(ctx, userID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("order_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// BookTickets handles POST /orders/:id/book
func (h *OrderHandler) BookTickets(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.order.book")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	orderID := c.Param("id")
	span.SetAttributes(attribute.String("order_id", orderID))

	result, err := h.bookingService.BookTickets(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Bool("fulfilled", result.Fulfilled))
	span.SetStatus(codes.Ok, "")

	if !result.Fulfilled {
		response.Conflict(c, "TICKETS_UNAVAILABLE", "not enough free tickets to fulfill the order")
		return
	}
	response.Success(c, result)
}

// CancelOrder handles POST /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.order.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	orderID := c.Param("id")
	span.SetAttributes(attribute.String("order_id", orderID))

	result, err := h.bookingService.CancelOrder(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// DeleteOrder handles DELETE /orders/:id
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.order.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	orderID := c.Param("id")
	span.SetAttributes(attribute.String("order_id", orderID))

	if err := h.bookingService.DeleteOrder(ctx, orderID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{"order_id": orderID, "deleted": true})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.order.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	orderID := c.Param("id")
	span.SetAttributes(attribute.String("order_id", orderID))

	result, err := h.bookingService.GetOrder(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// GetUserOrders handles GET /orders
func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.order.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		span.SetStatus(codes.Error, "user id required")
		response.BadRequest(c, "X-User-ID header required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	span.SetAttributes(attribute.String("user_id", userID))

	result, err := h.bookingService.GetUserOrders(ctx, userID, page, pageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(result)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
