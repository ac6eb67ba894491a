package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/piyawat-k/ticket-ledger/internal/domain"
	"github.com/piyawat-k/ticket-ledger/internal/dto"
	"github.com/piyawat-k/ticket-ledger/internal/service"
	"github.com/piyawat-k/ticket-ledger/pkg/response"
	"github.com/piyawat-k/ticket-ledger/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EventHandler handles event and ticket type HTTP requests
type EventHandler struct {
	inventoryService service.InventoryService
}

// NewEventHandler creates a new event handler
func NewEventHandler(inventoryService service.InventoryService) *EventHandler {
	return &EventHandler{inventoryService: inventoryService}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.inventoryService.CreateEvent(ctx, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("event_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// GetEvent handles GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := h.inventoryService.GetEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.inventoryService.ListEvents(ctx, page, pageSize)
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

// CreateTicketType handles POST /events/:id/ticket-types
func (h *EventHandler) CreateTicketType(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create_ticket_type")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	var req dto.CreateTicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		response.BadRequest(c, err.Error())
		return
	}

	span.SetAttributes(attribute.Int("quantity", req.Quantity))

	result, err := h.inventoryService.CreateTicketType(ctx, eventID, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("ticket_type_id", result.ID))
	span.SetStatus(codes.Ok, "")
	response.Created(c, result)
}

// ListTicketTypes handles GET /events/:id/ticket-types
func (h *EventHandler) ListTicketTypes(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.list_ticket_types")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := h.inventoryService.ListTicketTypes(ctx, eventID)
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

// GetTicketType handles GET /ticket-types/:id
func (h *EventHandler) GetTicketType(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.get_ticket_type")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	ticketTypeID := c.Param("id")
	span.SetAttributes(attribute.String("ticket_type_id", ticketTypeID))

	result, err := h.inventoryService.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// FreeTickets handles GET /ticket-types/:id/free
func (h *EventHandler) FreeTickets(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.free_tickets")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	ticketTypeID := c.Param("id")
	span.SetAttributes(attribute.String("ticket_type_id", ticketTypeID))

	tickets, err := h.inventoryService.FreeTickets(ctx, ticketTypeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(tickets)))
	span.SetStatus(codes.Ok, "")
	response.Success(c, gin.H{
		"ticket_type_id": ticketTypeID,
		"free":           len(tickets),
		"tickets":        tickets,
	})
}

// handleError maps domain errors to HTTP responses
func handleError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	case domain.IsConflictError(err):
		code := "CONFLICT"
		if errors.Is(err, domain.ErrOrderAlreadyFulfilled) {
			code = "ORDER_ALREADY_FULFILLED"
		} else if errors.Is(err, domain.ErrOrderNotFulfilled) {
			code = "ORDER_NOT_FULFILLED"
		}
		response.Conflict(c, code, err.Error())
	case domain.IsNoDataError(err):
		response.NoData(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
