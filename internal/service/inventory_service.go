package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/piyawat-k/ticket-ledger/internal/domain"
	"github.com/piyawat-k/ticket-ledger/internal/dto"
	"github.com/piyawat-k/ticket-ledger/internal/repository"
	"github.com/piyawat-k/ticket-ledger/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// InventoryService defines the interface for event and ticket pool management
type InventoryService interface {
	// CreateEvent creates a new event
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error)

	// GetEvent retrieves an event by ID
	GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error)

	// ListEvents retrieves events by page
	ListEvents(ctx context.Context, page, pageSize int) ([]*dto.EventResponse, error)

	// CreateTicketType creates a ticket type and its fixed pool of tickets
	CreateTicketType(ctx context.Context, eventID string, req *dto.CreateTicketTypeRequest) (*dto.TicketTypeResponse, error)

	// GetTicketType retrieves a ticket type with its live availability
	GetTicketType(ctx context.Context, ticketTypeID string) (*dto.TicketTypeResponse, error)

	// ListTicketTypes retrieves the ticket types of an event
	ListTicketTypes(ctx context.Context, eventID string) ([]*dto.TicketTypeResponse, error)

	// FreeTickets returns the unbound tickets of a ticket type
	FreeTickets(ctx context.Context, ticketTypeID string) ([]*domain.Ticket, error)
}

// inventoryService implements InventoryService
type inventoryService struct {
	eventRepo        repository.EventRepository
	ticketRepo       repository.TicketRepository
	availabilityRepo repository.AvailabilityRepository
}

// NewInventoryService creates a new inventory service. availabilityRepo may be
// nil; availability reads then always hit the database.
func NewInventoryService(
	eventRepo repository.EventRepository,
	ticketRepo repository.TicketRepository,
	availabilityRepo repository.AvailabilityRepository,
) InventoryService {
	return &inventoryService{
		eventRepo:        eventRepo,
		ticketRepo:       ticketRepo,
		availabilityRepo: availabilityRepo,
	}
}

// CreateEvent creates a new event
func (s *inventoryService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.inventory.create_event")
	defer span.End()

	event := &domain.Event{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}

	span.SetAttributes(attribute.String("event_id", event.ID))

	if err := s.eventRepo.Create(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return eventToResponse(event), nil
}

// GetEvent retrieves an event by ID
func (s *inventoryService) GetEvent(ctx context.Context, eventID string) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.inventory.get_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event id")
		return nil, domain.ErrInvalidEventID
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return eventToResponse(event), nil
}

// ListEvents retrieves events by page
func (s *inventoryService) ListEvents(ctx context.Context, page, pageSize int) ([]*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.inventory.list_events")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize
	events, err := s.eventRepo.List(ctx, pageSize, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.EventResponse, len(events))
	for i, e := range events {
		responses[i] = eventToResponse(e)
	}

	span.SetAttributes(attribute.Int("count", len(responses)))
	span.SetStatus(codes.Ok, "")
	return responses, nil
}

// CreateTicketType creates a ticket type under an event together with its
// entire ticket pool. The pool size is fixed at creation; there is no
// restocking path.
func (s *inventoryService) CreateTicketType(ctx context.Context, eventID string, req *dto.CreateTicketTypeRequest) (*dto.TicketTypeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.inventory.create_ticket_type")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.Int("quantity", req.Quantity),
	)

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event id")
		return nil, domain.ErrInvalidEventID
	}
	if req.Quantity < 0 {
		span.SetStatus(codes.Error, "invalid capacity")
		return nil, domain.ErrInvalidCapacity
	}

	// The event must exist before a pool is attached to it.
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ticketType := &domain.TicketType{
		ID:        uuid.New().String(),
		EventID:   eventID,
		Name:      req.Name,
		Quantity:  req.Quantity,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.ticketRepo.CreateTicketType(ctx, ticketType); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("ticket_type_id", ticketType.ID))
	span.SetStatus(codes.Ok, "")
	return ticketTypeToResponse(ticketType, ticketType.Quantity), nil
}

// GetTicketType retrieves a ticket type with its availability. The cached
// count is preferred; a miss falls through to a live database count.
func (s *inventoryService) GetTicketType(ctx context.Context, ticketTypeID string) (*dto.TicketTypeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.inventory.get_ticket_type")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", ticketTypeID))

	if ticketTypeID == "" {
		span.SetStatus(codes.Error, "invalid ticket type id")
		return nil, domain.ErrInvalidTicketType
	}

	ticketType, err := s.ticketRepo.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	available, err := s.availability(ctx, ticketTypeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("available", available))
	span.SetStatus(codes.Ok, "")
	return ticketTypeToResponse(ticketType, available), nil
}

// ListTicketTypes retrieves the ticket types of an event with availability
func (s *inventoryService) ListTicketTypes(ctx context.Context, eventID string) ([]*dto.TicketTypeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.inventory.list_ticket_types")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event id")
		return nil, domain.ErrInvalidEventID
	}

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	types, err := s.ticketRepo.ListTicketTypes(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	responses := make([]*dto.TicketTypeResponse, len(types))
	for i, tt := range types {
		available, err := s.availability(ctx, tt.ID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		responses[i] = ticketTypeToResponse(tt, available)
	}

	span.SetAttributes(attribute.Int("count", len(responses)))
	span.SetStatus(codes.Ok, "")
	return responses, nil
}

// FreeTickets returns the unbound tickets of a ticket type
func (s *inventoryService) FreeTickets(ctx context.Context, ticketTypeID string) ([]*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.inventory.free_tickets")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", ticketTypeID))

	if ticketTypeID == "" {
		span.SetStatus(codes.Error, "invalid ticket type id")
		return nil, domain.ErrInvalidTicketType
	}

	if _, err := s.ticketRepo.GetTicketType(ctx, ticketTypeID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	tickets, err := s.ticketRepo.FreeTickets(ctx, ticketTypeID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(tickets)))
	span.SetStatus(codes.Ok, "")
	return tickets, nil
}

func (s *inventoryService) availability(ctx context.Context, ticketTypeID string) (int, error) {
	if s.availabilityRepo != nil {
		if free, ok, err := s.availabilityRepo.GetAvailability(ctx, ticketTypeID); err == nil && ok {
			return free, nil
		}
	}
	return s.ticketRepo.CountFreeTickets(ctx, ticketTypeID)
}

func eventToResponse(event *domain.Event) *dto.EventResponse {
	return &dto.EventResponse{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		CreatedAt:   event.CreatedAt,
	}
}

func ticketTypeToResponse(tt *domain.TicketType, available int) *dto.TicketTypeResponse {
	return &dto.TicketTypeResponse{
		ID:        tt.ID,
		EventID:   tt.EventID,
		Name:      tt.Name,
		Quantity:  tt.Quantity,
		Available: available,
		CreatedAt: tt.CreatedAt,
	}
}
