package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/piyawat-k/ticket-ledger/internal/domain"
	"github.com/piyawat-k/ticket-ledger/internal/dto"
)

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	CreateFunc  func(ctx context.Context, event *domain.Event) error
	GetByIDFunc func(ctx context.Context, id string) (*domain.Event, error)
	ListFunc    func(ctx context.Context, limit, offset int) ([]*domain.Event, error)
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return &domain.Event{ID: id, Name: "Test Event"}, nil
}

func (m *MockEventRepository) List(ctx context.Context, limit, offset int) ([]*domain.Event, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*domain.Event{}, nil
}

// MockAvailabilityRepository is a mock implementation of AvailabilityRepository
type MockAvailabilityRepository struct {
	SetAvailabilityFunc func(ctx context.Context, ticketTypeID string, free int, ttl time.Duration) error
	GetAvailabilityFunc func(ctx context.Context, ticketTypeID string) (int, bool, error)
}

func (m *MockAvailabilityRepository) SetAvailability(ctx context.Context, ticketTypeID string, free int, ttl time.Duration) error {
	if m.SetAvailabilityFunc != nil {
		return m.SetAvailabilityFunc(ctx, ticketTypeID, free, ttl)
	}
	return nil
}

func (m *MockAvailabilityRepository) GetAvailability(ctx context.Context, ticketTypeID string) (int, bool, error) {
	if m.GetAvailabilityFunc != nil {
		return m.GetAvailabilityFunc(ctx, ticketTypeID)
	}
	return 0, false, nil
}

func TestInventoryService_CreateEvent(t *testing.T) {
	eventRepo := &MockEventRepository{}
	svc := NewInventoryService(eventRepo, &MockTicketRepository{}, nil)

	resp, err := svc.CreateEvent(context.Background(), &dto.CreateEventRequest{
		Name:        "Summer Concert",
		Description: "Open air",
	})
	if err != nil {
		t.Fatalf("CreateEvent() unexpected error = %v", err)
	}
	if resp.ID == "" {
		t.Error("CreateEvent() expected event ID, got empty")
	}
	if resp.Name != "Summer Concert" {
		t.Errorf("CreateEvent() name = %q, want %q", resp.Name, "Summer Concert")
	}
}

func TestInventoryService_CreateTicketType(t *testing.T) {
	tests := []struct {
		name       string
		eventID    string
		req        *dto.CreateTicketTypeRequest
		setupMocks func(*MockEventRepository, *MockTicketRepository)
		wantErr    error
	}{
		{
			name:    "successful creation",
			eventID: "event-001",
			req:     &dto.CreateTicketTypeRequest{Name: "GA", Quantity: 100},
		},
		{
			name:    "zero capacity pool is valid",
			eventID: "event-001",
			req:     &dto.CreateTicketTypeRequest{Name: "VIP", Quantity: 0},
		},
		{
			name:    "negative capacity rejected",
			eventID: "event-001",
			req:     &dto.CreateTicketTypeRequest{Name: "GA", Quantity: -1},
			wantErr: domain.ErrInvalidCapacity,
		},
		{
			name:    "missing event ID",
			eventID: "",
			req:     &dto.CreateTicketTypeRequest{Name: "GA", Quantity: 10},
			wantErr: domain.ErrInvalidEventID,
		},
		{
			name:    "unknown event",
			eventID: "missing",
			req:     &dto.CreateTicketTypeRequest{Name: "GA", Quantity: 10},
			setupMocks: func(er *MockEventRepository, tr *MockTicketRepository) {
				er.GetByIDFunc = func(ctx context.Context, id string) (*domain.Event, error) {
					return nil, domain.ErrEventNotFound
				}
			},
			wantErr: domain.ErrEventNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eventRepo := &MockEventRepository{}
			ticketRepo := &MockTicketRepository{}

			if tt.setupMocks != nil {
				tt.setupMocks(eventRepo, ticketRepo)
			}

			svc := NewInventoryService(eventRepo, ticketRepo, nil)

			resp, err := svc.CreateTicketType(context.Background(), tt.eventID, tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CreateTicketType() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("CreateTicketType() unexpected error = %v", err)
				return
			}
			if resp.Available != tt.req.Quantity {
				t.Errorf("CreateTicketType() available = %d, want %d", resp.Available, tt.req.Quantity)
			}
		})
	}
}

func TestInventoryService_GetTicketType_AvailabilityFallback(t *testing.T) {
	ticketRepo := &MockTicketRepository{
		GetTicketTypeFunc: func(ctx context.Context, id string) (*domain.TicketType, error) {
			return &domain.TicketType{ID: id, EventID: "event-001", Name: "GA", Quantity: 100}, nil
		},
		CountFreeTicketsFunc: func(ctx context.Context, ticketTypeID string) (int, error) {
			return 42, nil
		},
	}

	t.Run("cache hit wins", func(t *testing.T) {
		availRepo := &MockAvailabilityRepository{
			GetAvailabilityFunc: func(ctx context.Context, ticketTypeID string) (int, bool, error) {
				return 77, true, nil
			},
		}
		svc := NewInventoryService(&MockEventRepository{}, ticketRepo, availRepo)

		resp, err := svc.GetTicketType(context.Background(), "tt-001")
		if err != nil {
			t.Fatalf("GetTicketType() unexpected error = %v", err)
		}
		if resp.Available != 77 {
			t.Errorf("GetTicketType() available = %d, want 77", resp.Available)
		}
	})

	t.Run("cache miss falls back to live count", func(t *testing.T) {
		availRepo := &MockAvailabilityRepository{
			GetAvailabilityFunc: func(ctx context.Context, ticketTypeID string) (int, bool, error) {
				return 0, false, nil
			},
		}
		svc := NewInventoryService(&MockEventRepository{}, ticketRepo, availRepo)

		resp, err := svc.GetTicketType(context.Background(), "tt-001")
		if err != nil {
			t.Fatalf("GetTicketType() unexpected error = %v", err)
		}
		if resp.Available != 42 {
			t.Errorf("GetTicketType() available = %d, want 42", resp.Available)
		}
	})

	t.Run("no cache configured", func(t *testing.T) {
		svc := NewInventoryService(&MockEventRepository{}, ticketRepo, nil)

		resp, err := svc.GetTicketType(context.Background(), "tt-001")
		if err != nil {
			t.Fatalf("GetTicketType() unexpected error = %v", err)
		}
		if resp.Available != 42 {
			t.Errorf("GetTicketType() available = %d, want 42", resp.Available)
		}
	})
}

func TestInventoryService_FreeTickets(t *testing.T) {
	ticketRepo := &MockTicketRepository{
		FreeTicketsFunc: func(ctx context.Context, ticketTypeID string) ([]*domain.Ticket, error) {
			return []*domain.Ticket{
				{ID: "t-1", TicketTypeID: ticketTypeID},
				{ID: "t-2", TicketTypeID: ticketTypeID},
			}, nil
		},
	}
	svc := NewInventoryService(&MockEventRepository{}, ticketRepo, nil)

	tickets, err := svc.FreeTickets(context.Background(), "tt-001")
	if err != nil {
		t.Fatalf("FreeTickets() unexpected error = %v", err)
	}
	if len(tickets) != 2 {
		t.Errorf("FreeTickets() count = %d, want 2", len(tickets))
	}
	for _, ticket := range tickets {
		if ticket.Bound() {
			t.Errorf("FreeTickets() ticket %s is bound", ticket.ID)
		}
	}

	if _, err := svc.FreeTickets(context.Background(), ""); !errors.Is(err, domain.ErrInvalidTicketType) {
		t.Errorf("FreeTickets() error = %v, want %v", err, domain.ErrInvalidTicketType)
	}
}
