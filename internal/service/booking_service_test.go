package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/piyawat-k/ticket-ledger/internal/domain"
	"github.com/piyawat-k/ticket-ledger/internal/dto"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	CreateFunc      func(ctx context.Context, order *domain.Order) error
	GetByIDFunc     func(ctx context.Context, id string) (*domain.Order, error)
	GetByUserIDFunc func(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error)
	BookFunc        func(ctx context.Context, orderID string) (*domain.BookingResult, error)
	CancelFunc      func(ctx context.Context, orderID string) error
	DeleteFunc      func(ctx context.Context, orderID string) error
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrOrderNotFound
}

func (m *MockOrderRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID, limit, offset)
	}
	return []*domain.Order{}, nil
}

func (m *MockOrderRepository) Book(ctx context.Context, orderID string) (*domain.BookingResult, error) {
	if m.BookFunc != nil {
		return m.BookFunc(ctx, orderID)
	}
	return &domain.BookingResult{OrderID: orderID, Fulfilled: true}, nil
}

func (m *MockOrderRepository) Cancel(ctx context.Context, orderID string) error {
	if m.CancelFunc != nil {
		return m.CancelFunc(ctx, orderID)
	}
	return nil
}

func (m *MockOrderRepository) Delete(ctx context.Context, orderID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, orderID)
	}
	return nil
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	CreateTicketTypeFunc func(ctx context.Context, ticketType *domain.TicketType) error
	GetTicketTypeFunc    func(ctx context.Context, id string) (*domain.TicketType, error)
	ListTicketTypesFunc  func(ctx context.Context, eventID string) ([]*domain.TicketType, error)
	FreeTicketsFunc      func(ctx context.Context, ticketTypeID string) ([]*domain.Ticket, error)
	CountFreeTicketsFunc func(ctx context.Context, ticketTypeID string) (int, error)
	TicketsByOrderFunc   func(ctx context.Context, orderID string) ([]*domain.Ticket, error)
}

func (m *MockTicketRepository) CreateTicketType(ctx context.Context, ticketType *domain.TicketType) error {
	if m.CreateTicketTypeFunc != nil {
		return m.CreateTicketTypeFunc(ctx, ticketType)
	}
	return nil
}

func (m *MockTicketRepository) GetTicketType(ctx context.Context, id string) (*domain.TicketType, error) {
	if m.GetTicketTypeFunc != nil {
		return m.GetTicketTypeFunc(ctx, id)
	}
	return &domain.TicketType{ID: id, EventID: "event-001", Name: "GA", Quantity: 100}, nil
}

func (m *MockTicketRepository) ListTicketTypes(ctx context.Context, eventID string) ([]*domain.TicketType, error) {
	if m.ListTicketTypesFunc != nil {
		return m.ListTicketTypesFunc(ctx, eventID)
	}
	return []*domain.TicketType{}, nil
}

func (m *MockTicketRepository) FreeTickets(ctx context.Context, ticketTypeID string) ([]*domain.Ticket, error) {
	if m.FreeTicketsFunc != nil {
		return m.FreeTicketsFunc(ctx, ticketTypeID)
	}
	return []*domain.Ticket{}, nil
}

func (m *MockTicketRepository) CountFreeTickets(ctx context.Context, ticketTypeID string) (int, error) {
	if m.CountFreeTicketsFunc != nil {
		return m.CountFreeTicketsFunc(ctx, ticketTypeID)
	}
	return 0, nil
}

func (m *MockTicketRepository) TicketsByOrder(ctx context.Context, orderID string) ([]*domain.Ticket, error) {
	if m.TicketsByOrderFunc != nil {
		return m.TicketsByOrderFunc(ctx, orderID)
	}
	return []*domain.Ticket{}, nil
}

func TestBookingService_CreateOrder(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		req        *dto.CreateOrderRequest
		setupMocks func(*MockOrderRepository, *MockTicketRepository)
		wantErr    error
	}{
		{
			name:   "successful order creation",
			userID: "user-001",
			req: &dto.CreateOrderRequest{
				TicketTypeID: "tt-001",
				Quantity:     2,
			},
		},
		{
			name:   "missing user ID",
			userID: "",
			req: &dto.CreateOrderRequest{
				TicketTypeID: "tt-001",
				Quantity:     2,
			},
			wantErr: domain.ErrInvalidUserID,
		},
		{
			name:   "zero quantity",
			userID: "user-001",
			req: &dto.CreateOrderRequest{
				TicketTypeID: "tt-001",
				Quantity:     0,
			},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name:   "negative quantity",
			userID: "user-001",
			req: &dto.CreateOrderRequest{
				TicketTypeID: "tt-001",
				Quantity:     -3,
			},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name:   "unknown ticket type",
			userID: "user-001",
			req: &dto.CreateOrderRequest{
				TicketTypeID: "missing",
				Quantity:     2,
			},
			setupMocks: func(or *MockOrderRepository, tr *MockTicketRepository) {
				tr.GetTicketTypeFunc = func(ctx context.Context, id string) (*domain.TicketType, error) {
					return nil, domain.ErrTicketTypeNotFound
				}
			},
			wantErr: domain.ErrTicketTypeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := &MockOrderRepository{}
			ticketRepo := &MockTicketRepository{}

			if tt.setupMocks != nil {
				tt.setupMocks(orderRepo, ticketRepo)
			}

			svc := NewBookingService(orderRepo, ticketRepo, NewNoOpEventPublisher())

			resp, err := svc.CreateOrder(context.Background(), tt.userID, tt.req)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CreateOrder() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("CreateOrder() unexpected error = %v", err)
				return
			}
			if resp.ID == "" {
				t.Error("CreateOrder() expected order ID, got empty")
			}
			if resp.Fulfilled {
				t.Error("CreateOrder() new order must start unfulfilled")
			}
		})
	}
}

func TestBookingService_BookTickets(t *testing.T) {
	order := &domain.Order{
		ID:           "order-001",
		UserID:       "user-001",
		TicketTypeID: "tt-001",
		Quantity:     3,
		CreatedAt:    time.Now(),
	}

	tests := []struct {
		name          string
		orderID       string
		setupMocks    func(*MockOrderRepository, *MockTicketRepository)
		wantErr       error
		wantFulfilled bool
	}{
		{
			name:    "booking fulfills order",
			orderID: "order-001",
			setupMocks: func(or *MockOrderRepository, tr *MockTicketRepository) {
				or.BookFunc = func(ctx context.Context, orderID string) (*domain.BookingResult, error) {
					return &domain.BookingResult{
						OrderID:   orderID,
						Requested: 3,
						Reserved:  3,
						Fulfilled: true,
					}, nil
				}
				or.GetByIDFunc = func(ctx context.Context, id string) (*domain.Order, error) {
					fulfilled := *order
					fulfilled.Fulfilled = true
					return &fulfilled, nil
				}
			},
			wantFulfilled: true,
		},
		{
			name:    "insufficient inventory is not an error",
			orderID: "order-001",
			setupMocks: func(or *MockOrderRepository, tr *MockTicketRepository) {
				or.BookFunc = func(ctx context.Context, orderID string) (*domain.BookingResult, error) {
					return &domain.BookingResult{
						OrderID:   orderID,
						Requested: 3,
						Reserved:  1,
						Fulfilled: false,
					}, nil
				}
				or.GetByIDFunc = func(ctx context.Context, id string) (*domain.Order, error) {
					return order, nil
				}
			},
			wantFulfilled: false,
		},
		{
			name:    "reload failure does not undo a committed booking",
			orderID: "order-001",
			setupMocks: func(or *MockOrderRepository, tr *MockTicketRepository) {
				or.BookFunc = func(ctx context.Context, orderID string) (*domain.BookingResult, error) {
					return &domain.BookingResult{
						OrderID:   orderID,
						Requested: 3,
						Reserved:  3,
						Fulfilled: true,
					}, nil
				}
				or.GetByIDFunc = func(ctx context.Context, id string) (*domain.Order, error) {
					return nil, errors.New("connection reset")
				}
			},
			wantFulfilled: true,
		},
		{
			name:    "already fulfilled order",
			orderID: "order-001",
			setupMocks: func(or *MockOrderRepository, tr *MockTicketRepository) {
				or.BookFunc = func(ctx context.Context, orderID string) (*domain.BookingResult, error) {
					return nil, domain.ErrOrderAlreadyFulfilled
				}
			},
			wantErr: domain.ErrOrderAlreadyFulfilled,
		},
		{
			name:    "unknown order",
			orderID: "missing",
			setupMocks: func(or *MockOrderRepository, tr *MockTicketRepository) {
				or.BookFunc = func(ctx context.Context, orderID string) (*domain.BookingResult, error) {
					return nil, domain.ErrOrderNotFound
				}
			},
			wantErr: domain.ErrOrderNotFound,
		},
		{
			name:    "missing order ID",
			orderID: "",
			wantErr: domain.ErrInvalidOrderID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := &MockOrderRepository{}
			ticketRepo := &MockTicketRepository{}

			if tt.setupMocks != nil {
				tt.setupMocks(orderRepo, ticketRepo)
			}

			svc := NewBookingService(orderRepo, ticketRepo, NewNoOpEventPublisher())

			resp, err := svc.BookTickets(context.Background(), tt.orderID)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("BookTickets() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("BookTickets() unexpected error = %v", err)
				return
			}
			if resp.Fulfilled != tt.wantFulfilled {
				t.Errorf("BookTickets() fulfilled = %v, want %v", resp.Fulfilled, tt.wantFulfilled)
			}
		})
	}
}

func TestBookingService_CancelOrder(t *testing.T) {
	tests := []struct {
		name       string
		orderID    string
		setupMocks func(*MockOrderRepository)
		wantErr    error
	}{
		{
			name:    "successful cancellation",
			orderID: "order-001",
			setupMocks: func(or *MockOrderRepository) {
				or.CancelFunc = func(ctx context.Context, orderID string) error {
					return nil
				}
				or.GetByIDFunc = func(ctx context.Context, id string) (*domain.Order, error) {
					return &domain.Order{
						ID:           id,
						UserID:       "user-001",
						TicketTypeID: "tt-001",
						Quantity:     2,
						Fulfilled:    false,
					}, nil
				}
			},
		},
		{
			name:    "cancelling unfulfilled order",
			orderID: "order-001",
			setupMocks: func(or *MockOrderRepository) {
				or.CancelFunc = func(ctx context.Context, orderID string) error {
					return domain.ErrOrderNotFulfilled
				}
			},
			wantErr: domain.ErrOrderNotFulfilled,
		},
		{
			name:    "unknown order",
			orderID: "missing",
			setupMocks: func(or *MockOrderRepository) {
				or.CancelFunc = func(ctx context.Context, orderID string) error {
					return domain.ErrOrderNotFound
				}
			},
			wantErr: domain.ErrOrderNotFound,
		},
		{
			name:    "missing order ID",
			orderID: "",
			wantErr: domain.ErrInvalidOrderID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orderRepo := &MockOrderRepository{}

			if tt.setupMocks != nil {
				tt.setupMocks(orderRepo)
			}

			svc := NewBookingService(orderRepo, &MockTicketRepository{}, NewNoOpEventPublisher())

			resp, err := svc.CancelOrder(context.Background(), tt.orderID)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("CancelOrder() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("CancelOrder() unexpected error = %v", err)
				return
			}
			if resp.Fulfilled {
				t.Error("CancelOrder() cancelled order must be unfulfilled")
			}
		})
	}
}

func TestBookingService_DeleteOrder(t *testing.T) {
	orderRepo := &MockOrderRepository{
		DeleteFunc: func(ctx context.Context, orderID string) error {
			if orderID != "order-001" {
				return domain.ErrOrderNotFound
			}
			return nil
		},
	}

	svc := NewBookingService(orderRepo, &MockTicketRepository{}, NewNoOpEventPublisher())

	if err := svc.DeleteOrder(context.Background(), "order-001"); err != nil {
		t.Errorf("DeleteOrder() unexpected error = %v", err)
	}
	if err := svc.DeleteOrder(context.Background(), "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("DeleteOrder() error = %v, want %v", err, domain.ErrOrderNotFound)
	}
	if err := svc.DeleteOrder(context.Background(), ""); !errors.Is(err, domain.ErrInvalidOrderID) {
		t.Errorf("DeleteOrder() error = %v, want %v", err, domain.ErrInvalidOrderID)
	}
}
