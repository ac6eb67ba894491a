package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/piyawat-k/ticket-ledger/internal/domain"
	"github.com/piyawat-k/ticket-ledger/internal/dto"
)

// MockAnalyticsService is a mock implementation of service.AnalyticsService
type MockAnalyticsService struct {
	OrderStatsFunc           func(ctx context.Context, eventID string) (*dto.StatsResponse, error)
	PeakCancellationDateFunc func(ctx context.Context, eventID string) (*dto.PeakCancellationResponse, error)
}

func (m *MockAnalyticsService) OrderStats(ctx context.Context, eventID string) (*dto.StatsResponse, error) {
	if m.OrderStatsFunc != nil {
		return m.OrderStatsFunc(ctx, eventID)
	}
	return &dto.StatsResponse{EventID: eventID}, nil
}

func (m *MockAnalyticsService) PeakCancellationDate(ctx context.Context, eventID string) (*dto.PeakCancellationResponse, error) {
	if m.PeakCancellationDateFunc != nil {
		return m.PeakCancellationDateFunc(ctx, eventID)
	}
	return &dto.PeakCancellationResponse{EventID: eventID}, nil
}

func setupAnalyticsRouter(svc *MockAnalyticsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h := NewAnalyticsHandler(svc)
	router.GET("/events/:id/stats", h.OrderStats)
	router.GET("/events/:id/peak-cancellation", h.PeakCancellationDate)
	return router
}

func TestAnalyticsHandler_OrderStats(t *testing.T) {
	tests := []struct {
		name       string
		svc        *MockAnalyticsService
		wantStatus int
		wantCode   string
	}{
		{
			name: "stats returned",
			svc: &MockAnalyticsService{
				OrderStatsFunc: func(ctx context.Context, eventID string) (*dto.StatsResponse, error) {
					return &dto.StatsResponse{
						EventID:          eventID,
						TotalOrders:      4,
						CancelledTickets: 3,
						CancellationRate: 50,
					}, nil
				},
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "no orders yields no data",
			svc: &MockAnalyticsService{
				OrderStatsFunc: func(ctx context.Context, eventID string) (*dto.StatsResponse, error) {
					return nil, domain.ErrNoOrders
				},
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "NO_DATA",
		},
		{
			name: "unknown event yields not found",
			svc: &MockAnalyticsService{
				OrderStatsFunc: func(ctx context.Context, eventID string) (*dto.StatsResponse, error) {
					return nil, domain.ErrEventNotFound
				},
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupAnalyticsRouter(tt.svc)

			req := httptest.NewRequest(http.MethodGet, "/events/event-001/stats", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				resp := decodeResponse(t, w)
				if resp.Error == nil || resp.Error.Code != tt.wantCode {
					t.Errorf("error code = %v, want %s", resp.Error, tt.wantCode)
				}
			}
		})
	}
}

func TestAnalyticsHandler_PeakCancellationDate(t *testing.T) {
	tests := []struct {
		name       string
		svc        *MockAnalyticsService
		wantStatus int
		wantCode   string
	}{
		{
			name: "peak date returned",
			svc: &MockAnalyticsService{
				PeakCancellationDateFunc: func(ctx context.Context, eventID string) (*dto.PeakCancellationResponse, error) {
					return &dto.PeakCancellationResponse{
						EventID:          eventID,
						Date:             time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
						CancelledTickets: 5,
					}, nil
				},
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "no cancellations yields no data",
			svc: &MockAnalyticsService{
				PeakCancellationDateFunc: func(ctx context.Context, eventID string) (*dto.PeakCancellationResponse, error) {
					return nil, domain.ErrNoCancelledTickets
				},
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "NO_DATA",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupAnalyticsRouter(tt.svc)

			req := httptest.NewRequest(http.MethodGet, "/events/event-001/peak-cancellation", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				resp := decodeResponse(t, w)
				if resp.Error == nil || resp.Error.Code != tt.wantCode {
					t.Errorf("error code = %v, want %s", resp.Error, tt.wantCode)
				}
			}
		})
	}
}
