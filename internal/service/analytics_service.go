package service

import (
	"context"

	"github.com/piyawat-k/ticket-ledger/internal/domain"
	"github.com/piyawat-k/ticket-ledger/internal/dto"
	"github.com/piyawat-k/ticket-ledger/internal/repository"
	"github.com/piyawat-k/ticket-ledger/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AnalyticsService defines the interface for event order analytics
type AnalyticsService interface {
	// OrderStats returns order and cancellation aggregates for an event.
	// An event with zero orders yields domain.ErrNoOrders.
	OrderStats(ctx context.Context, eventID string) (*dto.StatsResponse, error)

	// PeakCancellationDate returns the date with the most cancelled tickets.
	// An event with no cancelled tickets yields domain.ErrNoCancelledTickets.
	PeakCancellationDate(ctx context.Context, eventID string) (*dto.PeakCancellationResponse, error)
}

// analyticsService implements AnalyticsService
type analyticsService struct {
	eventRepo     repository.EventRepository
	analyticsRepo repository.AnalyticsRepository
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	eventRepo repository.EventRepository,
	analyticsRepo repository.AnalyticsRepository,
) AnalyticsService {
	return &analyticsService{
		eventRepo:     eventRepo,
		analyticsRepo: analyticsRepo,
	}
}

// OrderStats returns order and cancellation aggregates for an event
func (s *analyticsService) OrderStats(ctx context.Context, eventID string) (*dto.StatsResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.analytics.order_stats")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event id")
		return nil, domain.ErrInvalidEventID
	}

	// Distinguish an unknown event from a known event with no orders.
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	stats, err := s.analyticsRepo.OrderStats(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("total_orders", stats.TotalOrders),
		attribute.Int("cancelled_tickets", stats.CancelledTickets),
	)
	span.SetStatus(codes.Ok, "")
	return &dto.StatsResponse{
		EventID:          stats.EventID,
		TotalOrders:      stats.TotalOrders,
		CancelledTickets: stats.CancelledTickets,
		CancellationRate: stats.CancellationRate,
	}, nil
}

// PeakCancellationDate returns the date with the most cancelled tickets
func (s *analyticsService) PeakCancellationDate(ctx context.Context, eventID string) (*dto.PeakCancellationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.analytics.peak_cancellation")
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

	day, cancelled, err := s.analyticsRepo.PeakCancellationDate(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("date", day.Format("2006-01-02")),
		attribute.Int("cancelled_tickets", cancelled),
	)
	span.SetStatus(codes.Ok, "")
	return &dto.PeakCancellationResponse{
		EventID:          eventID,
		Date:             day,
		CancelledTickets: cancelled,
	}, nil
}
