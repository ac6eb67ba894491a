package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/piyawat-k/ticket-ledger/internal/service"
	"github.com/piyawat-k/ticket-ledger/pkg/response"
	"github.com/piyawat-k/ticket-ledger/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AnalyticsHandler handles analytics HTTP requests
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// OrderStats handles GET /events/:id/stats
func (h *AnalyticsHandler) OrderStats(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.analytics.order_stats")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := h.analyticsService.OrderStats(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}

// PeakCancellationDate handles GET /events/:id/peak-cancellation
func (h *AnalyticsHandler) PeakCancellationDate(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.analytics.peak_cancellation")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	eventID := c.Param("id")
	span.SetAttributes(attribute.String("event_id", eventID))

	result, err := h.analyticsService.PeakCancellationDate(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	response.Success(c, result)
}
