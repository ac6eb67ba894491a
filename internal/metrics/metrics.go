package metrics

import (
	"context"
	"sync"

	"github.com/piyawat-k/ticket-ledger/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Booking counters
	OrdersCreated    *telemetry.Counter
	OrdersFulfilled  *telemetry.Counter
	BookingsRejected *telemetry.Counter
	OrdersCancelled  *telemetry.Counter

	// Histograms
	BookingDuration *telemetry.Histogram

	// Gauges
	FulfilledOrders *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all ticket-ledger metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	OrdersCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_orders_created_total",
		Description: "Total number of orders created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	OrdersFulfilled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_orders_fulfilled_total",
		Description: "Total number of orders fulfilled by booking",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingsRejected, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_bookings_rejected_total",
		Description: "Total number of bookings rejected for insufficient inventory",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	OrdersCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_orders_cancelled_total",
		Description: "Total number of fulfilled orders cancelled",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	BookingDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "ticket_booking_duration_seconds",
		Description: "Duration of the booking transaction",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5})
	if err != nil {
		return err
	}

	FulfilledOrders, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "ticket_fulfilled_orders",
		Description: "Current number of fulfilled orders",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordOrderCreated records an order creation metric
func RecordOrderCreated(ctx context.Context, ticketTypeID string, quantity int) {
	if OrdersCreated != nil {
		OrdersCreated.Inc(ctx,
			attribute.String("ticket_type_id", ticketTypeID),
			attribute.Int("quantity", quantity),
		)
	}
}

// RecordBookingFulfilled records a successful booking metric
func RecordBookingFulfilled(ctx context.Context, ticketTypeID string, durationSeconds float64) {
	if OrdersFulfilled != nil {
		OrdersFulfilled.Inc(ctx,
			attribute.String("ticket_type_id", ticketTypeID),
		)
	}
	if BookingDuration != nil {
		BookingDuration.Record(ctx, durationSeconds,
			attribute.String("ticket_type_id", ticketTypeID),
			attribute.String("outcome", "fulfilled"),
		)
	}
	if FulfilledOrders != nil {
		FulfilledOrders.Inc(ctx)
	}
}

// RecordBookingRejected records an insufficient-inventory booking metric
func RecordBookingRejected(ctx context.Context, ticketTypeID string, durationSeconds float64) {
	if BookingsRejected != nil {
		BookingsRejected.Inc(ctx,
			attribute.String("ticket_type_id", ticketTypeID),
		)
	}
	if BookingDuration != nil {
		BookingDuration.Record(ctx, durationSeconds,
			attribute.String("ticket_type_id", ticketTypeID),
			attribute.String("outcome", "rejected"),
		)
	}
}

// RecordCancellation records an order cancellation metric
func RecordCancellation(ctx context.Context, ticketTypeID string) {
	if OrdersCancelled != nil {
		OrdersCancelled.Inc(ctx,
			attribute.String("ticket_type_id", ticketTypeID),
		)
	}
	if FulfilledOrders != nil {
		FulfilledOrders.Dec(ctx)
	}
}
