package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/piyawat-k/ticket-ledger/internal/repository"
	"github.com/piyawat-k/ticket-ledger/pkg/database"
	"github.com/piyawat-k/ticket-ledger/pkg/logger"
	"github.com/piyawat-k/ticket-ledger/pkg/retry"
	"go.uber.org/zap"
)

// AvailabilityWorkerConfig holds configuration for the availability worker
type AvailabilityWorkerConfig struct {
	Interval time.Duration
	CacheTTL time.Duration
}

// AvailabilityWorker periodically snapshots free-ticket counts from PostgreSQL
// into the Redis availability cache. The cache TTL exceeds the interval, so a
// wedged worker degrades to database reads instead of serving stale counts
// forever.
type AvailabilityWorker struct {
	config           *AvailabilityWorkerConfig
	db               *database.PostgresDB
	ticketRepo       repository.TicketRepository
	availabilityRepo repository.AvailabilityRepository
}

// NewAvailabilityWorker creates a new availability worker
func NewAvailabilityWorker(
	cfg *AvailabilityWorkerConfig,
	db *database.PostgresDB,
	ticketRepo repository.TicketRepository,
	availabilityRepo repository.AvailabilityRepository,
) *AvailabilityWorker {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 3 * cfg.Interval
	}

	return &AvailabilityWorker{
		config:           cfg,
		db:               db,
		ticketRepo:       ticketRepo,
		availabilityRepo: availabilityRepo,
	}
}

// Start runs the snapshot loop until the context is cancelled
func (w *AvailabilityWorker) Start(ctx context.Context) {
	log := logger.Get()
	log.Info("availability worker started",
		zap.Duration("interval", w.config.Interval),
		zap.Duration("cache_ttl", w.config.CacheTTL),
	)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	// Prime the cache before the first tick.
	w.snapshot(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("availability worker stopped")
			return
		case <-ticker.C:
			w.snapshot(ctx)
		}
	}
}

// snapshot refreshes the cached free count for every ticket type
func (w *AvailabilityWorker) snapshot(ctx context.Context) {
	log := logger.Get()

	ids, err := w.ticketTypeIDs(ctx)
	if err != nil {
		log.Error("failed to list ticket types", zap.Error(err))
		return
	}

	updated := 0
	for _, id := range ids {
		if err := w.refreshOne(ctx, id); err != nil {
			log.Error("failed to refresh availability",
				zap.String("ticket_type_id", id),
				zap.Error(err),
			)
			continue
		}
		updated++
	}

	log.Debug("availability snapshot complete",
		zap.Int("ticket_types", len(ids)),
		zap.Int("updated", updated),
	)
}

// refreshOne counts free tickets and writes the cache entry, retrying
// transient failures with backoff.
func (w *AvailabilityWorker) refreshOne(ctx context.Context, ticketTypeID string) error {
	return retry.Do(ctx, &retry.Config{
		MaxRetries:      2,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2,
	}, func(ctx context.Context) error {
		free, err := w.ticketRepo.CountFreeTickets(ctx, ticketTypeID)
		if err != nil {
			return err
		}
		return w.availabilityRepo.SetAvailability(ctx, ticketTypeID, free, w.config.CacheTTL)
	})
}

func (w *AvailabilityWorker) ticketTypeIDs(ctx context.Context) ([]string, error) {
	rows, err := w.db.Pool().Query(ctx, `SELECT id FROM ticket_types`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticket types: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan ticket type id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ticket types: %w", err)
	}
	return ids, nil
}
