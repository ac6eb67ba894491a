package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/piyawat-k/ticket-ledger/pkg/redis"
	"github.com/piyawat-k/ticket-ledger/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const availabilityKeyPrefix = "availability:ticket_type:"

// RedisAvailabilityRepository caches free-ticket counts in Redis. The cache is
// advisory: booking correctness comes from the database transaction, the cache
// only serves cheap availability reads.
type RedisAvailabilityRepository struct {
	client *redis.Client
}

// NewRedisAvailabilityRepository creates a new RedisAvailabilityRepository
func NewRedisAvailabilityRepository(client *redis.Client) *RedisAvailabilityRepository {
	return &RedisAvailabilityRepository{client: client}
}

// SetAvailability stores the free-ticket count for a ticket type with a TTL
func (r *RedisAvailabilityRepository) SetAvailability(ctx context.Context, ticketTypeID string, free int, ttl time.Duration) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.availability.set")
	defer span.End()

	span.SetAttributes(
		attribute.String("ticket_type_id", ticketTypeID),
		attribute.Int("free", free),
	)

	key := availabilityKeyPrefix + ticketTypeID
	if err := r.client.Client().Set(ctx, key, free, ttl).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to set availability: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetAvailability returns the cached free-ticket count. The second return
// value reports whether the key was present.
func (r *RedisAvailabilityRepository) GetAvailability(ctx context.Context, ticketTypeID string) (int, bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.availability.get")
	defer span.End()

	span.SetAttributes(attribute.String("ticket_type_id", ticketTypeID))

	key := availabilityKeyPrefix + ticketTypeID
	val, err := r.client.Client().Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			span.SetStatus(codes.Ok, "cache miss")
			return 0, false, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, false, fmt.Errorf("failed to get availability: %w", err)
	}

	free, err := strconv.Atoi(val)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, false, fmt.Errorf("failed to parse cached availability: %w", err)
	}

	span.SetAttributes(attribute.Int("free", free))
	span.SetStatus(codes.Ok, "")
	return free, true, nil
}

// Ensure RedisAvailabilityRepository implements AvailabilityRepository
var _ AvailabilityRepository = (*RedisAvailabilityRepository)(nil)
