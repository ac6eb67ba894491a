package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/piyawat-k/ticket-ledger/pkg/response"
	"github.com/redis/go-redis/v9"
)

const (
	// IdempotencyKeyHeader is the request header clients set to retry safely
	IdempotencyKeyHeader = "X-Idempotency-Key"

	idempotencyKeyPrefix = "idempotency:"
)

// IdempotencyStatus is the lifecycle state of a stored record
type IdempotencyStatus string

const (
	StatusProcessing IdempotencyStatus = "processing"
	StatusCompleted  IdempotencyStatus = "completed"
)

// IdempotencyRecord stores the outcome of an idempotent request
type IdempotencyRecord struct {
	Key          string            `json:"key"`
	Status       IdempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code"`
	ResponseBody string            `json:"response_body"`
	CreatedAt    time.Time         `json:"created_at"`
}

// RedisClient is the subset of redis operations the middleware needs
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	Redis         RedisClient
	TTL           time.Duration
	ProcessingTTL time.Duration
}

// DefaultIdempotencyConfig returns a config with 24h record TTL
func DefaultIdempotencyConfig(client RedisClient) *IdempotencyConfig {
	return &IdempotencyConfig{
		Redis:         client,
		TTL:           24 * time.Hour,
		ProcessingTTL: 60 * time.Second,
	}
}

type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response for a repeated
// X-Idempotency-Key and rejects concurrent duplicates of an in-flight request.
// Requests without the header pass through untouched.
func IdempotencyMiddleware(cfg *IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || cfg == nil || cfg.Redis == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		redisKey := idempotencyKeyPrefix + key
		reqHash := hashRequest(c)

		if raw, err := cfg.Redis.Get(ctx, redisKey).Result(); err == nil {
			var rec IdempotencyRecord
			if err := json.Unmarshal([]byte(raw), &rec); err == nil {
				if rec.RequestHash != reqHash {
					response.Error(c, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED",
						"idempotency key was used with a different request", "")
					c.Abort()
					return
				}
				if rec.Status == StatusProcessing {
					response.Conflict(c, "REQUEST_IN_PROGRESS", "request with this key is still processing")
					c.Abort()
					return
				}
				c.Data(rec.ResponseCode, "application/json", []byte(rec.ResponseBody))
				c.Abort()
				return
			}
		} else if !errors.Is(err, redis.Nil) {
			// redis unavailable: let the request through rather than fail it
			c.Next()
			return
		}

		rec := IdempotencyRecord{
			Key:         key,
			Status:      StatusProcessing,
			RequestHash: reqHash,
			CreatedAt:   time.Now().UTC(),
		}
		raw, _ := json.Marshal(rec)
		ok, err := cfg.Redis.SetNX(ctx, redisKey, raw, cfg.ProcessingTTL).Result()
		if err == nil && !ok {
			response.Conflict(c, "REQUEST_IN_PROGRESS", "request with this key is still processing")
			c.Abort()
			return
		}

		writer := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		if status >= http.StatusInternalServerError {
			// A server failure must stay retryable under the same key.
			_ = cfg.Redis.Del(ctx, redisKey).Err()
			return
		}

		rec.Status = StatusCompleted
		rec.ResponseCode = status
		rec.ResponseBody = writer.body.String()
		raw, _ = json.Marshal(rec)
		_ = cfg.Redis.Set(ctx, redisKey, raw, cfg.TTL).Err()
	}
}

func hashRequest(c *gin.Context) string {
	h := sha256.New()
	h.Write([]byte(c.Request.Method))
	h.Write([]byte(c.Request.URL.Path))
	if c.Request.Body != nil {
		body, err := io.ReadAll(c.Request.Body)
		if err == nil {
			h.Write(body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
