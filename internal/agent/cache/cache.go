// Package cache is the read-through agent profile cache.
//
// RedisCache stores profiles as JSON under agents:profile:<uuid> with a TTL and guards
// Redis with a circuit breaker so an unhealthy Redis costs one fast skip per lookup
// instead of a timeout. Noop is used when no Redis URL is configured.
//
// Get returns sentinel.ErrNotFound on a miss and an error wrapping
// sentinel.ErrUnavailable when Redis is down or skipped. Callers fall back to the store
// on any error.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"fieldforce/internal/agent/models"
	"fieldforce/internal/platform/metrics"
	id "fieldforce/pkg/domain"
	"fieldforce/pkg/platform/circuit"
	"fieldforce/pkg/platform/sentinel"
)

const keyPrefix = "agents:profile:"

// DefaultTTL applies when the configured TTL is not positive.
const DefaultTTL = 5 * time.Minute

// ErrCircuitOpen is returned while the breaker is skipping Redis.
var ErrCircuitOpen = fmt.Errorf("agent cache circuit open: %w", sentinel.ErrUnavailable)

// Key returns the Redis key for an agent profile.
func Key(agentID id.AgentID) string {
	return keyPrefix + agentID.String()
}

type RedisCache struct {
	client  redis.Cmdable
	ttl     time.Duration
	breaker *circuit.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*RedisCache)

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *RedisCache) {
		c.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *RedisCache) {
		c.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *RedisCache) {
		c.breaker = b
	}
}

func NewRedis(client redis.Cmdable, ttl time.Duration, opts ...Option) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &RedisCache{client: client, ttl: ttl}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = circuit.New("agent-cache")
	}
	return c
}

func (c *RedisCache) Get(ctx context.Context, agentID id.AgentID) (*models.Agent, error) {
	if !c.breaker.Allow() {
		c.countError()
		return nil, ErrCircuitOpen
	}

	data, err := c.client.Get(ctx, Key(agentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.recordSuccess(ctx)
		if c.metrics != nil {
			c.metrics.IncrementCacheMiss()
		}
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		c.recordFailure(ctx, err)
		return nil, fmt.Errorf("get agent profile: %w: %v", sentinel.ErrUnavailable, err)
	}
	c.recordSuccess(ctx)

	var a models.Agent
	if err := json.Unmarshal(data, &a); err != nil {
		// A corrupt entry is treated as a miss and dropped.
		_ = c.client.Del(ctx, Key(agentID)).Err()
		if c.metrics != nil {
			c.metrics.IncrementCacheMiss()
		}
		return nil, sentinel.ErrNotFound
	}
	if c.metrics != nil {
		c.metrics.IncrementCacheHit()
	}
	return &a, nil
}

func (c *RedisCache) Set(ctx context.Context, a *models.Agent) error {
	if a == nil {
		return nil
	}
	if !c.breaker.Allow() {
		c.countError()
		return ErrCircuitOpen
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal agent profile: %w", err)
	}
	if err := c.client.Set(ctx, Key(a.ID), data, c.ttl).Err(); err != nil {
		c.recordFailure(ctx, err)
		return fmt.Errorf("set agent profile: %w: %v", sentinel.ErrUnavailable, err)
	}
	c.recordSuccess(ctx)
	return nil
}

// Invalidate always tries Redis, even with the breaker open, so a recovering Redis
// does not keep serving a stale profile until the TTL expires.
func (c *RedisCache) Invalidate(ctx context.Context, agentID id.AgentID) error {
	if err := c.client.Del(ctx, Key(agentID)).Err(); err != nil {
		c.recordFailure(ctx, err)
		return fmt.Errorf("invalidate agent profile: %w: %v", sentinel.ErrUnavailable, err)
	}
	c.recordSuccess(ctx)
	return nil
}

func (c *RedisCache) recordFailure(ctx context.Context, err error) {
	c.countError()
	if change := c.breaker.RecordFailure(); change.Opened && c.logger != nil {
		c.logger.WarnContext(ctx, "agent cache circuit opened", "breaker", c.breaker.Name(), "error", err)
	}
}

func (c *RedisCache) recordSuccess(ctx context.Context) {
	if change := c.breaker.RecordSuccess(); change.Closed && c.logger != nil {
		c.logger.InfoContext(ctx, "agent cache circuit closed", "breaker", c.breaker.Name())
	}
}

func (c *RedisCache) countError() {
	if c.metrics != nil {
		c.metrics.IncrementCacheError()
	}
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, id.AgentID) (*models.Agent, error) {
	return nil, sentinel.ErrNotFound
}

func (Noop) Set(context.Context, *models.Agent) error { return nil }

func (Noop) Invalidate(context.Context, id.AgentID) error { return nil }
