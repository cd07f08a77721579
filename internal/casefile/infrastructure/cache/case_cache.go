// Package cache holds the Redis-backed read cache for case detail
// projections. The cache is read-through: queries consult it first and fill
// it on miss, and every accepted transition or reassignment invalidates the
// case's entry. Cache state is never authoritative; PostgreSQL is.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no entry exists for the case.
var ErrCacheMiss = errors.New("cache miss")

// DefaultTTL bounds staleness if an invalidation is ever lost.
const DefaultTTL = 5 * time.Minute

// CaseCache caches serialized case detail projections.
type CaseCache interface {
	Get(ctx context.Context, caseID uuid.UUID) ([]byte, error)
	Set(ctx context.Context, caseID uuid.UUID, payload []byte) error
	Invalidate(ctx context.Context, caseID uuid.UUID) error
}

// RedisCaseCache implements CaseCache on Redis.
type RedisCaseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCaseCache creates a Redis case cache with the default TTL.
func NewRedisCaseCache(client *redis.Client) *RedisCaseCache {
	return &RedisCaseCache{client: client, ttl: DefaultTTL}
}

func caseKey(caseID uuid.UUID) string {
	return fmt.Sprintf("case:%s:detail", caseID)
}

// Get retrieves the cached projection for a case.
func (c *RedisCaseCache) Get(ctx context.Context, caseID uuid.UUID) ([]byte, error) {
	val, err := c.client.Get(ctx, caseKey(caseID)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Set stores the projection for a case.
func (c *RedisCaseCache) Set(ctx context.Context, caseID uuid.UUID, payload []byte) error {
	return c.client.Set(ctx, caseKey(caseID), payload, c.ttl).Err()
}

// Invalidate drops the cached projection for a case.
func (c *RedisCaseCache) Invalidate(ctx context.Context, caseID uuid.UUID) error {
	return c.client.Del(ctx, caseKey(caseID)).Err()
}

// NoopCaseCache always misses. Used when Redis is not configured and in
// tests.
type NoopCaseCache struct{}

func (NoopCaseCache) Get(ctx context.Context, caseID uuid.UUID) ([]byte, error) {
	return nil, ErrCacheMiss
}

func (NoopCaseCache) Set(ctx context.Context, caseID uuid.UUID, payload []byte) error { return nil }

func (NoopCaseCache) Invalidate(ctx context.Context, caseID uuid.UUID) error { return nil }
