package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const summaryCacheKey = "billing:last_run_summary"

// ErrNoSummary indicates no generation run has been cached yet.
var ErrNoSummary = errors.New("billing: no run summary cached")

// SummaryCache keeps the latest generation summary in Redis so dashboards
// can show run outcomes without touching the database.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewSummaryCache constructs the cache.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SummaryCache{client: client, ttl: ttl}
}

// Store caches the summary of a completed run.
func (c *SummaryCache) Store(ctx context.Context, summary Summary) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("billing: marshal summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryCacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("billing: cache summary: %w", err)
	}
	return nil
}

// Latest returns the cached summary. Concurrent readers share one Redis
// round trip through singleflight.
func (c *SummaryCache) Latest(ctx context.Context) (*Summary, error) {
	if c == nil || c.client == nil {
		return nil, ErrNoSummary
	}
	value, err, _ := c.group.Do(summaryCacheKey, func() (any, error) {
		data, err := c.client.Get(ctx, summaryCacheKey).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, ErrNoSummary
			}
			return nil, fmt.Errorf("billing: read summary cache: %w", err)
		}
		var summary Summary
		if err := json.Unmarshal(data, &summary); err != nil {
			return nil, fmt.Errorf("billing: decode summary cache: %w", err)
		}
		return &summary, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*Summary), nil
}
