package cache

import (
    "context"
    "fmt"
    "sync"
    "time"

    "econseries/internal/series"
)

// rangeEntry stores one cached fetch result with expiry.
type rangeEntry struct {
    expiresAt time.Time
    result    series.FetchRangeResult
}

// Provider caches health probes and recent range results for a TTL.
// The chain health-gates every fetch attempt; without this decorator each
// attempt costs one probe round-trip per candidate. TTLs <= 0 disable the
// respective cache, so callers wire this only when configured.
type Provider struct {
    P         series.Provider
    HealthTTL time.Duration
    RangeTTL  time.Duration
    MaxItems  int

    mu            sync.RWMutex
    health        series.Health
    healthExpires time.Time
    ranges        map[string]rangeEntry // key: externalId|from|to|limit|offset
}

func (c *Provider) Name() string { return c.P.Name() }

// Health returns the cached probe while it is fresh, re-probing otherwise.
func (c *Provider) Health(ctx context.Context) series.Health {
    if c.HealthTTL <= 0 {
        return c.P.Health(ctx)
    }

    now := time.Now()
    c.mu.RLock()
    if !c.healthExpires.IsZero() && now.Before(c.healthExpires) {
        h := c.health
        c.mu.RUnlock()
        return h
    }
    c.mu.RUnlock()

    h := c.P.Health(ctx)
    c.mu.Lock()
    c.health = h
    c.healthExpires = now.Add(c.HealthTTL)
    c.mu.Unlock()
    return h
}

// FetchRange serves a cached result for the exact same request while valid.
// Only successful fetches are cached; errors always pass through.
func (c *Provider) FetchRange(ctx context.Context, params series.FetchRangeParams) (series.FetchRangeResult, error) {
    if c.RangeTTL <= 0 {
        return c.P.FetchRange(ctx, params)
    }

    key := fmt.Sprintf("%s|%s|%s|%d|%d", params.ExternalID, params.From, params.To, params.Limit, params.Offset)
    now := time.Now()

    c.mu.RLock()
    if e, ok := c.ranges[key]; ok && now.Before(e.expiresAt) {
        c.mu.RUnlock()
        return e.result, nil
    }
    c.mu.RUnlock()

    result, err := c.P.FetchRange(ctx, params)
    if err != nil {
        return result, err
    }

    c.mu.Lock()
    if c.ranges == nil { c.ranges = make(map[string]rangeEntry) }
    c.ranges[key] = rangeEntry{expiresAt: now.Add(c.RangeTTL), result: result}
    // best-effort cap cache size
    if c.MaxItems > 0 && len(c.ranges) > c.MaxItems {
        for k, v := range c.ranges {
            if now.After(v.expiresAt) {
                delete(c.ranges, k)
            }
            if len(c.ranges) <= c.MaxItems { break }
        }
        for k := range c.ranges {
            if len(c.ranges) <= c.MaxItems { break }
            delete(c.ranges, k)
        }
    }
    c.mu.Unlock()

    return result, nil
}

func (c *Provider) AvailableSeries(ctx context.Context) ([]series.CatalogEntry, error) {
    return c.P.AvailableSeries(ctx)
}
