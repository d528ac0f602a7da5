package ratelimit

import (
    "context"
    "sync"
    "time"

    "econseries/internal/series"
)

// MinInterval wraps a provider and enforces a minimum time between fetches.
// Concurrent calls will wait until the interval has elapsed since the last
// fetch, or return early if the context is canceled. Health probes are not
// gated: they are cheap and the chain depends on them to skip candidates.
type MinInterval struct {
    P        series.Provider
    Interval time.Duration
    mu       sync.Mutex
    last     time.Time
}

func (m *MinInterval) Name() string { return m.P.Name() }

func (m *MinInterval) Health(ctx context.Context) series.Health { return m.P.Health(ctx) }

func (m *MinInterval) FetchRange(ctx context.Context, params series.FetchRangeParams) (series.FetchRangeResult, error) {
    if m.Interval > 0 {
        // simple gate: ensure at least Interval since last
        m.mu.Lock()
        wait := time.Until(m.last.Add(m.Interval))
        m.mu.Unlock()
        if wait > 0 {
            t := time.NewTimer(wait)
            defer t.Stop()
            select {
            case <-ctx.Done():
                return series.FetchRangeResult{}, ctx.Err()
            case <-t.C:
            }
        }
    }
    result, err := m.P.FetchRange(ctx, params)
    if m.Interval > 0 {
        m.mu.Lock()
        m.last = time.Now()
        m.mu.Unlock()
    }
    return result, err
}

func (m *MinInterval) AvailableSeries(ctx context.Context) ([]series.CatalogEntry, error) {
    return m.P.AvailableSeries(ctx)
}
