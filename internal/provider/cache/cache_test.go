package cache

import (
    "context"
    "errors"
    "testing"
    "time"

    "econseries/internal/series"
)

type countingProvider struct {
    healthCalls int
    fetchCalls  int
    fetchErr    error
}

func (c *countingProvider) Name() string { return "counting" }

func (c *countingProvider) Health(_ context.Context) series.Health {
    c.healthCalls++
    return series.Health{Healthy: true}
}

func (c *countingProvider) FetchRange(_ context.Context, params series.FetchRangeParams) (series.FetchRangeResult, error) {
    c.fetchCalls++
    if c.fetchErr != nil {
        return series.FetchRangeResult{}, c.fetchErr
    }
    return series.FetchRangeResult{
        Points:   []series.Point{{SeriesID: params.ExternalID, Ts: "2024-01-02", Value: float64(c.fetchCalls)}},
        Provider: "counting",
    }, nil
}

func (c *countingProvider) AvailableSeries(_ context.Context) ([]series.CatalogEntry, error) {
    return nil, nil
}

func TestHealth_CachedWithinTTL(t *testing.T) {
    inner := &countingProvider{}
    p := &Provider{P: inner, HealthTTL: time.Minute}

    for i := 0; i < 5; i++ {
        if h := p.Health(t.Context()); !h.Healthy {
            t.Fatalf("unexpected health: %+v", h)
        }
    }
    if inner.healthCalls != 1 {
        t.Fatalf("want 1 probe, got %d", inner.healthCalls)
    }
}

func TestHealth_ZeroTTLDisablesCache(t *testing.T) {
    inner := &countingProvider{}
    p := &Provider{P: inner}

    p.Health(t.Context())
    p.Health(t.Context())
    if inner.healthCalls != 2 {
        t.Fatalf("want 2 probes with caching off, got %d", inner.healthCalls)
    }
}

func TestFetchRange_SameRequestServedFromCache(t *testing.T) {
    inner := &countingProvider{}
    p := &Provider{P: inner, RangeTTL: time.Minute}

    params := series.FetchRangeParams{ExternalID: "15", From: "2024-01-01"}
    first, err := p.FetchRange(t.Context(), params)
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    second, err := p.FetchRange(t.Context(), params)
    if err != nil { t.Fatalf("unexpected error: %v", err) }

    if inner.fetchCalls != 1 { t.Fatalf("want 1 upstream fetch, got %d", inner.fetchCalls) }
    if first.Points[0].Value != second.Points[0].Value {
        t.Fatalf("cached result differs: %+v vs %+v", first, second)
    }

    // different params bypass the cached entry
    if _, err := p.FetchRange(t.Context(), series.FetchRangeParams{ExternalID: "15", From: "2024-02-01"}); err != nil {
        t.Fatalf("unexpected error: %v", err)
    }
    if inner.fetchCalls != 2 { t.Fatalf("want 2 upstream fetches, got %d", inner.fetchCalls) }
}

func TestFetchRange_ErrorsNotCached(t *testing.T) {
    inner := &countingProvider{fetchErr: errors.New("down")}
    p := &Provider{P: inner, RangeTTL: time.Minute}

    params := series.FetchRangeParams{ExternalID: "15", From: "2024-01-01"}
    if _, err := p.FetchRange(t.Context(), params); err == nil { t.Fatal("want error") }
    if _, err := p.FetchRange(t.Context(), params); err == nil { t.Fatal("want error") }
    if inner.fetchCalls != 2 {
        t.Fatalf("errors must pass through every time, got %d calls", inner.fetchCalls)
    }
}

func TestFetchRange_MaxItemsCapsCache(t *testing.T) {
    inner := &countingProvider{}
    p := &Provider{P: inner, RangeTTL: time.Minute, MaxItems: 2}

    for _, id := range []string{"1", "2", "3", "4"} {
        if _, err := p.FetchRange(t.Context(), series.FetchRangeParams{ExternalID: id}); err != nil {
            t.Fatalf("unexpected error: %v", err)
        }
    }
    p.mu.RLock()
    n := len(p.ranges)
    p.mu.RUnlock()
    if n > 2 { t.Fatalf("cache exceeded cap: %d entries", n) }
}
