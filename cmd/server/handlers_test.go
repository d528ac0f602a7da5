package main

import (
    "context"
    "encoding/json"
    "errors"
    "net/http/httptest"
    "testing"

    "econseries/internal/series"
    "econseries/internal/store"
)

type fakeHealth struct{ status map[string]series.Health }

func (f fakeHealth) HealthStatus(_ context.Context) map[string]series.Health { return f.status }

type fakePing struct{ err error }

func (f fakePing) Ping(_ context.Context) error { return f.err }

type fakeStats struct {
    stats *store.Stats
    err   error
}

func (f fakeStats) SeriesStats(_ context.Context, _ string) (*store.Stats, error) { return f.stats, f.err }

func TestHealth_AllHealthy(t *testing.T) {
    h := healthHandler(fakeHealth{status: map[string]series.Health{
        "BCRA_MONETARIAS": {Healthy: true},
        "DATOS_SERIES":    {Healthy: true},
    }}, fakePing{})

    rr := httptest.NewRecorder()
    h(rr, httptest.NewRequest("GET", "/healthz", nil))
    if rr.Code != 200 { t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String()) }
    var resp healthResponse
    if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil { t.Fatalf("decode: %v", err) }
    if resp.Status != "ok" || resp.Database != "ok" { t.Fatalf("unexpected: %+v", resp) }
    if len(resp.Providers) != 2 { t.Fatalf("want 2 providers, got %d", len(resp.Providers)) }
}

func TestHealth_SomeProvidersDown_Still200(t *testing.T) {
    h := healthHandler(fakeHealth{status: map[string]series.Health{
        "BCRA_MONETARIAS": {Healthy: true},
        "DOLARAPI":        {Healthy: false, Error: "timeout"},
    }}, fakePing{})

    rr := httptest.NewRecorder()
    h(rr, httptest.NewRequest("GET", "/healthz", nil))
    if rr.Code != 200 { t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String()) }
}

func TestHealth_AllProvidersDown_503(t *testing.T) {
    h := healthHandler(fakeHealth{status: map[string]series.Health{
        "BCRA_MONETARIAS": {Healthy: false, Error: "timeout"},
    }}, fakePing{})

    rr := httptest.NewRecorder()
    h(rr, httptest.NewRequest("GET", "/healthz", nil))
    if rr.Code != 503 { t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String()) }
    var resp healthResponse
    if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil { t.Fatalf("decode: %v", err) }
    if resp.Status != "degraded" { t.Fatalf("unexpected status: %q", resp.Status) }
}

func TestHealth_DatabaseDown_503(t *testing.T) {
    h := healthHandler(fakeHealth{status: map[string]series.Health{
        "BCRA_MONETARIAS": {Healthy: true},
    }}, fakePing{err: errors.New("connection refused")})

    rr := httptest.NewRecorder()
    h(rr, httptest.NewRequest("GET", "/healthz", nil))
    if rr.Code != 503 { t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String()) }
    var resp healthResponse
    if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil { t.Fatalf("decode: %v", err) }
    if resp.Status != "unavailable" || resp.Database == "ok" { t.Fatalf("unexpected: %+v", resp) }
}

func TestStats_Found(t *testing.T) {
    h := statsHandler(fakeStats{stats: &store.Stats{
        TotalPoints: 42,
        FirstDate:   "2024-01-01",
        LastDate:    "2024-02-11",
        MinValue:    800.5,
        MaxValue:    1010,
        AvgValue:    905.25,
    }})

    rr := httptest.NewRecorder()
    h(rr, httptest.NewRequest("GET", "/stats?series=usd_oficial_venta", nil))
    if rr.Code != 200 { t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String()) }
    var got store.Stats
    if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil { t.Fatalf("decode: %v", err) }
    if got.TotalPoints != 42 || got.LastDate != "2024-02-11" { t.Fatalf("unexpected: %+v", got) }
}

func TestStats_MissingParam_400(t *testing.T) {
    h := statsHandler(fakeStats{})
    rr := httptest.NewRecorder()
    h(rr, httptest.NewRequest("GET", "/stats", nil))
    if rr.Code != 400 { t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String()) }
}

func TestStats_UnknownSeries_404(t *testing.T) {
    h := statsHandler(fakeStats{stats: nil})
    rr := httptest.NewRecorder()
    h(rr, httptest.NewRequest("GET", "/stats?series=nope", nil))
    if rr.Code != 404 { t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String()) }
}
