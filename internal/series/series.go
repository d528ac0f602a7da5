package series

import (
    "context"
    "time"
)

// Point is the normalized shape returned by all providers and stored
// in the series_points table. Ts is a calendar date in YYYY-MM-DD.
type Point struct {
    SeriesID string            `json:"series_id"`
    Ts       string            `json:"ts"`
    Value    float64           `json:"value"`
    Metadata map[string]string `json:"metadata,omitempty"`
}

// Source identifies the institution a canonical series originates from.
type Source string

const (
    SourceCentralBankMonetary Source = "central-bank-monetary"
    SourceCentralBankFX       Source = "central-bank-fx"
    SourceStatisticsAgency    Source = "statistics-agency"
    SourceLaborMinistry       Source = "labor-ministry"
    SourceTaxAgency           Source = "tax-agency"
)

// Frequency is the publication cadence of a series.
type Frequency string

const (
    FrequencyDaily     Frequency = "daily"
    FrequencyWeekly    Frequency = "weekly"
    FrequencyMonthly   Frequency = "monthly"
    FrequencyQuarterly Frequency = "quarterly"
    FrequencyYearly    Frequency = "yearly"
)

// Metadata is one row of the series catalog, keyed by canonical id.
type Metadata struct {
    ID        string            `json:"id"`
    Source    Source            `json:"source"`
    Frequency Frequency         `json:"frequency"`
    Unit      string            `json:"unit,omitempty"`
    Metadata  map[string]string `json:"metadata,omitempty"`
}

// Mapping links a canonical series id to one provider's native id.
// Unique per (ExternalID, Provider).
type Mapping struct {
    InternalID  string   `json:"internal_series_id"`
    ExternalID  string   `json:"external_series_id"`
    Provider    string   `json:"provider_name"`
    Keywords    []string `json:"keywords,omitempty"`
    Description string   `json:"description,omitempty"`
}

// Health is the result of one provider probe. Ephemeral, never persisted.
type Health struct {
    Healthy      bool          `json:"is_healthy"`
    ResponseTime time.Duration `json:"response_time,omitempty"`
    Error        string        `json:"error,omitempty"`
}

// FetchRangeParams describes one range request against a provider.
// From/To are YYYY-MM-DD; To empty means "up to the latest available".
type FetchRangeParams struct {
    ExternalID string
    From       string
    To         string
    Limit      int
    Offset     int
}

// FetchRangeResult is the fully materialized response of a range fetch.
type FetchRangeResult struct {
    Points     []Point `json:"points"`
    TotalCount int     `json:"total_count"`
    HasMore    bool    `json:"has_more"`
    Provider   string  `json:"provider"`
}

// CatalogEntry is one series a provider can enumerate for discovery.
type CatalogEntry struct {
    ID          string `json:"id"`
    Title       string `json:"title"`
    Description string `json:"description,omitempty"`
    Frequency   string `json:"frequency,omitempty"`
}

// Provider is one upstream data source with its own query dialect.
// FetchRange materializes the whole range (all pages) before returning.
// Implementations that cannot enumerate their catalog return an empty
// slice from AvailableSeries rather than an error.
type Provider interface {
    Name() string
    Health(ctx context.Context) Health
    FetchRange(ctx context.Context, params FetchRangeParams) (FetchRangeResult, error)
    AvailableSeries(ctx context.Context) ([]CatalogEntry, error)
}

// DefaultPageSize is the pagination limit adapters use when the caller
// does not set one.
const DefaultPageSize = 1000
