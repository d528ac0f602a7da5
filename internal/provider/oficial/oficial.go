// Package oficial is the composite official-USD provider. It runs its own
// failover independent of the outer chain: the central bank's FX range
// endpoint first, then the statistics agency's open-data mirror, and as a
// last resort a spot quote that only exists for the current date.
package oficial

import (
    "context"
    "fmt"
    "time"

    "github.com/sirupsen/logrus"

    "econseries/internal/series"
)

const ProviderName = "BCRA_OFICIAL"

// openDataUSDID is the statistics agency's id for the official daily
// exchange rate, the second tier's source series.
const openDataUSDID = "168.1_T_CAMBIOR_D_0_0_26"

// RangeTier answers a full date range of official USD points.
type RangeTier interface {
    UsdRange(ctx context.Context, from, to string) ([]series.Point, error)
    Health(ctx context.Context) series.Health
}

// OpenDataTier answers a full date range from the open-data mirror.
type OpenDataTier interface {
    SeriesRange(ctx context.Context, externalID, seriesID, from, to string) ([]series.Point, error)
    Health(ctx context.Context) series.Health
}

// SpotTier answers only for the current date.
type SpotTier interface {
    Spot(ctx context.Context, quoteType, seriesID string) (series.Point, error)
    Health(ctx context.Context) series.Health
}

type Provider struct {
    name     string
    fx       RangeTier
    openData OpenDataTier
    spot     SpotTier
    log      *logrus.Entry
}

func New(fx RangeTier, openData OpenDataTier, spot SpotTier, log *logrus.Logger) *Provider {
    return &Provider{
        name:     ProviderName,
        fx:       fx,
        openData: openData,
        spot:     spot,
        log:      log.WithField("provider", ProviderName),
    }
}

func (p *Provider) Name() string { return p.name }

// FetchRange walks the tiers in order. A tier's own failure (or an empty
// result) is logged and swallowed; only when every tier is exhausted does
// the composite raise one aggregated error.
func (p *Provider) FetchRange(ctx context.Context, params series.FetchRangeParams) (series.FetchRangeResult, error) {
    to := params.To
    if to == "" { to = series.Today() }

    points, err := p.fx.UsdRange(ctx, params.From, to)
    if err == nil && len(points) > 0 {
        return p.result(retag(points, params.ExternalID), "fx range"), nil
    }
    if err != nil {
        p.log.WithError(err).Info("fx tier failed, trying open data")
    }

    points, err = p.openData.SeriesRange(ctx, openDataUSDID, params.ExternalID, params.From, to)
    if err == nil && len(points) > 0 {
        return p.result(points, "open data"), nil
    }
    if err != nil {
        p.log.WithError(err).Info("open-data tier failed, trying spot")
    }

    // The spot tier can only answer when the requested range includes today.
    if to == series.Today() {
        point, err := p.spot.Spot(ctx, "oficial", params.ExternalID)
        if err == nil {
            return p.result([]series.Point{point}, "spot"), nil
        }
        p.log.WithError(err).Info("spot tier failed")
    }

    return series.FetchRangeResult{}, fmt.Errorf("all official USD tiers failed for %s (%s..%s)", params.ExternalID, params.From, to)
}

func (p *Provider) result(points []series.Point, tier string) series.FetchRangeResult {
    p.log.WithFields(logrus.Fields{"tier": tier, "points": len(points)}).Debug("official rate fetched")
    return series.FetchRangeResult{
        Points:     points,
        TotalCount: len(points),
        HasMore:    false,
        Provider:   p.name,
    }
}

// Health reports healthy when any tier is reachable.
func (p *Provider) Health(ctx context.Context) series.Health {
    start := time.Now()
    for _, probe := range []func(context.Context) series.Health{p.fx.Health, p.openData.Health, p.spot.Health} {
        if h := probe(ctx); h.Healthy {
            return series.Health{Healthy: true, ResponseTime: time.Since(start)}
        }
    }
    return series.Health{Healthy: false, ResponseTime: time.Since(start), Error: "all official USD tiers unhealthy"}
}

func (p *Provider) AvailableSeries(ctx context.Context) ([]series.CatalogEntry, error) {
    return []series.CatalogEntry{}, nil
}

func retag(points []series.Point, seriesID string) []series.Point {
    out := make([]series.Point, 0, len(points))
    for _, pt := range points {
        pt.SeriesID = seriesID
        out = append(out, pt)
    }
    return out
}
