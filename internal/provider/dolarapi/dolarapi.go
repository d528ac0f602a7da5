// Package dolarapi adapts the public spot-rate API. It can only answer for
// the current date: each quote type returns a single object with the latest
// venta price and its update timestamp.
package dolarapi

import (
    "context"
    "fmt"
    "strings"
    "time"

    "github.com/sirupsen/logrus"

    "econseries/internal/series"
)

const ProviderName = "DOLARAPI"

// idPrefix marks external ids served by this provider, e.g.
// "dolarapi.mep_ars" or "dolarapi.blue_ars".
const idPrefix = "dolarapi."

// quotePaths maps our short quote names onto API path segments.
var quotePaths = map[string]string{
    "oficial": "oficial",
    "blue":    "blue",
    "mep":     "bolsa",
    "ccl":     "contadoconliqui",
}

type Provider struct {
    name   string
    client *APIClient
    log    *logrus.Entry
}

func New(client *APIClient, log *logrus.Logger) *Provider {
    return &Provider{name: ProviderName, client: client, log: log.WithField("provider", ProviderName)}
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Health(ctx context.Context) series.Health {
    start := time.Now()
    _, err := p.client.GetQuote(ctx, "blue")
    h := series.Health{Healthy: err == nil, ResponseTime: time.Since(start)}
    if err != nil { h.Error = err.Error() }
    return h
}

// FetchRange answers with at most one point: the current spot quote.
// Date-range parameters are accepted but cannot be honored by this source.
func (p *Provider) FetchRange(ctx context.Context, params series.FetchRangeParams) (series.FetchRangeResult, error) {
    quoteType, err := quoteTypeFor(params.ExternalID)
    if err != nil {
        return series.FetchRangeResult{}, err
    }

    quote, err := p.client.GetQuote(ctx, quoteType)
    if err != nil {
        p.log.WithError(err).WithField("external_id", params.ExternalID).Warn("spot fetch failed")
        return series.FetchRangeResult{}, err
    }

    raw := []series.RawPoint{{Date: quote.FechaActualizacion, Value: quote.Venta.String()}}
    points := series.Normalize(raw, params.ExternalID)

    return series.FetchRangeResult{
        Points:     points,
        TotalCount: len(points),
        HasMore:    false,
        Provider:   p.name,
    }, nil
}

// Spot fetches the current quote for one type as a canonical point
// tagged with seriesID. Used by the composite official-rate provider.
func (p *Provider) Spot(ctx context.Context, quoteType, seriesID string) (series.Point, error) {
    quote, err := p.client.GetQuote(ctx, quoteType)
    if err != nil {
        return series.Point{}, err
    }
    points := series.Normalize([]series.RawPoint{{Date: quote.FechaActualizacion, Value: quote.Venta.String()}}, seriesID)
    if len(points) == 0 {
        return series.Point{}, fmt.Errorf("dolarapi %s: unusable quote (fecha=%q venta=%q)", quoteType, quote.FechaActualizacion, quote.Venta)
    }
    return points[0], nil
}

func (p *Provider) AvailableSeries(ctx context.Context) ([]series.CatalogEntry, error) {
    return []series.CatalogEntry{
        {ID: idPrefix + "oficial_ars", Title: "Dólar Oficial", Frequency: string(series.FrequencyDaily)},
        {ID: idPrefix + "blue_ars", Title: "Dólar Blue", Description: "mercado informal", Frequency: string(series.FrequencyDaily)},
        {ID: idPrefix + "mep_ars", Title: "Dólar MEP", Description: "Mercado Electrónico de Pagos", Frequency: string(series.FrequencyDaily)},
        {ID: idPrefix + "ccl_ars", Title: "Dólar CCL", Description: "Contado con Liquidación", Frequency: string(series.FrequencyDaily)},
    }, nil
}

// quoteTypeFor strips the id prefix and currency suffix:
// "dolarapi.mep_ars" -> "bolsa".
func quoteTypeFor(externalID string) (string, error) {
    name := externalID
    name = strings.TrimPrefix(name, idPrefix)
    name = strings.TrimSuffix(name, "_ars")
    if path, ok := quotePaths[name]; ok { return path, nil }
    return "", fmt.Errorf("dolarapi: unknown external id %q", externalID)
}
