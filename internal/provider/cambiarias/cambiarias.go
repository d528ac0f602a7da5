// Package cambiarias fetches exchange-rate statistics from the central
// bank's FX API. Quotes arrive nested: each day carries a detalle array and
// the rate lives in detalle[i].tipoCotizacion.
package cambiarias

import (
    "context"
    "encoding/json"
    "fmt"
    "net/url"
    "time"

    "github.com/sirupsen/logrus"

    "econseries/internal/httpx"
    "econseries/internal/series"
)

const ProviderName = "BCRA_CAMBIARIAS"

type Config struct {
    Name     string
    BaseURL  string
    PageSize int
}

type Provider struct {
    cfg    Config
    client *httpx.Client
    log    *logrus.Entry
}

func New(cfg Config, hc *httpx.Client, log *logrus.Logger) *Provider {
    if cfg.Name == "" { cfg.Name = ProviderName }
    if cfg.BaseURL == "" { cfg.BaseURL = "https://api.bcra.gob.ar/estadisticascambiarias/v1.0" }
    if cfg.PageSize <= 0 { cfg.PageSize = series.DefaultPageSize }
    return &Provider{cfg: cfg, client: hc, log: log.WithField("provider", cfg.Name)}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Health(ctx context.Context) series.Health {
    start := time.Now()
    var resp quotesResponse
    err := p.client.GetJSON(ctx, p.cfg.BaseURL+"/Cotizaciones/USD", &resp)
    h := series.Health{Healthy: err == nil, ResponseTime: time.Since(start)}
    if err != nil { h.Error = err.Error() }
    return h
}

// FetchRange pulls all quote pages for one currency code. ExternalID is
// the ISO currency code (USD, EUR, ...).
func (p *Provider) FetchRange(ctx context.Context, params series.FetchRangeParams) (series.FetchRangeResult, error) {
    limit := params.Limit
    if limit <= 0 { limit = p.cfg.PageSize }
    offset := params.Offset

    var all []series.Point
    for {
        raw, err := p.fetchPage(ctx, params, limit, offset)
        if err != nil {
            return series.FetchRangeResult{}, err
        }
        points := series.Normalize(raw, params.ExternalID)
        all = append(all, points...)
        if len(raw) < limit { break }
        offset += limit
    }

    p.log.WithFields(logrus.Fields{
        "external_id": params.ExternalID,
        "points":      len(all),
    }).Debug("fetch range done")

    return series.FetchRangeResult{
        Points:     all,
        TotalCount: len(all),
        HasMore:    false,
        Provider:   p.cfg.Name,
    }, nil
}

func (p *Provider) fetchPage(ctx context.Context, params series.FetchRangeParams, limit, offset int) ([]series.RawPoint, error) {
    u := fmt.Sprintf("%s/Cotizaciones/%s?fechadesde=%s&limit=%d&offset=%d",
        p.cfg.BaseURL, url.PathEscape(params.ExternalID), params.From, limit, offset)
    if params.To != "" { u += "&fechahasta=" + params.To }

    var resp quotesResponse
    if err := p.client.GetJSON(ctx, u, &resp); err != nil {
        return nil, fmt.Errorf("cambiarias fetch %s: %w", params.ExternalID, err)
    }
    raw := make([]series.RawPoint, 0, len(resp.Results))
    for _, q := range resp.Results {
        // One detalle entry per quoted currency; the first carries the rate.
        if len(q.Detalle) == 0 {
            raw = append(raw, series.RawPoint{Date: q.Fecha, Value: nil})
            continue
        }
        raw = append(raw, series.RawPoint{Date: q.Fecha, Value: q.Detalle[0].TipoCotizacion.String()})
    }
    return raw, nil
}

// UsdRange fetches the official USD rate for a range. Used by the
// composite official-rate provider as its primary tier.
func (p *Provider) UsdRange(ctx context.Context, from, to string) ([]series.Point, error) {
    res, err := p.FetchRange(ctx, series.FetchRangeParams{ExternalID: "USD", From: from, To: to})
    if err != nil { return nil, err }
    return res.Points, nil
}

// AvailableSeries lists quotable currencies from the Maestros catalog.
func (p *Provider) AvailableSeries(ctx context.Context) ([]series.CatalogEntry, error) {
    var resp currenciesResponse
    if err := p.client.GetJSON(ctx, p.cfg.BaseURL+"/Maestros/Divisas", &resp); err != nil {
        return nil, fmt.Errorf("cambiarias catalog: %w", err)
    }
    out := make([]series.CatalogEntry, 0, len(resp.Results))
    for _, c := range resp.Results {
        out = append(out, series.CatalogEntry{
            ID:        c.Codigo,
            Title:     c.Denominacion,
            Frequency: string(series.FrequencyDaily),
        })
    }
    return out, nil
}

type quoteDetail struct {
    CodigoMoneda   string      `json:"codigoMoneda"`
    TipoCotizacion json.Number `json:"tipoCotizacion"`
}

type quote struct {
    Fecha   string        `json:"fecha"`
    Detalle []quoteDetail `json:"detalle"`
}

type quotesResponse struct {
    Results []quote `json:"results"`
}

type currency struct {
    Codigo       string `json:"codigo"`
    Denominacion string `json:"denominacion"`
}

type currenciesResponse struct {
    Results []currency `json:"results"`
}
