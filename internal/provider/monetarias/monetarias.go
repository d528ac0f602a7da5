// Package monetarias fetches monetary aggregates from the central bank's
// statistics API (v3). Point pages look like {"results":[{"fecha","valor"}]}
// and are requested with desde/hasta plus limit/offset pagination.
package monetarias

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

const ProviderName = "BCRA_MONETARIAS"

type Config struct {
    Name     string
    BaseURL  string
    PageSize int // default series.DefaultPageSize
}

type Provider struct {
    cfg    Config
    client *httpx.Client
    log    *logrus.Entry
}

func New(cfg Config, hc *httpx.Client, log *logrus.Logger) *Provider {
    if cfg.Name == "" { cfg.Name = ProviderName }
    if cfg.BaseURL == "" { cfg.BaseURL = "https://api.bcra.gob.ar" }
    if cfg.PageSize <= 0 { cfg.PageSize = series.DefaultPageSize }
    return &Provider{cfg: cfg, client: hc, log: log.WithField("provider", cfg.Name)}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Health(ctx context.Context) series.Health {
    start := time.Now()
    var resp catalogResponse
    err := p.client.GetJSON(ctx, p.cfg.BaseURL+"/estadisticas/v3.0/Monetarias", &resp)
    h := series.Health{Healthy: err == nil, ResponseTime: time.Since(start)}
    if err != nil { h.Error = err.Error() }
    return h
}

// FetchRange pulls every page of the requested range before returning.
// A page shorter than the limit signals exhaustion.
func (p *Provider) FetchRange(ctx context.Context, params series.FetchRangeParams) (series.FetchRangeResult, error) {
    limit := params.Limit
    if limit <= 0 { limit = p.cfg.PageSize }
    offset := params.Offset

    var all []series.Point
    for {
        page, err := p.fetchPage(ctx, params, limit, offset)
        if err != nil {
            return series.FetchRangeResult{}, err
        }
        points := series.Normalize(page, params.ExternalID)
        all = append(all, points...)
        p.log.WithFields(logrus.Fields{
            "external_id": params.ExternalID,
            "offset":      offset,
            "page_points": len(points),
            "total":       len(all),
        }).Debug("fetched page")
        if len(page) < limit { break }
        offset += limit
    }

    return series.FetchRangeResult{
        Points:     all,
        TotalCount: len(all),
        HasMore:    false,
        Provider:   p.cfg.Name,
    }, nil
}

func (p *Provider) fetchPage(ctx context.Context, params series.FetchRangeParams, limit, offset int) ([]series.RawPoint, error) {
    u := fmt.Sprintf("%s/estadisticas/v3.0/Monetarias/%s?desde=%s&limit=%d&offset=%d",
        p.cfg.BaseURL, url.PathEscape(params.ExternalID), params.From, limit, offset)
    if params.To != "" { u += "&hasta=" + params.To }

    var resp pointsResponse
    if err := p.client.GetJSON(ctx, u, &resp); err != nil {
        return nil, fmt.Errorf("monetarias fetch %s: %w", params.ExternalID, err)
    }
    raw := make([]series.RawPoint, 0, len(resp.Results))
    for _, item := range resp.Results {
        raw = append(raw, series.RawPoint{Date: item.Fecha, Value: item.Valor.String()})
    }
    return raw, nil
}

// AvailableSeries lists the variables catalog for discovery.
func (p *Provider) AvailableSeries(ctx context.Context) ([]series.CatalogEntry, error) {
    var resp catalogResponse
    if err := p.client.GetJSON(ctx, p.cfg.BaseURL+"/estadisticas/v3.0/Monetarias", &resp); err != nil {
        return nil, fmt.Errorf("monetarias catalog: %w", err)
    }
    out := make([]series.CatalogEntry, 0, len(resp.Results))
    for _, v := range resp.Results {
        out = append(out, series.CatalogEntry{
            ID:          fmt.Sprintf("%d", v.IDVariable),
            Title:       v.Descripcion,
            Description: v.Categoria,
        })
    }
    return out, nil
}

type pointItem struct {
    Fecha string      `json:"fecha"`
    Valor json.Number `json:"valor"`
}

type pointsResponse struct {
    Results []pointItem `json:"results"`
}

type variable struct {
    IDVariable  int    `json:"idVariable"`
    Descripcion string `json:"descripcion"`
    Categoria   string `json:"categoria"`
}

type catalogResponse struct {
    Results []variable `json:"results"`
}
