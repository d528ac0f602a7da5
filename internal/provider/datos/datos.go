// Package datos fetches open-data series from the statistics agency's
// /series API. Points arrive as positional [date, value] pairs in a "data"
// array; pagination uses limit plus a "start" offset.
package datos

import (
    "context"
    "fmt"
    "net/url"
    "time"

    "github.com/sirupsen/logrus"

    "econseries/internal/httpx"
    "econseries/internal/series"
)

const ProviderName = "DATOS_SERIES"

// healthProbeID is a cheap known-good series used for the health check
// (monthly consumer price index).
const healthProbeID = "143.3_NO_PR_2004_A_21:IPC"

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
    if cfg.BaseURL == "" { cfg.BaseURL = "https://apis.datos.gob.ar/series/api" }
    if cfg.PageSize <= 0 { cfg.PageSize = series.DefaultPageSize }
    return &Provider{cfg: cfg, client: hc, log: log.WithField("provider", cfg.Name)}
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) Health(ctx context.Context) series.Health {
    start := time.Now()
    u := fmt.Sprintf("%s/series?ids=%s&start_date=2024-01-01&format=json&limit=1",
        p.cfg.BaseURL, url.QueryEscape(healthProbeID))
    var resp apiResponse
    err := p.client.GetJSON(ctx, u, &resp)
    h := series.Health{Healthy: err == nil, ResponseTime: time.Since(start)}
    if err != nil { h.Error = err.Error() }
    return h
}

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
    u := fmt.Sprintf("%s/series?ids=%s&start_date=%s&format=json&limit=%d",
        p.cfg.BaseURL, url.QueryEscape(params.ExternalID), params.From, limit)
    if params.To != "" { u += "&end_date=" + params.To }
    if offset > 0 { u += fmt.Sprintf("&start=%d", offset) }

    var resp apiResponse
    if err := p.client.GetJSON(ctx, u, &resp); err != nil {
        return nil, fmt.Errorf("datos fetch %s: %w", params.ExternalID, err)
    }
    // Short pairs become raw points with a nil value so Normalize drops
    // them later; the pagination loop needs the unfiltered page length to
    // tell a short page from a full page with garbage in it.
    raw := make([]series.RawPoint, 0, len(resp.Data))
    for _, pair := range resp.Data {
        rp := series.RawPoint{}
        if len(pair) > 0 { rp.Date, _ = pair[0].(string) }
        if len(pair) > 1 { rp.Value = pair[1] }
        raw = append(raw, rp)
    }
    return raw, nil
}

// SeriesRange fetches one series as canonical points tagged with seriesID.
// The composite official-rate provider uses this as its open-data tier.
func (p *Provider) SeriesRange(ctx context.Context, externalID, seriesID, from, to string) ([]series.Point, error) {
    res, err := p.FetchRange(ctx, series.FetchRangeParams{ExternalID: externalID, From: from, To: to})
    if err != nil { return nil, err }
    points := make([]series.Point, 0, len(res.Points))
    for _, pt := range res.Points {
        pt.SeriesID = seriesID
        points = append(points, pt)
    }
    return points, nil
}

// AvailableSeries is not supported: the open-data API has no catalog
// endpoint for enumerating every series.
func (p *Provider) AvailableSeries(ctx context.Context) ([]series.CatalogEntry, error) {
    return []series.CatalogEntry{}, nil
}

type apiResponse struct {
    Data  [][]any `json:"data"`
    Count int     `json:"count"`
}
