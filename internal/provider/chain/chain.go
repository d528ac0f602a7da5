// Package chain orders, health-gates, and fails over across providers for
// one fetch request. The chain itself keeps no persisted state: one fetch
// is one pass through an ordered candidate list.
package chain

import (
    "context"
    "errors"
    "strings"
    "sync"

    "github.com/sirupsen/logrus"
    "golang.org/x/sync/errgroup"

    "econseries/internal/series"
)

// ErrAllProvidersFailed is raised when every candidate was skipped or
// unhealthy and no upstream error was ever recorded.
var ErrAllProvidersFailed = errors.New("all providers failed to fetch data")

// Config orders the chain: the primary is the default suggestion, the
// fallbacks are tried after the suggested provider, in order.
type Config struct {
    Primary   string
    Fallbacks []string
}

type Chain struct {
    providers map[string]series.Provider
    order     []string // registration order, for stable health output
    cfg       Config
    log       *logrus.Entry
}

func New(cfg Config, providers []series.Provider, log *logrus.Logger) *Chain {
    c := &Chain{
        providers: make(map[string]series.Provider, len(providers)),
        cfg:       cfg,
        log:       log.WithField("component", "chain"),
    }
    for _, p := range providers {
        if _, dup := c.providers[p.Name()]; dup { continue }
        c.providers[p.Name()] = p
        c.order = append(c.order, p.Name())
    }
    c.log.WithFields(logrus.Fields{
        "primary":   cfg.Primary,
        "fallbacks": cfg.Fallbacks,
        "registered": c.order,
    }).Info("provider chain initialized")
    return c
}

// suggestion rules map external-id shapes onto the provider that natively
// serves them; first match wins.
var suggestionRules = []struct {
    name  string
    match func(id string) bool
}{
    {"DOLARAPI", func(id string) bool { return strings.HasPrefix(id, "dolarapi.") }},
    {"BCRA_OFICIAL", func(id string) bool { return strings.HasPrefix(id, "usd_oficial") }},
    {"BCRA_MONETARIAS", func(id string) bool { return strings.HasPrefix(id, "bcra.") || numeric(id) }},
    {"DATOS_SERIES", func(id string) bool { return strings.ContainsRune(id, '_') && strings.ContainsRune(id, '.') }},
}

func numeric(s string) bool {
    if s == "" { return false }
    for _, r := range s {
        if r < '0' || r > '9' { return false }
    }
    return true
}

// Suggest picks the provider an external id most likely belongs to,
// defaulting to the configured primary when no rule matches.
func (c *Chain) Suggest(externalID string) string {
    for _, rule := range suggestionRules {
        if rule.match(externalID) { return rule.name }
    }
    return c.cfg.Primary
}

// candidates is [suggested] + fallbacks excluding the suggested provider.
func (c *Chain) candidates(externalID string) []string {
    suggested := c.Suggest(externalID)
    out := make([]string, 0, 1+len(c.cfg.Fallbacks))
    out = append(out, suggested)
    for _, name := range c.cfg.Fallbacks {
        if name == suggested { continue }
        out = append(out, name)
    }
    return out
}

// FetchRange walks the candidate list: unregistered candidates are skipped,
// unhealthy ones are skipped without attempting a fetch, a successful fetch
// is terminal even when it carries zero points, and a fetch error moves on
// to the next candidate. When everything is exhausted the last upstream
// error (or ErrAllProvidersFailed) is returned.
func (c *Chain) FetchRange(ctx context.Context, params series.FetchRangeParams) (series.FetchRangeResult, error) {
    toTry := c.candidates(params.ExternalID)
    c.log.WithFields(logrus.Fields{
        "external_id": params.ExternalID,
        "from":        params.From,
        "to":          params.To,
        "candidates":  toTry,
    }).Info("starting fetch")

    var lastErr error
    for _, name := range toTry {
        p, ok := c.providers[name]
        if !ok {
            c.log.WithField("provider", name).Warn("provider not registered, skipping")
            continue
        }

        health := p.Health(ctx)
        if !health.Healthy {
            c.log.WithFields(logrus.Fields{
                "provider": name,
                "error":    health.Error,
            }).Warn("provider unhealthy, skipping")
            continue
        }

        result, err := p.FetchRange(ctx, params)
        if err != nil {
            lastErr = err
            c.log.WithError(err).WithField("provider", name).Warn("provider failed, trying next")
            continue
        }

        c.log.WithFields(logrus.Fields{
            "provider": name,
            "points":   len(result.Points),
        }).Info("fetch successful")
        return result, nil
    }

    c.log.WithFields(logrus.Fields{
        "external_id": params.ExternalID,
        "candidates":  toTry,
    }).Error("all providers failed")
    if lastErr != nil {
        return series.FetchRangeResult{}, lastErr
    }
    return series.FetchRangeResult{}, ErrAllProvidersFailed
}

// HealthStatus probes every registered provider concurrently and joins the
// results. Probes never propagate failure: an unreachable provider shows up
// as an unhealthy entry.
func (c *Chain) HealthStatus(ctx context.Context) map[string]series.Health {
    out := make(map[string]series.Health, len(c.providers))
    var mu sync.Mutex
    g, ctx := errgroup.WithContext(ctx)
    for _, name := range c.order {
        p := c.providers[name]
        g.Go(func() error {
            h := p.Health(ctx)
            mu.Lock()
            out[p.Name()] = h
            mu.Unlock()
            return nil
        })
    }
    g.Wait()

    healthy := 0
    for _, h := range out {
        if h.Healthy { healthy++ }
    }
    c.log.WithFields(logrus.Fields{"healthy": healthy, "total": len(out)}).Info("health check completed")
    return out
}

// Provider returns a registered provider by name.
func (c *Chain) Provider(name string) (series.Provider, bool) {
    p, ok := c.providers[name]
    return p, ok
}

// Providers lists registered provider names in registration order.
func (c *Chain) Providers() []string {
    return append([]string(nil), c.order...)
}
