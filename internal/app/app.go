// Package app wires the shared pieces every binary needs: config, logger,
// the provider chain with its decorators, the Postgres store, the id
// resolver, and the ingest pipeline built on top of them.
package app

import (
    "context"
    "fmt"
    "os"
    "time"

    "github.com/joho/godotenv"
    "github.com/sirupsen/logrus"

    "econseries/internal/config"
    "econseries/internal/httpx"
    "econseries/internal/ingest"
    "econseries/internal/logx"
    "econseries/internal/provider/cache"
    "econseries/internal/provider/cambiarias"
    "econseries/internal/provider/chain"
    "econseries/internal/provider/datos"
    "econseries/internal/provider/dolarapi"
    "econseries/internal/provider/monetarias"
    "econseries/internal/provider/oficial"
    "econseries/internal/provider/ratelimit"
    "econseries/internal/resolver"
    "econseries/internal/series"
    "econseries/internal/store"
)

type App struct {
    Cfg      config.Config
    Log      *logrus.Logger
    Chain    *chain.Chain
    Store    *store.Store
    Resolver *resolver.Resolver
    Ingestor *ingest.Ingestor
}

// Bootstrap loads config and builds the full pipeline. The store is
// connected and migrated; callers own Close.
func Bootstrap(ctx context.Context) (*App, error) {
    _ = godotenv.Load() // absent .env is fine

    cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
    if err != nil {
        return nil, fmt.Errorf("config: %w", err)
    }
    log := logx.New(logx.Options{Level: cfg.Log.Level, File: cfg.Log.File})

    if cfg.Database.URL == "" {
        return nil, fmt.Errorf("database url not configured (DATABASE_URL)")
    }
    st, err := store.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns, log)
    if err != nil {
        return nil, err
    }
    if err := st.EnsureSchema(ctx); err != nil {
        st.Close()
        return nil, err
    }

    ch := BuildChain(cfg, log)
    res := resolver.New(st, time.Duration(cfg.Providers.ResolverTTLSec)*time.Second, log)
    ing := ingest.New(ch, res, st, ingest.Options{
        LookbackDays: cfg.Ingest.DefaultLookbackDays,
        PageSize:     cfg.Providers.PageSize,
        Workers:      cfg.Ingest.WorkerPoolSize,
    }, log)

    return &App{Cfg: cfg, Log: log, Chain: ch, Store: st, Resolver: res, Ingestor: ing}, nil
}

func (a *App) Close() { a.Store.Close() }

// BuildChain assembles every enabled provider, wraps each in its rate limit
// and cache decorators, and orders them behind the failover chain. The
// composite official-rate provider is registered whenever its three tiers
// are all enabled.
func BuildChain(cfg config.Config, log *logrus.Logger) *chain.Chain {
    var providers []series.Provider

    var cam *cambiarias.Provider
    var dat *datos.Provider
    var dol *dolarapi.Provider

    if cfg.Monetarias.Enabled {
        mon := monetarias.New(monetarias.Config{
            Name:     monetarias.ProviderName,
            BaseURL:  cfg.Monetarias.BaseURL,
            PageSize: cfg.Providers.PageSize,
        }, httpx.New(time.Duration(cfg.Monetarias.TimeoutSec)*time.Second), log)
        providers = append(providers, decorate(mon, cfg.Monetarias, cfg.Providers))
    }
    if cfg.Cambiarias.Enabled {
        cam = cambiarias.New(cambiarias.Config{
            Name:     cambiarias.ProviderName,
            BaseURL:  cfg.Cambiarias.BaseURL,
            PageSize: cfg.Providers.PageSize,
        }, httpx.New(time.Duration(cfg.Cambiarias.TimeoutSec)*time.Second), log)
        providers = append(providers, decorate(cam, cfg.Cambiarias, cfg.Providers))
    }
    if cfg.Datos.Enabled {
        dat = datos.New(datos.Config{
            Name:     datos.ProviderName,
            BaseURL:  cfg.Datos.BaseURL,
            PageSize: cfg.Providers.PageSize,
        }, httpx.New(time.Duration(cfg.Datos.TimeoutSec)*time.Second), log)
        providers = append(providers, decorate(dat, cfg.Datos, cfg.Providers))
    }
    if cfg.DolarAPI.Enabled {
        hc := httpx.New(time.Duration(cfg.DolarAPI.TimeoutSec) * time.Second)
        client := dolarapi.NewAPIClient(
            dolarapi.WithBaseURL(cfg.DolarAPI.BaseURL),
            dolarapi.WithHTTPClient(hc.HTTP),
        )
        dol = dolarapi.New(client, log)
        providers = append(providers, decorate(dol, cfg.DolarAPI, cfg.Providers))
    }
    if cam != nil && dat != nil && dol != nil {
        providers = append(providers, oficial.New(cam, dat, dol, log))
    }

    return chain.New(chain.Config{
        Primary:   cfg.Providers.Primary,
        Fallbacks: cfg.Providers.Fallbacks,
    }, providers, log)
}

// Prefer token bucket with burst if RPM is set, otherwise use min-interval.
func decorate(p series.Provider, up config.Upstream, pc config.Providers) series.Provider {
    if up.MaxRequestsPerMinute > 0 {
        rate := float64(up.MaxRequestsPerMinute) / 60.0
        burst := up.Burst
        if burst <= 0 { burst = 1 }
        p = &ratelimit.TokenBucketProvider{P: p, TB: ratelimit.NewTokenBucket(rate, burst)}
    } else if up.MinRequestIntervalSec > 0 {
        p = &ratelimit.MinInterval{P: p, Interval: time.Duration(up.MinRequestIntervalSec) * time.Second}
    }
    if pc.HealthTTLSec > 0 {
        p = &cache.Provider{
            P:         p,
            HealthTTL: time.Duration(pc.HealthTTLSec) * time.Second,
        }
    }
    return p
}
