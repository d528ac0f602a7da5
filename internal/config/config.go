package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "strings"
)

type Server struct {
    Port              string `json:"port"`
    RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type Database struct {
    URL      string `json:"url"`
    MaxConns int    `json:"max_conns"`
}

type Log struct {
    Level string `json:"level"`
    File  string `json:"file"`
}

// Upstream configures one external API endpoint.
type Upstream struct {
    Enabled               bool   `json:"enabled"`
    BaseURL               string `json:"base_url"`
    TimeoutSec            int    `json:"timeout_sec"`
    MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
    MinRequestIntervalSec int    `json:"min_request_interval_sec"`
    Burst                 int    `json:"burst"`
}

// Providers configures the failover chain and the caches around it.
type Providers struct {
    Primary        string   `json:"primary"`
    Fallbacks      []string `json:"fallbacks"`
    PageSize       int      `json:"page_size"`
    HealthTTLSec   int      `json:"health_ttl_sec"`
    ResolverTTLSec int      `json:"resolver_ttl_sec"`
}

type Ingest struct {
    DefaultLookbackDays int      `json:"default_lookback_days"`
    WorkerPoolSize      int      `json:"worker_pool_size"`
    SeriesWhitelist     []string `json:"series_whitelist"`
}

type Config struct {
    Server     Server    `json:"server"`
    Database   Database  `json:"database"`
    Log        Log       `json:"log"`
    Providers  Providers `json:"providers"`
    Ingest     Ingest    `json:"ingest"`
    Monetarias Upstream  `json:"monetarias"`
    Cambiarias Upstream  `json:"cambiarias"`
    Datos      Upstream  `json:"datos"`
    DolarAPI   Upstream  `json:"dolarapi"`
}

func Default() Config {
    return Config{
        Server: Server{Port: "8080", RequestTimeoutSec: 15},
        Database: Database{MaxConns: 10},
        Log: Log{Level: "info"},
        Providers: Providers{
            Primary:   "BCRA_MONETARIAS",
            Fallbacks: []string{"DATOS_SERIES", "BCRA_OFICIAL", "DOLARAPI"},
            PageSize:  1000,
        },
        Ingest: Ingest{
            DefaultLookbackDays: 1,
            WorkerPoolSize:      4,
        },
        Monetarias: Upstream{
            Enabled:    true,
            BaseURL:    "https://api.bcra.gob.ar",
            TimeoutSec: 30,
        },
        Cambiarias: Upstream{
            Enabled:    true,
            BaseURL:    "https://api.bcra.gob.ar/estadisticascambiarias/v1.0",
            TimeoutSec: 30,
        },
        Datos: Upstream{
            Enabled:    true,
            BaseURL:    "https://apis.datos.gob.ar/series/api",
            TimeoutSec: 30,
        },
        DolarAPI: Upstream{
            Enabled:    true,
            BaseURL:    "https://dolarapi.com/v1",
            TimeoutSec: 15,
        },
    }
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. Environment variables override select fields for secrecy.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        if _, err := os.Stat("config.json"); err == nil {
            path = "config.json"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := json.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    applyEnv(&cfg)
    return cfg, nil
}

func applyEnv(cfg *Config) {
    if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
    if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Server.RequestTimeoutSec = x }
    }
    if v := os.Getenv("DATABASE_URL"); v != "" { cfg.Database.URL = v }
    if v := os.Getenv("DATABASE_MAX_CONNS"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Database.MaxConns = x }
    }
    if v := os.Getenv("LOG_LEVEL"); v != "" { cfg.Log.Level = v }
    if v := os.Getenv("LOG_FILE"); v != "" { cfg.Log.File = v }

    if v := os.Getenv("PROVIDER_PRIMARY"); v != "" { cfg.Providers.Primary = v }
    if v := os.Getenv("PROVIDER_FALLBACKS"); v != "" { cfg.Providers.Fallbacks = splitCSV(v) }
    if v := os.Getenv("PROVIDER_PAGE_SIZE"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Providers.PageSize = x }
    }
    if v := os.Getenv("PROVIDER_HEALTH_TTL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Providers.HealthTTLSec = x }
    }
    if v := os.Getenv("RESOLVER_TTL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Providers.ResolverTTLSec = x }
    }

    if v := os.Getenv("INGEST_LOOKBACK_DAYS"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Ingest.DefaultLookbackDays = x }
    }
    if v := os.Getenv("INGEST_WORKERS"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Ingest.WorkerPoolSize = x }
    }
    if v := os.Getenv("SERIES_WHITELIST"); v != "" { cfg.Ingest.SeriesWhitelist = splitCSV(v) }

    applyUpstreamEnv("MONETARIAS", &cfg.Monetarias)
    applyUpstreamEnv("CAMBIARIAS", &cfg.Cambiarias)
    applyUpstreamEnv("DATOS", &cfg.Datos)
    applyUpstreamEnv("DOLARAPI", &cfg.DolarAPI)
}

func applyUpstreamEnv(prefix string, u *Upstream) {
    if v := os.Getenv(prefix + "_ENABLED"); v != "" {
        switch strings.ToLower(v) {
        case "1", "true", "yes", "y": u.Enabled = true
        case "0", "false", "no", "n": u.Enabled = false
        }
    }
    if v := os.Getenv(prefix + "_BASE_URL"); v != "" { u.BaseURL = v }
    if v := os.Getenv(prefix + "_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { u.TimeoutSec = x }
    }
    if v := os.Getenv(prefix + "_MAX_RPM"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { u.MaxRequestsPerMinute = x }
    }
    if v := os.Getenv(prefix + "_MIN_INTERVAL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { u.MinRequestIntervalSec = x }
    }
    if v := os.Getenv(prefix + "_BURST"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { u.Burst = x }
    }
}

func splitCSV(s string) []string {
    parts := strings.Split(s, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p != "" { out = append(out, p) }
    }
    return out
}
