package main

import (
    "compress/gzip"
    "context"
    "encoding/json"
    "io"
    "log"
    "net/http"
    "os/signal"
    "strings"
    "sync"
    "syscall"
    "time"

    "econseries/internal/app"
    "econseries/internal/series"
    "econseries/internal/store"
)

func main() {
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    a, err := app.Bootstrap(ctx)
    if err != nil { log.Fatalf("bootstrap: %v", err) }
    defer a.Close()

    mux := http.NewServeMux()
    mux.HandleFunc("/healthz", healthHandler(a.Chain, a.Store))
    mux.HandleFunc("/stats", statsHandler(a.Store))

    srv := &http.Server{
        Addr:              ":" + a.Cfg.Server.Port,
        Handler:           withJSONHeaders(withGzip(recoverPanic(mux))),
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       15 * time.Second,
        WriteTimeout:      time.Duration(a.Cfg.Server.RequestTimeoutSec+5) * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    go func() {
        a.Log.WithField("port", a.Cfg.Server.Port).Info("server listening")
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatalf("server: %v", err)
        }
    }()

    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = srv.Shutdown(shutdownCtx)
}

type healthChecker interface {
    HealthStatus(ctx context.Context) map[string]series.Health
}

type pinger interface {
    Ping(ctx context.Context) error
}

type statsSource interface {
    SeriesStats(ctx context.Context, seriesID string) (*store.Stats, error)
}

type healthResponse struct {
    Status    string                   `json:"status"`
    Database  string                   `json:"database"`
    Providers map[string]series.Health `json:"providers"`
}

// healthHandler reports the database and every registered provider. Degraded
// (some providers down) is still 200; only a dead database or a fully dark
// provider set turns into 503.
func healthHandler(providers healthChecker, db pinger) http.HandlerFunc {
    return func(w http.ResponseWriter, r *http.Request) {
        if r.Method != http.MethodGet {
            http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
            return
        }
        ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
        defer cancel()

        resp := healthResponse{Status: "ok", Database: "ok", Providers: providers.HealthStatus(ctx)}
        if err := db.Ping(ctx); err != nil {
            resp.Database = err.Error()
            resp.Status = "unavailable"
        }
        anyHealthy := false
        for _, h := range resp.Providers {
            if h.Healthy { anyHealthy = true }
        }
        if !anyHealthy && len(resp.Providers) > 0 && resp.Status == "ok" {
            resp.Status = "degraded"
        }

        code := http.StatusOK
        if resp.Status == "unavailable" || (!anyHealthy && len(resp.Providers) > 0) {
            code = http.StatusServiceUnavailable
        }
        writeJSON(w, code, resp)
    }
}

func statsHandler(db statsSource) http.HandlerFunc {
    return func(w http.ResponseWriter, r *http.Request) {
        if r.Method != http.MethodGet {
            http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
            return
        }
        id := strings.TrimSpace(r.URL.Query().Get("series"))
        if id == "" {
            http.Error(w, "missing series query param", http.StatusBadRequest)
            return
        }
        ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
        defer cancel()

        stats, err := db.SeriesStats(ctx, id)
        if err != nil {
            http.Error(w, err.Error(), http.StatusInternalServerError)
            return
        }
        if stats == nil {
            http.Error(w, "series not found", http.StatusNotFound)
            return
        }
        writeJSON(w, http.StatusOK, stats)
    }
}

func writeJSON(w http.ResponseWriter, code int, v any) {
    w.WriteHeader(code)
    enc := json.NewEncoder(w)
    enc.SetEscapeHTML(false)
    _ = enc.Encode(v)
}

func withJSONHeaders(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json; charset=utf-8")
        next.ServeHTTP(w, r)
    })
}

// withGzip compresses response when client supports gzip.
func withGzip(next http.Handler) http.Handler {
    var gzPool = sync.Pool{New: func() any {
        w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
        return w
    }}
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
            next.ServeHTTP(w, r)
            return
        }
        gz := gzPool.Get().(*gzip.Writer)
        gz.Reset(w)
        defer func() {
            _ = gz.Close()
            gz.Reset(io.Discard)
            gzPool.Put(gz)
        }()
        w.Header().Set("Content-Encoding", "gzip")
        w.Header().Add("Vary", "Accept-Encoding")
        gw := gzipResponseWriter{ResponseWriter: w, Writer: gz}
        next.ServeHTTP(gw, r)
    })
}

type gzipResponseWriter struct {
    http.ResponseWriter
    Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
    return g.Writer.Write(b)
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        defer func() {
            if rec := recover(); rec != nil {
                http.Error(w, "internal server error", http.StatusInternalServerError)
            }
        }()
        next.ServeHTTP(w, r)
    })
}
