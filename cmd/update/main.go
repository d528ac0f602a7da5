package main

import (
    "context"
    "encoding/json"
    "flag"
    "fmt"
    "log"
    "os"
    "strings"
    "time"

    "econseries/internal/app"
)

func main() {
    var seriesCSV string
    var timeoutMin int
    flag.StringVar(&seriesCSV, "series", os.Getenv("SERIES_IDS"), "comma-separated canonical series ids (default: configured whitelist)")
    flag.IntVar(&timeoutMin, "timeout", 10, "overall timeout in minutes")
    flag.Parse()

    ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutMin)*time.Minute)
    defer cancel()

    a, err := app.Bootstrap(ctx)
    if err != nil { log.Fatalf("bootstrap: %v", err) }
    defer a.Close()

    ids := splitCSV(seriesCSV)
    if len(ids) == 0 { ids = a.Cfg.Ingest.SeriesWhitelist }
    if len(ids) == 0 {
        log.Fatal("no series to update; pass -series or set ingest.series_whitelist")
    }

    results := a.Ingestor.ExecuteMany(ctx, ids)

    b, _ := json.MarshalIndent(results, "", "  ")
    fmt.Println(string(b))

    failed := 0
    for _, r := range results {
        if !r.Success { failed++ }
    }
    if failed > 0 {
        log.Printf("%d of %d series failed", failed, len(results))
        os.Exit(1)
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
