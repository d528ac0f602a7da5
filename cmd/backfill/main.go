package main

import (
    "context"
    "encoding/json"
    "flag"
    "fmt"
    "log"
    "os"
    "time"

    "econseries/internal/app"
    "econseries/internal/series"
)

func main() {
    var seriesID, from, to string
    var replace bool
    var timeoutMin int
    flag.StringVar(&seriesID, "series", "", "canonical series id (required)")
    flag.StringVar(&from, "from", "", "range start, YYYY-MM-DD (required)")
    flag.StringVar(&to, "to", series.Today(), "range end, YYYY-MM-DD")
    flag.BoolVar(&replace, "replace", false, "delete stored points in the range before refetching")
    flag.IntVar(&timeoutMin, "timeout", 30, "overall timeout in minutes")
    flag.Parse()

    if seriesID == "" || from == "" {
        flag.Usage()
        os.Exit(2)
    }
    if !series.ValidDate(from) || !series.ValidDate(to) {
        log.Fatalf("dates must be YYYY-MM-DD: from=%q to=%q", from, to)
    }
    if from > to {
        log.Fatalf("from %s is after to %s", from, to)
    }

    ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutMin)*time.Minute)
    defer cancel()

    a, err := app.Bootstrap(ctx)
    if err != nil { log.Fatalf("bootstrap: %v", err) }
    defer a.Close()

    if replace {
        deleted, err := a.Store.DeletePointsInRange(ctx, seriesID, from, to)
        if err != nil { log.Fatalf("delete range: %v", err) }
        log.Printf("deleted %d stored points in %s..%s", deleted, from, to)
    }

    result := a.Ingestor.Backfill(ctx, seriesID, from, to)

    b, _ := json.MarshalIndent(result, "", "  ")
    fmt.Println(string(b))
    if !result.Success { os.Exit(1) }
}
