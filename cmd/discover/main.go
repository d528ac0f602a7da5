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
    "econseries/internal/ingest"
)

// Built-in rules cover the series the default deployment tracks; a JSON
// rules file replaces them wholesale.
var defaultRules = []ingest.DiscoveryRule{
    {
        SeriesID:    "1",
        Keywords:    []string{"reservas internacionales", "international reserves"},
        Description: "Reservas Internacionales del BCRA (en millones de dólares)",
    },
    {
        SeriesID:    "15",
        Keywords:    []string{"base monetaria - total", "base monetaria", "monetary base"},
        Description: "Base monetaria - Total (en millones de pesos)",
    },
}

func main() {
    var rulesPath string
    var timeoutMin int
    flag.StringVar(&rulesPath, "rules", os.Getenv("DISCOVERY_RULES"), "path to JSON discovery rules (optional)")
    flag.IntVar(&timeoutMin, "timeout", 5, "overall timeout in minutes")
    flag.Parse()

    rules := defaultRules
    if rulesPath != "" {
        b, err := os.ReadFile(rulesPath)
        if err != nil { log.Fatalf("rules: %v", err) }
        rules = nil
        if err := json.Unmarshal(b, &rules); err != nil { log.Fatalf("parse rules: %v", err) }
    }
    if len(rules) == 0 { log.Fatal("no discovery rules") }

    ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutMin)*time.Minute)
    defer cancel()

    a, err := app.Bootstrap(ctx)
    if err != nil { log.Fatalf("bootstrap: %v", err) }
    defer a.Close()

    var catalogs []ingest.Catalog
    for _, name := range a.Chain.Providers() {
        if p, ok := a.Chain.Provider(name); ok {
            catalogs = append(catalogs, p)
        }
    }

    result, err := ingest.Discover(ctx, catalogs, rules, a.Store, a.Log)
    if err != nil { log.Fatalf("discover: %v", err) }

    b, _ := json.MarshalIndent(result, "", "  ")
    fmt.Println(string(b))
}
