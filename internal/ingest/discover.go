package ingest

import (
    "context"
    "strings"
    "time"

    "github.com/sirupsen/logrus"

    "econseries/internal/series"
)

// Catalog is a provider that can enumerate its upstream series.
type Catalog interface {
    Name() string
    AvailableSeries(ctx context.Context) ([]series.CatalogEntry, error)
}

// CatalogStore persists discovered metadata and identifier mappings.
type CatalogStore interface {
    Metadata(ctx context.Context, id string) (*series.Metadata, error)
    UpsertMetadata(ctx context.Context, m series.Metadata) error
    CreateMapping(ctx context.Context, m series.Mapping) error
}

// DiscoveryRule matches upstream catalog entries onto a canonical series:
// the first entry whose title or description contains any keyword
// (case-insensitive) wins.
type DiscoveryRule struct {
    SeriesID    string   `json:"series_id"`
    Keywords    []string `json:"keywords"`
    Description string   `json:"description,omitempty"`
}

// DiscoveryResult splits the rules into those that found an upstream
// counterpart and those that did not.
type DiscoveryResult struct {
    Mapped   []series.Mapping `json:"mapped"`
    Unmapped []string         `json:"unmapped,omitempty"` // canonical ids with no upstream match
}

// Discover walks every provider catalog, matches entries against the rules,
// and records a mapping plus refreshed metadata for each hit. Catalog
// failures are logged and skipped so one dead upstream cannot block the
// rest of the sweep.
func Discover(ctx context.Context, catalogs []Catalog, rules []DiscoveryRule, store CatalogStore, log *logrus.Logger) (DiscoveryResult, error) {
    clog := log.WithField("component", "discover")
    var out DiscoveryResult
    matched := make(map[string]bool, len(rules))

    for _, cat := range catalogs {
        entries, err := cat.AvailableSeries(ctx)
        if err != nil {
            clog.WithError(err).WithField("provider", cat.Name()).Warn("catalog unavailable, skipping")
            continue
        }
        clog.WithFields(logrus.Fields{
            "provider": cat.Name(),
            "entries":  len(entries),
        }).Info("catalog fetched")

        for _, rule := range rules {
            if matched[rule.SeriesID] { continue }
            entry, ok := findEntry(entries, rule.Keywords)
            if !ok { continue }

            m := series.Mapping{
                InternalID:  rule.SeriesID,
                ExternalID:  entry.ID,
                Provider:    cat.Name(),
                Keywords:    rule.Keywords,
                Description: rule.Description,
            }
            if err := store.CreateMapping(ctx, m); err != nil {
                return out, err
            }
            if err := refreshMetadata(ctx, store, rule, entry, cat.Name()); err != nil {
                return out, err
            }
            matched[rule.SeriesID] = true
            out.Mapped = append(out.Mapped, m)
            clog.WithFields(logrus.Fields{
                "series_id":   rule.SeriesID,
                "external_id": entry.ID,
                "provider":    cat.Name(),
            }).Info("mapped series")
        }
    }

    for _, rule := range rules {
        if !matched[rule.SeriesID] {
            out.Unmapped = append(out.Unmapped, rule.SeriesID)
            clog.WithField("series_id", rule.SeriesID).Info("no upstream match found")
        }
    }
    return out, nil
}

func findEntry(entries []series.CatalogEntry, keywords []string) (series.CatalogEntry, bool) {
    for _, e := range entries {
        text := strings.ToLower(e.Title + " " + e.Description)
        for _, kw := range keywords {
            if strings.Contains(text, strings.ToLower(kw)) {
                return e, true
            }
        }
    }
    return series.CatalogEntry{}, false
}

// refreshMetadata annotates the canonical series with where it was found,
// creating the catalog row when the series is new.
func refreshMetadata(ctx context.Context, store CatalogStore, rule DiscoveryRule, entry series.CatalogEntry, providerName string) error {
    meta, err := store.Metadata(ctx, rule.SeriesID)
    if err != nil {
        return err
    }
    if meta == nil {
        meta = &series.Metadata{ID: rule.SeriesID}
    }
    if meta.Metadata == nil {
        meta.Metadata = make(map[string]string, 3)
    }
    meta.Metadata["discovered_provider"] = providerName
    meta.Metadata["discovered_external_id"] = entry.ID
    meta.Metadata["last_discovered"] = time.Now().UTC().Format(time.RFC3339)
    if rule.Description != "" {
        meta.Metadata["discovered_description"] = rule.Description
    }
    return store.UpsertMetadata(ctx, *meta)
}
