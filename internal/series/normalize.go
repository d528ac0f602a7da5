package series

import (
    "encoding/json"
    "math"
    "sort"
    "strconv"
    "strings"
    "time"
)

// DateLayout is the canonical calendar-date format used everywhere:
// in the store, on the wire to upstreams, and in config.
const DateLayout = "2006-01-02"

// dateLayouts are the upstream date shapes we accept, tried in order.
// Upstreams disagree: some send bare dates, some full timestamps.
var dateLayouts = []string{
    DateLayout,
    time.RFC3339,
    "2006-01-02T15:04:05.000Z",
    "2006-01-02T15:04:05",
    "02/01/2006",
}

// ParseDate parses an upstream date string and reformats it to YYYY-MM-DD.
// Returns "" when the input is empty, unparsable, or not a real date.
func ParseDate(s string) string {
    s = strings.TrimSpace(s)
    if s == "" { return "" }
    for _, layout := range dateLayouts {
        if t, err := time.Parse(layout, s); err == nil {
            return t.UTC().Format(DateLayout)
        }
    }
    return ""
}

// ValidDate reports whether s is a syntactically and semantically valid
// YYYY-MM-DD date (time.Parse rejects 2024-02-31 and friends).
func ValidDate(s string) bool {
    if len(s) != len(DateLayout) { return false }
    _, err := time.Parse(DateLayout, s)
    return err == nil
}

// ParseValue coerces an upstream value to a finite float64.
// Accepts numbers and trimmed numeric strings; "", "null" and "n/a"
// are treated as missing. Returns (0, false) for anything non-finite.
func ParseValue(v any) (float64, bool) {
    switch x := v.(type) {
    case nil:
        return 0, false
    case float64:
        return finite(x)
    case float32:
        return finite(float64(x))
    case int:
        return float64(x), true
    case int64:
        return float64(x), true
    case json.Number:
        f, err := x.Float64()
        if err != nil { return 0, false }
        return finite(f)
    case string:
        s := strings.TrimSpace(x)
        switch strings.ToLower(s) {
        case "", "null", "n/a", "na", "-":
            return 0, false
        }
        // Upstreams occasionally use comma decimals.
        s = strings.ReplaceAll(s, ",", ".")
        f, err := strconv.ParseFloat(s, 64)
        if err != nil { return 0, false }
        return finite(f)
    default:
        return 0, false
    }
}

func finite(f float64) (float64, bool) {
    if math.IsNaN(f) || math.IsInf(f, 0) { return 0, false }
    return f, true
}

// RawPoint is one upstream item before normalization: a date in whatever
// shape the provider uses and a value that may be a number or a string.
type RawPoint struct {
    Date  string
    Value any
}

// Normalize converts raw upstream items into canonical points for seriesID.
// Items with an unparsable date or a non-finite value are silently dropped;
// valid points keep their original relative order.
func Normalize(raw []RawPoint, seriesID string) []Point {
    points := make([]Point, 0, len(raw))
    for _, r := range raw {
        ts := ParseDate(r.Date)
        if ts == "" { continue }
        v, ok := ParseValue(r.Value)
        if !ok { continue }
        points = append(points, Point{SeriesID: seriesID, Ts: ts, Value: v})
    }
    return points
}

// Dedupe collapses points by (SeriesID, Ts) keeping the last occurrence,
// so a single multi-row upsert never touches the same row twice.
// Output is sorted by series id then date.
func Dedupe(points []Point) []Point {
    type key struct{ id, ts string }
    latest := make(map[key]Point, len(points))
    for _, p := range points {
        latest[key{p.SeriesID, p.Ts}] = p
    }
    out := make([]Point, 0, len(latest))
    for _, p := range latest { out = append(out, p) }
    sort.Slice(out, func(i, j int) bool {
        if out[i].SeriesID != out[j].SeriesID { return out[i].SeriesID < out[j].SeriesID }
        return out[i].Ts < out[j].Ts
    })
    return out
}

// Today returns today's date in YYYY-MM-DD (UTC).
func Today() string { return time.Now().UTC().Format(DateLayout) }

// DaysAgo returns the date n days before today in YYYY-MM-DD (UTC).
func DaysAgo(n int) string {
    return time.Now().UTC().AddDate(0, 0, -n).Format(DateLayout)
}

// NextDay returns the day after a YYYY-MM-DD date, or "" if invalid.
func NextDay(date string) string {
    t, err := time.Parse(DateLayout, date)
    if err != nil { return "" }
    return t.AddDate(0, 0, 1).Format(DateLayout)
}
