package series

import (
    "encoding/json"
    "math"
    "testing"
)

func TestParseDate_AcceptedShapes(t *testing.T) {
    cases := map[string]string{
        "2024-02-11":               "2024-02-11",
        "2024-02-11T17:05:00.000Z": "2024-02-11",
        "2024-02-11T17:05:00Z":     "2024-02-11",
        "2024-02-11T17:05:00":      "2024-02-11",
        "11/02/2024":               "2024-02-11",
        " 2024-02-11 ":             "2024-02-11",
        "":                         "",
        "not-a-date":               "",
        "2024-02-31":               "", // February has no 31st
    }
    for in, want := range cases {
        if got := ParseDate(in); got != want {
            t.Fatalf("ParseDate(%q) = %q, want %q", in, got, want)
        }
    }
}

func TestParseValue_Coercions(t *testing.T) {
    cases := []struct {
        in   any
        want float64
        ok   bool
    }{
        {float64(1.5), 1.5, true},
        {float32(2), 2, true},
        {int(3), 3, true},
        {int64(4), 4, true},
        {json.Number("870.25"), 870.25, true},
        {json.Number("not-a-number"), 0, false},
        {"1041.5", 1041.5, true},
        {" 1041,5 ", 1041.5, true}, // comma decimal
        {"", 0, false},
        {"null", 0, false},
        {"N/A", 0, false},
        {"-", 0, false},
        {nil, 0, false},
        {math.NaN(), 0, false},
        {math.Inf(1), 0, false},
        {true, 0, false},
    }
    for _, c := range cases {
        got, ok := ParseValue(c.in)
        if ok != c.ok || (ok && got != c.want) {
            t.Fatalf("ParseValue(%v) = (%v, %v), want (%v, %v)", c.in, got, ok, c.want, c.ok)
        }
    }
}

func TestNormalize_DropsInvalidPreservesOrder(t *testing.T) {
    raw := []RawPoint{
        {Date: "2024-01-03", Value: 3.0},
        {Date: "bogus", Value: 9.0},
        {Date: "2024-01-01", Value: "null"},
        {Date: "2024-01-02", Value: "2"},
        {Date: "2024-01-01", Value: 1.0},
    }
    got := Normalize(raw, "s1")
    if len(got) != 3 {
        t.Fatalf("want 3 points, got %d: %+v", len(got), got)
    }
    // valid points keep their original relative order
    if got[0].Ts != "2024-01-03" || got[1].Ts != "2024-01-02" || got[2].Ts != "2024-01-01" {
        t.Fatalf("order broken: %+v", got)
    }
    for _, p := range got {
        if p.SeriesID != "s1" { t.Fatalf("series id not applied: %+v", p) }
    }
}

func TestDedupe_LastWins(t *testing.T) {
    in := []Point{
        {SeriesID: "a", Ts: "2024-01-01", Value: 1},
        {SeriesID: "b", Ts: "2024-01-01", Value: 2},
        {SeriesID: "a", Ts: "2024-01-01", Value: 3}, // later occurrence replaces
        {SeriesID: "a", Ts: "2024-01-02", Value: 4},
    }
    got := Dedupe(in)
    if len(got) != 3 {
        t.Fatalf("want 3 points, got %d: %+v", len(got), got)
    }
    // sorted by series id then date
    if got[0].SeriesID != "a" || got[0].Ts != "2024-01-01" || got[0].Value != 3 {
        t.Fatalf("last occurrence should win: %+v", got[0])
    }
    if got[1].Ts != "2024-01-02" || got[2].SeriesID != "b" {
        t.Fatalf("unexpected order: %+v", got)
    }
}

func TestDedupe_Empty(t *testing.T) {
    if got := Dedupe(nil); len(got) != 0 {
        t.Fatalf("want empty, got %+v", got)
    }
}

func TestNextDay(t *testing.T) {
    if got := NextDay("2024-02-28"); got != "2024-02-29" { // 2024 is a leap year
        t.Fatalf("NextDay(2024-02-28) = %q", got)
    }
    if got := NextDay("2024-12-31"); got != "2025-01-01" {
        t.Fatalf("NextDay(2024-12-31) = %q", got)
    }
    if got := NextDay("garbage"); got != "" {
        t.Fatalf("NextDay(garbage) = %q", got)
    }
}

func TestValidDate(t *testing.T) {
    if !ValidDate("2024-02-29") { t.Fatal("leap day should be valid") }
    if ValidDate("2023-02-29") { t.Fatal("2023 is not a leap year") }
    if ValidDate("2024-2-9") { t.Fatal("short form should be rejected") }
}
