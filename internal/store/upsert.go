package store

import (
    "fmt"
    "strings"

    "econseries/internal/series"
)

// chunkPoints splits points into batches of at most size.
func chunkPoints(in []series.Point, size int) [][]series.Point {
    if size <= 0 || len(in) == 0 { return [][]series.Point{in} }
    out := make([][]series.Point, 0, (len(in)+size-1)/size)
    for i := 0; i < len(in); i += size {
        j := i + size
        if j > len(in) { j = len(in) }
        out = append(out, in[i:j])
    }
    return out
}

// buildUpsert renders one multi-row insert with the conflict clause that
// makes point writes idempotent. Callers must not pass duplicate
// (series_id, ts) pairs within one batch; series.Dedupe guarantees that
// upstream.
func buildUpsert(batch []series.Point) (string, []any) {
    values := make([]string, 0, len(batch))
    args := make([]any, 0, len(batch)*4)
    for i, p := range batch {
        base := i * 4
        values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
        var meta any
        if len(p.Metadata) > 0 { meta = p.Metadata }
        args = append(args, p.SeriesID, p.Ts, p.Value, meta)
    }
    sql := fmt.Sprintf(`INSERT INTO series_points (series_id, ts, value, metadata)
VALUES %s
ON CONFLICT (series_id, ts)
DO UPDATE SET value = EXCLUDED.value, metadata = EXCLUDED.metadata`,
        strings.Join(values, ", "))
    return sql, args
}
