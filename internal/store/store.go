// Package store persists canonical series data in Postgres. Point writes
// are idempotent: a uniqueness constraint on (series_id, ts) plus
// ON CONFLICT DO UPDATE makes repeated or overlapping fetches safe.
package store

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/sirupsen/logrus"

    "econseries/internal/series"
)

// upsertBatchSize bounds one multi-row insert; Postgres caps bind
// parameters at 65535 and 1000 points x 4 columns stays well under it.
const upsertBatchSize = 1000

const schema = `
CREATE TABLE IF NOT EXISTS series (
    id        TEXT PRIMARY KEY,
    source    TEXT NOT NULL,
    frequency TEXT NOT NULL,
    unit      TEXT,
    metadata  JSONB
);

CREATE TABLE IF NOT EXISTS series_points (
    series_id TEXT NOT NULL,
    ts        DATE NOT NULL,
    value     DOUBLE PRECISION NOT NULL,
    metadata  JSONB,
    PRIMARY KEY (series_id, ts)
);

CREATE TABLE IF NOT EXISTS series_mappings (
    internal_series_id TEXT NOT NULL,
    external_series_id TEXT NOT NULL,
    provider_name      TEXT NOT NULL,
    keywords           TEXT[],
    description        TEXT,
    UNIQUE (external_series_id, provider_name)
);
`

type Store struct {
    pool *pgxpool.Pool
    log  *logrus.Entry
}

// Connect opens a bounded connection pool against url.
func Connect(ctx context.Context, url string, maxConns int, log *logrus.Logger) (*Store, error) {
    cfg, err := pgxpool.ParseConfig(url)
    if err != nil {
        return nil, fmt.Errorf("parse database url: %w", err)
    }
    if maxConns > 0 { cfg.MaxConns = int32(maxConns) }
    pool, err := pgxpool.NewWithConfig(ctx, cfg)
    if err != nil {
        return nil, fmt.Errorf("connect database: %w", err)
    }
    return New(pool, log), nil
}

func New(pool *pgxpool.Pool, log *logrus.Logger) *Store {
    return &Store{pool: pool, log: log.WithField("component", "store")}
}

func (s *Store) Close() { s.pool.Close() }

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
    if _, err := s.pool.Exec(ctx, schema); err != nil {
        return fmt.Errorf("ensure schema: %w", err)
    }
    return nil
}

// LastDate returns the most recent stored date for a series in YYYY-MM-DD,
// or "" when the series has no points yet.
func (s *Store) LastDate(ctx context.Context, seriesID string) (string, error) {
    var ts time.Time
    err := s.pool.QueryRow(ctx,
        `SELECT ts FROM series_points WHERE series_id = $1 ORDER BY ts DESC LIMIT 1`,
        seriesID).Scan(&ts)
    if errors.Is(err, pgx.ErrNoRows) {
        return "", nil
    }
    if err != nil {
        return "", fmt.Errorf("last date for %s: %w", seriesID, err)
    }
    return ts.Format(series.DateLayout), nil
}

// UpsertPoints writes points inside one transaction, split into batches of
// upsertBatchSize multi-row statements. The returned count sums affected
// rows across batches; under ON CONFLICT DO UPDATE that includes rows whose
// values were already identical, so re-upserting an unchanged set still
// reports the full count.
func (s *Store) UpsertPoints(ctx context.Context, points []series.Point) (int64, error) {
    if len(points) == 0 {
        return 0, nil
    }

    tx, err := s.pool.Begin(ctx)
    if err != nil {
        return 0, fmt.Errorf("begin upsert: %w", err)
    }
    defer tx.Rollback(ctx)

    var total int64
    for _, batch := range chunkPoints(points, upsertBatchSize) {
        sql, args := buildUpsert(batch)
        tag, err := tx.Exec(ctx, sql, args...)
        if err != nil {
            return 0, fmt.Errorf("upsert batch (series %s): %w", batch[0].SeriesID, err)
        }
        total += tag.RowsAffected()
        s.log.WithFields(logrus.Fields{
            "batch":  len(batch),
            "series": batch[0].SeriesID,
        }).Debug("upserted batch")
    }

    if err := tx.Commit(ctx); err != nil {
        return 0, fmt.Errorf("commit upsert: %w", err)
    }
    s.log.WithFields(logrus.Fields{
        "points":   len(points),
        "affected": total,
        "series":   points[0].SeriesID,
    }).Info("upsert completed")
    return total, nil
}

// Stats summarizes one series' stored points.
type Stats struct {
    TotalPoints int64   `json:"total_points"`
    FirstDate   string  `json:"first_date"`
    LastDate    string  `json:"last_date"`
    MinValue    float64 `json:"min_value"`
    MaxValue    float64 `json:"max_value"`
    AvgValue    float64 `json:"avg_value"`
}

// SeriesStats returns aggregate statistics for a series, or nil when the
// series has no stored points.
func (s *Store) SeriesStats(ctx context.Context, seriesID string) (*Stats, error) {
    var (
        total               int64
        first, last         *time.Time
        minV, maxV, avgV    *float64
    )
    err := s.pool.QueryRow(ctx,
        `SELECT COUNT(*), MIN(ts), MAX(ts), MIN(value), MAX(value), AVG(value)
         FROM series_points WHERE series_id = $1`,
        seriesID).Scan(&total, &first, &last, &minV, &maxV, &avgV)
    if err != nil {
        return nil, fmt.Errorf("stats for %s: %w", seriesID, err)
    }
    if total == 0 {
        return nil, nil
    }
    return &Stats{
        TotalPoints: total,
        FirstDate:   first.Format(series.DateLayout),
        LastDate:    last.Format(series.DateLayout),
        MinValue:    *minV,
        MaxValue:    *maxV,
        AvgValue:    *avgV,
    }, nil
}

// DeletePointsInRange removes points in [start, end]. Administrative
// operation: the ingestion paths never delete.
func (s *Store) DeletePointsInRange(ctx context.Context, seriesID, start, end string) (int64, error) {
    tag, err := s.pool.Exec(ctx,
        `DELETE FROM series_points WHERE series_id = $1 AND ts >= $2 AND ts <= $3`,
        seriesID, start, end)
    if err != nil {
        return 0, fmt.Errorf("delete range for %s: %w", seriesID, err)
    }
    s.log.WithFields(logrus.Fields{
        "series":  seriesID,
        "start":   start,
        "end":     end,
        "deleted": tag.RowsAffected(),
    }).Info("deleted points in range")
    return tag.RowsAffected(), nil
}
