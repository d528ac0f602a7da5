package store

import (
    "context"
    "errors"
    "fmt"

    "github.com/jackc/pgx/v5"

    "econseries/internal/series"
)

// Metadata returns the catalog row for one canonical series, or nil when
// the series is unknown.
func (s *Store) Metadata(ctx context.Context, seriesID string) (*series.Metadata, error) {
    var m series.Metadata
    var unit *string
    err := s.pool.QueryRow(ctx,
        `SELECT id, source, frequency, unit, metadata FROM series WHERE id = $1`,
        seriesID).Scan(&m.ID, &m.Source, &m.Frequency, &unit, &m.Metadata)
    if errors.Is(err, pgx.ErrNoRows) {
        return nil, nil
    }
    if err != nil {
        return nil, fmt.Errorf("metadata for %s: %w", seriesID, err)
    }
    if unit != nil { m.Unit = *unit }
    return &m, nil
}

// AllMetadata lists the whole series catalog ordered by id.
func (s *Store) AllMetadata(ctx context.Context) ([]series.Metadata, error) {
    rows, err := s.pool.Query(ctx, `SELECT id, source, frequency, unit, metadata FROM series ORDER BY id`)
    if err != nil {
        return nil, fmt.Errorf("list metadata: %w", err)
    }
    defer rows.Close()

    var out []series.Metadata
    for rows.Next() {
        var m series.Metadata
        var unit *string
        if err := rows.Scan(&m.ID, &m.Source, &m.Frequency, &unit, &m.Metadata); err != nil {
            return nil, fmt.Errorf("scan metadata: %w", err)
        }
        if unit != nil { m.Unit = *unit }
        out = append(out, m)
    }
    return out, rows.Err()
}

// UpsertMetadata creates or replaces one catalog row.
func (s *Store) UpsertMetadata(ctx context.Context, m series.Metadata) error {
    var unit any
    if m.Unit != "" { unit = m.Unit }
    var meta any
    if len(m.Metadata) > 0 { meta = m.Metadata }
    _, err := s.pool.Exec(ctx,
        `INSERT INTO series (id, source, frequency, unit, metadata)
         VALUES ($1, $2, $3, $4, $5)
         ON CONFLICT (id)
         DO UPDATE SET source = EXCLUDED.source, frequency = EXCLUDED.frequency,
                       unit = EXCLUDED.unit, metadata = EXCLUDED.metadata`,
        m.ID, m.Source, m.Frequency, unit, meta)
    if err != nil {
        return fmt.Errorf("upsert metadata %s: %w", m.ID, err)
    }
    s.log.WithFields(map[string]any{"series": m.ID, "source": m.Source}).Info("upserted series metadata")
    return nil
}
