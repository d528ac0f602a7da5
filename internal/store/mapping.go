package store

import (
    "context"
    "errors"
    "fmt"

    "github.com/jackc/pgx/v5"
    "github.com/sirupsen/logrus"

    "econseries/internal/series"
)

// InternalID looks up the canonical id mapped to a provider-native id.
// Returns "" without error when no mapping exists; the resolver turns
// that into an identity fallback.
func (s *Store) InternalID(ctx context.Context, externalID, providerName string) (string, error) {
    var id string
    err := s.pool.QueryRow(ctx,
        `SELECT internal_series_id FROM series_mappings
         WHERE external_series_id = $1 AND provider_name = $2`,
        externalID, providerName).Scan(&id)
    if errors.Is(err, pgx.ErrNoRows) {
        return "", nil
    }
    if err != nil {
        return "", fmt.Errorf("internal id for %s/%s: %w", externalID, providerName, err)
    }
    return id, nil
}

// ExternalID looks up the provider-native id mapped to a canonical id.
// Returns "" without error when no mapping exists.
func (s *Store) ExternalID(ctx context.Context, internalID, providerName string) (string, error) {
    var id string
    err := s.pool.QueryRow(ctx,
        `SELECT external_series_id FROM series_mappings
         WHERE internal_series_id = $1 AND provider_name = $2`,
        internalID, providerName).Scan(&id)
    if errors.Is(err, pgx.ErrNoRows) {
        return "", nil
    }
    if err != nil {
        return "", fmt.Errorf("external id for %s/%s: %w", internalID, providerName, err)
    }
    return id, nil
}

// CreateMapping records one canonical/external link. Existing mappings for
// the same (external id, provider) pair are left untouched.
func (s *Store) CreateMapping(ctx context.Context, m series.Mapping) error {
    var keywords any
    if len(m.Keywords) > 0 { keywords = m.Keywords }
    var desc any
    if m.Description != "" { desc = m.Description }
    _, err := s.pool.Exec(ctx,
        `INSERT INTO series_mappings (internal_series_id, external_series_id, provider_name, keywords, description)
         VALUES ($1, $2, $3, $4, $5)
         ON CONFLICT (external_series_id, provider_name) DO NOTHING`,
        m.InternalID, m.ExternalID, m.Provider, keywords, desc)
    if err != nil {
        return fmt.Errorf("create mapping %s->%s (%s): %w", m.InternalID, m.ExternalID, m.Provider, err)
    }
    s.log.WithFields(logrus.Fields{
        "internal": m.InternalID,
        "external": m.ExternalID,
        "provider": m.Provider,
    }).Info("created series mapping")
    return nil
}

// MappingsForProvider lists every mapping one provider participates in.
func (s *Store) MappingsForProvider(ctx context.Context, providerName string) ([]series.Mapping, error) {
    rows, err := s.pool.Query(ctx,
        `SELECT internal_series_id, external_series_id, provider_name, keywords, description
         FROM series_mappings WHERE provider_name = $1 ORDER BY internal_series_id`,
        providerName)
    if err != nil {
        return nil, fmt.Errorf("mappings for %s: %w", providerName, err)
    }
    defer rows.Close()

    var out []series.Mapping
    for rows.Next() {
        var m series.Mapping
        var desc *string
        if err := rows.Scan(&m.InternalID, &m.ExternalID, &m.Provider, &m.Keywords, &desc); err != nil {
            return nil, fmt.Errorf("scan mapping: %w", err)
        }
        if desc != nil { m.Description = *desc }
        out = append(out, m)
    }
    return out, rows.Err()
}
