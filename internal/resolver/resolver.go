// Package resolver translates between canonical series ids and each
// provider's native ids. Missing mappings are never an error: the input id
// is returned unchanged, so series that need no translation flow through.
package resolver

import (
    "context"
    "sync"
    "time"

    "github.com/sirupsen/logrus"
    "golang.org/x/sync/singleflight"
)

// MappingStore is the read side of the series-mapping table.
// Both lookups return "" (and no error) when no mapping exists.
type MappingStore interface {
    InternalID(ctx context.Context, externalID, providerName string) (string, error)
    ExternalID(ctx context.Context, internalID, providerName string) (string, error)
}

type entry struct {
    id        string
    expiresAt time.Time // zero means never expires
}

// Resolver memoizes mapping lookups for the process lifetime, or for TTL
// when one is configured. Concurrent lookups of the same key are coalesced.
type Resolver struct {
    store MappingStore
    ttl   time.Duration
    log   *logrus.Entry

    mu    sync.RWMutex
    cache map[string]entry
    sf    singleflight.Group
}

func New(store MappingStore, ttl time.Duration, log *logrus.Logger) *Resolver {
    return &Resolver{
        store: store,
        ttl:   ttl,
        cache: make(map[string]entry),
        log:   log.WithField("component", "resolver"),
    }
}

// ToInternal resolves a provider-native id to the canonical id,
// falling back to the input when no mapping exists.
func (r *Resolver) ToInternal(ctx context.Context, externalID, providerName string) (string, error) {
    return r.resolve(ctx, "int:"+externalID+":"+providerName, externalID, func(ctx context.Context) (string, error) {
        return r.store.InternalID(ctx, externalID, providerName)
    })
}

// ToExternal resolves a canonical id to the provider-native id,
// falling back to the input when no mapping exists.
func (r *Resolver) ToExternal(ctx context.Context, internalID, providerName string) (string, error) {
    return r.resolve(ctx, "ext:"+internalID+":"+providerName, internalID, func(ctx context.Context) (string, error) {
        return r.store.ExternalID(ctx, internalID, providerName)
    })
}

func (r *Resolver) resolve(ctx context.Context, key, fallback string, lookup func(context.Context) (string, error)) (string, error) {
    now := time.Now()

    r.mu.RLock()
    if e, ok := r.cache[key]; ok && (e.expiresAt.IsZero() || now.Before(e.expiresAt)) {
        r.mu.RUnlock()
        return e.id, nil
    }
    r.mu.RUnlock()

    v, err, _ := r.sf.Do(key, func() (any, error) {
        mapped, err := lookup(ctx)
        if err != nil { return "", err }
        resolved := mapped
        if resolved == "" {
            resolved = fallback
            r.log.WithFields(logrus.Fields{"id": fallback, "key": key}).Debug("no mapping found, using identity")
        }

        e := entry{id: resolved}
        if r.ttl > 0 { e.expiresAt = time.Now().Add(r.ttl) }
        r.mu.Lock()
        r.cache[key] = e
        r.mu.Unlock()
        return resolved, nil
    })
    if err != nil {
        return "", err
    }
    return v.(string), nil
}
