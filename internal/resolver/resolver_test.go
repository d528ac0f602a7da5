package resolver

import (
    "context"
    "errors"
    "io"
    "sync"
    "testing"
    "time"

    "github.com/sirupsen/logrus"
)

type fakeMappingStore struct {
    mu            sync.Mutex
    internal      map[string]string // externalID -> internalID
    external      map[string]string // internalID -> externalID
    err           error
    internalCalls int
    externalCalls int
}

func (f *fakeMappingStore) InternalID(_ context.Context, externalID, _ string) (string, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.internalCalls++
    return f.internal[externalID], f.err
}

func (f *fakeMappingStore) ExternalID(_ context.Context, internalID, _ string) (string, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.externalCalls++
    return f.external[internalID], f.err
}

func testLogger() *logrus.Logger {
    log := logrus.New()
    log.SetOutput(io.Discard)
    return log
}

func TestToExternal_MappedAndIdentity(t *testing.T) {
    store := &fakeMappingStore{external: map[string]string{"1": "bcra.reservas"}}
    r := New(store, 0, testLogger())

    got, err := r.ToExternal(t.Context(), "1", "BCRA_MONETARIAS")
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if got != "bcra.reservas" { t.Fatalf("got %q", got) }

    // no mapping -> identity, never an error
    got, err = r.ToExternal(t.Context(), "unmapped_id", "BCRA_MONETARIAS")
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if got != "unmapped_id" { t.Fatalf("want identity fallback, got %q", got) }
}

func TestToInternal_Memoized(t *testing.T) {
    store := &fakeMappingStore{internal: map[string]string{"15": "base_monetaria"}}
    r := New(store, 0, testLogger())

    for i := 0; i < 4; i++ {
        got, err := r.ToInternal(t.Context(), "15", "BCRA_MONETARIAS")
        if err != nil { t.Fatalf("unexpected error: %v", err) }
        if got != "base_monetaria" { t.Fatalf("got %q", got) }
    }
    if store.internalCalls != 1 {
        t.Fatalf("want 1 store lookup, got %d", store.internalCalls)
    }
}

func TestResolve_IdentityFallbackIsCachedToo(t *testing.T) {
    store := &fakeMappingStore{}
    r := New(store, 0, testLogger())

    for i := 0; i < 3; i++ {
        if _, err := r.ToExternal(t.Context(), "nope", "X"); err != nil {
            t.Fatalf("unexpected error: %v", err)
        }
    }
    if store.externalCalls != 1 {
        t.Fatalf("identity result should be memoized, got %d lookups", store.externalCalls)
    }
}

func TestResolve_TTLExpiry(t *testing.T) {
    store := &fakeMappingStore{external: map[string]string{"1": "bcra.reservas"}}
    r := New(store, 10*time.Millisecond, testLogger())

    if _, err := r.ToExternal(t.Context(), "1", "X"); err != nil { t.Fatalf("unexpected error: %v", err) }
    time.Sleep(20 * time.Millisecond)
    if _, err := r.ToExternal(t.Context(), "1", "X"); err != nil { t.Fatalf("unexpected error: %v", err) }

    if store.externalCalls != 2 {
        t.Fatalf("want a fresh lookup after expiry, got %d", store.externalCalls)
    }
}

func TestResolve_StoreErrorPropagates(t *testing.T) {
    store := &fakeMappingStore{err: errors.New("db down")}
    r := New(store, 0, testLogger())

    if _, err := r.ToInternal(t.Context(), "15", "X"); err == nil {
        t.Fatal("want store error")
    }
    // errors are not cached: the next call hits the store again
    if _, err := r.ToInternal(t.Context(), "15", "X"); err == nil {
        t.Fatal("want store error")
    }
    if store.internalCalls != 2 {
        t.Fatalf("want 2 lookups, got %d", store.internalCalls)
    }
}

func TestResolve_SeparateKeysPerDirectionAndProvider(t *testing.T) {
    store := &fakeMappingStore{
        internal: map[string]string{"x": "canon"},
        external: map[string]string{"x": "native"},
    }
    r := New(store, 0, testLogger())

    in, _ := r.ToInternal(t.Context(), "x", "A")
    out, _ := r.ToExternal(t.Context(), "x", "A")
    if in != "canon" || out != "native" {
        t.Fatalf("directions must not share cache entries: in=%q out=%q", in, out)
    }
}
