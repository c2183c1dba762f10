// Package cache stores serialized parse results keyed by content hash.
package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/null"
)

var (
	ErrNotFound   = errors.New("key not found in cache")
	ErrClosed     = errors.New("cache is closed")
	ErrInvalidKey = errors.New("invalid cache key")
)

// DefaultTTL is used when Set is called with a zero ttl.
const DefaultTTL = 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Nop never stores anything. Every Get misses.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, error) { return nil, ErrNotFound }

func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Nop) Delete(context.Context, string) error { return nil }

func (Nop) Close() error { return nil }

// DefaultMemoryEntries bounds NewMemory when no size is given.
const DefaultMemoryEntries = 1024

// Memory is an in-process Cache used when no Redis URL is configured.
// It holds at most the configured number of entries and evicts expired ones.
type Memory struct {
	tc     *sfcache.TieredCache[string, []byte]
	closed atomic.Bool
}

// NewMemory creates an empty in-process cache holding at most maxEntries
// values (DefaultMemoryEntries when maxEntries <= 0).
func NewMemory(maxEntries int) (*Memory, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryEntries
	}
	tc, err := sfcache.NewTiered[string, []byte](
		null.New[string, []byte](),
		sfcache.Size(maxEntries),
		sfcache.TTL(DefaultTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	return &Memory{tc: tc}, nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	if m.closed.Load() {
		return nil, ErrClosed
	}
	v, found, err := m.tc.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if m.closed.Load() {
		return ErrClosed
	}
	if err := m.tc.Set(ctx, key, bytes.Clone(value), ttl); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if err := m.tc.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete from cache: %w", err)
	}
	return nil
}

func (m *Memory) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	return m.tc.Close()
}

// ParseResultKey is the cache key of a parse of content with the given hash
// under the given locale set.
func ParseResultKey(locales []string, contentHash string) string {
	key := "linkedin:parse:"
	for i, l := range locales {
		if i > 0 {
			key += "+"
		}
		key += l
	}
	return key + ":" + contentHash
}
