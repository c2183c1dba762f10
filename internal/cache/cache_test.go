package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T, maxEntries int) *Memory {
	t.Helper()
	m, err := NewMemory(maxEntries)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t, 0)

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	value := []byte("hello")
	require.NoError(t, m.Set(ctx, "k", value, time.Minute))
	value[0] = 'j' // caller mutation must not leak into the cache

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
	got[0] = 'j'

	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(again))

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t, 0)

	require.NoError(t, m.Set(ctx, "short", []byte("x"), time.Second))
	require.NoError(t, m.Set(ctx, "default", []byte("y"), 0))

	assert.Eventually(t, func() bool {
		_, err := m.Get(ctx, "short")
		return errors.Is(err, ErrNotFound)
	}, 5*time.Second, 50*time.Millisecond)

	got, err := m.Get(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, "y", string(got))
}

func TestMemory_EvictsBeyondCapacity(t *testing.T) {
	ctx := context.Background()
	const capacity = 256
	const written = 5000
	m := newTestMemory(t, capacity)

	for i := 0; i < written; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("key-%d", i), []byte("value"), time.Hour))
	}

	found := 0
	for i := 0; i < written; i++ {
		if _, err := m.Get(ctx, fmt.Sprintf("key-%d", i)); err == nil {
			found++
		}
	}
	assert.Positive(t, found)
	assert.LessOrEqual(t, found, 4*capacity, "cache must stay bounded")
}

func TestMemory_InvalidKeyAndClosed(t *testing.T) {
	ctx := context.Background()
	m := newTestMemory(t, 0)

	assert.ErrorIs(t, m.Set(ctx, "", []byte("x"), 0), ErrInvalidKey)
	_, err := m.Get(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidKey)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Set(ctx, "k", []byte("x"), 0), ErrClosed)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Delete(ctx, "k"), ErrClosed)
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c Cache = Nop{}

	require.NoError(t, c.Set(ctx, "k", []byte("x"), time.Minute))
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Close())
}

func TestParseResultKey(t *testing.T) {
	tests := []struct {
		name    string
		locales []string
		want    string
	}{
		{"two locales", []string{"en", "pl"}, "linkedin:parse:en+pl:abc"},
		{"one locale", []string{"pl"}, "linkedin:parse:pl:abc"},
		{"none", nil, "linkedin:parse::abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseResultKey(tt.locales, "abc"))
		})
	}
}
