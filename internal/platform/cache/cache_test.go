package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "authlinks/pkg/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("values are isolated per tenant", func(t *testing.T) {
		s := NewMemory(time.Minute)
		require.NoError(t, s.Set(ctx, "central", "members", []string{"university"}))

		var got []string
		found, err := s.Get(ctx, "central", "members", &got)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []string{"university"}, got)

		found, err = s.Get(ctx, "university", "members", &got)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("entries expire after ttl", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		s := NewMemory(time.Minute, WithClock(func() time.Time { return now }))
		require.NoError(t, s.Set(ctx, "diku", "tags", map[string]string{"personalName": "100"}))

		now = now.Add(2 * time.Minute)
		var got map[string]string
		found, err := s.Get(ctx, "diku", "tags", &got)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("delete removes the entry", func(t *testing.T) {
		s := NewMemory(0)
		require.NoError(t, s.Set(ctx, "diku", "k", 1))
		require.NoError(t, s.Delete(ctx, "diku", "k"))
		var got int
		found, _ := s.Get(ctx, "diku", "k", &got)
		assert.False(t, found)
	})
}

type failingStore struct{}

func (failingStore) Get(context.Context, id.TenantID, string, any) (bool, error) {
	return false, errors.New("redis down")
}

func (failingStore) Set(context.Context, id.TenantID, string, any) error {
	return errors.New("redis down")
}

func (failingStore) Delete(context.Context, id.TenantID, string) error { return nil }

func TestLoader(t *testing.T) {
	ctx := context.Background()

	t.Run("loads once and serves from cache afterwards", func(t *testing.T) {
		loader := NewLoader[[]string](NewMemory(time.Minute), discardLogger())
		calls := 0
		load := func(context.Context) ([]string, error) {
			calls++
			return []string{"m1", "m2"}, nil
		}

		first, err := loader.GetOrLoad(ctx, "central", "members", load)
		require.NoError(t, err)
		second, err := loader.GetOrLoad(ctx, "central", "members", load)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, calls)
	})

	t.Run("load errors are returned and not cached", func(t *testing.T) {
		loader := NewLoader[int](NewMemory(time.Minute), discardLogger())
		_, err := loader.GetOrLoad(ctx, "diku", "k", func(context.Context) (int, error) {
			return 0, errors.New("peer unavailable")
		})
		require.Error(t, err)

		v, err := loader.GetOrLoad(ctx, "diku", "k", func(context.Context) (int, error) { return 7, nil })
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("cache failures degrade to load", func(t *testing.T) {
		loader := NewLoader[int](failingStore{}, discardLogger())
		v, err := loader.GetOrLoad(ctx, "diku", "k", func(context.Context) (int, error) { return 3, nil })
		require.NoError(t, err)
		assert.Equal(t, 3, v)
	})
}
