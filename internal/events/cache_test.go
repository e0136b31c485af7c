package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDetailCacheRoundTripDropsCountdown(t *testing.T) {
	cache, err := NewDetailCache(context.Background(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	dto := &EventDTO{ID: uuid.New(), Name: "Jazz night", ComingDay: "2 days 1 hour"}
	cache.set(dto, cache.snapshot())

	got, ok := cache.get(dto.ID)
	require.True(t, ok)
	require.Equal(t, "Jazz night", got.Name)
	require.Empty(t, got.ComingDay)
	require.Equal(t, "2 days 1 hour", dto.ComingDay)

	cache.invalidate(dto.ID)
	_, ok = cache.get(dto.ID)
	require.False(t, ok)
}

func TestDetailCacheDisabled(t *testing.T) {
	cache, err := NewDetailCache(context.Background(), 0)
	require.NoError(t, err)
	require.Nil(t, cache)

	cache.set(&EventDTO{ID: uuid.New()}, cache.snapshot())
	_, ok := cache.get(uuid.New())
	require.False(t, ok)
	require.NoError(t, cache.Close())
}

func TestDetailCacheDropsReadsThatRacedAnInvalidation(t *testing.T) {
	cache, err := NewDetailCache(context.Background(), time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	dto := &EventDTO{ID: uuid.New(), Name: "Jazz night", Active: true}
	gen := cache.snapshot()
	cache.invalidate(dto.ID)
	cache.set(dto, gen)

	_, ok := cache.get(dto.ID)
	require.False(t, ok)

	cache.set(dto, cache.snapshot())
	_, ok = cache.get(dto.ID)
	require.True(t, ok)
}
