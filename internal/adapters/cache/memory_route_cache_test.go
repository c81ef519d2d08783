package cache

import (
	"context"
	"fmt"
	"route-planning-service/internal/domain"
	"route-planning-service/internal/ports"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeValue(km float64) ports.CachedResolution {
	return ports.CachedResolution{Route: &ports.RouteResult{
		Polyline:   []domain.LatLng{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}},
		DistanceKm: km,
		Source:     domain.PathEngine,
	}}
}

func TestMemoryRouteCacheEvictsOldest(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryRouteCache(2)

	require.NoError(t, c.Put(ctx, "a", routeValue(1)))
	require.NoError(t, c.Put(ctx, "b", routeValue(2)))
	require.NoError(t, c.Put(ctx, "c", routeValue(3)))

	_, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok, "oldest entry should be evicted")

	v, ok, err := c.Get(ctx, "c")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3.0, v.Route.DistanceKm)
	assert.Equal(t, 2, c.Len())
}

func TestMemoryRouteCacheRewriteRefreshesAge(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryRouteCache(2)

	require.NoError(t, c.Put(ctx, "a", routeValue(1)))
	require.NoError(t, c.Put(ctx, "b", routeValue(2)))
	require.NoError(t, c.Put(ctx, "a", routeValue(10)))
	require.NoError(t, c.Put(ctx, "c", routeValue(3)))

	_, ok, _ := c.Get(ctx, "b")
	assert.False(t, ok)

	v, ok, _ := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, 10.0, v.Route.DistanceKm)
}

func TestMemoryRouteCacheClear(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryRouteCache(4)
	require.NoError(t, c.Put(ctx, "a", routeValue(1)))

	require.NoError(t, c.Clear(ctx))
	assert.Zero(t, c.Len())

	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok)
}

func TestMemoryRouteCacheConcurrentUse(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryRouteCache(16)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (i*100+j)%32)
				_ = c.Put(ctx, key, routeValue(float64(j)))
				_, _, _ = c.Get(ctx, key)
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 16)
}
