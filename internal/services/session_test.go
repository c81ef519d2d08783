package services

import (
	"context"
	"errors"
	"route-planning-service/internal/adapters/cache"
	"route-planning-service/internal/adapters/routing"
	"route-planning-service/internal/domain"
	"route-planning-service/internal/ports"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingEngine answers route requests only once release is closed.
func blockingEngine(release <-chan struct{}) *routing.MockEngine {
	engine := routing.NewMockEngine()
	engine.RouteFunc = func(_ context.Context, coords []domain.LatLng) (ports.RouteResult, error) {
		<-release
		res := StraightLineRoute(coords)
		res.DistanceKm *= 1.2
		res.Source = domain.PathEngine
		return res, nil
	}
	return engine
}

func newTestSession(engine ports.RoutingEngine, opts SessionOptions) *PlanSession {
	resolver := NewRouteResolver(engine, cache.NewMemoryRouteCache(64), ResolverOptions{Timeout: 5 * time.Second})
	return NewPlanSession(NewPlanner(nil), resolver, opts)
}

func waitIdle(t *testing.T, s *PlanSession) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}

func TestSessionAppliesEngineResults(t *testing.T) {
	s := newTestSession(routing.NewMockEngine(), SessionOptions{})

	provisional, err := s.Start(context.Background(), planRequest(eightOrders(), 3))
	require.NoError(t, err)
	require.Len(t, provisional, 3)
	for _, r := range provisional {
		assert.Equal(t, domain.PathProvisional, r.PathSource)
	}

	waitIdle(t, s)

	routes := s.Routes()
	require.Len(t, routes, 3)
	for i, r := range routes {
		assert.Equal(t, provisional[i].RouteID, r.RouteID)
		assert.Equal(t, domain.PathEngine, r.PathSource)
		assert.Greater(t, r.Metrics.TotalDistanceKm, provisional[i].Metrics.TotalDistanceKm)
		requireValidSequence(t, r.Stops)
	}
	assert.Zero(t, s.Discarded())

	updated := make(map[string]bool)
	for len(updated) < 3 {
		select {
		case id := <-s.Updates():
			updated[id] = true
		default:
			t.Fatalf("expected 3 update notifications, got %d", len(updated))
		}
	}
}

func TestSessionKeepsProvisionalOnFallback(t *testing.T) {
	engine := routing.NewMockEngine()
	engine.Err = errors.New("engine down")
	s := newTestSession(engine, SessionOptions{})

	provisional, err := s.Start(context.Background(), planRequest(eightOrders(), 2))
	require.NoError(t, err)
	waitIdle(t, s)

	for i, r := range s.Routes() {
		assert.Equal(t, domain.PathFallback, r.PathSource)
		assert.Equal(t, provisional[i].Metrics, r.Metrics)
		assert.Equal(t, provisional[i].Stops, r.Stops)
	}
}

func TestSessionResetDiscardsInFlightResults(t *testing.T) {
	release := make(chan struct{})
	s := newTestSession(blockingEngine(release), SessionOptions{})

	routes, err := s.Start(context.Background(), planRequest(eightOrders(), 3))
	require.NoError(t, err)
	require.NoError(t, s.Reset(context.Background()))

	close(release)
	waitIdle(t, s)

	assert.Empty(t, s.Routes())
	assert.Equal(t, len(routes), s.Discarded())
	select {
	case id := <-s.Updates():
		t.Fatalf("unexpected update for %s after reset", id)
	default:
	}
}

func TestSessionNewStartSupersedesPrevious(t *testing.T) {
	release := make(chan struct{})
	s := newTestSession(blockingEngine(release), SessionOptions{})

	first, err := s.Start(context.Background(), planRequest(eightOrders(), 3))
	require.NoError(t, err)
	second, err := s.Start(context.Background(), planRequest(eightOrders(), 2))
	require.NoError(t, err)

	close(release)
	waitIdle(t, s)

	assert.Equal(t, len(first), s.Discarded())
	routes := s.Routes()
	require.Len(t, routes, len(second))
	for i, r := range routes {
		assert.Equal(t, second[i].RouteID, r.RouteID)
		assert.Equal(t, domain.PathEngine, r.PathSource)
	}
}

func TestSessionRefineSupersedesEarlierRequest(t *testing.T) {
	release := make(chan struct{})
	s := newTestSession(blockingEngine(release), SessionOptions{})

	routes, err := s.Start(context.Background(), planRequest(eightOrders(), 3))
	require.NoError(t, err)
	require.NoError(t, s.Refine(context.Background(), routes[0].RouteID))

	close(release)
	waitIdle(t, s)

	assert.Equal(t, 1, s.Discarded())
	for _, r := range s.Routes() {
		assert.Equal(t, domain.PathEngine, r.PathSource)
	}
}

func TestSessionRefineUnknownRoute(t *testing.T) {
	s := newTestSession(routing.NewMockEngine(), SessionOptions{})

	err := s.Refine(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestSessionResetClearsCacheWhenConfigured(t *testing.T) {
	for _, clear := range []bool{false, true} {
		engine := routing.NewMockEngine()
		s := newTestSession(engine, SessionOptions{ClearCacheOnReset: clear})
		req := planRequest(eightOrders(), 3)

		routes, err := s.Start(context.Background(), req)
		require.NoError(t, err)
		waitIdle(t, s)
		require.Equal(t, len(routes), engine.Calls("route"))

		require.NoError(t, s.Reset(context.Background()))
		_, err = s.Start(context.Background(), req)
		require.NoError(t, err)
		waitIdle(t, s)

		want := len(routes)
		if clear {
			want *= 2
		}
		assert.Equal(t, want, engine.Calls("route"), "clear=%v", clear)
	}
}

func TestSessionWaitHonorsContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	s := newTestSession(blockingEngine(release), SessionOptions{})

	_, err := s.Start(context.Background(), planRequest(eightOrders(), 1))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Wait(ctx), context.DeadlineExceeded)
}

func TestSessionWaitWhenIdle(t *testing.T) {
	s := newTestSession(routing.NewMockEngine(), SessionOptions{})
	assert.NoError(t, s.Wait(context.Background()))
}

func TestSessionStartRejectsInvalidRequest(t *testing.T) {
	s := newTestSession(routing.NewMockEngine(), SessionOptions{})

	dup := eightOrders()
	dup[1].OrderID = dup[0].OrderID
	_, err := s.Start(context.Background(), planRequest(dup, 2))
	assert.Error(t, err)
	assert.Empty(t, s.Routes())
}
