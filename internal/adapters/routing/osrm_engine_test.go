package routing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"route-planning-service/internal/domain"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	depot    = domain.LatLng{Lat: 33.4484, Lng: -112.0740}
	customer = domain.LatLng{Lat: 33.4255, Lng: -111.9400}
	other    = domain.LatLng{Lat: 33.5000, Lng: -112.1000}
)

func newTestEngine(t *testing.T, handler http.HandlerFunc) (*OSRMEngine, *int32) {
	t.Helper()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	engine, err := NewOSRMEngine(OSRMConfig{
		BaseURL:         srv.URL,
		MaxAttempts:     3,
		Backoff:         time.Millisecond,
		BreakerFailures: 2,
		BreakerCooldown: time.Minute,
	})
	require.NoError(t, err)
	return engine, &hits
}

func TestNewOSRMEngineRequiresBaseURL(t *testing.T) {
	_, err := NewOSRMEngine(OSRMConfig{BaseURL: "  "})
	require.Error(t, err)
}

func TestOSRMRouteSwapsAxesAndConvertsUnits(t *testing.T) {
	engine, _ := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/route/v1/driving/-112.074000,33.448400;-111.940000,33.425500"),
			"unexpected path %s", r.URL.Path)
		assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": "Ok",
			"routes": [{
				"distance": 15250.0,
				"duration": 1260.0,
				"geometry": {"type": "LineString", "coordinates": [[-112.074, 33.4484], [-112.0, 33.44], [-111.94, 33.4255]]},
				"legs": [{"distance": 15250.0, "duration": 1260.0}]
			}]
		}`))
	})

	res, err := engine.Route(context.Background(), []domain.LatLng{depot, customer})
	require.NoError(t, err)

	assert.Equal(t, domain.PathEngine, res.Source)
	assert.InDelta(t, 15.25, res.DistanceKm, 1e-9)
	assert.InDelta(t, 21.0, res.DurationMin, 1e-9)
	require.Len(t, res.Polyline, 3)
	assert.Equal(t, domain.LatLng{Lat: 33.4484, Lng: -112.074}, res.Polyline[0])
	require.Len(t, res.Legs, 1)
	assert.InDelta(t, 15.25, res.Legs[0].DistanceKm, 1e-9)
}

func TestOSRMRouteNoRoute(t *testing.T) {
	engine, hits := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": "NoRoute", "message": "Impossible route between points"}`))
	})

	_, err := engine.Route(context.Background(), []domain.LatLng{depot, customer})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoRoute), "got %v", err)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits), "4xx must not be retried")
}

func TestOSRMRouteMissingCode(t *testing.T) {
	engine, _ := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"routes": []}`))
	})

	_, err := engine.Route(context.Background(), []domain.LatLng{depot, customer})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no status code")
}

func TestOSRMRouteRetriesServerErrors(t *testing.T) {
	engine, hits := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := engine.Route(context.Background(), []domain.LatLng{depot, customer})
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(hits))
}

func TestOSRMBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	engine, hits := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	engine.maxAttempts = 1

	for i := 0; i < 2; i++ {
		_, err := engine.Route(context.Background(), []domain.LatLng{depot, customer})
		require.Error(t, err)
	}
	require.Equal(t, int32(2), atomic.LoadInt32(hits))

	_, err := engine.Route(context.Background(), []domain.LatLng{depot, customer})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, int32(2), atomic.LoadInt32(hits), "open breaker must not reach the engine")
}

func TestOSRMRouteTooFewPoints(t *testing.T) {
	engine, hits := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := engine.Route(context.Background(), []domain.LatLng{depot})
	assert.ErrorIs(t, err, ErrTooFewPoints)
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestOSRMTripMapsWaypointOrder(t *testing.T) {
	engine, _ := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/trip/v1/driving/"))
		assert.Equal(t, "false", r.URL.Query().Get("roundtrip"))
		assert.Equal(t, "first", r.URL.Query().Get("source"))

		_, _ = w.Write([]byte(`{
			"code": "Ok",
			"trips": [{
				"distance": 30000.0,
				"duration": 2400.0,
				"geometry": {"coordinates": [[-112.074, 33.4484], [-112.1, 33.5], [-111.94, 33.4255]]},
				"legs": [{"distance": 10000.0, "duration": 800.0}, {"distance": 20000.0, "duration": 1600.0}]
			}],
			"waypoints": [
				{"waypoint_index": 0, "trips_index": 0},
				{"waypoint_index": 2, "trips_index": 0},
				{"waypoint_index": 1, "trips_index": 0}
			]
		}`))
	})

	res, err := engine.Trip(context.Background(), []domain.LatLng{depot, customer, other})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 1}, res.Order)
	assert.InDelta(t, 30, res.DistanceKm, 1e-9)
	assert.InDelta(t, 40, res.DurationMin, 1e-9)
	assert.Len(t, res.Legs, 2)
}

func TestOSRMTable(t *testing.T) {
	engine, _ := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "distance,duration", r.URL.Query().Get("annotations"))
		_, _ = w.Write([]byte(`{
			"code": "Ok",
			"distances": [[0, 1000], [1200, 0]],
			"durations": [[0, 60], [90, 0]]
		}`))
	})

	m, err := engine.Table(context.Background(), []domain.LatLng{depot, customer})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 1}, {1.2, 0}}, m.DistancesKm)
	assert.Equal(t, [][]float64{{0, 1}, {1.5, 0}}, m.DurationsMin)
}

func TestOSRMTableNullCell(t *testing.T) {
	engine, _ := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"code": "Ok",
			"distances": [[0, null], [1200, 0]],
			"durations": [[0, null], [90, 0]]
		}`))
	})

	_, err := engine.Table(context.Background(), []domain.LatLng{depot, customer})
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestMockEngineCountsCalls(t *testing.T) {
	m := NewMockEngine()

	res, err := m.Route(context.Background(), []domain.LatLng{depot, customer})
	require.NoError(t, err)
	assert.Greater(t, res.DistanceKm, 0.0)

	m.Err = errors.New("boom")
	_, err = m.Trip(context.Background(), []domain.LatLng{depot, customer})
	assert.Error(t, err)

	assert.Equal(t, 1, m.Calls("route"))
	assert.Equal(t, 1, m.Calls("trip"))
	assert.Zero(t, m.Calls("table"))
}
