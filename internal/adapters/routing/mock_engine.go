package routing

import (
	"context"
	"route-planning-service/internal/domain"
	"route-planning-service/internal/geo"
	"route-planning-service/internal/ports"
	"sync"
)

// Detour factor the mock applies to straight-line distance to imitate roads.
const mockRoadFactor = 1.3

// MockEngine is an in-process RoutingEngine for tests. By default it answers
// with straight-line geometry scaled by a detour factor; set Err to make
// every call fail, or override the per-kind funcs.
type MockEngine struct {
	mu    sync.Mutex
	calls map[string]int

	Err       error
	RouteFunc func(ctx context.Context, coords []domain.LatLng) (ports.RouteResult, error)
	TripFunc  func(ctx context.Context, coords []domain.LatLng) (ports.RouteResult, error)
	TableFunc func(ctx context.Context, coords []domain.LatLng) (ports.Matrix, error)
}

func NewMockEngine() *MockEngine {
	return &MockEngine{calls: make(map[string]int)}
}

// Calls returns how many times the given kind ("route", "trip", "table") was
// requested.
func (m *MockEngine) Calls(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[kind]
}

func (m *MockEngine) record(kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[kind]++
	return m.Err
}

func (m *MockEngine) Route(ctx context.Context, coords []domain.LatLng) (ports.RouteResult, error) {
	if err := m.record("route"); err != nil {
		return ports.RouteResult{}, err
	}
	if m.RouteFunc != nil {
		return m.RouteFunc(ctx, coords)
	}
	if len(coords) < 2 {
		return ports.RouteResult{}, ErrTooFewPoints
	}
	return mockRoute(coords), nil
}

func (m *MockEngine) Trip(ctx context.Context, coords []domain.LatLng) (ports.RouteResult, error) {
	if err := m.record("trip"); err != nil {
		return ports.RouteResult{}, err
	}
	if m.TripFunc != nil {
		return m.TripFunc(ctx, coords)
	}
	if len(coords) < 2 {
		return ports.RouteResult{}, ErrTooFewPoints
	}

	// Reverse everything after the start so callers can tell the engine's
	// order from input order.
	order := []int{0}
	for i := len(coords) - 1; i > 0; i-- {
		order = append(order, i)
	}
	visited := make([]domain.LatLng, 0, len(coords))
	for _, idx := range order {
		visited = append(visited, coords[idx])
	}

	res := mockRoute(visited)
	res.Order = order
	return res, nil
}

func (m *MockEngine) Table(ctx context.Context, coords []domain.LatLng) (ports.Matrix, error) {
	if err := m.record("table"); err != nil {
		return ports.Matrix{}, err
	}
	if m.TableFunc != nil {
		return m.TableFunc(ctx, coords)
	}

	n := len(coords)
	out := ports.Matrix{
		DistancesKm:  make([][]float64, n),
		DurationsMin: make([][]float64, n),
		Source:       domain.PathEngine,
	}
	for i := range coords {
		out.DistancesKm[i] = make([]float64, n)
		out.DurationsMin[i] = make([]float64, n)
		for j := range coords {
			d := geo.Distance(coords[i], coords[j]) * mockRoadFactor
			out.DistancesKm[i][j] = d
			out.DurationsMin[i][j] = d / 45 * 60
		}
	}
	return out, nil
}

func mockRoute(coords []domain.LatLng) ports.RouteResult {
	legs := make([]ports.Leg, 0, len(coords)-1)
	total := 0.0
	for i := 1; i < len(coords); i++ {
		d := geo.Distance(coords[i-1], coords[i]) * mockRoadFactor
		legs = append(legs, ports.Leg{DistanceKm: d, DurationMin: d / 45 * 60})
		total += d
	}

	return ports.RouteResult{
		Polyline:    geo.Interpolate(coords, 2),
		DistanceKm:  total,
		DurationMin: total / 45 * 60,
		Legs:        legs,
		Source:      domain.PathEngine,
	}
}
