package ports

import (
	"context"
	"route-planning-service/internal/domain"
)

// Distance and travel duration of one leg between consecutive points.
type Leg struct {
	DistanceKm  float64
	DurationMin float64
}

// Real-road (or fallback) resolution of an ordered coordinate list.
// Order is only set for trip requests and holds the visiting order as
// indices into the request coordinates.
type RouteResult struct {
	Polyline    []domain.LatLng
	DistanceKm  float64
	DurationMin float64
	Legs        []Leg
	Order       []int
	Source      domain.PathSource
}

// N×N distance (km) and duration (minutes) table.
type Matrix struct {
	DistancesKm  [][]float64
	DurationsMin [][]float64
	Source       domain.PathSource
}

// Contract for the external road-routing engine.
// Implementations report every failure as an error; callers decide how to
// degrade.
type RoutingEngine interface {
	// Route resolves coordinates visited in the given order.
	Route(ctx context.Context, coords []domain.LatLng) (RouteResult, error)
	// Trip lets the engine choose the visiting order, keeping the first
	// coordinate as the start of an open path.
	Trip(ctx context.Context, coords []domain.LatLng) (RouteResult, error)
	// Table returns pairwise distances and durations.
	Table(ctx context.Context, coords []domain.LatLng) (Matrix, error)
}
