package services

import (
	"route-planning-service/internal/domain"
	"route-planning-service/internal/geo"
	"route-planning-service/internal/ports"
)

// StraightLineRoute is the deterministic fallback resolution: an interpolated
// straight-line polyline, haversine distances and a fixed average speed.
// Distances are rounded to 10 m and durations to a tenth of a minute.
func StraightLineRoute(coords []domain.LatLng) ports.RouteResult {
	if len(coords) == 0 {
		return ports.RouteResult{
			Polyline: []domain.LatLng{},
			Legs:     []ports.Leg{},
			Source:   domain.PathFallback,
		}
	}

	legs := make([]ports.Leg, 0, len(coords)-1)
	total := 0.0
	for i := 1; i < len(coords); i++ {
		d := geo.Distance(coords[i-1], coords[i])
		total += d
		legs = append(legs, ports.Leg{
			DistanceKm:  geo.Round(d, 2),
			DurationMin: geo.Round(fallbackMinutes(d), 1),
		})
	}

	return ports.RouteResult{
		Polyline:    geo.Interpolate(coords, fallbackPointsPerSegment),
		DistanceKm:  geo.Round(total, 2),
		DurationMin: geo.Round(fallbackMinutes(total), 1),
		Legs:        legs,
		Source:      domain.PathFallback,
	}
}

// HeuristicTrip orders coords with the nearest-neighbor construction from
// coords[0] and resolves the result as a straight line.
func HeuristicTrip(coords []domain.LatLng) ports.RouteResult {
	order := NearestNeighborOrder(coords, 0)

	visited := make([]domain.LatLng, 0, len(order))
	for _, idx := range order {
		visited = append(visited, coords[idx])
	}

	res := StraightLineRoute(visited)
	res.Order = order
	res.Source = domain.PathHeuristic
	return res
}

// StraightLineMatrix is the pairwise haversine matrix with a zero diagonal.
func StraightLineMatrix(coords []domain.LatLng) ports.Matrix {
	n := len(coords)
	out := ports.Matrix{
		DistancesKm:  make([][]float64, n),
		DurationsMin: make([][]float64, n),
		Source:       domain.PathFallback,
	}
	for i := 0; i < n; i++ {
		out.DistancesKm[i] = make([]float64, n)
		out.DurationsMin[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d := geo.Distance(coords[i], coords[j])
			out.DistancesKm[i][j] = geo.Round(d, 2)
			out.DurationsMin[i][j] = geo.Round(fallbackMinutes(d), 1)
		}
	}
	return out
}

func fallbackMinutes(km float64) float64 {
	return km / fallbackSpeedKmh * 60
}
