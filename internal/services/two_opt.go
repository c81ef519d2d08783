package services

import (
	"route-planning-service/internal/domain"
	"route-planning-service/internal/geo"
)

// Minimum gain (km) for a reversal to count as an improvement.
const twoOptEpsilon = 1e-9

// TwoOpt refines an open path by reversing sub-segments.
//
// Reversing stops[i..j] only changes the edges entering i and leaving j, so
// each candidate is scored in constant time. A reversal is legal only when no
// order has both its pickup and its delivery inside the segment, since those
// are the only pairs whose relative order flips. The search stops when a full
// pass finds nothing or after maxPasses passes. The input is not modified.
func TwoOpt(stops []domain.Stop, maxPasses int) []domain.Stop {
	route := make([]domain.Stop, len(stops))
	copy(route, stops)

	n := len(route)
	if n < 3 {
		return route
	}
	if maxPasses <= 0 {
		maxPasses = 1
	}

	for pass := 0; pass < maxPasses; pass++ {
		improved := false

		for i := 0; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				if reversalGain(route, i, j) <= twoOptEpsilon {
					continue
				}
				if !reversalKeepsPrecedence(route, i, j) {
					continue
				}
				reverseSegment(route, i, j)
				improved = true
			}
		}

		if !improved {
			break
		}
	}

	return route
}

// reversalGain is the path-length reduction from reversing route[i..j].
func reversalGain(route []domain.Stop, i, j int) float64 {
	before, after := 0.0, 0.0
	if i > 0 {
		before += geo.Distance(route[i-1].Location, route[i].Location)
		after += geo.Distance(route[i-1].Location, route[j].Location)
	}
	if j < len(route)-1 {
		before += geo.Distance(route[j].Location, route[j+1].Location)
		after += geo.Distance(route[i].Location, route[j+1].Location)
	}
	return before - after
}

func reversalKeepsPrecedence(route []domain.Stop, i, j int) bool {
	pickups := make(map[string]struct{}, j-i+1)
	for k := i; k <= j; k++ {
		if route[k].Kind == domain.StopPickup {
			pickups[route[k].OrderID] = struct{}{}
		}
	}
	for k := i; k <= j; k++ {
		if route[k].Kind != domain.StopDelivery {
			continue
		}
		if _, ok := pickups[route[k].OrderID]; ok {
			return false
		}
	}
	return true
}

func reverseSegment(route []domain.Stop, i, j int) {
	for i < j {
		route[i], route[j] = route[j], route[i]
		i++
		j--
	}
}

// StopsPathLength is the open-path length of stops in their current order.
func StopsPathLength(stops []domain.Stop) float64 {
	return geo.PathLength(domain.Locations(stops))
}
