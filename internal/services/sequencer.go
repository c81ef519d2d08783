package services

import (
	"route-planning-service/internal/domain"
	"route-planning-service/internal/geo"
)

// Upper bound on full 2-opt sweeps per sequence.
const twoOptMaxPasses = 100

// BuildStops derives the pickup and delivery stops of one order.
func BuildStops(order domain.Order, serviceMinutes float64) []domain.Stop {
	mk := func(kind domain.StopKind, ep domain.Endpoint) domain.Stop {
		return domain.Stop{
			OrderID:        order.OrderID,
			OrderNumber:    order.Number,
			Kind:           kind,
			Location:       ep.Location,
			Address:        ep.Address,
			City:           ep.City,
			Window:         ep.Window,
			ServiceMinutes: serviceMinutes,
		}
	}

	return []domain.Stop{
		mk(domain.StopPickup, order.Pickup),
		mk(domain.StopDelivery, order.Delivery),
	}
}

// SequenceStops orders the stops of one cluster into a single open path.
//
// A precedence-aware nearest-neighbor walk builds the initial order and
// 2-opt refines it. For every order the pickup precedes the delivery, and
// the result is renumbered 1..N.
func SequenceStops(stops []domain.Stop) []domain.Stop {
	if len(stops) == 0 {
		return []domain.Stop{}
	}

	ordered := TwoOpt(NearestNeighborStops(stops), twoOptMaxPasses)
	return Renumber(ordered)
}

// NearestNeighborStops builds an open path greedily.
//
// The walk starts at the first pickup in input order and always moves to the
// closest eligible unvisited stop. A delivery is eligible once the pickup of
// its order has been visited; a delivery whose pickup is not part of the input
// is always eligible. The input slice is not modified.
func NearestNeighborStops(stops []domain.Stop) []domain.Stop {
	n := len(stops)
	if n == 0 {
		return []domain.Stop{}
	}

	hasPickup := make(map[string]bool, n)
	for _, s := range stops {
		if s.Kind == domain.StopPickup {
			hasPickup[s.OrderID] = true
		}
	}

	start := 0
	for i, s := range stops {
		if s.Kind == domain.StopPickup {
			start = i
			break
		}
	}

	visited := make([]bool, n)
	pickedUp := make(map[string]bool, n)
	out := make([]domain.Stop, 0, n)

	visit := func(i int) {
		visited[i] = true
		if stops[i].Kind == domain.StopPickup {
			pickedUp[stops[i].OrderID] = true
		}
		out = append(out, stops[i])
	}
	visit(start)

	for len(out) < n {
		current := out[len(out)-1].Location
		best := -1
		bestDist := 0.0

		for i, s := range stops {
			if visited[i] {
				continue
			}
			if s.Kind == domain.StopDelivery && hasPickup[s.OrderID] && !pickedUp[s.OrderID] {
				continue
			}

			d := geo.Distance(current, s.Location)
			// Tie-breaker keeps the lowest input index for deterministic ordering.
			if best == -1 || d < bestDist {
				best = i
				bestDist = d
			}
		}

		// Only reachable with duplicated pickups for one order; fall back to
		// input order so every stop is still emitted.
		if best == -1 {
			for i := range stops {
				if !visited[i] {
					best = i
					break
				}
			}
		}

		visit(best)
	}

	return out
}

// NearestNeighborOrder returns a greedy open-path visiting order over plain
// coordinates, starting at index start. The result holds input indices.
func NearestNeighborOrder(points []domain.LatLng, start int) []int {
	n := len(points)
	if n == 0 {
		return []int{}
	}
	if start < 0 || start >= n {
		start = 0
	}

	visited := make([]bool, n)
	order := make([]int, 0, n)
	visited[start] = true
	order = append(order, start)

	for len(order) < n {
		current := points[order[len(order)-1]]
		best := -1
		bestDist := 0.0
		for i, p := range points {
			if visited[i] {
				continue
			}
			if d := geo.Distance(current, p); best == -1 || d < bestDist {
				best = i
				bestDist = d
			}
		}
		visited[best] = true
		order = append(order, best)
	}

	return order
}

// Renumber assigns contiguous 1-based sequence positions in slice order.
func Renumber(stops []domain.Stop) []domain.Stop {
	out := make([]domain.Stop, len(stops))
	copy(out, stops)
	for i := range out {
		out[i].Sequence = i + 1
	}
	return out
}
