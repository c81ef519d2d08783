package services

import (
	"errors"
	"route-planning-service/internal/domain"
	"route-planning-service/internal/geo"
)

const (
	clusterMaxIterations = 20
	// Centroid movement (km) below which k-means is considered converged.
	clusterConvergenceKm = 0.01
)

var ErrInvalidClusterCount = errors.New("cluster orders: cluster count must be positive")

// ClusterOrders partitions orders into at most k geographic groups using a
// deterministic k-means variant.
//
// Each order is represented by the midpoint of its pickup and delivery so that
// long-haul orders with nearby deliveries are not split on delivery alone.
// Seeds are evenly spaced input orders, so the same input always yields the
// same grouping. Every order lands in exactly one non-empty group.
func ClusterOrders(orders []domain.Order, k int) ([][]domain.Order, error) {
	if k <= 0 {
		return nil, ErrInvalidClusterCount
	}

	n := len(orders)
	if n == 0 {
		return [][]domain.Order{}, nil
	}

	if k >= n {
		groups := make([][]domain.Order, 0, n)
		for _, o := range orders {
			groups = append(groups, []domain.Order{o})
		}
		return groups, nil
	}

	points := make([]domain.LatLng, n)
	for i, o := range orders {
		points[i] = geo.Midpoint(o.Pickup.Location, o.Delivery.Location)
	}

	centroids := make([]domain.LatLng, k)
	for c := 0; c < k; c++ {
		centroids[c] = points[c*n/k]
	}

	assignment := make([]int, n)
	for iter := 0; iter < clusterMaxIterations; iter++ {
		for i, p := range points {
			assignment[i] = nearestCentroid(p, centroids)
		}

		next := recomputeCentroids(points, assignment, centroids)

		converged := true
		for c := range centroids {
			if geo.Distance(centroids[c], next[c]) >= clusterConvergenceKm {
				converged = false
			}
		}
		centroids = next

		if converged {
			break
		}
	}

	// Final assignment against the settled centroids.
	for i, p := range points {
		assignment[i] = nearestCentroid(p, centroids)
	}

	buckets := make([][]domain.Order, k)
	for i, o := range orders {
		buckets[assignment[i]] = append(buckets[assignment[i]], o)
	}

	groups := make([][]domain.Order, 0, k)
	for _, b := range buckets {
		if len(b) > 0 {
			groups = append(groups, b)
		}
	}

	return groups, nil
}

func nearestCentroid(p domain.LatLng, centroids []domain.LatLng) int {
	best := 0
	bestDist := geo.Distance(p, centroids[0])
	for c := 1; c < len(centroids); c++ {
		// Strict comparison keeps ties on the lowest index.
		if d := geo.Distance(p, centroids[c]); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// recomputeCentroids returns the mean point per cluster. A cluster that lost
// all its members keeps its previous centroid.
func recomputeCentroids(points []domain.LatLng, assignment []int, prev []domain.LatLng) []domain.LatLng {
	sums := make([]domain.LatLng, len(prev))
	counts := make([]int, len(prev))
	for i, p := range points {
		c := assignment[i]
		sums[c].Lat += p.Lat
		sums[c].Lng += p.Lng
		counts[c]++
	}

	next := make([]domain.LatLng, len(prev))
	for c := range prev {
		if counts[c] == 0 {
			next[c] = prev[c]
			continue
		}
		next[c] = domain.LatLng{
			Lat: sums[c].Lat / float64(counts[c]),
			Lng: sums[c].Lng / float64(counts[c]),
		}
	}
	return next
}
