// Package geo holds the great-circle helpers shared by clustering,
// sequencing, estimation and the straight-line routing fallback.
package geo

import (
	"math"
	"route-planning-service/internal/domain"
)

const earthRadiusKm = 6371.0

// Distance returns the haversine distance between a and b in kilometers.
func Distance(a, b domain.LatLng) float64 {
	if a == b {
		return 0
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push h marginally outside [0, 1] for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// PathLength sums Distance over consecutive points of an open path.
func PathLength(points []domain.LatLng) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

// Midpoint returns the arithmetic midpoint of a and b.
// Good enough for clustering at city and regional scale.
func Midpoint(a, b domain.LatLng) domain.LatLng {
	return domain.LatLng{
		Lat: (a.Lat + b.Lat) / 2,
		Lng: (a.Lng + b.Lng) / 2,
	}
}

// Interpolate builds a straight-line polyline through points, inserting
// perSegment evenly spaced points between each consecutive pair.
// The output is fully determined by the input.
func Interpolate(points []domain.LatLng, perSegment int) []domain.LatLng {
	if len(points) == 0 {
		return []domain.LatLng{}
	}
	if perSegment < 0 {
		perSegment = 0
	}

	out := make([]domain.LatLng, 0, len(points)+(len(points)-1)*perSegment)
	out = append(out, points[0])
	for i := 1; i < len(points); i++ {
		from, to := points[i-1], points[i]
		steps := perSegment + 1
		for s := 1; s < steps; s++ {
			f := float64(s) / float64(steps)
			out = append(out, domain.LatLng{
				Lat: from.Lat + (to.Lat-from.Lat)*f,
				Lng: from.Lng + (to.Lng-from.Lng)*f,
			})
		}
		out = append(out, to)
	}
	return out
}

// Round rounds v to the given number of decimal places.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
