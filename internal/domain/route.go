package domain

// PathSource records where a route's distance and polyline came from.
type PathSource string

const (
	// Straight-line estimate computed locally while resolution is pending.
	PathProvisional PathSource = "provisional"
	// Real-road geometry returned by the routing engine.
	PathEngine PathSource = "engine"
	// Straight-line fallback after the engine failed.
	PathFallback PathSource = "fallback"
	// Local nearest-neighbor ordering after the trip optimizer failed.
	PathHeuristic PathSource = "heuristic"
)

type RouteMetrics struct {
	TotalDistanceKm      float64
	EstimatedDurationMin float64
	EstimatedCost        float64
	FuelCost             float64
	TollsCost            float64
	TotalWeight          float64
	TotalVolume          float64
}

// Represents the planned route for a single truck.
// Metrics and Polyline always describe the current Stops order; a reorder
// means a new Route, only Refresh from route resolution updates one in place.
type Route struct {
	RouteID    string
	Name       string
	TruckID    int
	Stops      []Stop
	Metrics    RouteMetrics
	Polyline   []LatLng
	PathSource PathSource
	Alerts     []Alert
}
