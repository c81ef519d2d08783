package dto

type CoordinateDTO struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type ResolveRequest struct {
	Coordinates []CoordinateDTO `json:"coordinates" validate:"min=2,max=100,dive"`
	// Let the engine choose the visiting order after the first point.
	Optimize bool `json:"optimize"`
}

type LegResponse struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

type ResolveResponse struct {
	Source      string        `json:"source"`
	DistanceKm  float64       `json:"distance_km"`
	DurationMin float64       `json:"duration_min"`
	Polyline    [][]float64   `json:"polyline"`
	Legs        []LegResponse `json:"legs"`
	Order       []int         `json:"order,omitempty"`
}

type MatrixRequest struct {
	Coordinates []CoordinateDTO `json:"coordinates" validate:"min=2,max=100,dive"`
}

type MatrixResponse struct {
	Source       string      `json:"source"`
	DistancesKm  [][]float64 `json:"distances_km"`
	DurationsMin [][]float64 `json:"durations_min"`
}
