package dto

import "time"

type CapacityDTO struct {
	MaxWeightKg float64 `json:"max_weight_kg" validate:"gte=0"`
	MaxVolumeM3 float64 `json:"max_volume_m3" validate:"gte=0"`
}

// WindowStart and WindowEnd accept "HH:MM", "HH:MM:SS" (today) or RFC 3339.
type ParamsDTO struct {
	WindowStart    string      `json:"window_start"`
	WindowEnd      string      `json:"window_end"`
	TruckCount     int         `json:"truck_count" validate:"gte=0,lte=50"`
	ServiceMinutes float64     `json:"service_minutes" validate:"gte=0"`
	FuelKmPerLitre float64     `json:"fuel_km_per_litre" validate:"gte=0"`
	Capacity       CapacityDTO `json:"capacity"`
}

type ConfigurationDTO struct {
	AvoidTolls        bool   `json:"avoid_tolls"`
	Priority          string `json:"priority" validate:"omitempty,oneof=speed balanced cost"`
	ConsiderTraffic   bool   `json:"consider_traffic"`
	TimeBufferMinutes int    `json:"time_buffer_minutes" validate:"gte=0,lte=60"`
}

// Orders may be omitted to plan every stored order.
type PlanRequest struct {
	Orders        []OrderDTO       `json:"orders" validate:"dive"`
	Params        ParamsDTO        `json:"params"`
	Configuration ConfigurationDTO `json:"configuration"`
	Refine        bool             `json:"refine"`
}

type StopResponse struct {
	Sequence         int       `json:"sequence"`
	OrderID          string    `json:"order_id"`
	OrderNumber      string    `json:"order_number,omitempty"`
	Kind             string    `json:"kind"`
	Lat              float64   `json:"lat"`
	Lng              float64   `json:"lng"`
	Address          string    `json:"address,omitempty"`
	City             string    `json:"city,omitempty"`
	EstimatedArrival time.Time `json:"estimated_arrival"`
}

type MetricsResponse struct {
	TotalDistanceKm      float64 `json:"total_distance_km"`
	EstimatedDurationMin float64 `json:"estimated_duration_min"`
	EstimatedCost        float64 `json:"estimated_cost"`
	FuelCost             float64 `json:"fuel_cost"`
	TollsCost            float64 `json:"tolls_cost"`
	TotalWeightKg        float64 `json:"total_weight_kg"`
	TotalVolumeM3        float64 `json:"total_volume_m3"`
}

type AlertResponse struct {
	AlertID  string `json:"alert_id"`
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	OrderID  string `json:"order_id,omitempty"`
}

type RouteResponse struct {
	RouteID    string          `json:"route_id"`
	Name       string          `json:"name"`
	TruckID    int             `json:"truck_id"`
	PathSource string          `json:"path_source"`
	Metrics    MetricsResponse `json:"metrics"`
	Stops      []StopResponse  `json:"stops"`
	// [lng, lat] pairs, GeoJSON axis order.
	Polyline [][]float64     `json:"polyline"`
	Alerts   []AlertResponse `json:"alerts"`
}

type PlanResponse struct {
	Routes []RouteResponse `json:"routes"`
}
