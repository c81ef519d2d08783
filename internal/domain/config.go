package domain

import "time"

type RoutePriority string

const (
	PrioritySpeed    RoutePriority = "speed"
	PriorityBalanced RoutePriority = "balanced"
	PriorityCost     RoutePriority = "cost"
)

const MaxTimeBufferMinutes = 60

// Per-run planning preferences. Immutable for the duration of a run.
type Configuration struct {
	AvoidTolls        bool
	Priority          RoutePriority
	ConsiderTraffic   bool
	TimeBufferMinutes int
}

// Normalized returns c with an unknown priority mapped to balanced and the
// time buffer clamped to [0, MaxTimeBufferMinutes].
func (c Configuration) Normalized() Configuration {
	switch c.Priority {
	case PrioritySpeed, PriorityBalanced, PriorityCost:
	default:
		c.Priority = PriorityBalanced
	}

	if c.TimeBufferMinutes < 0 {
		c.TimeBufferMinutes = 0
	}
	if c.TimeBufferMinutes > MaxTimeBufferMinutes {
		c.TimeBufferMinutes = MaxTimeBufferMinutes
	}
	return c
}

type VehicleCapacity struct {
	MaxWeight float64
	MaxVolume float64
}

// Plan-wide parameters driving cluster count, service time and costing.
// Zero capacity values mean "unlimited".
type OptimizationParams struct {
	WindowStart    time.Time
	WindowEnd      time.Time
	TruckCount     int
	ServiceMinutes float64
	FuelKmPerLitre float64
	Capacity       VehicleCapacity
}
