package services

import (
	"fmt"
	"route-planning-service/internal/domain"
	"route-planning-service/internal/geo"
	"strings"
	"time"
)

// EstimationPolicy holds the tunable constants of the estimation model.
// Only their relative ordering matters to the planner: speed priority drives
// faster and burns more fuel, cost priority drives slower and burns less.
type EstimationPolicy struct {
	AverageSpeedKmh     float64
	SpeedDurationFactor float64
	CostDurationFactor  float64
	TrafficFactor       float64
	FuelPricePerLitre   float64
	TollRatePerKm       float64
	SpeedMileageFactor  float64
	CostMileageFactor   float64
	DefaultKmPerLitre   float64
	DefaultServiceMin   float64
}

func DefaultEstimationPolicy() EstimationPolicy {
	return EstimationPolicy{
		AverageSpeedKmh:     50,
		SpeedDurationFactor: 0.85,
		CostDurationFactor:  1.15,
		TrafficFactor:       1.25,
		FuelPricePerLitre:   1.65,
		TollRatePerKm:       0.12,
		SpeedMileageFactor:  0.85,
		CostMileageFactor:   1.10,
		DefaultKmPerLitre:   10,
		DefaultServiceMin:   15,
	}
}

// EstimateOptions selects how a duration is scaled.
type EstimateOptions struct {
	Priority        domain.RoutePriority
	ConsiderTraffic bool
	ServiceMinutes  float64
}

// EstimateOptionsFor maps a run configuration onto estimate options.
func EstimateOptionsFor(cfg domain.Configuration, serviceMinutes float64) EstimateOptions {
	cfg = cfg.Normalized()
	return EstimateOptions{
		Priority:        cfg.Priority,
		ConsiderTraffic: cfg.ConsiderTraffic,
		ServiceMinutes:  serviceMinutes,
	}
}

type CostBreakdown struct {
	Fuel  float64
	Tolls float64
	Total float64
}

// Estimator computes duration, cost and ETAs. It is stateless and safe for
// concurrent use.
type Estimator struct {
	policy EstimationPolicy
}

func NewEstimator(policy EstimationPolicy) *Estimator {
	def := DefaultEstimationPolicy()
	if policy.AverageSpeedKmh <= 0 {
		policy.AverageSpeedKmh = def.AverageSpeedKmh
	}
	if policy.DefaultKmPerLitre <= 0 {
		policy.DefaultKmPerLitre = def.DefaultKmPerLitre
	}
	if policy.DefaultServiceMin < 0 {
		policy.DefaultServiceMin = def.DefaultServiceMin
	}
	return &Estimator{policy: policy}
}

func (e *Estimator) Policy() EstimationPolicy { return e.policy }

func (e *Estimator) durationFactor(opts EstimateOptions) float64 {
	f := 1.0
	switch opts.Priority {
	case domain.PrioritySpeed:
		f = e.policy.SpeedDurationFactor
	case domain.PriorityCost:
		f = e.policy.CostDurationFactor
	}
	if opts.ConsiderTraffic && e.policy.TrafficFactor > 1 {
		f *= e.policy.TrafficFactor
	}
	return f
}

// Duration estimates total route minutes for a driving distance and stop
// count: drive time at the average speed plus per-stop service, scaled by
// the priority and traffic factors.
func (e *Estimator) Duration(distanceKm float64, stopCount int, opts EstimateOptions) float64 {
	if distanceKm < 0 {
		distanceKm = 0
	}
	if stopCount < 0 {
		stopCount = 0
	}

	base := distanceKm/e.policy.AverageSpeedKmh*60 + float64(stopCount)*opts.ServiceMinutes
	return base * e.durationFactor(opts)
}

// LegMinutes is the scaled drive time of a single leg, without service time.
func (e *Estimator) LegMinutes(distanceKm float64, opts EstimateOptions) float64 {
	if distanceKm <= 0 {
		return 0
	}
	return distanceKm / e.policy.AverageSpeedKmh * 60 * e.durationFactor(opts)
}

// RoadMinutes scales an engine-reported drive time. Engines already model
// road speed, so only the traffic factor applies.
func (e *Estimator) RoadMinutes(engineMinutes float64, opts EstimateOptions) float64 {
	if engineMinutes <= 0 {
		return 0
	}
	if opts.ConsiderTraffic && e.policy.TrafficFactor > 1 {
		return engineMinutes * e.policy.TrafficFactor
	}
	return engineMinutes
}

// Cost splits a route's running cost into fuel and tolls.
// Cost priority always avoids tolls, whatever hasTolls says.
func (e *Estimator) Cost(distanceKm, kmPerLitre float64, hasTolls bool, priority domain.RoutePriority) CostBreakdown {
	if distanceKm <= 0 {
		return CostBreakdown{}
	}
	if kmPerLitre <= 0 {
		kmPerLitre = e.policy.DefaultKmPerLitre
	}

	adjusted := kmPerLitre
	switch priority {
	case domain.PrioritySpeed:
		adjusted *= e.policy.SpeedMileageFactor
	case domain.PriorityCost:
		adjusted *= e.policy.CostMileageFactor
	}

	fuel := distanceKm / adjusted * e.policy.FuelPricePerLitre

	tolls := 0.0
	if hasTolls && priority != domain.PriorityCost {
		tolls = distanceKm * e.policy.TollRatePerKm
	}

	return CostBreakdown{
		Fuel:  geo.Round(fuel, 2),
		Tolls: geo.Round(tolls, 2),
		Total: geo.Round(fuel+tolls, 2),
	}
}

// Arrivals stamps each stop with an ETA. The first stop is reached at start;
// every later stop adds the previous stop's service time and the leg's
// drive time. The input slice is not modified.
func (e *Estimator) Arrivals(stops []domain.Stop, start time.Time, opts EstimateOptions) []domain.Stop {
	legs := make([]float64, 0, len(stops))
	for i := 1; i < len(stops); i++ {
		legs = append(legs, e.LegMinutes(geo.Distance(stops[i-1].Location, stops[i].Location), opts))
	}
	return ArrivalsWithLegs(stops, start, legs)
}

// ArrivalsWithLegs is Arrivals with externally supplied leg drive times,
// legMinutes[i] being the leg from stop i to stop i+1. Missing or negative
// legs count as zero.
func ArrivalsWithLegs(stops []domain.Stop, start time.Time, legMinutes []float64) []domain.Stop {
	out := make([]domain.Stop, len(stops))
	copy(out, stops)

	current := start
	for i := range out {
		if i > 0 {
			leg := 0.0
			if i-1 < len(legMinutes) && legMinutes[i-1] > 0 {
				leg = legMinutes[i-1]
			}
			service := out[i-1].ServiceMinutes
			if service < 0 {
				service = 0
			}
			current = current.Add(minutes(service + leg))
		}
		out[i].EstimatedArrival = current
	}
	return out
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

var clockLayouts = []string{"15:04:05", "15:04"}

// ParseStartTime accepts a time of day ("08:30", "08:30:00"), anchored to the
// date and location of day, or an absolute RFC 3339 timestamp.
func ParseStartTime(value string, day time.Time) (time.Time, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, fmt.Errorf("parse start time: value must be non-empty")
	}

	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}

	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, v)
		if err != nil {
			continue
		}
		y, m, d := day.Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, day.Location()), nil
	}

	return time.Time{}, fmt.Errorf("parse start time: unsupported format %q", value)
}

// FormatETA renders an ETA in the format emitted to consumers.
func FormatETA(t time.Time) string {
	return t.Format(time.RFC3339)
}
