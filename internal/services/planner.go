package services

import (
	"context"
	"fmt"
	"route-planning-service/internal/domain"
	"route-planning-service/internal/geo"
	"route-planning-service/internal/platform/obs"
	"route-planning-service/internal/ports"
	"strings"
	"time"
)

type PlanRequest struct {
	Orders []domain.Order
	Params domain.OptimizationParams
	Config domain.Configuration
}

// Planner runs the synchronous part of the pipeline: clustering, sequencing
// and estimation. It holds no mutable state.
type Planner struct {
	estimator *Estimator
	now       func() time.Time
}

func NewPlanner(estimator *Estimator) *Planner {
	if estimator == nil {
		estimator = NewEstimator(DefaultEstimationPolicy())
	}
	return &Planner{estimator: estimator, now: time.Now}
}

func (p *Planner) Estimator() *Estimator { return p.estimator }

// Plan groups orders into per-truck clusters and returns one provisional
// route per non-empty cluster.
//
// Every order ends up in exactly one route with its pickup sequenced before
// its delivery. Distances are straight-line until route resolution refreshes
// them.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (_ []domain.Route, err error) {
	defer obs.Time(ctx, "planner.Plan")(&err)

	if err := validateOrders(req.Orders); err != nil {
		return nil, fmt.Errorf("plan routes: %w", err)
	}

	if len(req.Orders) == 0 {
		return []domain.Route{}, nil
	}

	truckCount := req.Params.TruckCount
	if truckCount < 1 {
		truckCount = 1
	}

	groups, err := ClusterOrders(req.Orders, truckCount)
	if err != nil {
		return nil, fmt.Errorf("plan routes: cluster orders: %w", err)
	}

	start := p.startTime(req.Params)

	routes := make([]domain.Route, 0, len(groups))
	for i, group := range groups {
		truck := domain.NewTruck(i+1, req.Params.Capacity)
		truck.LoadMultiple(group)

		routes = append(routes, p.PlanTruckRoute(truck, start, req.Params, req.Config))
	}

	return routes, nil
}

// PlanTruckRoute sequences and estimates the orders loaded on one truck.
func (p *Planner) PlanTruckRoute(
	truck *domain.Truck,
	start time.Time,
	params domain.OptimizationParams,
	cfg domain.Configuration,
) domain.Route {
	cfg = cfg.Normalized()
	service := p.serviceMinutes(params)
	opts := EstimateOptionsFor(cfg, service)

	stops := make([]domain.Stop, 0, 2*len(truck.Orders))
	for _, o := range truck.Orders {
		stops = append(stops, BuildStops(o, service)...)
	}

	stops = SequenceStops(stops)
	stops = p.estimator.Arrivals(stops, start, opts)

	distanceKm := geo.Round(StopsPathLength(stops), 2)
	cost := p.estimator.Cost(distanceKm, params.FuelKmPerLitre, !cfg.AvoidTolls, cfg.Priority)

	route := domain.Route{
		RouteID: newID(),
		Name:    fmt.Sprintf("Route %d", truck.TruckID),
		TruckID: truck.TruckID,
		Stops:   stops,
		Metrics: domain.RouteMetrics{
			TotalDistanceKm:      distanceKm,
			EstimatedDurationMin: geo.Round(p.estimator.Duration(distanceKm, len(stops), opts)+float64(cfg.TimeBufferMinutes), 1),
			EstimatedCost:        cost.Total,
			FuelCost:             cost.Fuel,
			TollsCost:            cost.Tolls,
			TotalWeight:          truck.TotalWeight(),
			TotalVolume:          truck.TotalVolume(),
		},
		Polyline:   StraightLineRoute(domain.Locations(stops)).Polyline,
		PathSource: domain.PathProvisional,
	}

	route.Alerts = append(capacityAlerts(truck), cargoAlerts(truck.Orders)...)
	route.Alerts = append(route.Alerts, timeAlerts(stops, params, cfg)...)

	return route
}

// Refresh applies a real-road resolution to route without touching the stop
// order. It reports false, leaving route as is, when res is not an engine
// result.
func (p *Planner) Refresh(route domain.Route, res ports.RouteResult, req PlanRequest) (domain.Route, bool) {
	if res.Source != domain.PathEngine || len(res.Polyline) < 2 {
		return route, false
	}

	cfg := req.Config.Normalized()
	service := p.serviceMinutes(req.Params)
	opts := EstimateOptionsFor(cfg, service)

	out := route
	out.Stops = append([]domain.Stop(nil), route.Stops...)

	if len(out.Stops) > 0 && len(res.Legs) == len(out.Stops)-1 {
		legs := make([]float64, 0, len(res.Legs))
		for _, l := range res.Legs {
			legs = append(legs, p.estimator.RoadMinutes(l.DurationMin, opts))
		}
		out.Stops = ArrivalsWithLegs(out.Stops, out.Stops[0].EstimatedArrival, legs)
	}

	distanceKm := geo.Round(res.DistanceKm, 2)
	cost := p.estimator.Cost(distanceKm, req.Params.FuelKmPerLitre, !cfg.AvoidTolls, cfg.Priority)
	duration := p.estimator.RoadMinutes(res.DurationMin, opts) +
		float64(len(out.Stops))*service + float64(cfg.TimeBufferMinutes)

	out.Metrics.TotalDistanceKm = distanceKm
	out.Metrics.EstimatedDurationMin = geo.Round(duration, 1)
	out.Metrics.EstimatedCost = cost.Total
	out.Metrics.FuelCost = cost.Fuel
	out.Metrics.TollsCost = cost.Tolls
	out.Polyline = append([]domain.LatLng(nil), res.Polyline...)
	out.PathSource = domain.PathEngine

	kept := make([]domain.Alert, 0, len(route.Alerts))
	for _, a := range route.Alerts {
		if a.Code != domain.AlertTimeWindowRisk && a.Code != domain.AlertPlanWindowExceeded {
			kept = append(kept, a)
		}
	}
	out.Alerts = append(kept, timeAlerts(out.Stops, req.Params, cfg)...)

	return out, true
}

func (p *Planner) startTime(params domain.OptimizationParams) time.Time {
	if !params.WindowStart.IsZero() {
		return params.WindowStart
	}
	return p.now()
}

func (p *Planner) serviceMinutes(params domain.OptimizationParams) float64 {
	if params.ServiceMinutes > 0 {
		return params.ServiceMinutes
	}
	return p.estimator.Policy().DefaultServiceMin
}

func validateOrders(orders []domain.Order) error {
	seen := make(map[string]struct{}, len(orders))
	for i, o := range orders {
		id := strings.TrimSpace(o.OrderID)
		if id == "" {
			return fmt.Errorf("order at index %d has empty order id", i)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("duplicate order id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
