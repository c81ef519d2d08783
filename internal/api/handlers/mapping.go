package handlers

import (
	"fmt"
	"route-planning-service/internal/api/dto"
	"route-planning-service/internal/domain"
	"route-planning-service/internal/ports"
	"strings"
)

func toOrderDTO(o domain.Order) dto.OrderDTO {
	return dto.OrderDTO{
		OrderID:  o.OrderID,
		Number:   o.Number,
		Priority: string(o.Priority),
		Pickup:   toEndpointDTO(o.Pickup),
		Delivery: toEndpointDTO(o.Delivery),
		Cargo: dto.CargoDTO{
			WeightKg:     o.Cargo.Weight,
			VolumeM3:     o.Cargo.Volume,
			Fragile:      o.Cargo.Fragile,
			Refrigerated: o.Cargo.Refrigerated,
		},
	}
}

func toEndpointDTO(e domain.Endpoint) dto.EndpointDTO {
	out := dto.EndpointDTO{
		Lat:     e.Location.Lat,
		Lng:     e.Location.Lng,
		Address: e.Address,
		City:    e.City,
	}
	if e.Window != nil {
		if !e.Window.Start.IsZero() {
			start := e.Window.Start
			out.WindowStart = &start
		}
		if !e.Window.End.IsZero() {
			end := e.Window.End
			out.WindowEnd = &end
		}
	}
	return out
}

func fromOrderDTO(o dto.OrderDTO) (domain.Order, error) {
	id := strings.TrimSpace(o.OrderID)
	if id == "" {
		return domain.Order{}, fmt.Errorf("order_id is required")
	}

	pickup, err := fromEndpointDTO(o.Pickup)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s pickup: %w", id, err)
	}
	delivery, err := fromEndpointDTO(o.Delivery)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s delivery: %w", id, err)
	}

	priority := domain.OrderPriority(o.Priority)
	if priority == "" {
		priority = domain.OrderPriorityMedium
	}

	return domain.Order{
		OrderID:  id,
		Number:   strings.TrimSpace(o.Number),
		Pickup:   pickup,
		Delivery: delivery,
		Cargo: domain.Cargo{
			Weight:       o.Cargo.WeightKg,
			Volume:       o.Cargo.VolumeM3,
			Fragile:      o.Cargo.Fragile,
			Refrigerated: o.Cargo.Refrigerated,
		},
		Priority: priority,
	}, nil
}

func fromEndpointDTO(e dto.EndpointDTO) (domain.Endpoint, error) {
	out := domain.Endpoint{
		Location: domain.LatLng{Lat: e.Lat, Lng: e.Lng},
		Address:  strings.TrimSpace(e.Address),
		City:     strings.TrimSpace(e.City),
	}
	if e.WindowStart != nil || e.WindowEnd != nil {
		w := &domain.TimeWindow{}
		if e.WindowStart != nil {
			w.Start = *e.WindowStart
		}
		if e.WindowEnd != nil {
			w.End = *e.WindowEnd
		}
		if !w.Start.IsZero() && !w.End.IsZero() && w.End.Before(w.Start) {
			return domain.Endpoint{}, fmt.Errorf("window ends before it starts")
		}
		out.Window = w
	}
	return out, nil
}

// Ranges and counts are enforced by the request validator.
func toCoords(in []dto.CoordinateDTO) []domain.LatLng {
	out := make([]domain.LatLng, 0, len(in))
	for _, c := range in {
		out = append(out, domain.LatLng{Lat: c.Lat, Lng: c.Lng})
	}
	return out
}

func toPolyline(points []domain.LatLng) [][]float64 {
	out := make([][]float64, 0, len(points))
	for _, p := range points {
		out = append(out, p.CoordsToList())
	}
	return out
}

func toRouteResponse(r domain.Route) dto.RouteResponse {
	stops := make([]dto.StopResponse, 0, len(r.Stops))
	for _, s := range r.Stops {
		stops = append(stops, dto.StopResponse{
			Sequence:         s.Sequence,
			OrderID:          s.OrderID,
			OrderNumber:      s.OrderNumber,
			Kind:             string(s.Kind),
			Lat:              s.Location.Lat,
			Lng:              s.Location.Lng,
			Address:          s.Address,
			City:             s.City,
			EstimatedArrival: s.EstimatedArrival,
		})
	}

	alerts := make([]dto.AlertResponse, 0, len(r.Alerts))
	for _, a := range r.Alerts {
		alerts = append(alerts, dto.AlertResponse{
			AlertID:  a.AlertID,
			Severity: string(a.Severity),
			Code:     string(a.Code),
			Message:  a.Message,
			OrderID:  a.OrderID,
		})
	}

	return dto.RouteResponse{
		RouteID:    r.RouteID,
		Name:       r.Name,
		TruckID:    r.TruckID,
		PathSource: string(r.PathSource),
		Metrics: dto.MetricsResponse{
			TotalDistanceKm:      r.Metrics.TotalDistanceKm,
			EstimatedDurationMin: r.Metrics.EstimatedDurationMin,
			EstimatedCost:        r.Metrics.EstimatedCost,
			FuelCost:             r.Metrics.FuelCost,
			TollsCost:            r.Metrics.TollsCost,
			TotalWeightKg:        r.Metrics.TotalWeight,
			TotalVolumeM3:        r.Metrics.TotalVolume,
		},
		Stops:    stops,
		Polyline: toPolyline(r.Polyline),
		Alerts:   alerts,
	}
}

func toResolveResponse(res ports.RouteResult) dto.ResolveResponse {
	legs := make([]dto.LegResponse, 0, len(res.Legs))
	for _, l := range res.Legs {
		legs = append(legs, dto.LegResponse{DistanceKm: l.DistanceKm, DurationMin: l.DurationMin})
	}
	return dto.ResolveResponse{
		Source:      string(res.Source),
		DistanceKm:  res.DistanceKm,
		DurationMin: res.DurationMin,
		Polyline:    toPolyline(res.Polyline),
		Legs:        legs,
		Order:       res.Order,
	}
}
