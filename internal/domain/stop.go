package domain

import "time"

type StopKind string

const (
	StopPickup   StopKind = "pickup"
	StopDelivery StopKind = "delivery"
)

// Represents a single visit in a route.
// Stops are derived from an Order and only exist as part of a route: Sequence
// is the 1-based position inside that route and EstimatedArrival is stamped
// by the estimation model.
type Stop struct {
	OrderID          string
	OrderNumber      string
	Kind             StopKind
	Location         LatLng
	Address          string
	City             string
	Window           *TimeWindow
	ServiceMinutes   float64
	Sequence         int
	EstimatedArrival time.Time
}

// Locations returns the coordinates of stops in their current order.
func Locations(stops []Stop) []LatLng {
	out := make([]LatLng, 0, len(stops))
	for _, s := range stops {
		out = append(out, s.Location)
	}
	return out
}
