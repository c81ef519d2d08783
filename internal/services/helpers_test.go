package services

import (
	"fmt"
	"route-planning-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var planDay = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func order(id string, pickup, delivery domain.LatLng) domain.Order {
	return domain.Order{
		OrderID:  id,
		Number:   "N-" + id,
		Pickup:   domain.Endpoint{Location: pickup, Address: id + " pickup", City: "Phoenix"},
		Delivery: domain.Endpoint{Location: delivery, Address: id + " delivery", City: "Phoenix"},
		Cargo:    domain.Cargo{Weight: 100, Volume: 0.5},
		Priority: domain.OrderPriorityMedium,
	}
}

// eightOrders spreads orders over three areas around Phoenix (west, east and
// north) with short hops inside each area. The input order puts one order of
// each area at the evenly spaced seed positions 0, 2 and 5.
func eightOrders() []domain.Order {
	return []domain.Order{
		order("o1", domain.LatLng{Lat: 33.45, Lng: -112.30}, domain.LatLng{Lat: 33.47, Lng: -112.28}),
		order("o4", domain.LatLng{Lat: 33.46, Lng: -112.31}, domain.LatLng{Lat: 33.44, Lng: -112.27}),
		order("o2", domain.LatLng{Lat: 33.42, Lng: -111.80}, domain.LatLng{Lat: 33.40, Lng: -111.78}),
		order("o5", domain.LatLng{Lat: 33.41, Lng: -111.82}, domain.LatLng{Lat: 33.43, Lng: -111.79}),
		order("o7", domain.LatLng{Lat: 33.48, Lng: -112.29}, domain.LatLng{Lat: 33.45, Lng: -112.26}),
		order("o3", domain.LatLng{Lat: 33.80, Lng: -112.05}, domain.LatLng{Lat: 33.82, Lng: -112.03}),
		order("o6", domain.LatLng{Lat: 33.81, Lng: -112.06}, domain.LatLng{Lat: 33.79, Lng: -112.04}),
		order("o8", domain.LatLng{Lat: 33.39, Lng: -111.81}, domain.LatLng{Lat: 33.42, Lng: -111.77}),
	}
}

// gridOrders builds n orders with pickups and deliveries on a deterministic
// pseudo-scattered grid.
func gridOrders(n int) []domain.Order {
	out := make([]domain.Order, 0, n)
	for i := 0; i < n; i++ {
		p := domain.LatLng{Lat: 33.3 + float64((i*7)%11)*0.03, Lng: -112.2 + float64((i*5)%13)*0.03}
		d := domain.LatLng{Lat: 33.3 + float64((i*3)%17)*0.02, Lng: -112.2 + float64((i*11)%7)*0.05}
		out = append(out, order(fmt.Sprintf("g%02d", i), p, d))
	}
	return out
}

func stopsFor(orders []domain.Order) []domain.Stop {
	var stops []domain.Stop
	for _, o := range orders {
		stops = append(stops, BuildStops(o, 10)...)
	}
	return stops
}

// requireValidSequence checks contiguous numbering and pickup-before-delivery.
func requireValidSequence(t *testing.T, stops []domain.Stop) {
	t.Helper()

	pickupAt := make(map[string]int)
	deliveryAt := make(map[string]int)
	for i, s := range stops {
		require.Equal(t, i+1, s.Sequence, "sequence must be contiguous from 1")
		switch s.Kind {
		case domain.StopPickup:
			pickupAt[s.OrderID] = s.Sequence
		case domain.StopDelivery:
			deliveryAt[s.OrderID] = s.Sequence
		}
	}

	for id, d := range deliveryAt {
		if p, ok := pickupAt[id]; ok {
			require.Less(t, p, d, "pickup of %s must precede its delivery", id)
		}
	}
}
