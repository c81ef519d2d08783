package domain

import (
	"testing"
	"time"
)

func TestTruckOverload(t *testing.T) {
	// build test data
	truck := NewTruck(1, VehicleCapacity{MaxWeight: 100, MaxVolume: 2})
	truck.LoadMultiple([]Order{
		{OrderID: "o-1", Cargo: Cargo{Weight: 60, Volume: 0.5}},
		{OrderID: "o-2", Cargo: Cargo{Weight: 30, Volume: 0.5}},
	})

	if got := truck.Overload(); len(got) != 0 {
		t.Fatalf("expected no overload, got %v", got)
	}

	truck.Load(Order{OrderID: "o-3", Cargo: Cargo{Weight: 20, Volume: 1.5}})

	// call the method under test
	got := truck.Overload()

	// verify behavior
	if len(got) != 2 {
		t.Fatalf("expected weight and volume overload, got %v", got)
	}
	if truck.TotalWeight() != 110 {
		t.Errorf("total weight = %v, want 110", truck.TotalWeight())
	}
	if truck.TotalVolume() != 2.5 {
		t.Errorf("total volume = %v, want 2.5", truck.TotalVolume())
	}
}

func TestTruckUnlimitedCapacity(t *testing.T) {
	truck := NewTruck(2, VehicleCapacity{})
	truck.Load(Order{OrderID: "o-1", Cargo: Cargo{Weight: 1e6, Volume: 1e6}})

	if got := truck.Overload(); len(got) != 0 {
		t.Fatalf("zero capacity should mean unlimited, got %v", got)
	}
}

func TestConfigurationNormalized(t *testing.T) {
	tests := []struct {
		name       string
		in         Configuration
		wantBuffer int
		wantPrio   RoutePriority
	}{
		{"defaults", Configuration{}, 0, PriorityBalanced},
		{"negative buffer", Configuration{Priority: PrioritySpeed, TimeBufferMinutes: -5}, 0, PrioritySpeed},
		{"large buffer", Configuration{Priority: PriorityCost, TimeBufferMinutes: 90}, 60, PriorityCost},
		{"unknown priority", Configuration{Priority: "fastest", TimeBufferMinutes: 15}, 15, PriorityBalanced},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalized()
			if got.TimeBufferMinutes != tt.wantBuffer {
				t.Errorf("buffer = %d, want %d", got.TimeBufferMinutes, tt.wantBuffer)
			}
			if got.Priority != tt.wantPrio {
				t.Errorf("priority = %q, want %q", got.Priority, tt.wantPrio)
			}
		})
	}
}

func TestLocations(t *testing.T) {
	stops := []Stop{
		{Location: LatLng{Lat: 1, Lng: 2}, EstimatedArrival: time.Time{}},
		{Location: LatLng{Lat: 3, Lng: 4}},
	}

	got := Locations(stops)
	if len(got) != 2 || got[0] != (LatLng{Lat: 1, Lng: 2}) || got[1] != (LatLng{Lat: 3, Lng: 4}) {
		t.Fatalf("unexpected locations: %v", got)
	}

	if list := got[0].CoordsToList(); list[0] != 2 || list[1] != 1 {
		t.Fatalf("CoordsToList should return [lng, lat], got %v", list)
	}
}
