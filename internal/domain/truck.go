package domain

import "fmt"

// Delivery truck aggregate holding the orders of one cluster.
// Capacity is advisory: Load never refuses an order, Overload reports the
// excess so the planner can raise an alert instead.
type Truck struct {
	TruckID  int
	Capacity VehicleCapacity
	Orders   []Order
}

func NewTruck(id int, capacity VehicleCapacity) *Truck {
	return &Truck{
		TruckID:  id,
		Capacity: capacity,
	}
}

// Load a single order onto the truck.
func (t *Truck) Load(order Order) {
	t.Orders = append(t.Orders, order)
}

// Load multiple orders onto the truck.
func (t *Truck) LoadMultiple(orders []Order) {
	for _, o := range orders {
		t.Load(o)
	}
}

func (t *Truck) TotalWeight() float64 {
	total := 0.0
	for _, o := range t.Orders {
		total += o.Cargo.Weight
	}
	return total
}

func (t *Truck) TotalVolume() float64 {
	total := 0.0
	for _, o := range t.Orders {
		total += o.Cargo.Volume
	}
	return total
}

// Overload describes every capacity dimension the loaded orders exceed.
// It returns an empty slice when the truck is within capacity.
func (t *Truck) Overload() []string {
	var out []string
	if t.Capacity.MaxWeight > 0 && t.TotalWeight() > t.Capacity.MaxWeight {
		out = append(out, fmt.Sprintf("weight %.1f exceeds capacity %.1f", t.TotalWeight(), t.Capacity.MaxWeight))
	}
	if t.Capacity.MaxVolume > 0 && t.TotalVolume() > t.Capacity.MaxVolume {
		out = append(out, fmt.Sprintf("volume %.2f exceeds capacity %.2f", t.TotalVolume(), t.Capacity.MaxVolume))
	}
	return out
}
