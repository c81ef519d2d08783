package domain

import "time"

type OrderPriority string

const (
	OrderPriorityLow    OrderPriority = "low"
	OrderPriorityMedium OrderPriority = "medium"
	OrderPriorityHigh   OrderPriority = "high"
)

// Optional service window at a pickup or delivery endpoint.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// One side of a transport order.
type Endpoint struct {
	Location LatLng
	Address  string
	City     string
	Window   *TimeWindow
}

type Cargo struct {
	Weight       float64
	Volume       float64
	Fragile      bool
	Refrigerated bool
}

// Represents a single transport order handed to the planner.
// An Order is immutable input: the pipeline reads it and derives exactly one
// pickup Stop and one delivery Stop from it.
type Order struct {
	OrderID  string
	Number   string
	Pickup   Endpoint
	Delivery Endpoint
	Cargo    Cargo
	Priority OrderPriority
}
