package dto

import "time"

type EndpointDTO struct {
	Lat         float64    `json:"lat" validate:"gte=-90,lte=90"`
	Lng         float64    `json:"lng" validate:"gte=-180,lte=180"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
}

type CargoDTO struct {
	WeightKg     float64 `json:"weight_kg" validate:"gte=0"`
	VolumeM3     float64 `json:"volume_m3" validate:"gte=0"`
	Fragile      bool    `json:"fragile"`
	Refrigerated bool    `json:"refrigerated"`
}

// Used both in plan requests and in order listings.
type OrderDTO struct {
	OrderID  string      `json:"order_id" validate:"required"`
	Number   string      `json:"number,omitempty"`
	Priority string      `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Pickup   EndpointDTO `json:"pickup"`
	Delivery EndpointDTO `json:"delivery"`
	Cargo    CargoDTO    `json:"cargo"`
}

type ListOrdersResponse struct {
	Orders []OrderDTO `json:"orders"`
}
