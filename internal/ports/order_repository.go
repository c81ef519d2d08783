package ports

import (
	"context"
	"route-planning-service/internal/domain"
)

// Port: a boundary for retrieving Order entities from a data source.
type OrderRepository interface {
	// Retrieve all orders available for planning.
	ListOrders(ctx context.Context) ([]domain.Order, error)
}
