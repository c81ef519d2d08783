package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"route-planning-service/internal/domain"
	"strings"
	"time"
)

// Initialize the order store schema. Column types are chosen so the same DDL
// runs on SQLite and Postgres.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		order_id TEXT PRIMARY KEY,
		order_number TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT 'medium',
		pickup_lat DOUBLE PRECISION NOT NULL,
		pickup_lng DOUBLE PRECISION NOT NULL,
		pickup_address TEXT NOT NULL DEFAULT '',
		pickup_city TEXT NOT NULL DEFAULT '',
		pickup_window_start TEXT,
		pickup_window_end TEXT,
		delivery_lat DOUBLE PRECISION NOT NULL,
		delivery_lng DOUBLE PRECISION NOT NULL,
		delivery_address TEXT NOT NULL DEFAULT '',
		delivery_city TEXT NOT NULL DEFAULT '',
		delivery_window_start TEXT,
		delivery_window_end TEXT,
		weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
		volume_m3 DOUBLE PRECISION NOT NULL DEFAULT 0,
		fragile BOOLEAN NOT NULL DEFAULT FALSE,
		refrigerated BOOLEAN NOT NULL DEFAULT FALSE
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_orders_delivery_city
	ON orders(delivery_city);
	`

	statements := []string{
		createOrdersQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type EndpointSeed struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	WindowStart string  `json:"window_start,omitempty"`
	WindowEnd   string  `json:"window_end,omitempty"`
}

type OrderSeed struct {
	OrderID      string       `json:"order_id"`
	Number       string       `json:"number"`
	Priority     string       `json:"priority"`
	Pickup       EndpointSeed `json:"pickup"`
	Delivery     EndpointSeed `json:"delivery"`
	WeightKg     float64      `json:"weight_kg"`
	VolumeM3     float64      `json:"volume_m3"`
	Fragile      bool         `json:"fragile"`
	Refrigerated bool         `json:"refrigerated"`
}

// Populate the order store from a JSON file holding an array of orders.
func SeedFromJSON(ctx context.Context, repo *SQLOrderRepository, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed orders: read %q: %w", jsonPath, err)
	}

	var data []OrderSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed orders: parse json: %w", err)
	}

	orders := make([]domain.Order, 0, len(data))
	for i, item := range data {
		o, err := item.toDomain()
		if err != nil {
			return 0, fmt.Errorf("seed orders: item at index %d: %w", i+1, err)
		}
		orders = append(orders, o)
	}

	if err := repo.UpsertOrders(ctx, orders); err != nil {
		return 0, fmt.Errorf("seed orders: %w", err)
	}

	return len(orders), nil
}

func (s OrderSeed) toDomain() (domain.Order, error) {
	id := strings.TrimSpace(s.OrderID)
	if id == "" {
		return domain.Order{}, errors.New("order_id cannot be empty")
	}

	pickup, err := s.Pickup.toDomain()
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s pickup: %w", id, err)
	}
	delivery, err := s.Delivery.toDomain()
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s delivery: %w", id, err)
	}

	priority := domain.OrderPriority(strings.ToLower(strings.TrimSpace(s.Priority)))
	if priority == "" {
		priority = domain.OrderPriorityMedium
	}

	return domain.Order{
		OrderID:  id,
		Number:   strings.TrimSpace(s.Number),
		Pickup:   pickup,
		Delivery: delivery,
		Cargo: domain.Cargo{
			Weight:       s.WeightKg,
			Volume:       s.VolumeM3,
			Fragile:      s.Fragile,
			Refrigerated: s.Refrigerated,
		},
		Priority: priority,
	}, nil
}

func (e EndpointSeed) toDomain() (domain.Endpoint, error) {
	if e.Lat < -90 || e.Lat > 90 || e.Lng < -180 || e.Lng > 180 {
		return domain.Endpoint{}, fmt.Errorf("coordinates out of range: %v,%v", e.Lat, e.Lng)
	}

	window, err := parseWindow(e.WindowStart, e.WindowEnd)
	if err != nil {
		return domain.Endpoint{}, err
	}

	return domain.Endpoint{
		Location: domain.LatLng{Lat: e.Lat, Lng: e.Lng},
		Address:  strings.TrimSpace(e.Address),
		City:     strings.TrimSpace(e.City),
		Window:   window,
	}, nil
}

// parseWindow returns nil when both bounds are blank.
func parseWindow(start, end string) (*domain.TimeWindow, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil, nil
	}

	var w domain.TimeWindow
	if start != "" {
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return nil, fmt.Errorf("window start: %w", err)
		}
		w.Start = t
	}
	if end != "" {
		t, err := time.Parse(time.RFC3339, end)
		if err != nil {
			return nil, fmt.Errorf("window end: %w", err)
		}
		w.End = t
	}
	if !w.Start.IsZero() && !w.End.IsZero() && w.End.Before(w.Start) {
		return nil, fmt.Errorf("window ends before it starts")
	}
	return &w, nil
}
