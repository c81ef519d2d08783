package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"route-planning-service/internal/domain"
	"route-planning-service/internal/platform/db"
	"strconv"
	"strings"
	"time"
)

// database/sql implementation of the OrderRepository port. Queries are
// written with "?" placeholders and rebound for Postgres.
type SQLOrderRepository struct {
	DB     *sql.DB
	Driver string
}

func NewSQLOrderRepository(conn *sql.DB, driver string) *SQLOrderRepository {
	return &SQLOrderRepository{DB: conn, Driver: driver}
}

const orderColumns = `
		order_id,
		order_number,
		priority,
		pickup_lat,
		pickup_lng,
		pickup_address,
		pickup_city,
		pickup_window_start,
		pickup_window_end,
		delivery_lat,
		delivery_lng,
		delivery_address,
		delivery_city,
		delivery_window_start,
		delivery_window_end,
		weight_kg,
		volume_m3,
		fragile,
		refrigerated`

// Return all orders stored in the database, ordered by id.
func (r *SQLOrderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	if r.DB == nil {
		return nil, errors.New("sql order repository: DB is nil")
	}

	query := `SELECT` + orderColumns + `
	FROM orders
	ORDER BY order_id;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orders: query orders table: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 64)
	for rows.Next() {
		var (
			o            domain.Order
			priority     string
			pStart, pEnd sql.NullString
			dStart, dEnd sql.NullString
		)
		err := rows.Scan(
			&o.OrderID, &o.Number, &priority,
			&o.Pickup.Location.Lat, &o.Pickup.Location.Lng, &o.Pickup.Address, &o.Pickup.City, &pStart, &pEnd,
			&o.Delivery.Location.Lat, &o.Delivery.Location.Lng, &o.Delivery.Address, &o.Delivery.City, &dStart, &dEnd,
			&o.Cargo.Weight, &o.Cargo.Volume, &o.Cargo.Fragile, &o.Cargo.Refrigerated,
		)
		if err != nil {
			return nil, fmt.Errorf("list orders: scan row: %w", err)
		}

		o.Priority = domain.OrderPriority(priority)
		if o.Pickup.Window, err = parseWindow(pStart.String, pEnd.String); err != nil {
			return nil, fmt.Errorf("list orders: order %s pickup: %w", o.OrderID, err)
		}
		if o.Delivery.Window, err = parseWindow(dStart.String, dEnd.String); err != nil {
			return nil, fmt.Errorf("list orders: order %s delivery: %w", o.OrderID, err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: row iteration: %w", err)
	}

	return orders, nil
}

// Insert or replace orders in a single transaction.
func (r *SQLOrderRepository) UpsertOrders(ctx context.Context, orders []domain.Order) error {
	if r.DB == nil {
		return errors.New("sql order repository: DB is nil")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert orders: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO orders (` + orderColumns + `
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (order_id) DO UPDATE SET
		order_number = excluded.order_number,
		priority = excluded.priority,
		pickup_lat = excluded.pickup_lat,
		pickup_lng = excluded.pickup_lng,
		pickup_address = excluded.pickup_address,
		pickup_city = excluded.pickup_city,
		pickup_window_start = excluded.pickup_window_start,
		pickup_window_end = excluded.pickup_window_end,
		delivery_lat = excluded.delivery_lat,
		delivery_lng = excluded.delivery_lng,
		delivery_address = excluded.delivery_address,
		delivery_city = excluded.delivery_city,
		delivery_window_start = excluded.delivery_window_start,
		delivery_window_end = excluded.delivery_window_end,
		weight_kg = excluded.weight_kg,
		volume_m3 = excluded.volume_m3,
		fragile = excluded.fragile,
		refrigerated = excluded.refrigerated;
	`
	stmt, err := tx.PrepareContext(ctx, r.rebind(query))
	if err != nil {
		return fmt.Errorf("upsert orders: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range orders {
		pStart, pEnd := windowColumns(o.Pickup.Window)
		dStart, dEnd := windowColumns(o.Delivery.Window)

		_, err := stmt.ExecContext(ctx,
			o.OrderID, o.Number, string(o.Priority),
			o.Pickup.Location.Lat, o.Pickup.Location.Lng, o.Pickup.Address, o.Pickup.City, pStart, pEnd,
			o.Delivery.Location.Lat, o.Delivery.Location.Lng, o.Delivery.Address, o.Delivery.City, dStart, dEnd,
			o.Cargo.Weight, o.Cargo.Volume, o.Cargo.Fragile, o.Cargo.Refrigerated,
		)
		if err != nil {
			return fmt.Errorf("upsert orders: insert order_id=%s: %w", o.OrderID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert orders: commit tx: %w", err)
	}

	return nil
}

// rebind rewrites "?" placeholders to "$1", "$2", ... for Postgres.
func (r *SQLOrderRepository) rebind(query string) string {
	if r.Driver != db.DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func windowColumns(w *domain.TimeWindow) (start, end sql.NullString) {
	if w == nil {
		return start, end
	}
	if !w.Start.IsZero() {
		start = sql.NullString{String: w.Start.Format(time.RFC3339), Valid: true}
	}
	if !w.End.IsZero() {
		end = sql.NullString{String: w.End.Format(time.RFC3339), Valid: true}
	}
	return start, end
}
