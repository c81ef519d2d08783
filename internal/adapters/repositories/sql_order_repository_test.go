package repositories

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"route-planning-service/internal/domain"
	"route-planning-service/internal/platform/db"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, InitSchema(context.Background(), conn))
	return conn
}

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const seedBody = `[
  {
    "order_id": "B-2",
    "number": "PHX-2",
    "priority": "High",
    "pickup": {"lat": 33.45, "lng": -112.07, "address": "1 Dock", "city": "Phoenix"},
    "delivery": {
      "lat": 33.42, "lng": -111.94, "address": "9 Main", "city": "Tempe",
      "window_start": "2026-03-02T09:00:00Z", "window_end": "2026-03-02T12:00:00Z"
    },
    "weight_kg": 340, "volume_m3": 1.8, "fragile": true
  },
  {
    "order_id": "A-1",
    "pickup": {"lat": 33.49, "lng": -111.93},
    "delivery": {"lat": 33.54, "lng": -112.19},
    "refrigerated": true
  }
]`

func TestInitSchemaIsIdempotent(t *testing.T) {
	conn := openTestDB(t)
	assert.NoError(t, InitSchema(context.Background(), conn))
	assert.Error(t, InitSchema(context.Background(), nil))
}

func TestSeedAndListOrders(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLOrderRepository(openTestDB(t), db.DriverSQLite)

	n, err := SeedFromJSON(ctx, repo, writeSeed(t, seedBody))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	orders, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	a, b := orders[0], orders[1]
	assert.Equal(t, "A-1", a.OrderID)
	assert.Equal(t, domain.OrderPriorityMedium, a.Priority)
	assert.True(t, a.Cargo.Refrigerated)
	assert.Nil(t, a.Delivery.Window)

	assert.Equal(t, "B-2", b.OrderID)
	assert.Equal(t, "PHX-2", b.Number)
	assert.Equal(t, domain.OrderPriorityHigh, b.Priority)
	assert.Equal(t, domain.LatLng{Lat: 33.45, Lng: -112.07}, b.Pickup.Location)
	assert.Equal(t, "Tempe", b.Delivery.City)
	assert.Equal(t, 340.0, b.Cargo.Weight)
	assert.True(t, b.Cargo.Fragile)
	assert.False(t, b.Cargo.Refrigerated)
	require.NotNil(t, b.Delivery.Window)
	assert.True(t, b.Delivery.Window.End.Equal(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)))
	assert.Nil(t, b.Pickup.Window)
}

func TestUpsertReplacesExistingOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLOrderRepository(openTestDB(t), db.DriverSQLite)

	o := domain.Order{
		OrderID:  "X",
		Pickup:   domain.Endpoint{Location: domain.LatLng{Lat: 1, Lng: 2}},
		Delivery: domain.Endpoint{Location: domain.LatLng{Lat: 3, Lng: 4}},
		Cargo:    domain.Cargo{Weight: 10},
		Priority: domain.OrderPriorityLow,
	}
	require.NoError(t, repo.UpsertOrders(ctx, []domain.Order{o}))

	o.Cargo.Weight = 25
	require.NoError(t, repo.UpsertOrders(ctx, []domain.Order{o}))

	orders, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 25.0, orders[0].Cargo.Weight)
}

func TestSeedFromJSONRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLOrderRepository(openTestDB(t), db.DriverSQLite)

	tests := map[string]string{
		"not json":        `{`,
		"empty id":        `[{"order_id": " ", "pickup": {}, "delivery": {}}]`,
		"bad latitude":    `[{"order_id": "a", "pickup": {"lat": 91}, "delivery": {}}]`,
		"bad window":      `[{"order_id": "a", "pickup": {"window_end": "noon"}, "delivery": {}}]`,
		"inverted window": `[{"order_id": "a", "pickup": {}, "delivery": {"window_start": "2026-03-02T12:00:00Z", "window_end": "2026-03-02T09:00:00Z"}}]`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := SeedFromJSON(ctx, repo, writeSeed(t, body))
			assert.Error(t, err)
		})
	}

	_, err := SeedFromJSON(ctx, repo, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	orders, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestRebind(t *testing.T) {
	pg := NewSQLOrderRepository(nil, db.DriverPostgres)
	assert.Equal(t, "SELECT $1, $2", pg.rebind("SELECT ?, ?"))

	lite := NewSQLOrderRepository(nil, db.DriverSQLite)
	assert.Equal(t, "SELECT ?, ?", lite.rebind("SELECT ?, ?"))
}

func TestNilDB(t *testing.T) {
	repo := NewSQLOrderRepository(nil, db.DriverSQLite)

	_, err := repo.ListOrders(context.Background())
	assert.Error(t, err)
	assert.Error(t, repo.UpsertOrders(context.Background(), nil))
}
