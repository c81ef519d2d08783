package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"route-planning-service/internal/adapters/repositories"
	"route-planning-service/internal/config"
	"route-planning-service/internal/platform/db"
	"route-planning-service/internal/platform/obs"
)

// dbtool initializes the order store schema and loads seed orders, for
// either SQLite or Postgres.
func main() {
	config.LoadEnv()

	driver := flag.String("driver", config.Get("DB_DRIVER", db.DriverSQLite), "database/sql driver: sqlite or pgx")
	dsn := flag.String("dsn", config.Get("DATABASE_URL", "data/app.db"), "database connection string")
	seedPath := flag.String("seed", config.Get("SEED_PATH", "data/seeds/orders.json"), "seed JSON file, empty to skip")
	flag.Parse()

	slog.SetDefault(obs.NewLogger(obs.LoggerConfig{Level: config.Get("LOG_LEVEL", "info"), Service: "dbtool"}))

	conn, err := db.Open(*driver, *dsn)
	if err != nil {
		slog.Error("open database failed", "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := initAndSeed(context.Background(), conn, *driver, *seedPath); err != nil {
		slog.Error("dbtool failed", "err", err)
		conn.Close()
		os.Exit(1)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, driver, seedPath string) error {
	slog.Info("Initializing database schema...", "driver", driver)
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	slog.Info("Schema ready.")

	if seedPath == "" {
		return nil
	}

	slog.Info("Seeding database...", "path", seedPath)
	n, err := repositories.SeedFromJSON(ctx, repositories.NewSQLOrderRepository(conn, driver), seedPath)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	slog.Info("Seeding complete.", "orders", n)

	return nil
}
