package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"route-planning-service/internal/adapters/cache"
	"route-planning-service/internal/adapters/repositories"
	"route-planning-service/internal/adapters/routing"
	"route-planning-service/internal/api"
	"route-planning-service/internal/config"
	"route-planning-service/internal/platform/db"
	"route-planning-service/internal/platform/obs"
	"route-planning-service/internal/ports"
	"route-planning-service/internal/services"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// main is the application composition root.
// It wires concrete adapters (SQL store, OSRM, caches) behind ports and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := obs.NewLogger(obs.LoggerConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "route-planning-service",
	})
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.DBDriver, cfg.DBURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	repo := repositories.NewSQLOrderRepository(conn, cfg.DBDriver)

	// Initialize schema and optionally seed demo data on startup for local runs.
	if err := initAndSeed(ctx, conn, repo, cfg.SeedPath); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.NewMetrics(reg)

	engine, err := routing.NewOSRMEngine(routing.OSRMConfig{
		BaseURL: cfg.RoutingBaseURL,
		Profile: cfg.RoutingProfile,
		Metrics: metrics,
	})
	if err != nil {
		return err
	}

	routeCache, closeCache := buildRouteCache(ctx, cfg)
	defer closeCache()

	resolver := services.NewRouteResolver(engine, routeCache, services.ResolverOptions{
		Timeout: cfg.RoutingTimeout,
		Metrics: metrics,
	})
	planner := services.NewPlanner(services.NewEstimator(estimationPolicy(cfg.Estimation)))

	var gatherer prometheus.Gatherer
	if cfg.MetricsEnabled {
		gatherer = reg
	}

	router := api.NewRouter(api.Deps{
		Orders:     repo,
		Planner:    planner,
		Resolver:   resolver,
		Metrics:    metrics,
		Gatherer:   gatherer,
		RefineWait: cfg.PlanRefineWait,
	})

	// Write timeout leaves room for a refine request waiting on the engine.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.PlanRefineWait + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "routing", cfg.RoutingBaseURL, "db", cfg.DBDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func initAndSeed(ctx context.Context, conn *sql.DB, repo *repositories.SQLOrderRepository, seedPath string) error {
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if seedPath == "" {
		return nil
	}

	n, err := repositories.SeedFromJSON(ctx, repo, seedPath)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	slog.Info("seeded orders", "count", n, "path", seedPath)

	return nil
}

// buildRouteCache returns the in-process cache, fronting Redis when
// REDIS_ADDR is set and reachable.
func buildRouteCache(ctx context.Context, cfg *config.Config) (ports.RouteCache, func()) {
	local := cache.NewMemoryRouteCache(cfg.RouteCacheSize)
	if cfg.RedisAddr == "" {
		return local, func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("redis unavailable, using in-process route cache only", "addr", cfg.RedisAddr, "err", err)
		_ = client.Close()
		return local, func() {}
	}

	shared := cache.NewRedisRouteCache(client, "", cfg.RedisTTL)
	return cache.NewTieredRouteCache(local, shared), func() { _ = client.Close() }
}

func estimationPolicy(c config.EstimationConfig) services.EstimationPolicy {
	p := services.DefaultEstimationPolicy()
	if c.AverageSpeedKmh > 0 {
		p.AverageSpeedKmh = c.AverageSpeedKmh
	}
	if c.FuelPricePerLitre > 0 {
		p.FuelPricePerLitre = c.FuelPricePerLitre
	}
	if c.TollRatePerKm > 0 {
		p.TollRatePerKm = c.TollRatePerKm
	}
	if c.DefaultKmPerLitre > 0 {
		p.DefaultKmPerLitre = c.DefaultKmPerLitre
	}
	if c.DefaultServiceMin > 0 {
		p.DefaultServiceMin = c.DefaultServiceMin
	}
	return p
}
