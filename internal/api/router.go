package api

import (
	"net/http"
	"route-planning-service/internal/api/handlers"
	"route-planning-service/internal/platform/obs"
	"route-planning-service/internal/ports"
	"route-planning-service/internal/services"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies of the HTTP surface. Gatherer may be nil to disable /metrics.
type Deps struct {
	Orders     ports.OrderRepository
	Planner    *services.Planner
	Resolver   *services.RouteResolver
	Metrics    *obs.Metrics
	Gatherer   prometheus.Gatherer
	RefineWait time.Duration
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	orderHandler := &handlers.OrderHandler{Repo: d.Orders}
	planHandler := &handlers.PlanHandler{
		Repo:       d.Orders,
		Planner:    d.Planner,
		Resolver:   d.Resolver,
		Metrics:    d.Metrics,
		RefineWait: d.RefineWait,
	}
	routeHandler := &handlers.RouteHandler{Resolver: d.Resolver}

	r.Get("/health", handlers.Health)
	r.Get("/orders", orderHandler.List)
	r.Post("/plans", planHandler.Plan)
	r.Route("/routes", func(r chi.Router) {
		r.Post("/resolve", routeHandler.Resolve)
		r.Post("/matrix", routeHandler.Matrix)
	})
	r.Delete("/cache", routeHandler.ClearCache)

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
