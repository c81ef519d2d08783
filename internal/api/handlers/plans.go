package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"route-planning-service/internal/api/dto"
	"route-planning-service/internal/domain"
	"route-planning-service/internal/platform/obs"
	"route-planning-service/internal/ports"
	"route-planning-service/internal/services"
	"strings"
	"time"
)

type PlanHandler struct {
	Repo     ports.OrderRepository
	Planner  *services.Planner
	Resolver *services.RouteResolver
	Metrics  *obs.Metrics
	// Upper bound on how long a refine request waits for road geometry.
	RefineWait time.Duration
}

// Plan clusters, sequences and estimates orders into per-truck routes.
// With refine set, it also resolves road geometry for every route and
// returns whatever has been applied once resolution finishes or RefineWait
// expires; routes still pending stay provisional.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	svcReq, err := h.buildRequest(r.Context(), req)
	if err != nil {
		var bad *badRequestError
		if errors.As(err, &bad) {
			writeError(w, r, http.StatusBadRequest, bad.Error())
			return
		}
		slog.ErrorContext(r.Context(), "build plan request failed", "req_id", obs.RequestID(r.Context()), "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	var routes []domain.Route
	if req.Refine {
		routes, err = h.planAndRefine(r.Context(), svcReq)
	} else {
		routes, err = h.Planner.Plan(r.Context(), svcReq)
	}
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res := dto.PlanResponse{Routes: make([]dto.RouteResponse, 0, len(routes))}
	for _, route := range routes {
		res.Routes = append(res.Routes, toRouteResponse(route))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *PlanHandler) planAndRefine(ctx context.Context, req services.PlanRequest) ([]domain.Route, error) {
	session := services.NewPlanSession(h.Planner, h.Resolver, services.SessionOptions{Metrics: h.Metrics})
	if _, err := session.Start(ctx, req); err != nil {
		return nil, err
	}

	wait := h.RefineWait
	if wait <= 0 {
		wait = 5 * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	if err := session.Wait(waitCtx); err != nil {
		slog.InfoContext(ctx, "returning partially refined plan",
			"req_id", obs.RequestID(ctx), "wait", wait, "err", err)
	}
	return session.Routes(), nil
}

type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

func (h *PlanHandler) buildRequest(ctx context.Context, req dto.PlanRequest) (services.PlanRequest, error) {
	var orders []domain.Order
	if len(req.Orders) == 0 {
		stored, err := h.Repo.ListOrders(ctx)
		if err != nil {
			return services.PlanRequest{}, fmt.Errorf("load stored orders: %w", err)
		}
		orders = stored
	} else {
		orders = make([]domain.Order, 0, len(req.Orders))
		for _, o := range req.Orders {
			order, err := fromOrderDTO(o)
			if err != nil {
				return services.PlanRequest{}, badRequest("%v", err)
			}
			orders = append(orders, order)
		}
	}

	p := req.Params
	now := time.Now()
	params := domain.OptimizationParams{
		TruckCount:     p.TruckCount,
		ServiceMinutes: p.ServiceMinutes,
		FuelKmPerLitre: p.FuelKmPerLitre,
		Capacity: domain.VehicleCapacity{
			MaxWeight: p.Capacity.MaxWeightKg,
			MaxVolume: p.Capacity.MaxVolumeM3,
		},
	}
	if strings.TrimSpace(p.WindowStart) != "" {
		t, err := services.ParseStartTime(p.WindowStart, now)
		if err != nil {
			return services.PlanRequest{}, badRequest("window_start: %v", err)
		}
		params.WindowStart = t
	}
	if strings.TrimSpace(p.WindowEnd) != "" {
		day := now
		if !params.WindowStart.IsZero() {
			day = params.WindowStart
		}
		t, err := services.ParseStartTime(p.WindowEnd, day)
		if err != nil {
			return services.PlanRequest{}, badRequest("window_end: %v", err)
		}
		params.WindowEnd = t
	}
	if !params.WindowStart.IsZero() && !params.WindowEnd.IsZero() && params.WindowEnd.Before(params.WindowStart) {
		return services.PlanRequest{}, badRequest("window_end must not be before window_start")
	}

	c := req.Configuration
	return services.PlanRequest{
		Orders: orders,
		Params: params,
		Config: domain.Configuration{
			AvoidTolls:        c.AvoidTolls,
			Priority:          domain.RoutePriority(c.Priority),
			ConsiderTraffic:   c.ConsiderTraffic,
			TimeBufferMinutes: c.TimeBufferMinutes,
		},
	}, nil
}
