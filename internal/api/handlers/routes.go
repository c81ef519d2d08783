package handlers

import (
	"log/slog"
	"net/http"
	"route-planning-service/internal/api/dto"
	"route-planning-service/internal/platform/obs"
	"route-planning-service/internal/services"
)

// RouteHandler exposes route resolution directly, for callers that sequence
// stops themselves.
type RouteHandler struct {
	Resolver *services.RouteResolver
}

// Resolve never fails on engine trouble; the response source tells engine
// geometry apart from a fallback.
func (h *RouteHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req dto.ResolveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	coords := toCoords(req.Coordinates)

	if req.Optimize {
		writeJSON(w, r, http.StatusOK, toResolveResponse(h.Resolver.ResolveTrip(r.Context(), coords)))
		return
	}
	writeJSON(w, r, http.StatusOK, toResolveResponse(h.Resolver.Resolve(r.Context(), coords)))
}

func (h *RouteHandler) Matrix(w http.ResponseWriter, r *http.Request) {
	var req dto.MatrixRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	coords := toCoords(req.Coordinates)

	m := h.Resolver.Matrix(r.Context(), coords)
	writeJSON(w, r, http.StatusOK, dto.MatrixResponse{
		Source:       string(m.Source),
		DistancesKm:  m.DistancesKm,
		DurationsMin: m.DurationsMin,
	})
}

// ClearCache drops every cached resolution.
func (h *RouteHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.Resolver.ClearCache(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "clear cache failed", "req_id", obs.RequestID(r.Context()), "err", err)
		writeError(w, r, http.StatusInternalServerError, "clear cache failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
