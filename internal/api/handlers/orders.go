package handlers

import (
	"log/slog"
	"net/http"
	"route-planning-service/internal/api/dto"
	"route-planning-service/internal/platform/obs"
	"route-planning-service/internal/ports"
)

// OrderHandler exposes read-only order retrieval endpoints.
type OrderHandler struct {
	Repo ports.OrderRepository
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Repo.ListOrders(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list orders failed", "req_id", obs.RequestID(r.Context()), "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListOrdersResponse{
		Orders: make([]dto.OrderDTO, 0, len(orders)),
	}
	for _, o := range orders {
		res.Orders = append(res.Orders, toOrderDTO(o))
	}

	writeJSON(w, r, http.StatusOK, res)
}
