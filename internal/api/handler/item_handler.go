package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/smarthousehold/inventory-service/internal/api/middleware"
	"github.com/smarthousehold/inventory-service/internal/domain"
	"github.com/smarthousehold/inventory-service/internal/service"
)

// ItemHandler handles the caller's inventory endpoints.
type ItemHandler struct {
	svc    *service.InventoryService
	logger *zap.Logger
}

func NewItemHandler(svc *service.InventoryService, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/items
//
// @Summary     Add an inventory item
// @Tags        items
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header    string              true  "Caller id"
// @Param       body       body      domain.ItemRequest  true  "Item payload"
// @Success     201        {object}  domain.Item
// @Failure     422        {object}  map[string]string
// @Router      /api/v1/items [post]
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	it, err := h.svc.Create(r.Context(), apimw.GetUserID(r.Context()), req)
	if err != nil {
		h.logger.Warn("create item failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, it)
}

// List handles GET /api/v1/items
//
// @Summary  List unexpired items, most urgent first
// @Tags     items
// @Produce  json
// @Param    X-User-ID  header  string  true  "Caller id"
// @Success  200  {object}  map[string]any
// @Router   /api/v1/items [get]
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), apimw.GetUserID(r.Context()))
	if err != nil {
		mapError(w, err)
		return
	}

	expiringSoon := 0
	for _, it := range items {
		if it.DaysLeft <= domain.ExpiringSoonDays {
			expiringSoon++
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":          items,
		"total":         len(items),
		"expiring_soon": expiringSoon,
	})
}

// GetByID handles GET /api/v1/items/{id}
func (h *ItemHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	it, err := h.svc.Get(r.Context(), apimw.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, it)
}

// Update handles PUT /api/v1/items/{id}
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.ItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	it, err := h.svc.Update(r.Context(), apimw.GetUserID(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, it)
}

// AdjustQuantity handles POST /api/v1/items/{id}/quantity
//
// A result at or below zero deletes the item and returns 204.
func (h *ItemHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	var req domain.QuantityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	it, deleted, err := h.svc.AdjustQuantity(r.Context(), apimw.GetUserID(r.Context()), chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		mapError(w, err)
		return
	}
	if deleted {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, it)
}

// Delete handles DELETE /api/v1/items/{id}
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), apimw.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		mapError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
