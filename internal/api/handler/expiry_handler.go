package handler

import (
	"net/http"

	"github.com/smarthousehold/inventory-service/internal/domain"
)

// ReportSource exposes the most recent expiry check result.
type ReportSource interface {
	LastReport() (*domain.RunReport, error)
}

type ExpiryHandler struct {
	src ReportSource
}

func NewExpiryHandler(src ReportSource) *ExpiryHandler {
	return &ExpiryHandler{src: src}
}

// LastRun handles GET /api/v1/expiry-check/last
//
// @Summary  Report of the most recent expiry check
// @Tags     system
// @Produce  json
// @Success  200  {object}  domain.RunReport
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/expiry-check/last [get]
func (h *ExpiryHandler) LastRun(w http.ResponseWriter, r *http.Request) {
	report, err := h.src.LastReport()
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
