package handler

import (
	"net/http"
	"strconv"

	"github.com/smarthousehold/inventory-service/internal/analytics"
	apimw "github.com/smarthousehold/inventory-service/internal/api/middleware"
	"github.com/smarthousehold/inventory-service/internal/domain"
	"github.com/smarthousehold/inventory-service/internal/service"
)

type AnalyticsHandler struct {
	svc *service.AnalyticsService
}

func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// Get handles GET /api/v1/analytics?period=monthly|weekly&budget=N
//
// @Summary  Spending totals, category breakdown and trend
// @Tags     analytics
// @Produce  json
// @Param    period  query     string  false  "monthly (default) or weekly"
// @Param    budget  query     number  false  "Budget to compare the total against"
// @Success  200     {object}  analytics.Report
// @Failure  422     {object}  map[string]string
// @Router   /api/v1/analytics [get]
func (h *AnalyticsHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	period, err := analytics.ParsePeriod(q.Get("period"))
	if err != nil {
		mapError(w, err)
		return
	}

	var budget float64
	if v := q.Get("budget"); v != "" {
		budget, err = strconv.ParseFloat(v, 64)
		if err != nil {
			mapError(w, domain.ErrInvalidBudget)
			return
		}
	}

	report, err := h.svc.Report(r.Context(), apimw.GetUserID(r.Context()), period, budget)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
