package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/smarthousehold/inventory-service/internal/api/handler"
	apimw "github.com/smarthousehold/inventory-service/internal/api/middleware"
	"github.com/smarthousehold/inventory-service/internal/service"
)

// Services bundles what the HTTP layer depends on.
type Services struct {
	Inventory *service.InventoryService
	Tokens    *service.TokenService
	Analytics *service.AnalyticsService
	Expiry    handler.ReportSource
}

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	svcs Services,
	checks map[string]handler.HealthCheck,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)            // recover panics, return 500
	r.Use(chimw.RealIP)               // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1 << 20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)        // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	ih := handler.NewItemHandler(svcs.Inventory, logger)
	th := handler.NewTokenHandler(svcs.Tokens, logger)
	ah := handler.NewAnalyticsHandler(svcs.Analytics)
	eh := handler.NewExpiryHandler(svcs.Expiry)
	hh := handler.NewHealthHandler(checks)

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/expiry-check/last", eh.LastRun)

		r.Group(func(r chi.Router) {
			r.Use(apimw.RequireUser)

			r.Post("/items", ih.Create)
			r.Get("/items", ih.List)
			r.Get("/items/{id}", ih.GetByID)
			r.Put("/items/{id}", ih.Update)
			r.Delete("/items/{id}", ih.Delete)
			r.Post("/items/{id}/quantity", ih.AdjustQuantity)

			r.Put("/push-tokens", th.Register)
			r.Delete("/push-tokens", th.Remove)

			r.Get("/analytics", ah.Get)
		})
	})

	return r
}
