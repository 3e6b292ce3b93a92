package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/webwaka/pesaflow/internal/http/analytics"
	"github.com/webwaka/pesaflow/internal/http/callback"
	"github.com/webwaka/pesaflow/internal/http/discrepancy"
	"github.com/webwaka/pesaflow/internal/http/payment"
)

func New(
	paymentsV1 *payment.Handler,
	callbacksV1 *callback.Handler,
	analyticsV1 *analytics.Handler,
	discrepanciesV1 *discrepancy.Handler,
	allowedOrigins []string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			paymentsV1.Routes(r)
		})

		// Gateways send whatever content type they like; no filtering here.
		r.Route("/callbacks", callbacksV1.Routes)

		r.Route("/analytics", func(r chi.Router) {
			analyticsV1.Routes(r)
		})

		r.Route("/discrepancies", func(r chi.Router) {
			discrepanciesV1.Routes(r)
		})
	})

	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return router
}
