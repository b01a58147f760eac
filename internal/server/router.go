package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"salary-predictor/internal/handlers"
	"salary-predictor/internal/observability"
	"salary-predictor/internal/salary"
)

// Deps are the collaborators the router wires into its routes.
type Deps struct {
	Prediction handlers.Pinger
	Salary     *salary.Handler
}

func NewRouter(deps Deps) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)
	r.Get("/ready", handlers.Ready(deps.Prediction))

	r.Handle("/metrics", observability.PrometheusHandler())

	salary.RegisterRoutes(r, deps.Salary)

	return r
}
