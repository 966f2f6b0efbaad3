// Package router arma el árbol de rutas del gateway sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httpx "github.com/dropDatabas3/modelgate/internal/http"
	catalogctrl "github.com/dropDatabas3/modelgate/internal/http/controllers/catalog"
	healthctrl "github.com/dropDatabas3/modelgate/internal/http/controllers/health"
	stagingctrl "github.com/dropDatabas3/modelgate/internal/http/controllers/staging"
	httperrors "github.com/dropDatabas3/modelgate/internal/http/errors"
	mw "github.com/dropDatabas3/modelgate/internal/http/middlewares"
	"github.com/dropDatabas3/modelgate/internal/rate"
)

// Deps contiene todo lo que el router necesita ya construido.
type Deps struct {
	Catalog *catalogctrl.CatalogController
	Staging *stagingctrl.StagingController
	Health  *healthctrl.HealthController

	// APISecret protege todo /api/*.
	APISecret string

	// CORSAllowedOrigins vacío desactiva CORS.
	CORSAllowedOrigins []string

	// Limiter nil desactiva rate limiting.
	Limiter rate.Limiter

	// MetricsHandler opcional para GET /metrics.
	MetricsHandler http.Handler
}

// New construye el handler raíz con todas las rutas montadas.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Infra base para todo el árbol
	r.Use(mw.WithRecover())
	r.Use(mw.WithRequestID())
	r.Use(mw.WithSecurityHeaders())
	if len(deps.CORSAllowedOrigins) > 0 {
		r.Use(mw.WithCORS(deps.CORSAllowedOrigins))
	}
	r.Use(httpx.WithMetrics)

	// 404/405 con el mismo contrato JSON que el resto del gateway
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	// Rutas públicas. Sin logging: los monitores las golpean seguido.
	r.Get("/health", deps.Health.Health)
	r.Get("/debug/env", deps.Health.DebugEnv)
	r.Get("/readyz", deps.Health.Readyz)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// API protegida por el secreto estático
	r.Route("/api", func(api chi.Router) {
		api.Use(mw.WithLogging())
		if deps.Limiter != nil {
			api.Use(mw.WithRateLimit(mw.RateLimitConfig{Limiter: deps.Limiter}))
		}
		api.Use(mw.RequireAPISecret(deps.APISecret))

		api.Post("/models/replace", deps.Catalog.Replace)
		api.Post("/staging/insert", deps.Staging.Insert)
		api.Post("/staging/process", deps.Staging.Process)
	})

	return r
}
