// Package health contiene el controller para health checks.
package health

import (
	"net/http"

	"github.com/dropDatabas3/modelgate/internal/http/helpers"
	svc "github.com/dropDatabas3/modelgate/internal/http/services/health"
	"github.com/dropDatabas3/modelgate/internal/observability/logger"
)

// HealthController maneja las rutas de health check.
type HealthController struct {
	service svc.HealthService
}

// NewHealthController crea un nuevo controller de health check.
func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Health maneja GET /health. Responde siempre 200, sin tocar dependencias:
// es lo que sondea el monitor de uptime.
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, c.service.Health())
}

// DebugEnv maneja GET /debug/env. Solo presencia de configuración,
// nunca valores.
func (c *HealthController) DebugEnv(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, c.service.DebugEnv())
}

// Readyz maneja GET /readyz
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(
		logger.Layer("controller"),
		logger.Op("HealthController.Readyz"),
	)

	response := c.service.Ready(ctx)

	// Status code según estado
	var statusCode int
	switch response.Status {
	case "unavailable":
		statusCode = http.StatusServiceUnavailable
	default: // "ready" o "degraded"
		statusCode = http.StatusOK
	}

	log.Debug("readiness check completed",
		logger.String("status", response.Status),
		logger.Int("components_count", len(response.Components)),
	)

	helpers.WriteJSON(w, statusCode, response)
}
