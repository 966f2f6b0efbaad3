// Package health implementa liveness, readiness y debug de entorno.
package health

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/modelgate/internal/config"
	dto "github.com/dropDatabas3/modelgate/internal/http/dto/health"
	"github.com/dropDatabas3/modelgate/internal/observability/logger"
)

// ServiceName es el identificador público del gateway en /health.
const ServiceName = "ai-models-api-gateway"

// HealthService define las operaciones de salud del gateway.
type HealthService interface {
	// Health es el liveness: responde siempre, sin tocar dependencias.
	Health() dto.HealthResponse

	// DebugEnv reporta presencia de configuración, nunca valores.
	DebugEnv() dto.DebugEnvResponse

	// Ready verifica las dependencias reales (datastore, redis).
	Ready(ctx context.Context) dto.ReadyResponse
}

// Deps contiene las dependencias inyectables para el health service.
type Deps struct {
	Cfg        *config.Config
	StoreCheck func(ctx context.Context) error // ping del datastore
	RedisCheck func(ctx context.Context) error // nil si el limiter no usa redis
}

type healthService struct {
	deps  Deps
	group singleflight.Group
}

// NewHealthService crea un nuevo service de health check.
func NewHealthService(deps Deps) HealthService {
	return &healthService{deps: deps}
}

func (s *healthService) Health() dto.HealthResponse {
	return dto.HealthResponse{Status: "healthy", Service: ServiceName}
}

func (s *healthService) DebugEnv() dto.DebugEnvResponse {
	return dto.DebugEnvResponse{
		HasStoreURL:   s.deps.Cfg.HasStoreURL(),
		HasServiceKey: s.deps.Cfg.HasServiceKey(),
		HasAPISecret:  s.deps.Cfg.HasAPISecret(),
		Port:          s.deps.Cfg.Port(),
	}
}

// Ready colapsa sondas concurrentes en una sola pasada de checks.
// La pasada usa un timeout propio: el ctx del primer caller no debe
// poder cancelar la sonda que comparten los demás.
func (s *healthService) Ready(_ context.Context) dto.ReadyResponse {
	v, _, _ := s.group.Do("ready", func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.check(ctx), nil
	})
	return v.(dto.ReadyResponse)
}

const componentHealth = "health"

func (s *healthService) check(ctx context.Context) dto.ReadyResponse {
	log := logger.L().With(
		logger.Layer("service"),
		logger.Component(componentHealth),
		logger.Op("check"),
	)

	response := dto.ReadyResponse{
		Components: make(map[string]dto.ComponentStatus),
		Timestamp:  time.Now().UTC(),
	}

	// Service metadata
	if v := os.Getenv("SERVICE_VERSION"); v != "" {
		response.Version = v
	}
	if git := os.Getenv("SERVICE_COMMIT"); git != "" {
		response.Commit = git
	}

	hasErrors := false
	hasCriticalErrors := false

	// 1) Datastore (crítico)
	if s.deps.StoreCheck != nil {
		if err := s.deps.StoreCheck(ctx); err != nil {
			response.Components["datastore"] = dto.ComponentStatus{
				Status:  "error",
				Message: fmt.Sprintf("unavailable: %v", err),
			}
			hasCriticalErrors = true
			log.Error("datastore unavailable", logger.Err(err))
		} else {
			response.Components["datastore"] = dto.ComponentStatus{Status: "ok"}
		}
	} else {
		response.Components["datastore"] = dto.ComponentStatus{
			Status:  "error",
			Message: "store not initialized",
		}
		hasCriticalErrors = true
	}

	// 2) Redis (no crítico; solo cuando el rate limiter lo usa)
	if s.deps.RedisCheck != nil {
		if err := s.deps.RedisCheck(ctx); err != nil {
			response.Components["redis"] = dto.ComponentStatus{
				Status:  "error",
				Message: fmt.Sprintf("unavailable: %v", err),
			}
			hasErrors = true
			log.Warn("redis unavailable", logger.Err(err))
		} else {
			response.Components["redis"] = dto.ComponentStatus{Status: "ok"}
		}
	} else {
		response.Components["redis"] = dto.ComponentStatus{Status: "disabled"}
	}

	switch {
	case hasCriticalErrors:
		response.Status = "unavailable"
	case hasErrors:
		response.Status = "degraded"
	default:
		response.Status = "ready"
	}
	return response
}
