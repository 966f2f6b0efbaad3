// Package health contiene DTOs para endpoints de health check.
package health

import "time"

// HealthResponse es el liveness básico que consume Render/UptimeRobot.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// ComponentStatus representa el estado de un componente específico.
type ComponentStatus struct {
	Status  string `json:"status"`            // "ok" | "error" | "disabled"
	Message string `json:"message,omitempty"` // Detalle opcional
}

// ReadyResponse representa la respuesta de readiness completa.
type ReadyResponse struct {
	Status     string                     `json:"status"` // "ready" | "degraded" | "unavailable"
	Components map[string]ComponentStatus `json:"components"`
	Version    string                     `json:"version,omitempty"`
	Commit     string                     `json:"commit,omitempty"`
	Timestamp  time.Time                  `json:"timestamp"`
}

// DebugEnvResponse reporta PRESENCIA de configuración, nunca valores.
type DebugEnvResponse struct {
	HasStoreURL   bool   `json:"has_store_url"`
	HasServiceKey bool   `json:"has_service_key"`
	HasAPISecret  bool   `json:"has_api_secret"`
	Port          string `json:"port"`
}
