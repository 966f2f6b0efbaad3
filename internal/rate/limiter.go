// Package rate implementa limitación de requests por ventana fija.
// Dos backends: redis (compartido entre réplicas) y memory (proceso local).
package rate

import (
	"context"
	"time"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Noop permite todo. Se usa cuando el rate limiting está deshabilitado
// para no llenar el middleware de nil-checks.
type Noop struct{}

func (Noop) Allow(context.Context, string) (Result, error) {
	return Result{Allowed: true, Remaining: -1}, nil
}
