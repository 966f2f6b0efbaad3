package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dropDatabas3/modelgate/internal/http/errors"
	"github.com/dropDatabas3/modelgate/internal/observability/logger"
	"github.com/dropDatabas3/modelgate/internal/rate"
)

// =================================================================================
// RATE LIMIT MIDDLEWARE
// =================================================================================

// clientIP extrae la IP del cliente, considerando proxies.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateKeyFunc define cómo generar la clave de rate limiting.
type RateKeyFunc func(r *http.Request) string

// IPOnlyRateKey genera una clave basada solo en IP.
func IPOnlyRateKey(r *http.Request) string {
	return clientIP(r)
}

// IPAndPathRateKey genera una clave por IP y path, para que un sync masivo
// a /api/models/replace no consuma la cuota de /api/staging/process.
func IPAndPathRateKey(r *http.Request) string {
	return clientIP(r) + "|" + r.URL.Path
}

// RateLimitConfig configura el comportamiento del middleware de rate limiting.
type RateLimitConfig struct {
	Limiter   rate.Limiter
	KeyFunc   RateKeyFunc
	Whitelist []string // Paths que se excluyen del rate limiting (ej: /health)
}

// WithRateLimit crea un middleware de rate limiting.
func WithRateLimit(cfg RateLimitConfig) Middleware {
	if cfg.Limiter == nil {
		// Si no hay limiter, no hacemos nada
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPAndPathRateKey
	}

	whitelistSet := make(map[string]struct{})
	for _, p := range cfg.Whitelist {
		whitelistSet[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Whitelist check
			if _, ok := whitelistSet[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			key := cfg.KeyFunc(r)
			res, err := cfg.Limiter.Allow(r.Context(), key)
			if err != nil {
				// En caso de error del limiter, permitimos el request
				logger.From(r.Context()).Warn("rate limiter error", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
					resetAt := time.Now().Add(res.RetryAfter).Unix()
					w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
				}
				errors.WriteError(w, errors.ErrRateLimitExceeded)
				return
			}

			// Headers informativos
			if res.Remaining >= 0 {
				w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			}

			next.ServeHTTP(w, r)
		})
	}
}
