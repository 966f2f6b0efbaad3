package middlewares

import (
	"net/http"

	"github.com/dropDatabas3/modelgate/internal/http/errors"
	"github.com/dropDatabas3/modelgate/internal/observability/logger"
)

// WithRecover captura panics y devuelve un error 500 en lugar de crashear.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log := logger.From(r.Context())
					log.Error("panic recovered",
						logger.Op("recover"),
						logger.Any("panic", rec),
					)
					errors.WriteError(w, errors.ErrInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
