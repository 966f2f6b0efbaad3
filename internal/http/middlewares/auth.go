package middlewares

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/modelgate/internal/http/errors"
	"github.com/dropDatabas3/modelgate/internal/observability/logger"
)

// =================================================================================
// AUTHENTICATION MIDDLEWARES
// =================================================================================

// RequireAPISecret valida Authorization: Bearer <secret> contra el secreto
// estático compartido con los scripts de sincronización.
//
// El prefijo "Bearer " es case-sensitive y el token se compara exacto,
// sin recortar espacios. Cualquier diferencia responde 401.
func RequireAPISecret(secret string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := r.Header.Get("Authorization")
			if !strings.HasPrefix(ah, "Bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				logger.From(r.Context()).Warn("missing bearer credentials",
					logger.Op("RequireAPISecret"),
					logger.Path(r.URL.Path),
				)
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}

			token := ah[len("Bearer "):]
			if secret == "" || token != secret {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				logger.From(r.Context()).Warn("invalid api secret",
					logger.Op("RequireAPISecret"),
					logger.Path(r.URL.Path),
				)
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
