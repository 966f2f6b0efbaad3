package errors

import (
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores de la aplicación
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // No se serializa, usado para el header
	Err        error  `json:"-"` // Error original (causa), útil para logs, no se expone al cliente por defecto
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// Wrap crea un AppError envolviendo un error existente
func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Err:        err,
	}
}

// FromError intenta convertir un error genérico en un AppError.
// Si no es un AppError, lo trata como fallo del datastore upstream: el
// mensaje completo viaja al cliente para que el operador del sync vea
// exactamente qué rechazó la base.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Upstream(err)
}

// Upstream construye el 500 estándar del gateway: el texto del error
// (incluido el cuerpo que devolvió PostgREST/postgres) es el mensaje.
func Upstream(err error) *AppError {
	msg := "internal server error"
	if err != nil {
		msg = err.Error()
	}
	return &AppError{
		Code:       "UPSTREAM_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// WithDetail agrega detalles adicionales al error (útil para validaciones)
// Devuelve una COPIA del error para no mutar las variables globales base
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause agrega el error original (causa)
// Devuelve una COPIA del error
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// LISTA DE ERRORES PREDEFINIDOS
// =================================================================================

// Los mensajes van en inglés: son los cuerpos que consumen los scripts
// de sincronización y no se traducen.

var (
	// 400
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Bad request",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "Invalid JSON body",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrNoModels = &AppError{
		Code:       "NO_MODELS",
		Message:    "No models data provided",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrNoStaging = &AppError{
		Code:       "NO_STAGING",
		Message:    "No staging data provided",
		HTTPStatus: http.StatusBadRequest,
	}

	// 401
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Unauthorized",
		HTTPStatus: http.StatusUnauthorized,
	}

	// 404 / 405
	ErrRouteNotFound = &AppError{
		Code:       "ROUTE_NOT_FOUND",
		Message:    "Route not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Method not allowed",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	// 429
	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests",
		HTTPStatus: http.StatusTooManyRequests,
	}

	// 500
	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}
)
