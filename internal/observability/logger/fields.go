package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// Duration crea un campo para la duración del request.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// UserAgent crea un campo para el user agent del cliente.
func UserAgent(v string) zap.Field {
	return zap.String("user_agent", v)
}

// Bytes crea un campo para los bytes de respuesta.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// ClientIP crea un campo para la IP del cliente.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - NEGOCIO (sync de catálogo / staging)
// =================================================================================

// Operation crea un campo para la operación del gateway
// (replace_all, staging_insert, process_staging).
func Operation(v string) zap.Field {
	return zap.String("operation", v)
}

// SyncID crea un campo para el id de una corrida de sincronización.
func SyncID(v string) zap.Field {
	return zap.String("sync_id", v)
}

// Batch crea un campo para el número de batch (1-based).
func Batch(v int) zap.Field {
	return zap.Int("batch", v)
}

// Records crea un campo para una cantidad de registros.
func Records(v int) zap.Field {
	return zap.Int("records", v)
}

// Limit crea un campo para un límite de lectura.
func Limit(v int) zap.Field {
	return zap.Int("limit", v)
}

// Driver crea un campo para el driver del datastore.
func Driver(v string) zap.Field {
	return zap.String("driver", v)
}

// Table crea un campo para la tabla/colección destino.
func Table(v string) zap.Field {
	return zap.String("table", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación/función que loggea.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer crea un campo para la capa (controller, service, store).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// Count crea un campo para un conteo genérico.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}

// String crea un campo string genérico.
func String(key, v string) zap.Field {
	return zap.String(key, v)
}

// Int crea un campo int genérico.
func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

// Bool crea un campo bool genérico.
func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}

// Any crea un campo para un valor arbitrario.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
