package core

import "context"

// DataStore es la vista del gateway sobre el datastore remoto.
// Cada driver (supabase, postgres, sqlite) implementa esta interfaz.
//
// Los errores se devuelven envueltos; la capa HTTP decide el status code.
type DataStore interface {
	// Name retorna el driver activo.
	Name() string

	// DeleteAllModels borra todas las filas del catálogo de modelos.
	DeleteAllModels(ctx context.Context) error

	// InsertModels inserta un batch de records en el catálogo, en una sola
	// operación. El chunking en batches de 100 es responsabilidad del caller.
	InsertModels(ctx context.Context, records []Record) error

	// InsertStaging inserta records en la tabla de staging, tal cual llegan.
	InsertStaging(ctx context.Context, records []Record) error

	// PendingStaging lee hasta limit records con processing_status=pending.
	// Solo lectura: no cambia el estado de ningún record.
	PendingStaging(ctx context.Context, limit int) ([]Record, error)

	// Ping verifica conectividad con el datastore.
	Ping(ctx context.Context) error

	// Close libera la conexión.
	Close() error
}
