package core

// Record es un documento opaco del pipeline de descubrimiento de modelos.
// El gateway no valida su forma; eso es asunto del datastore.
type Record map[string]any

// Campos y estados conocidos de la tabla de staging.
const (
	FieldProcessingStatus = "processing_status"

	StatusPending   = "pending"
	StatusProcessed = "processed"
)

// Status devuelve el processing_status del record, o StatusPending si falta.
func (r Record) Status() string {
	if v, ok := r[FieldProcessingStatus].(string); ok && v != "" {
		return v
	}
	return StatusPending
}
