// Package catalog contiene DTOs para el sync del catálogo de modelos.
package catalog

// ReplaceRequest es el catálogo completo que manda el script de sync.
// Cada modelo es un documento libre; el gateway no impone esquema.
type ReplaceRequest struct {
	Models []map[string]any `json:"models"`
}

// ReplaceResponse resume una corrida de replace-all.
type ReplaceResponse struct {
	Status           string `json:"status"`
	Operation        string `json:"operation"`
	ModelsInserted   int    `json:"models_inserted"`
	BatchesProcessed int    `json:"batches_processed"`
}
