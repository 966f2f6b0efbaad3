// Package staging contiene DTOs para la tabla de staging de URLs.
package staging

// InsertRequest trae los registros de URLs a encolar tal cual van a la tabla.
type InsertRequest struct {
	URLs []map[string]any `json:"urls"`
}

type InsertResponse struct {
	Status          string `json:"status"`
	Operation       string `json:"operation"`
	RecordsInserted int    `json:"records_inserted"`
}

// ProcessRequest pide revisar hasta Limit registros pendientes.
// Limit ausente o no positivo usa el default del servicio.
type ProcessRequest struct {
	Limit int `json:"limit"`
}

type ProcessResponse struct {
	Status           string `json:"status"`
	Operation        string `json:"operation"`
	RecordsProcessed int    `json:"records_processed"`
}
