package errors

import (
	"encoding/json"
	"net/http"
)

// errorResponse es el contrato de error del gateway: un solo campo
// "error" con el mensaje, igual que lo esperan los scripts de sync.
type errorResponse struct {
	Error string `json:"error"`
}

// WriteError escribe una respuesta HTTP basada en el error proporcionado.
// Maneja automáticamente errores de tipo *AppError y errores genéricos.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	msg := appErr.Message
	if appErr.Detail != "" {
		msg = msg + ": " + appErr.Detail
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
