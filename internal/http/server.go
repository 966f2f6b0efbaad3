package http

import (
	"net/http"
	"time"
)

// Start levanta el servidor HTTP con los timeouts estándar del gateway.
// WriteTimeout holgado: un replace de catálogo completo tarda varios
// round-trips contra el datastore.
func Start(addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
