// Package store provee el registry de drivers del datastore.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/dropDatabas3/modelgate/internal/store/core"
)

// Adapter representa un driver capaz de abrir un DataStore.
type Adapter interface {
	// Name retorna el nombre del driver (ej: "supabase", "postgres", "sqlite").
	Name() string

	// Connect establece conexión con el almacenamiento.
	Connect(ctx context.Context, cfg Config) (core.DataStore, error)
}

// ─── Registry Global ───

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// RegisterAdapter registra un adapter en el registry global.
// Llamar en init() de cada adapter.
func RegisterAdapter(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	name := a.Name()
	if _, exists := adapters[name]; exists {
		panic(fmt.Sprintf("store: adapter %q already registered", name))
	}
	adapters[name] = a
}

// GetAdapter obtiene un adapter por nombre.
func GetAdapter(name string) (Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[name]
	return a, ok
}

// ListAdapters retorna los nombres de todos los adapters registrados.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	return names
}
