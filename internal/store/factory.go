package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/modelgate/internal/store/core"
)

// Config para abrir un datastore. Los campos relevantes dependen del driver.
type Config struct {
	Driver string

	// supabase (PostgREST)
	URL        string
	ServiceKey string

	// postgres
	DSN             string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration

	// sqlite
	Path string

	// Tablas destino (defaults del pipeline de descubrimiento)
	ModelsTable  string
	StagingTable string
}

func (c *Config) applyDefaults() {
	if c.ModelsTable == "" {
		c.ModelsTable = "ai_models_discovery"
	}
	if c.StagingTable == "" {
		c.StagingTable = "ai_models_staging"
	}
}

// normalizeDriver acepta los alias usuales por driver.
func normalizeDriver(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "", "supabase", "rest", "postgrest":
		return "supabase"
	case "postgres", "pg", "postgresql":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return strings.ToLower(strings.TrimSpace(d))
	}
}

// Open resuelve el driver configurado contra el registry y conecta.
func Open(ctx context.Context, cfg Config) (core.DataStore, error) {
	cfg.applyDefaults()
	name := normalizeDriver(cfg.Driver)

	a, ok := GetAdapter(name)
	if !ok {
		return nil, fmt.Errorf("store: driver %q not registered (have %v)", name, ListAdapters())
	}
	st, err := a.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: connect %s: %w", name, err)
	}
	return st, nil
}
