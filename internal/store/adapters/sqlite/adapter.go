// Package sqlite implementa el DataStore sobre un fichero local.
// Pensado para desarrollo y tests; en producción se usa supabase o postgres.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dropDatabas3/modelgate/internal/observability/logger"
	"github.com/dropDatabas3/modelgate/internal/store"
	"github.com/dropDatabas3/modelgate/internal/store/core"

	_ "modernc.org/sqlite"
)

func init() {
	store.RegisterAdapter(&adapter{})
}

type adapter struct{}

func (a *adapter) Name() string { return "sqlite" }

func (a *adapter) Connect(ctx context.Context, cfg store.Config) (core.DataStore, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout=5000;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: busy_timeout: %w", err)
	}

	s := &Store{
		db:      db,
		models:  cfg.ModelsTable,
		staging: cfg.StagingTable,
		log:     logger.Named("store.sqlite"),
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.log.Info("sqlite store ready", logger.String("path", path))
	return s, nil
}

// Store guarda cada modelo como documento JSON en una columna TEXT,
// misma forma que el driver de postgres.
type Store struct {
	db      *sql.DB
	models  string
	staging string
	log     *zap.Logger
}

func (s *Store) Name() string { return "sqlite" }

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			data TEXT NOT NULL,
			created_at INTEGER NOT NULL DEFAULT (strftime('%%s','now'))
		);`, quoteIdent(s.models)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			data TEXT NOT NULL,
			processing_status TEXT NOT NULL DEFAULT 'pending',
			created_at INTEGER NOT NULL DEFAULT (strftime('%%s','now'))
		);`, quoteIdent(s.staging)),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_status ON %s(processing_status, id);`,
			strings.ReplaceAll(s.staging, `"`, ""), quoteIdent(s.staging)),
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("sqlite: migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) DeleteAllModels(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM "+quoteIdent(s.models))
	if err != nil {
		return fmt.Errorf("sqlite: delete all %s: %w", s.models, err)
	}
	return nil
}

func (s *Store) InsertModels(ctx context.Context, records []core.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := "INSERT INTO " + quoteIdent(s.models) + " (data) VALUES (?)"
	for i, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("sqlite: encode record %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx, q, string(b)); err != nil {
			return fmt.Errorf("sqlite: insert into %s: %w", s.models, err)
		}
	}
	return tx.Commit()
}

func (s *Store) InsertStaging(ctx context.Context, records []core.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := "INSERT INTO " + quoteIdent(s.staging) + " (data, processing_status) VALUES (?, ?)"
	for i, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("sqlite: encode record %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx, q, string(b), r.Status()); err != nil {
			return fmt.Errorf("sqlite: insert into %s: %w", s.staging, err)
		}
	}
	return tx.Commit()
}

func (s *Store) PendingStaging(ctx context.Context, limit int) ([]core.Record, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", core.ErrInvalid)
	}
	q := fmt.Sprintf(`SELECT id, processing_status, data FROM %s WHERE processing_status = ? ORDER BY id LIMIT ?`,
		quoteIdent(s.staging))
	rows, err := s.db.QueryContext(ctx, q, core.StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query pending %s: %w", s.staging, err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var (
			id     int64
			status string
			data   []byte
		)
		if err := rows.Scan(&id, &status, &data); err != nil {
			return nil, fmt.Errorf("sqlite: scan %s: %w", s.staging, err)
		}
		rec := core.Record{}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &rec); err != nil {
				return nil, fmt.Errorf("sqlite: decode record %d: %w", id, err)
			}
		}
		rec["id"] = id
		rec[core.FieldProcessingStatus] = status
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", core.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "") + `"`
}
