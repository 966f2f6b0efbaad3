// Package pg implementa el DataStore directo contra Postgres vía pgx.
// Los records viven como documentos jsonb; staging materializa
// processing_status en una columna real para poder filtrar con índice.
package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dropDatabas3/modelgate/internal/observability/logger"
	"github.com/dropDatabas3/modelgate/internal/store"
	"github.com/dropDatabas3/modelgate/internal/store/core"
)

func init() {
	store.RegisterAdapter(&adapter{})
}

type adapter struct{}

func (a *adapter) Name() string { return "postgres" }

func (a *adapter) Connect(ctx context.Context, cfg store.Config) (core.DataStore, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
		pcfg.MaxConnIdleTime = cfg.ConnMaxLifetime
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 5
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	st := &Store{
		pool:    pool,
		models:  cfg.ModelsTable,
		staging: cfg.StagingTable,
		log:     logger.Named("store.pg"),
	}

	// Non-blocking startup: si la DB está caída igual arrancamos;
	// las operaciones devolverán error y el readiness lo reporta.
	if err := pool.Ping(ctx); err != nil {
		st.log.Warn("startup ping failed", logger.Err(err))
	} else {
		st.log.Info("pool ready", logger.Count(int(pcfg.MaxConns)))
	}
	return st, nil
}

type Store struct {
	pool    *pgxpool.Pool
	models  string
	staging string
	log     *zap.Logger
}

func (s *Store) Name() string { return "postgres" }

// Pool expone el pool interno para usos avanzados (metrics/migraciones).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// PoolStats devuelve un snapshot del estado del pool (nil si no hay pool).
func (s *Store) PoolStats() *pgxpool.Stat {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Stat()
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", core.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) DeleteAllModels(ctx context.Context) error {
	q := "DELETE FROM " + pgIdentifier(s.models)
	if _, err := s.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("delete models: %w", err)
	}
	return nil
}

func (s *Store) InsertModels(ctx context.Context, records []core.Record) error {
	if len(records) == 0 {
		return nil
	}
	args, err := marshalRecords(records)
	if err != nil {
		return fmt.Errorf("insert models: %w", err)
	}
	q := buildDocumentInsert(s.models, len(records))
	if _, err := s.pool.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("insert models: %w", err)
	}
	return nil
}

func (s *Store) InsertStaging(ctx context.Context, records []core.Record) error {
	if len(records) == 0 {
		return nil
	}
	args, err := marshalRecords(records)
	if err != nil {
		return fmt.Errorf("insert staging: %w", err)
	}
	q := buildStagingInsert(s.staging, len(records))
	if _, err := s.pool.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("insert staging: %w", err)
	}
	return nil
}

func (s *Store) PendingStaging(ctx context.Context, limit int) ([]core.Record, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: non-positive limit", core.ErrInvalid)
	}
	q := fmt.Sprintf(
		`SELECT id, processing_status, data FROM %s WHERE processing_status = $1 ORDER BY id LIMIT $2`,
		pgIdentifier(s.staging),
	)
	rows, err := s.pool.Query(ctx, q, core.StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("select staging: %w", err)
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
			return nil, fmt.Errorf("select staging: %w", err)
		}
		rec := core.Record{}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &rec); err != nil {
				return nil, fmt.Errorf("select staging: decode row %d: %w", id, err)
			}
		}
		rec["id"] = id
		rec[core.FieldProcessingStatus] = status
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ====================== SQL BUILDERS ======================

// buildDocumentInsert arma un INSERT multi-fila sobre la columna data:
// INSERT INTO "t" (data) VALUES ($1::jsonb), ($2::jsonb), ...
func buildDocumentInsert(table string, n int) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(pgIdentifier(table))
	sb.WriteString(" (data) VALUES ")
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d::jsonb)", i+1)
	}
	return sb.String()
}

// buildStagingInsert hace lo mismo pero materializando processing_status,
// tomándolo del documento si viene o cayendo a 'pending'.
func buildStagingInsert(table string, n int) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(pgIdentifier(table))
	sb.WriteString(" (data, processing_status) VALUES ")
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d::jsonb, coalesce(($%d::jsonb)->>'processing_status', 'pending'))", i+1, i+1)
	}
	return sb.String()
}

func marshalRecords(records []core.Record) ([]any, error) {
	args := make([]any, 0, len(records))
	for i, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", i, err)
		}
		args = append(args, string(b))
	}
	return args, nil
}

// pgIdentifier sanitiza un identificador simple (tabla/columna)
// para evitar inyección SQL en nombres que vienen de config.
func pgIdentifier(s string) string {
	return "\"" + strings.ReplaceAll(s, "\"", "") + "\""
}
