package pg

import (
	"context"
	"fmt"
	"hash/fnv"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/dropDatabas3/modelgate/internal/observability/logger"
	pgmigrations "github.com/dropDatabas3/modelgate/migrations/postgres"
)

// lockID determinístico para serializar migraciones entre réplicas.
func migrationLockID() int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("modelgate:migrate"))
	return int64(h.Sum64())
}

// RunMigrations aplica los *_up.sql embebidos (orden lexicográfico) bajo un
// advisory lock, registrando cada versión en schema_migrations.
// Devuelve cuántos scripts aplicó.
func (s *Store) RunMigrations(ctx context.Context) (int, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	lockID := migrationLockID()
	lctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var got bool
	if err := conn.QueryRow(lctx, "select pg_try_advisory_lock($1)", lockID).Scan(&got); err != nil {
		return 0, err
	}
	if !got {
		s.log.Info("migration lock held elsewhere, waiting")
		if _, err := conn.Exec(lctx, "select pg_advisory_lock($1)", lockID); err != nil {
			return 0, err
		}
	}
	// liberar siempre en la MISMA conexión
	defer func() {
		if _, err := conn.Exec(context.Background(), "select pg_advisory_unlock($1)", lockID); err != nil {
			s.log.Warn("failed to release migration lock", logger.Err(err))
		}
	}()

	return s.runTracked(ctx, pgmigrations.FS)
}

func (s *Store) runTracked(ctx context.Context, fsys fs.FS) (int, error) {
	const ensure = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := s.pool.Exec(ctx, ensure); err != nil {
		return 0, fmt.Errorf("ensure schema_migrations: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return 0, fmt.Errorf("query applied migrations: %w", err)
	}
	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return 0, err
		}
		applied[v] = true
	}
	rows.Close()

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return 0, err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), "_up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	var count int
	for _, version := range files {
		if applied[version] {
			continue
		}
		b, err := fs.ReadFile(fsys, version)
		if err != nil {
			return count, err
		}

		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return count, fmt.Errorf("begin tx: %w", err)
		}
		if _, err := tx.Exec(ctx, string(b)); err != nil {
			_ = tx.Rollback(ctx)
			return count, fmt.Errorf("exec %s: %w", version, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			_ = tx.Rollback(ctx)
			return count, fmt.Errorf("record version %s: %w", version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return count, fmt.Errorf("commit %s: %w", version, err)
		}
		s.log.Info("applied migration", logger.String("version", version))
		count++
	}
	return count, nil
}
