// Package supabase implementa el DataStore contra PostgREST (Supabase).
// Es el driver por defecto: el deploy original del pipeline vive ahí.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/modelgate/internal/observability/logger"
	"github.com/dropDatabas3/modelgate/internal/store"
	"github.com/dropDatabas3/modelgate/internal/store/core"
)

func init() {
	store.RegisterAdapter(&adapter{})
}

type adapter struct{}

func (a *adapter) Name() string { return "supabase" }

func (a *adapter) Connect(_ context.Context, cfg store.Config) (core.DataStore, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, fmt.Errorf("supabase: missing project URL")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("supabase: invalid project URL: %w", err)
	}
	if strings.TrimSpace(cfg.ServiceKey) == "" {
		return nil, fmt.Errorf("supabase: missing service key")
	}

	return &Store{
		base:    base,
		key:     cfg.ServiceKey,
		models:  cfg.ModelsTable,
		staging: cfg.StagingTable,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		log:     logger.Named("store.supabase"),
	}, nil
}

// Store habla con PostgREST usando la service key (rol service_role).
type Store struct {
	base    string
	key     string
	models  string
	staging string
	httpc   *http.Client
	log     *zap.Logger
}

func (s *Store) Name() string { return "supabase" }

func (s *Store) DeleteAllModels(ctx context.Context) error {
	// PostgREST exige un filtro en DELETE; id=neq.0 matchea todas las filas.
	q := url.Values{}
	q.Set("id", "neq.0")
	_, err := s.do(ctx, http.MethodDelete, s.models, q, nil)
	if err != nil {
		return fmt.Errorf("delete models: %w", err)
	}
	return nil
}

func (s *Store) InsertModels(ctx context.Context, records []core.Record) error {
	if len(records) == 0 {
		return nil
	}
	if _, err := s.do(ctx, http.MethodPost, s.models, nil, records); err != nil {
		return fmt.Errorf("insert models: %w", err)
	}
	return nil
}

func (s *Store) InsertStaging(ctx context.Context, records []core.Record) error {
	if len(records) == 0 {
		return nil
	}
	if _, err := s.do(ctx, http.MethodPost, s.staging, nil, records); err != nil {
		return fmt.Errorf("insert staging: %w", err)
	}
	return nil
}

func (s *Store) PendingStaging(ctx context.Context, limit int) ([]core.Record, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: non-positive limit", core.ErrInvalid)
	}
	q := url.Values{}
	q.Set("select", "*")
	q.Set(core.FieldProcessingStatus, "eq."+core.StatusPending)
	q.Set("limit", strconv.Itoa(limit))

	body, err := s.do(ctx, http.MethodGet, s.staging, q, nil)
	if err != nil {
		return nil, fmt.Errorf("select staging: %w", err)
	}
	var out []core.Record
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("select staging: decode response: %w", err)
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("limit", "1")
	if _, err := s.do(ctx, http.MethodGet, s.models, q, nil); err != nil {
		return fmt.Errorf("%w: %v", core.ErrUnavailable, err)
	}
	return nil
}

// Close no tiene conexión persistente que cerrar.
func (s *Store) Close() error { return nil }

// do ejecuta un request contra /rest/v1/<table> y devuelve el body en 2xx.
// En non-2xx devuelve un error que incluye el body de PostgREST tal cual,
// para que la capa HTTP pueda propagar el mensaje upstream.
func (s *Store) do(ctx context.Context, method, table string, query url.Values, payload any) ([]byte, error) {
	endpoint := s.base + "/rest/v1/" + url.PathEscape(table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = resp.Status
		}
		s.log.Warn("postgrest request failed",
			logger.String("method", method),
			logger.Table(table),
			logger.Status(resp.StatusCode),
		)
		return nil, fmt.Errorf("postgrest %s %s: status %d: %s", method, table, resp.StatusCode, msg)
	}
	return data, nil
}
