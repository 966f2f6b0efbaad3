package supabase_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dropDatabas3/modelgate/internal/store"
	"github.com/dropDatabas3/modelgate/internal/store/core"

	_ "github.com/dropDatabas3/modelgate/internal/store/adapters/supabase"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	APIKey string
	Prefer string
	Body   []byte
}

func newFakePostgREST(t *testing.T, status int, respBody string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var seen []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			APIKey: r.Header.Get("apikey"),
			Prefer: r.Header.Get("Prefer"),
			Body:   body,
		})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func openStore(t *testing.T, baseURL string) core.DataStore {
	t.Helper()
	st, err := store.Open(context.Background(), store.Config{
		Driver:     "supabase",
		URL:        baseURL,
		ServiceKey: "service-key",
	})
	if err != nil {
		t.Fatalf("open supabase store: %v", err)
	}
	return st
}

func TestDeleteAllModels(t *testing.T) {
	srv, seen := newFakePostgREST(t, http.StatusNoContent, "")
	st := openStore(t, srv.URL)

	if err := st.DeleteAllModels(context.Background()); err != nil {
		t.Fatalf("DeleteAllModels: %v", err)
	}
	if len(*seen) != 1 {
		t.Fatalf("requests = %d, want 1", len(*seen))
	}
	req := (*seen)[0]
	if req.Method != http.MethodDelete || req.Path != "/rest/v1/ai_models_discovery" {
		t.Fatalf("got %s %s", req.Method, req.Path)
	}
	if !strings.Contains(req.Query, "id=neq.0") {
		t.Fatalf("query = %q, want id=neq.0 filter", req.Query)
	}
	if req.Auth != "Bearer service-key" || req.APIKey != "service-key" {
		t.Fatalf("auth headers = %q / %q", req.Auth, req.APIKey)
	}
}

func TestInsertModelsSendsArray(t *testing.T) {
	srv, seen := newFakePostgREST(t, http.StatusCreated, "")
	st := openStore(t, srv.URL)

	records := []core.Record{
		{"name": "gpt-x", "provider": "openai"},
		{"name": "claude-y", "provider": "anthropic"},
	}
	if err := st.InsertModels(context.Background(), records); err != nil {
		t.Fatalf("InsertModels: %v", err)
	}
	req := (*seen)[0]
	if req.Method != http.MethodPost || req.Path != "/rest/v1/ai_models_discovery" {
		t.Fatalf("got %s %s", req.Method, req.Path)
	}
	if req.Prefer != "return=minimal" {
		t.Fatalf("Prefer = %q", req.Prefer)
	}
	var sent []core.Record
	if err := json.Unmarshal(req.Body, &sent); err != nil {
		t.Fatalf("body is not a JSON array: %v (body=%s)", err, req.Body)
	}
	if len(sent) != 2 || sent[0]["name"] != "gpt-x" {
		t.Fatalf("sent = %+v", sent)
	}
}

func TestPendingStagingQuery(t *testing.T) {
	resp := `[{"id":1,"url":"https://a","processing_status":"pending"},{"id":2,"url":"https://b","processing_status":"pending"}]`
	srv, seen := newFakePostgREST(t, http.StatusOK, resp)
	st := openStore(t, srv.URL)

	recs, err := st.PendingStaging(context.Background(), 5)
	if err != nil {
		t.Fatalf("PendingStaging: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	req := (*seen)[0]
	if req.Method != http.MethodGet || req.Path != "/rest/v1/ai_models_staging" {
		t.Fatalf("got %s %s", req.Method, req.Path)
	}
	for _, want := range []string{"processing_status=eq.pending", "limit=5", "select=%2A"} {
		if !strings.Contains(req.Query, want) {
			t.Fatalf("query = %q, missing %q", req.Query, want)
		}
	}
	if recs[0].Status() != core.StatusPending {
		t.Fatalf("status = %q", recs[0].Status())
	}
}

func TestPendingStagingRejectsBadLimit(t *testing.T) {
	srv, seen := newFakePostgREST(t, http.StatusOK, "[]")
	st := openStore(t, srv.URL)

	if _, err := st.PendingStaging(context.Background(), 0); !errors.Is(err, core.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if len(*seen) != 0 {
		t.Fatalf("no request should be sent for bad limit")
	}
}

func TestUpstreamErrorCarriesBody(t *testing.T) {
	srv, _ := newFakePostgREST(t, http.StatusConflict, `{"message":"duplicate key value violates unique constraint"}`)
	st := openStore(t, srv.URL)

	err := st.InsertModels(context.Background(), []core.Record{{"name": "x"}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "duplicate key value") {
		t.Fatalf("error should carry the upstream body, got: %v", err)
	}
	if !strings.Contains(err.Error(), "status 409") {
		t.Fatalf("error should carry the status, got: %v", err)
	}
}

func TestPingMapsToUnavailable(t *testing.T) {
	srv, _ := newFakePostgREST(t, http.StatusServiceUnavailable, "upstream down")
	st := openStore(t, srv.URL)

	if err := st.Ping(context.Background()); !errors.Is(err, core.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestConnectValidation(t *testing.T) {
	_, err := store.Open(context.Background(), store.Config{Driver: "supabase", ServiceKey: "k"})
	if err == nil || !strings.Contains(err.Error(), "URL") {
		t.Fatalf("expected missing URL error, got %v", err)
	}
	_, err = store.Open(context.Background(), store.Config{Driver: "supabase", URL: "https://x.supabase.co"})
	if err == nil || !strings.Contains(err.Error(), "service key") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}
