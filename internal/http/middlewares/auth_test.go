package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAPISecretAllowsExactMatch(t *testing.T) {
	var called bool
	h := RequireAPISecret("s3cret")(okHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/api/models/replace", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !called {
		t.Fatal("handler should run with valid credentials")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAPISecretRejections(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong token", "Bearer nope"},
		{"lowercase scheme", "bearer s3cret"},
		{"extra space", "Bearer  s3cret"},
		{"no scheme", "s3cret"},
		{"trailing garbage", "Bearer s3cret "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var called bool
			h := RequireAPISecret("s3cret")(okHandler(&called))

			req := httptest.NewRequest(http.MethodPost, "/api/models/replace", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if called {
				t.Fatal("handler must not run without valid credentials")
			}
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body["error"] != "Unauthorized" {
				t.Fatalf("expected error=Unauthorized, got %q", body["error"])
			}
			if rec.Header().Get("WWW-Authenticate") == "" {
				t.Fatal("expected WWW-Authenticate header")
			}
		})
	}
}

func TestRequireAPISecretEmptySecretRejectsAll(t *testing.T) {
	var called bool
	h := RequireAPISecret("")(okHandler(&called))

	req := httptest.NewRequest(http.MethodPost, "/api/models/replace", nil)
	req.Header.Set("Authorization", "Bearer ")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("empty secret must reject everything (called=%v code=%d)", called, rec.Code)
	}
}
