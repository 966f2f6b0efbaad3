package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropDatabas3/modelgate/internal/rate"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mk := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mk("A"), mk("B"), mk("C"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	want := []string{"A", "B", "C", "handler"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

func TestWithRequestIDGeneratesAndPropagates(t *testing.T) {
	var seen string
	h := WithRequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" {
		t.Fatal("request id should be generated")
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Fatal("header and context must carry the same id")
	}

	// el id del cliente se respeta
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-id-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "client-id-123" {
		t.Fatalf("expected propagated id, got %q", seen)
	}
}

func TestWithRateLimitBlocksOverLimit(t *testing.T) {
	limiter := rate.NewMemoryLimiter("mw:", 2, time.Minute)
	h := WithRateLimit(RateLimitConfig{
		Limiter:   limiter,
		Whitelist: []string{"/health"},
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "10.1.2.3:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	if rec := do("/api/models/replace"); rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}
	if rec := do("/api/models/replace"); rec.Code != http.StatusOK {
		t.Fatalf("second request should pass, got %d", rec.Code)
	}
	rec := do("/api/models/replace")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request should be limited, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("limited response should carry Retry-After")
	}

	// whitelisted path nunca se limita
	for i := 0; i < 5; i++ {
		if rec := do("/health"); rec.Code != http.StatusOK {
			t.Fatalf("whitelisted path must pass, got %d", rec.Code)
		}
	}
}

func TestWithRateLimitNilLimiterIsPassthrough(t *testing.T) {
	h := WithRateLimit(RateLimitConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/x", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("nil limiter must not limit, got %d", rec.Code)
		}
	}
}
