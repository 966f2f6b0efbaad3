package rate

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterAllowsUpToMax(t *testing.T) {
	l := NewMemoryLimiter("test:", 3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := l.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("hit %d should be allowed", i)
		}
		if res.CurrentHits != int64(i) {
			t.Fatalf("hit %d: expected CurrentHits=%d, got %d", i, i, res.CurrentHits)
		}
	}

	res, err := l.Allow(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("allow over max: %v", err)
	}
	if res.Allowed {
		t.Fatal("hit 4 should be denied")
	}
	if res.Remaining != 0 {
		t.Fatalf("expected Remaining=0, got %d", res.Remaining)
	}
	if res.RetryAfter <= 0 || res.RetryAfter > time.Minute {
		t.Fatalf("RetryAfter out of range: %v", res.RetryAfter)
	}
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter("test:", 1, time.Minute)
	ctx := context.Background()

	if res, _ := l.Allow(ctx, "10.0.0.1"); !res.Allowed {
		t.Fatal("first key should be allowed")
	}
	if res, _ := l.Allow(ctx, "10.0.0.2"); !res.Allowed {
		t.Fatal("second key should not share the first key's count")
	}
	if res, _ := l.Allow(ctx, "10.0.0.1"); res.Allowed {
		t.Fatal("first key should now be over its limit")
	}
}

func TestNoopAlwaysAllows(t *testing.T) {
	var l Limiter = Noop{}
	for i := 0; i < 100; i++ {
		res, err := l.Allow(context.Background(), "whatever")
		if err != nil || !res.Allowed {
			t.Fatalf("noop must always allow (err=%v)", err)
		}
	}
}
