package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter: misma ventana fija que el backend redis pero contando
// en proceso. Suficiente para una sola réplica o para desarrollo.
type MemoryLimiter struct {
	cache  *gocache.Cache
	prefix string
	max    int64
	window time.Duration
}

func NewMemoryLimiter(prefix string, max int, window time.Duration) *MemoryLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &MemoryLimiter{
		cache:  gocache.New(window, 2*window),
		prefix: prefix,
		max:    int64(max),
		window: window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.window)
	cacheKey := fmt.Sprintf("%s%s:%d", l.prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	hits, err := l.cache.IncrementInt64(cacheKey, 1)
	if err != nil {
		// primer hit de la ventana; si otro goroutine ganó el Add, reintentar
		if addErr := l.cache.Add(cacheKey, int64(1), l.window); addErr != nil {
			hits, err = l.cache.IncrementInt64(cacheKey, 1)
			if err != nil {
				return Result{}, err
			}
		} else {
			hits = 1
		}
	}

	allowed := hits <= l.max
	remaining := l.max - hits
	if remaining < 0 {
		remaining = 0
	}

	res := Result{
		Allowed:     allowed,
		Remaining:   remaining,
		CurrentHits: hits,
	}
	if !allowed {
		res.RetryAfter = winStart.Add(l.window).Sub(now)
		if res.RetryAfter < 0 {
			res.RetryAfter = l.window
		}
	}
	return res, nil
}
