package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"complyd/internal/domain"
)

const defaultMaxKeys = 10000

// MemoryLimiter is the in-process fixed-window limiter used for local runs
// and tests. Production deployments use the redis limiter so the window is
// shared across replicas.
type MemoryLimiter struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]*window
	maxKeys int
}

type window struct {
	hits  int
	until time.Time
}

func NewMemoryLimiter(now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{
		now:     now,
		windows: make(map[string]*window),
		maxKeys: defaultMaxKeys,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string, limit int, windowSize time.Duration) (domain.RateLimitDecision, error) {
	if limit <= 0 {
		return domain.RateLimitDecision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if ok && now.After(w.until) {
		delete(m.windows, key)
		ok = false
	}
	if !ok {
		if len(m.windows) >= m.maxKeys {
			m.sweep(now)
		}
		if len(m.windows) >= m.maxKeys {
			return domain.RateLimitDecision{}, errors.New("rate limiter capacity exceeded")
		}
		w = &window{until: now.Add(windowSize)}
		m.windows[key] = w
	}

	if w.hits >= limit {
		return domain.RateLimitDecision{Allowed: false, Limit: limit, ResetAt: w.until}, nil
	}
	w.hits++
	return domain.RateLimitDecision{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - w.hits,
		ResetAt:   w.until,
	}, nil
}

func (m *MemoryLimiter) sweep(now time.Time) {
	for key, w := range m.windows {
		if now.After(w.until) {
			delete(m.windows, key)
		}
	}
}

var _ domain.RateLimiter = (*MemoryLimiter)(nil)
