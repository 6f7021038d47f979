// Copyright (c) 2026 Roastlog. All rights reserved.

package ratelimit

import (
	"context"
	"sync"
	"time"
)

// window tracks one client's attempt count within the current fixed window.
type window struct {
	count     int
	resetTime time.Time
}

// Memory is the in-process [Limiter] driver.
//
// # Concurrency
//
// The lookup / compare-reset-time / increment-or-replace sequence is a
// read-modify-write on shared state, so the whole decision is taken under
// a single mutex. Two simultaneous requests at a window boundary therefore
// cannot both observe "record absent" and double the allowed burst.
//
// # Memory Bound
//
// Entries for idle clients are evicted by [Memory.StartJanitor] (or
// on demand via [Memory.EvictExpired]) once their window has closed,
// so the table does not grow without bound over the process lifetime.
type Memory struct {
	mu      sync.Mutex
	windows map[string]*window

	limit       int
	windowWidth time.Duration
	now         func() time.Time
}

// MemoryOption customizes a [Memory] limiter.
type MemoryOption func(*Memory)

// WithClock injects a clock, letting tests control time deterministically.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates an in-process fixed-window limiter.
func NewMemory(limit int, windowWidth time.Duration, opts ...MemoryOption) *Memory {
	m := &Memory{
		windows:     make(map[string]*window),
		limit:       limit,
		windowWidth: windowWidth,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Limit returns the attempts-per-window quota.
func (m *Memory) Limit() int { return m.limit }

// Check implements [Limiter].
func (m *Memory) Check(_ context.Context, key string) Decision {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, found := m.windows[key]

	// First attempt, or the previous window has closed: open a fresh one.
	if !found || now.After(entry.resetTime) {
		entry = &window{count: 1, resetTime: now.Add(m.windowWidth)}
		m.windows[key] = entry
		return Decision{Allowed: true, Remaining: m.limit - 1, ResetTime: entry.resetTime}
	}

	// Quota exhausted: reject without advancing the counter, so the reset
	// time the client was told stays accurate.
	if entry.count >= m.limit {
		return Decision{Allowed: false, Remaining: 0, ResetTime: entry.resetTime}
	}

	entry.count++
	return Decision{Allowed: true, Remaining: m.limit - entry.count, ResetTime: entry.resetTime}
}

// EvictExpired removes every entry whose window has already closed and
// returns the number of entries removed.
func (m *Memory) EvictExpired() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, entry := range m.windows {
		if now.After(entry.resetTime) {
			delete(m.windows, key)
			removed++
		}
	}
	return removed
}

// StartJanitor launches a background goroutine that periodically evicts
// expired windows. It stops when ctx is cancelled.
func (m *Memory) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.EvictExpired()
			case <-ctx.Done():
				return
			}
		}
	}()
}
