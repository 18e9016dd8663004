// Package ratelimiter implements a fixed-window request limiter keyed by
// client address.
package ratelimiter

import (
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

type FixedWindow struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	size    time.Duration
	done    chan struct{}
}

func NewFixedWindow(limit int, size time.Duration) *FixedWindow {
	rl := &FixedWindow{
		windows: make(map[string]*window),
		limit:   limit,
		size:    size,
		done:    make(chan struct{}),
	}
	go rl.janitor()
	return rl
}

// Allow reports whether the key may proceed. When denied it also returns how
// long until the window resets.
func (rl *FixedWindow) Allow(key string) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || now.After(w.resetAt) {
		rl.windows[key] = &window{count: 1, resetAt: now.Add(rl.size)}
		return true, 0
	}

	if w.count >= rl.limit {
		return false, time.Until(w.resetAt)
	}
	w.count++
	return true, 0
}

func (rl *FixedWindow) janitor() {
	ticker := time.NewTicker(rl.size)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.done:
			return
		}
	}
}

func (rl *FixedWindow) sweep() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, w := range rl.windows {
		if now.After(w.resetAt) {
			delete(rl.windows, key)
		}
	}
}

func (rl *FixedWindow) Close() {
	close(rl.done)
}
