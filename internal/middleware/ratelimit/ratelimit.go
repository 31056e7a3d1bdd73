// Package ratelimit implements a small in-memory per-client rate limiter.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter allows up to maxRequests per client per window.
type Limiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	maxRequests  int
	window       time.Duration
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

// NewLimiter starts a limiter with a background cleanup of stale clients.
func NewLimiter(maxRequests int, window time.Duration) *Limiter {
	l := &Limiter{
		clients:     make(map[string]*clientInfo),
		maxRequests: maxRequests,
		window:      window,
		stopCleanup: make(chan struct{}),
	}
	go l.startCleanup()
	return l
}

// Allow reports whether the client may make another request now.
func (l *Limiter) Allow(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	client, exists := l.clients[clientID]
	if !exists {
		l.clients[clientID] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	if now.Sub(client.lastRequest) > l.window {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now
	return client.requests <= l.maxRequests
}

func (l *Limiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.cleanupStale()
		case <-l.stopCleanup:
			return
		}
	}
}

// cleanupStale removes clients idle for more than ten windows.
func (l *Limiter) cleanupStale() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-10 * l.window)
	for id, client := range l.clients {
		if client.lastRequest.Before(cutoff) {
			delete(l.clients, id)
		}
	}
}

// Stop shuts down the cleanup goroutine.
func (l *Limiter) Stop() {
	l.shutdownOnce.Do(func() {
		close(l.stopCleanup)
	})
}
