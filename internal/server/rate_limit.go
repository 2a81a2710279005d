package server

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// submitWindow is the span JobsPerMinute is counted over.
const submitWindow = time.Minute

// sweepThreshold is the number of tracked submitters above which idle
// entries are dropped.
const sweepThreshold = 256

// SubmitLimiter caps how many tickets a single submitter may queue per
// window. Submitters holding a job token share its quota; connections
// without one are counted by host.
type SubmitLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	sent   map[string][]time.Time
}

// NewSubmitLimiter returns a limiter admitting perMinute tickets per submitter.
func NewSubmitLimiter(perMinute int) *SubmitLimiter {
	return &SubmitLimiter{
		limit:  perMinute,
		window: submitWindow,
		now:    time.Now,
		sent:   make(map[string][]time.Time),
	}
}

// submitterKey identifies who a ticket counts against. The token is
// hashed so the limiter never keeps it in memory.
func submitterKey(token, remoteAddr string) string {
	if token != "" {
		sum := sha256.Sum256([]byte(token))
		return "token:" + hex.EncodeToString(sum[:8])
	}
	return "host:" + clientHost(remoteAddr)
}

// Admit records a ticket for key and returns 0, or returns how long the
// submitter has to wait for a free slot without recording anything.
func (l *SubmitLimiter) Admit(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.sent[key][:0]
	for _, t := range l.sent[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= l.limit {
		l.sent[key] = recent
		return recent[0].Sub(cutoff)
	}

	l.sent[key] = append(recent, now)
	if len(l.sent) > sweepThreshold {
		l.sweep(cutoff)
	}
	return 0
}

func (l *SubmitLimiter) sweep(cutoff time.Time) {
	for key, times := range l.sent {
		if len(times) == 0 || !times[len(times)-1].After(cutoff) {
			delete(l.sent, key)
		}
	}
}

// Tracked returns the number of submitters currently held.
func (l *SubmitLimiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sent)
}
