// Package ratelimiter throttles repeated unlock attempts against seed
// records. The vault core stays stateless; hosts that accept interactive
// passphrase entry consult a limiter before burning KDF work on a guess.
package ratelimiter

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// UnlockLimiter applies a token bucket per record fingerprint and
// periodically evicts idle entries.
type UnlockLimiter struct {
	limit   rate.Limit
	burst   int
	mu      sync.Mutex
	byKey   map[string]*entry
	hits    uint64
	idleTTL time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a fingerprint-keyed limiter; returns nil if args are invalid.
// A nil limiter allows everything, so wiring stays optional.
func New(attemptsPerSec float64, burst int, idleTTL time.Duration) *UnlockLimiter {
	if attemptsPerSec <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &UnlockLimiter{
		limit:   rate.Limit(attemptsPerSec),
		burst:   burst,
		byKey:   make(map[string]*entry),
		idleTTL: idleTTL,
	}
}

// Allow reports whether one unlock attempt may proceed for the record at now.
func (l *UnlockLimiter) Allow(fingerprint string, now time.Time) bool {
	if l == nil {
		return true
	}
	fingerprint = strings.TrimSpace(fingerprint)
	if fingerprint == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.byKey[fingerprint]
	if !ok {
		e = &entry{
			limiter:  rate.NewLimiter(l.limit, l.burst),
			lastSeen: now,
		}
		l.byKey[fingerprint] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%512 == 0 {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(l.byKey, k)
			}
		}
	}

	return allowed
}
