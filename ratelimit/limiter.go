// Package ratelimit throttles posts per destination webhook.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token bucket per key, all keys sharing one rate.
// A rate of 0 disables limiting.
type Limiter struct {
	mu      sync.Mutex
	rate    float64 // tokens per second, also the burst size
	buckets map[string]*bucket
}

type bucket struct {
	tokens   float64
	lastFill time.Time
}

// New creates a limiter allowing perSecond posts per key.
func New(perSecond int) *Limiter {
	if perSecond < 0 {
		perSecond = 0
	}
	return &Limiter{
		rate:    float64(perSecond),
		buckets: make(map[string]*bucket),
	}
}

// Allow takes a token for key if one is available.
func (l *Limiter) Allow(key string) bool {
	if l == nil || l.rate == 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.rate, lastFill: time.Now()}
		l.buckets[key] = b
	}
	l.refill(b)

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Wait blocks until key may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	if l == nil || l.rate == 0 {
		return nil
	}

	interval := time.Duration(float64(time.Second) / l.rate)
	for !l.Allow(key) {
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// Reset forgets the bucket for key.
func (l *Limiter) Reset(key string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// refill must be called with mu held.
func (l *Limiter) refill(b *bucket) {
	now := time.Now()
	b.tokens += now.Sub(b.lastFill).Seconds() * l.rate
	if b.tokens > l.rate {
		b.tokens = l.rate
	}
	b.lastFill = now
}
