// Package rate keeps a token bucket per caller.
package rate

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter struct {
	limit   rate.Limit
	burst   int
	expiry  time.Duration
	mu      sync.Mutex
	callers map[string]*caller
	done    chan struct{}
	once    sync.Once
}

type caller struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// NewLimiter lets each caller issue one request per interval with bursts up
// to burst. Callers idle for longer than expiry are forgotten.
func NewLimiter(burst int, interval time.Duration, expiry time.Duration) *Limiter {
	l := &Limiter{
		limit:   rate.Every(interval),
		burst:   burst,
		expiry:  expiry,
		callers: make(map[string]*caller),
		done:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.callers[key]
	if !ok {
		c = &caller{bucket: rate.NewLimiter(l.limit, l.burst)}
		l.callers[key] = c
	}
	c.lastSeen = time.Now()

	return c.bucket.Allow()
}

// Close stops the background sweep.
func (l *Limiter) Close() {
	l.once.Do(func() { close(l.done) })
}

func (l *Limiter) sweep() {
	period := l.expiry / 2
	if period < time.Second {
		period = time.Second
	}

	t := time.NewTicker(period)
	defer t.Stop()

	for {
		select {
		case <-l.done:
			return
		case now := <-t.C:
			l.forget(now)
		}
	}
}

func (l *Limiter) forget(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, c := range l.callers {
		if now.Sub(c.lastSeen) > l.expiry {
			delete(l.callers, key)
		}
	}
}

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.callers)
}
