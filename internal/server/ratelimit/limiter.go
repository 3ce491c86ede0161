package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Result describes a rate limit decision.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	ResetAt    time.Time
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter tracks one token bucket per client and endpoint class.
type Limiter struct {
	config Config

	mu      sync.Mutex
	buckets map[string]*entry

	now    func() time.Time
	stop   chan struct{}
	closed sync.Once
}

// NewLimiter creates a limiter and starts its cleanup loop. Call Stop to
// end it.
func NewLimiter(cfg Config) *Limiter {
	l := &Limiter{
		config:  cfg,
		buckets: make(map[string]*entry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go l.cleanupLoop()
	}
	return l
}

// Allow consumes one token for clientID on class.
func (l *Limiter) Allow(clientID string, class EndpointClass) Result {
	ec, limited := l.config.ConfigFor(class)
	if !limited {
		return Result{Allowed: true, Remaining: -1}
	}

	now := l.now()
	key := clientID + "|" + string(class)

	l.mu.Lock()
	e, ok := l.buckets[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(ec.Limit, ec.Burst)}
		l.buckets[key] = e
	}
	e.lastSeen = now
	l.mu.Unlock()

	res := Result{Limit: ec.Requests, ResetAt: now.Add(ec.Window)}

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		res.RetryAfter = ec.Window
		return res
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		res.RetryAfter = delay
		res.ResetAt = now.Add(delay)
		return res
	}

	res.Allowed = true
	res.Remaining = int(math.Floor(e.limiter.TokensAt(now)))
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	return res
}

// Size returns the number of tracked buckets.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.closed.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) cleanup() {
	cutoff := l.now().Add(-l.config.IdleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.buckets {
		if e.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}
