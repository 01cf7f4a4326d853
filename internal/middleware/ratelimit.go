package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rehearsal/attendance/internal/model"
)

// RateLimiter is a token-bucket limiter keyed per caller. A check-in
// station burns one token per scan, so the burst allowance is what lets
// a queue of attendees file past without tripping the limit.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     int
	window   time.Duration
	burst    int
	sweep    time.Duration
	now      func() time.Time
	stopChan chan struct{}
}

type bucket struct {
	tokens     int
	lastRefill time.Time
}

// Decision reports the outcome of a rate-limit check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimitConfig holds rate limiter configuration.
type RateLimitConfig struct {
	Rate   int           // tokens refilled per window (default 100)
	Window time.Duration // refill window (default 1 minute)
	Burst  int           // extra headroom above Rate (default 20)
	Sweep  time.Duration // idle-bucket sweep interval (default 5 minutes)
	Now    func() time.Time
}

// NewRateLimiter creates a rate limiter and starts its sweep goroutine.
// Call Stop when shutting down.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Rate == 0 {
		cfg.Rate = 100
	}
	if cfg.Window == 0 {
		cfg.Window = time.Minute
	}
	if cfg.Burst == 0 {
		cfg.Burst = 20
	}
	if cfg.Sweep == 0 {
		cfg.Sweep = 5 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     cfg.Rate,
		window:   cfg.Window,
		burst:    cfg.Burst,
		sweep:    cfg.Sweep,
		now:      cfg.Now,
		stopChan: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Stop terminates the sweep goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopChan)
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.dropIdle()
		case <-rl.stopChan:
			return
		}
	}
}

// dropIdle evicts buckets that have sat untouched for two full windows.
// A station that packed up after its workshop should not pin memory.
func (rl *RateLimiter) dropIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-2 * rl.window)
	for key, b := range rl.buckets {
		if b.lastRefill.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// capacity is the most tokens a bucket can hold.
func (rl *RateLimiter) capacity() int {
	return rl.rate + rl.burst
}

// Allow spends one token for the key and reports whether the request
// may proceed.
func (rl *RateLimiter) Allow(key string) Decision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.capacity(), lastRefill: now}
		rl.buckets[key] = b
	} else {
		rl.refill(b, now)
	}

	resetAt := b.lastRefill.Add(rl.window)
	if b.tokens <= 0 {
		return Decision{Allowed: false, Remaining: 0, ResetAt: resetAt}
	}

	b.tokens--
	return Decision{Allowed: true, Remaining: b.tokens, ResetAt: resetAt}
}

// refill credits tokens proportional to the time elapsed since the last
// refill, capped at capacity. Sub-refill elapsed time stays banked in
// lastRefill so slow trickles still accumulate.
func (rl *RateLimiter) refill(b *bucket, now time.Time) {
	elapsed := now.Sub(b.lastRefill)
	if elapsed <= 0 {
		return
	}
	if elapsed >= rl.window {
		b.tokens = rl.capacity()
		b.lastRefill = now
		return
	}

	credit := int(float64(rl.rate) * (float64(elapsed) / float64(rl.window)))
	if credit == 0 {
		return
	}
	b.tokens += credit
	if b.tokens > rl.capacity() {
		b.tokens = rl.capacity()
	}
	b.lastRefill = now
}

// RateLimit applies the limiter per caller: authenticated requests are
// keyed by user, anonymous ones (a station scanning with only a body
// token) by client IP. The port is stripped so one kiosk's requests
// share a bucket instead of scattering across ephemeral ports.
func RateLimit(limiter *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetUserID(r.Context())
			if key == "" {
				key = clientIP(r)
			}

			d := limiter.Allow(key)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.rate))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				retryAfter := int(d.ResetAt.Sub(limiter.now()).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				model.NewRateLimitError(retryAfter).WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
