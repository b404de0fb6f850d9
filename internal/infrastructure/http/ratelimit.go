package httpserver

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// rateLimiter grants each client IP max requests per window, refilled continuously.
type rateLimiter struct {
	max    int
	window time.Duration
	every  rate.Limit

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		max:     max,
		window:  window,
		every:   rate.Every(window / time.Duration(max)),
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// allow reports whether the request may proceed and how many requests remain.
func (rl *rateLimiter) allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	rl.sweep(now)
	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimiter{lim: rate.NewLimiter(rl.every, rl.max)}
		rl.clients[key] = c
	}
	c.lastSeen = now
	ok = c.lim.AllowN(now, 1)
	remaining := int(c.lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return ok, remaining
}

// sweep drops clients idle for a whole window; their bucket would be full again anyway.
func (rl *rateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.window {
		return
	}
	for k, c := range rl.clients {
		if now.Sub(c.lastSeen) >= rl.window {
			delete(rl.clients, k)
		}
	}
	rl.lastSweep = now
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, remaining := rl.allow(clientIP(r))
		w.Header().Set("RateLimit-Limit", strconv.Itoa(rl.max))
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
