// Package middleware holds the HTTP middleware shared by every route group.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/response"
)

type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter allows max requests per client IP per fixed window. The
// account endpoints use it to slow down credential guessing.
type RateLimiter struct {
	max    int
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*window
}

func NewRateLimiter(max int, period time.Duration) *RateLimiter {
	return &RateLimiter{max: max, period: period, now: time.Now, clients: make(map[string]*window)}
}

// Allow records one request from ip and reports whether it is within limit.
// Expired windows are swept lazily.
func (l *RateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for k, w := range l.clients {
		if now.After(w.resetAt) {
			delete(l.clients, k)
		}
	}

	w, ok := l.clients[ip]
	if !ok {
		w = &window{resetAt: now.Add(l.period)}
		l.clients[ip] = w
	}
	w.count++
	return w.count <= l.max
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			ip = fwd
		}
		if !l.Allow(ip) {
			response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
