package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// staleAfter is how long an idle client entry survives before the sweeper
// drops it.
const staleAfter = 10 * time.Minute

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	rps     rate.Limit
	burst   int
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	cl := &clientLimiter{
		clients: make(map[string]*client),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
	go cl.sweep()
	return cl
}

func (cl *clientLimiter) allow(ip string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	c, ok := cl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(cl.rps, cl.burst)}
		cl.clients[ip] = c
	}
	c.lastSeen = time.Now()

	return c.limiter.Allow()
}

func (cl *clientLimiter) sweep() {
	for {
		time.Sleep(staleAfter)
		cl.mu.Lock()
		for ip, c := range cl.clients {
			if time.Since(c.lastSeen) > staleAfter {
				delete(cl.clients, ip)
			}
		}
		cl.mu.Unlock()
	}
}

// RateLimit returns middleware that limits requests per client IP. Used on
// the register/login routes to slow credential stuffing; token-protected
// routes are not limited.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	limiter := newClientLimiter(rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.allow(ip) {
				writeEnvelopeError(w, http.StatusTooManyRequests, "too many requests, slow down")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
