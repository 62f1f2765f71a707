package auth

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// visitorTTL is how long an address may sit idle before its limiter is
// dropped; a fresh limiter starts with a full burst anyway.
const visitorTTL = time.Hour

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// loginLimiter throttles credential attempts per remote address. Idle
// entries are swept on access so the map stays bounded.
type loginLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	r         rate.Limit
	burst     int
	lastSweep time.Time
}

func newLoginLimiter(r rate.Limit, burst int) *loginLimiter {
	return &loginLimiter{
		visitors:  make(map[string]*visitor),
		r:         r,
		burst:     burst,
		lastSweep: time.Now(),
	}
}

func (l *loginLimiter) limiterFor(addr string) *rate.Limiter {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > visitorTTL {
		for h, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(l.visitors, h)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[host]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.r, l.burst)}
		l.visitors[host] = v
	}
	v.lastSeen = now
	return v.lim
}

func (l *loginLimiter) allow(r *http.Request) bool {
	return l.limiterFor(r.RemoteAddr).Allow()
}
