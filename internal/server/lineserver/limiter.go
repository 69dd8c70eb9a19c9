package lineserver

import (
	"net"

	"golang.org/x/time/rate"
)

// ipLimiter holds one token bucket per client IP. It is owned by the event
// loop and is not safe for concurrent use.
type ipLimiter struct {
	limit   rate.Limit
	burst   int
	buckets map[string]*ipBucket
}

type ipBucket struct {
	lim   *rate.Limiter
	conns int
}

// newIPLimiter returns nil when perSecond is not positive.
func newIPLimiter(perSecond float64, burst int) *ipLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &ipLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		buckets: make(map[string]*ipBucket),
	}
}

// attach is called when a connection from ip is registered.
func (l *ipLimiter) attach(ip string) {
	if l == nil {
		return
	}
	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.conns++
}

// detach drops the bucket once the last connection from ip is gone.
func (l *ipLimiter) detach(ip string) {
	if l == nil {
		return
	}
	b, ok := l.buckets[ip]
	if !ok {
		return
	}
	b.conns--
	if b.conns <= 0 {
		delete(l.buckets, ip)
	}
}

// allow reports whether ip may run one more command now.
func (l *ipLimiter) allow(ip string) bool {
	if l == nil {
		return true
	}
	b, ok := l.buckets[ip]
	if !ok {
		return true
	}
	return b.lim.Allow()
}

func hostOf(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
