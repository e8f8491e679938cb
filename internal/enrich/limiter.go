package enrich

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// fallbackBucket collects waits for URLs with no parseable host, so even
// malformed targets stay rate-limited instead of bypassing the throttle.
const fallbackBucket = "(no-host)"

// hostLimiter throttles fetches per hostname: a batch of leads on the same
// site shares one token bucket no matter how many workers touch it.
type hostLimiter struct {
	rps   rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func newHostLimiter(reqPerSec float64, burst int) *hostLimiter {
	return &hostLimiter{
		rps:     rate.Limit(reqPerSec),
		burst:   burst,
		buckets: make(map[string]*rate.Limiter),
	}
}

func (hl *hostLimiter) waitURL(ctx context.Context, raw string) error {
	host := fallbackBucket
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		host = u.Host
	}
	return hl.bucket(host).Wait(ctx)
}

func (hl *hostLimiter) bucket(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	lim, ok := hl.buckets[host]
	if !ok {
		lim = rate.NewLimiter(hl.rps, hl.burst)
		hl.buckets[host] = lim
	}
	return lim
}
