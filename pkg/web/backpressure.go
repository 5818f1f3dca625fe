package web

import (
	"strconv"
	"sync/atomic"

	"github.com/valyala/fasthttp"
)

// Limiter bounds the number of requests handled at once. Requests over the
// limit are rejected immediately rather than queued.
type Limiter struct {
	limit    int64
	inFlight atomic.Int64
	rejected atomic.Int64
}

// NewLimiter returns a limiter admitting at most limit concurrent requests.
// A limit of zero or less admits everything.
func NewLimiter(limit int) *Limiter {
	return &Limiter{limit: int64(limit)}
}

// TryAcquire reserves a slot. Callers that get true must call Release.
func (l *Limiter) TryAcquire() bool {
	if l.limit <= 0 {
		return true
	}
	if l.inFlight.Add(1) > l.limit {
		l.inFlight.Add(-1)
		l.rejected.Add(1)
		return false
	}
	return true
}

func (l *Limiter) Release() {
	if l.limit > 0 {
		l.inFlight.Add(-1)
	}
}

// LimiterStats is a point-in-time view of a Limiter.
type LimiterStats struct {
	Limit    int64
	InFlight int64
	Rejected int64
}

func (l *Limiter) Stats() LimiterStats {
	return LimiterStats{
		Limit:    l.limit,
		InFlight: l.inFlight.Load(),
		Rejected: l.rejected.Load(),
	}
}

// Backpressure answers 503 with Retry-After when l is saturated.
func Backpressure(l *Limiter, retryAfterSeconds int) Middleware {
	retryAfter := strconv.Itoa(max(retryAfterSeconds, 1))
	return func(next HandlerFunc) HandlerFunc {
		return func(c *Context) error {
			if !l.TryAcquire() {
				c.SetHeader(fasthttp.HeaderRetryAfter, retryAfter)
				return c.Error(fasthttp.StatusServiceUnavailable, "overloaded", "Server is at capacity, retry later")
			}
			defer l.Release()
			return next(c)
		}
	}
}
