// Package ratelimit implements per-key sliding window request caps.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the result of recording one hit.
type Decision struct {
	Allowed    bool
	Count      int
	Remaining  int
	RetryAfter time.Duration
}

// Store records hits and decides whether a key is over its limit. Every
// call counts as a hit, including denied ones.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

func decide(count, limit int, retryAfter time.Duration) Decision {
	d := Decision{Count: count, Allowed: count <= limit}
	if d.Allowed {
		d.Remaining = limit - count
	} else {
		d.RetryAfter = retryAfter
	}
	return d
}
