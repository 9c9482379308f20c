package network

import (
	"context"
	"time"
)

const (
	retry    = 2 * time.Second
	retryMax = 30 * time.Second
)

// Retry is an exponential backoff between Base and Max.
type Retry struct {
	base, max time.Duration
	t         time.Duration
	fail      bool
}

func NewRetry(base, max time.Duration) Retry {
	if base <= 0 {
		base = retry
	}
	if max < base {
		max = retryMax
		if max < base {
			max = base
		}
	}
	return Retry{base: base, max: max, t: base}
}

// Fail waits the current delay and doubles it for the next failure.
// It returns false if the context ends first.
func (r *Retry) Fail(ctx context.Context) bool {
	r.fail = true
	timer := time.NewTimer(r.t)
	defer timer.Stop()
	r.Multiply(2)
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (r *Retry) Multiply(x int) {
	r.t *= time.Duration(x)
	if r.t > r.max {
		r.t = r.max
	}
}

func (r *Retry) Success()            { r.t = r.base; r.fail = false }
func (r *Retry) Failed() bool        { return r.fail }
func (r *Retry) Time() time.Duration { return r.t }
