package link

import "time"

// Backoff computes the delay before a given reconnect attempt.
// Attempt numbering starts at 1.
type Backoff interface {
	Delay(attempt int) time.Duration
}

// FixedBackoff waits the same interval between every attempt. This matches
// the reference client behavior and is the default policy.
type FixedBackoff struct {
	Interval time.Duration
}

// Delay returns the fixed interval regardless of attempt.
func (b FixedBackoff) Delay(int) time.Duration {
	return b.Interval
}

// ExponentialBackoff doubles the base interval per attempt up to Max.
type ExponentialBackoff struct {
	Base time.Duration
	Max  time.Duration
}

// Delay returns Base << (attempt-1), capped at Max.
func (b ExponentialBackoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := b.Base
	for i := 1; i < attempt; i++ {
		d *= 2
		if b.Max > 0 && d >= b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}
