package retry

import "time"

// maxBackoff bounds the delay so re-enqueued tasks never sleep for minutes.
const maxBackoff = 30 * time.Second

// ExponentialBackoff returns delay based on attempt number.
// The delay doubles with each attempt, base * 2^attempt, capped at maxBackoff.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	if attempt > 30 {
		return maxBackoff
	}
	d := base * (1 << attempt)
	if d > maxBackoff || d <= 0 {
		return maxBackoff
	}
	return d
}
