package http

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// backoff computes the waits of one logical call. Computed waits never
// decrease over the call; a positive Retry-After from a rate limit is used
// verbatim instead.
type backoff struct {
	policy luna.RetryPolicy
	random func() float64
	prev   time.Duration
}

func newBackoff(policy luna.RetryPolicy, random func() float64) *backoff {
	if random == nil {
		random = rand.Float64
	}

	return &backoff{policy: policy, random: random}
}

// next returns the wait after the failed attempt with zero-based index attempt.
func (b *backoff) next(attempt int, cause *luna.Error) time.Duration {
	if cause != nil && cause.Kind == luna.KindRateLimit && cause.RetryAfter > 0 {
		return cause.RetryAfter
	}

	base := float64(b.policy.InitialDelay) * math.Pow(b.policy.Multiplier, float64(attempt))
	if limit := float64(b.policy.MaxDelay); base > limit || math.IsInf(base, 1) {
		base = limit
	}

	jitter := base * b.policy.JitterFraction * (2*b.random() - 1)

	wait := time.Duration(base + jitter)
	if wait < b.prev {
		wait = b.prev
	}

	b.prev = wait

	return wait
}
