package collab

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
)

// bucketState is one (caller, method) pair's token bucket plus the
// per-key exponential backoff used to compute RetryAfter for a caller
// that keeps getting denied.
type bucketState struct {
	tokens     float64
	lastRefill time.Time
	backoff    *backoff.ExponentialBackOff
	// retryAfter and nextAdvance let Check stay a true peek: repeated
	// Check calls within the same interval window replay retryAfter
	// instead of calling backoff.NextBackOff() again, so speculative
	// polling can't inflate the backoff on its own. Only once real time
	// reaches nextAdvance does another denial advance the generator.
	retryAfter  time.Duration
	nextAdvance time.Time
}

// TokenBucketRateLimiter implements ictx.RateLimiter with one token
// bucket per (caller, method) pair, refilled continuously at rate
// tokens/second up to a burst ceiling. Check only refills and peeks —
// it does not spend a token, so a guard-phase rule can Check
// speculatively before deciding whether the request will actually
// proceed; Record is what spends one. A caller that keeps getting denied
// sees a growing RetryAfter via github.com/cenkalti/backoff/v4's
// exponential backoff, reset the moment they're allowed again — this is
// the one consumer in this repo of the teacher's go.mod backoff
// dependency, which no teacher file actually imported.
type TokenBucketRateLimiter struct {
	rate  float64
	burst float64

	mu      sync.Mutex
	buckets map[string]*bucketState
}

// NewTokenBucketRateLimiter constructs a limiter refilling at rate
// tokens/second up to burst tokens per (caller, method) pair.
func NewTokenBucketRateLimiter(rate, burst float64) *TokenBucketRateLimiter {
	return &TokenBucketRateLimiter{rate: rate, burst: burst, buckets: make(map[string]*bucketState)}
}

func bucketKey(caller ictx.Principal, method string) string {
	return caller.ID + "|" + method
}

func (l *TokenBucketRateLimiter) bucket(k string, now time.Time) *bucketState {
	b, ok := l.buckets[k]
	if !ok {
		b = &bucketState{tokens: l.burst, lastRefill: now}
		l.buckets[k] = b
		return b
	}
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * l.rate
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
		b.lastRefill = now
	}
	return b
}

// Check implements ictx.RateLimiter. It reports whether a token is
// currently available without spending it.
func (l *TokenBucketRateLimiter) Check(_ context.Context, caller ictx.Principal, method string) (ictx.RateLimitDecision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.bucket(bucketKey(caller, method), time.Now())
	if b.tokens >= 1 {
		return ictx.RateLimitDecision{Allowed: true}, nil
	}

	now := time.Now()
	if b.backoff == nil {
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = 250 * time.Millisecond
		bo.MaxInterval = 30 * time.Second
		bo.MaxElapsedTime = 0
		b.backoff = bo
		b.retryAfter = bo.NextBackOff()
		b.nextAdvance = now.Add(b.retryAfter)
	} else if !now.Before(b.nextAdvance) {
		b.retryAfter = b.backoff.NextBackOff()
		b.nextAdvance = now.Add(b.retryAfter)
	}
	return ictx.RateLimitDecision{
		Allowed:    false,
		RetryAfter: b.retryAfter,
		Reason:     "rate limit exceeded",
	}, nil
}

// Record implements ictx.RateLimiter, spending one token for (caller,
// method) and resetting that key's denial backoff. A host calls this
// once it has decided to actually let the request proceed.
func (l *TokenBucketRateLimiter) Record(_ context.Context, caller ictx.Principal, method string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.bucket(bucketKey(caller, method), time.Now())
	if b.tokens >= 1 {
		b.tokens--
	}
	if b.backoff != nil {
		b.backoff.Reset()
		b.retryAfter = 0
		b.nextAdvance = time.Time{}
	}
}
