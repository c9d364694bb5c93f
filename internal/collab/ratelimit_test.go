package collab_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icdevs/inspect-mo-sub000/internal/collab"
	"github.com/icdevs/inspect-mo-sub000/pkg/ictx"
)

func TestTokenBucketRateLimiter_AllowsUpToBurst(t *testing.T) {
	rl := collab.NewTokenBucketRateLimiter(1, 3)
	caller := ictx.Principal{ID: "alice"}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := rl.Check(ctx, caller, "m")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		rl.Record(ctx, caller, "m")
	}

	d, err := rl.Check(ctx, caller, "m")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfter.Nanoseconds(), int64(0))
}

func TestTokenBucketRateLimiter_PerCallerIsolation(t *testing.T) {
	rl := collab.NewTokenBucketRateLimiter(1, 1)
	ctx := context.Background()

	alice := ictx.Principal{ID: "alice"}
	bob := ictx.Principal{ID: "bob"}

	d, _ := rl.Check(ctx, alice, "m")
	assert.True(t, d.Allowed)
	rl.Record(ctx, alice, "m")

	d, _ = rl.Check(ctx, alice, "m")
	assert.False(t, d.Allowed)

	d, _ = rl.Check(ctx, bob, "m")
	assert.True(t, d.Allowed)
}

func TestTokenBucketRateLimiter_CheckDoesNotSpend(t *testing.T) {
	rl := collab.NewTokenBucketRateLimiter(1, 1)
	ctx := context.Background()
	caller := ictx.Principal{ID: "alice"}

	for i := 0; i < 5; i++ {
		d, err := rl.Check(ctx, caller, "m")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
}

func TestTokenBucketRateLimiter_CheckIsIdempotentPeek(t *testing.T) {
	rl := collab.NewTokenBucketRateLimiter(0.001, 1)
	ctx := context.Background()
	caller := ictx.Principal{ID: "alice"}

	rl.Record(ctx, caller, "m")

	first, err := rl.Check(ctx, caller, "m")
	require.NoError(t, err)
	require.False(t, first.Allowed)

	for i := 0; i < 10; i++ {
		again, err := rl.Check(ctx, caller, "m")
		require.NoError(t, err)
		assert.False(t, again.Allowed)
		assert.Equal(t, first.RetryAfter, again.RetryAfter,
			"repeated speculative Check calls must not inflate the backoff")
	}
}
