package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdempotencyGuard(t *testing.T) {
	ig := NewIdempotencyGuard()
	ctx := context.Background()

	t.Run("empty key always allowed", func(t *testing.T) {
		assert.True(t, ig.Check(ctx, "").Allowed)
		assert.True(t, ig.Check(ctx, "").Allowed)
	})

	t.Run("first use allowed, second blocked", func(t *testing.T) {
		assert.True(t, ig.Check(ctx, "award-1").Allowed)
		result := ig.Check(ctx, "award-1")
		assert.False(t, result.Allowed)
		assert.Equal(t, "idempotency", result.Guard)
	})

	t.Run("remove allows retry", func(t *testing.T) {
		assert.True(t, ig.Check(ctx, "award-2").Allowed)
		ig.Remove("award-2")
		assert.True(t, ig.Check(ctx, "award-2").Allowed)
	})
}

func TestRateLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("within limit", func(t *testing.T) {
		rl := NewRateLimiter(3, time.Minute)
		for i := 0; i < 3; i++ {
			assert.True(t, rl.Check(ctx, "user-1").Allowed)
		}
	})

	t.Run("over limit blocked", func(t *testing.T) {
		rl := NewRateLimiter(2, time.Minute)
		rl.Check(ctx, "user-1")
		rl.Check(ctx, "user-1")
		result := rl.Check(ctx, "user-1")
		assert.False(t, result.Allowed)
		assert.Equal(t, "rate_limiter", result.Guard)
	})

	t.Run("keys independent", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Minute)
		assert.True(t, rl.Check(ctx, "user-1").Allowed)
		assert.True(t, rl.Check(ctx, "user-2").Allowed)
	})

	t.Run("window slides", func(t *testing.T) {
		rl := NewRateLimiter(1, 10*time.Millisecond)
		assert.True(t, rl.Check(ctx, "user-1").Allowed)
		assert.False(t, rl.Check(ctx, "user-1").Allowed)
		time.Sleep(15 * time.Millisecond)
		assert.True(t, rl.Check(ctx, "user-1").Allowed)
	})
}
