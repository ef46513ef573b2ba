package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllow(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := New(1, 2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("u1"))
	assert.True(t, rl.Allow("u1"))
	assert.False(t, rl.Allow("u1"), "burst exhausted")
	assert.True(t, rl.Allow("u2"), "buckets are per identity")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("u1"), "one token refilled")
	assert.False(t, rl.Allow("u1"))
}

func TestExpiration(t *testing.T) {
	rl := New(1, 1, 40*time.Millisecond)

	rl.Allow("idle")
	rl.Allow("busy")
	require.Equal(t, 2, rl.Len())

	// keep touching "busy" so its timer keeps getting pushed back
	deadline := time.Now().Add(120 * time.Millisecond)
	for time.Now().Before(deadline) {
		rl.Allow("busy")
		time.Sleep(5 * time.Millisecond)
	}

	rl.mu.Lock()
	_, idleKept := rl.limiters["idle"]
	_, busyKept := rl.limiters["busy"]
	rl.mu.Unlock()
	assert.False(t, idleKept, "idle bucket expired")
	assert.True(t, busyKept, "active bucket kept")

	assert.Eventually(t, func() bool { return rl.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestStop(t *testing.T) {
	rl := New(1, 1, time.Hour)
	rl.Allow("u1")
	rl.Allow("u2")

	rl.Stop()
	assert.Equal(t, 0, rl.Len())
	assert.True(t, rl.Allow("u1"), "limiter stays usable after Stop")
}
