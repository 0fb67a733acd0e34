package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterAdmitsUpToThreshold(t *testing.T) {
	rl := NewRateLimiter()
	for i := 0; i < rateLimitThreshold; i++ {
		require.True(t, rl.Admit())
	}
	require.False(t, rl.Admit())
	require.True(t, rl.Blocked())
}

func TestRateLimiterDecaysOnePerSecond(t *testing.T) {
	rl := NewRateLimiter()
	for i := 0; i < rateLimitThreshold; i++ {
		require.True(t, rl.Admit())
	}
	require.True(t, rl.Blocked())

	now := time.Unix(1_700_000_000, 0)
	rl.Tick(now) // establishes the decay baseline
	rl.Tick(now.Add(500 * time.Millisecond))
	require.True(t, rl.Blocked(), "sub-second tick must not decay")

	rl.Tick(now.Add(time.Second))
	require.False(t, rl.Blocked())
	require.True(t, rl.Admit())

	// three more seconds drain three more counts
	rl.Tick(now.Add(4 * time.Second))
	for i := 0; i < 3; i++ {
		require.True(t, rl.Admit())
	}
}
