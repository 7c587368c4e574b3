package resource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	require.NoError(t, c.AcquireMemory(50))
	require.NoError(t, c.AcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Limit exceeded
	err := c.AcquireMemory(20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMemory(1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Appends(t *testing.T) {
	c := NewController(Config{MaxConcurrentAppends: 2})

	require.NoError(t, c.AcquireAppend(t.Context()))
	require.NoError(t, c.AcquireAppend(t.Context()))
	assert.Equal(t, int64(2), c.AppendsInFlight())
	assert.False(t, c.TryAcquireAppend())

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireAppend(ctx), context.DeadlineExceeded)

	c.ReleaseAppend()
	assert.True(t, c.TryAcquireAppend())
	assert.Equal(t, int64(2), c.AppendsInFlight())
}

func TestController_Write(t *testing.T) {
	c := NewController(Config{WriteLimitBytesPerSec: 1000})

	require.NoError(t, c.AcquireWrite(t.Context(), 100))

	// More than the burst must not fail outright; it is sliced.
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.Error(t, c.AcquireWrite(ctx, 5000))

	unlimited := NewController(Config{})
	assert.NoError(t, unlimited.AcquireWrite(t.Context(), 1<<30))
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	assert.NoError(t, c.AcquireMemory(10))
	c.ReleaseMemory(10)
	assert.NoError(t, c.AcquireAppend(t.Context()))
	assert.True(t, c.TryAcquireAppend())
	c.ReleaseAppend()
	assert.NoError(t, c.AcquireWrite(t.Context(), 10))
	assert.Zero(t, c.MemoryUsage())
}
