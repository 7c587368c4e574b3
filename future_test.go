package segstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_Wait(t *testing.T) {
	release := make(chan struct{})
	f := goFuture(func() (int, error) {
		<-release
		return 42, nil
	})

	_, ok, _ := f.Result()
	assert.False(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	<-f.Done()
	v, ok, err = f.Result()
	assert.True(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFuture_Failed(t *testing.T) {
	boom := errors.New("boom")
	_, err := failedFuture[int](boom).Wait(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestFuture_Panic(t *testing.T) {
	f := goFuture(func() (int, error) {
		panic("bad")
	})
	_, err := f.Wait(context.Background())
	assert.ErrorContains(t, err, "panicked")
}
