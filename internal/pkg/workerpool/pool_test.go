package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRun(t *testing.T) {
	p, err := New(&Config{Workers: 3}, zap.NewNop())
	require.NoError(t, err)
	defer p.Shutdown()

	results := make([]int, 10)
	err = p.Run(context.Background(), len(results), func(_ context.Context, i int) error {
		results[i] = i * i
		return nil
	})
	require.NoError(t, err)

	for i, v := range results {
		assert.Equal(t, i*i, v)
	}
	assert.Equal(t, int64(10), p.Stats().Submitted)
	assert.Eventually(t, func() bool {
		return p.Stats().Completed == 10
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(0), p.Stats().Failed)
}

func TestRunReturnsFirstError(t *testing.T) {
	p, err := New(&Config{Workers: 1}, zap.NewNop())
	require.NoError(t, err)
	defer p.Shutdown()

	boom := errors.New("boom")
	var calls atomic.Int32
	err = p.Run(context.Background(), 5, func(_ context.Context, i int) error {
		calls.Add(1)
		if i == 0 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestRunCanceledContext(t *testing.T) {
	p, err := New(nil, nil)
	require.NoError(t, err)
	defer p.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	err = p.Run(ctx, 3, func(context.Context, int) error {
		calls.Add(1)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), calls.Load())
}

func TestSubmitAfterShutdown(t *testing.T) {
	p, err := New(&Config{Workers: 2}, zap.NewNop())
	require.NoError(t, err)
	p.Shutdown()

	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolClosed)
}

func TestNewInvalidConfig(t *testing.T) {
	_, err := New(&Config{Workers: 0}, zap.NewNop())
	assert.Error(t, err)
}
