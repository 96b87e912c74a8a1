package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange(t *testing.T) {
	out := make([]int, 1000)

	err := Range(context.Background(), len(out), 4, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			out[i] = i * 2
		}
		return nil
	})
	require.NoError(t, err)

	for i, v := range out {
		assert.Equal(t, i*2, v)
	}
}

func TestRange_Error(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32

	err := Range(context.Background(), 10_000, 2, func(lo, hi int) error {
		calls.Add(1)
		if lo == 0 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Positive(t, calls.Load())
}

func TestRange_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Range(ctx, 100, 2, func(lo, hi int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)

	err = Range(ctx, 0, 2, func(lo, hi int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkers(t *testing.T) {
	assert.Equal(t, 3, Workers(3))
	assert.Positive(t, Workers(0))
}
