package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopDuringSleepRunsNothingMore(t *testing.T) {
	s, err := New(time.Second)
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, s.NewIntervalJob("refresh", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	}, time.Hour, true))

	s.Start()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	start := time.Now()
	require.NoError(t, s.Stop())
	assert.Less(t, time.Since(start), time.Second, "stop must not wait for the interval")

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestStopCancelsRunningJob(t *testing.T) {
	s, err := New(2 * time.Second)
	require.NoError(t, err)

	started := make(chan struct{})
	var cancelled atomic.Bool
	require.NoError(t, s.NewIntervalJob("refresh", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}, time.Hour, true))

	s.Start()
	<-started

	require.NoError(t, s.Stop())
	assert.True(t, cancelled.Load())
}

func TestPanicDoesNotStopSchedule(t *testing.T) {
	s, err := New(time.Second)
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, s.NewIntervalJob("refresh", func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			panic("boom")
		}
		return nil
	}, 10*time.Millisecond, true))

	s.Start()
	defer func() { _ = s.Stop() }()

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
}
