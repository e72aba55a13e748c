package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule_RunsAfterDelay(t *testing.T) {
	s := New(zerolog.Nop())
	defer s.Stop(context.Background())

	done := make(chan struct{})
	ok := s.Schedule("poll:b-1", 10*time.Millisecond, func(ctx context.Context) { close(done) })
	require.True(t, ok)
	assert.True(t, s.Pending("poll:b-1"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}
}

func TestSchedule_RejectsDuplicateKey(t *testing.T) {
	s := New(zerolog.Nop())
	defer s.Stop(context.Background())

	var runs atomic.Int32
	task := func(ctx context.Context) { runs.Add(1) }

	assert.True(t, s.Schedule("poll:b-1", 20*time.Millisecond, task))
	assert.False(t, s.Schedule("poll:b-1", 0, task), "a pending key cannot be scheduled twice")
	assert.True(t, s.Schedule("poll:b-2", 0, task), "other keys are independent")

	assert.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load())
}

func TestSchedule_TaskCanScheduleSuccessor(t *testing.T) {
	s := New(zerolog.Nop())
	defer s.Stop(context.Background())

	var attempts atomic.Int32
	done := make(chan struct{})

	var poll func(ctx context.Context)
	poll = func(ctx context.Context) {
		if attempts.Add(1) == 3 {
			close(done)
			return
		}
		assert.True(t, s.Schedule("poll:b-1", time.Millisecond, poll))
	}
	require.True(t, s.Schedule("poll:b-1", time.Millisecond, poll))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("successor chain did not finish")
	}
	assert.Equal(t, int32(3), attempts.Load())
}

func TestSchedule_RecoversPanics(t *testing.T) {
	s := New(zerolog.Nop())
	defer s.Stop(context.Background())

	require.True(t, s.Schedule("build:p-1", 0, func(ctx context.Context) { panic("boom") }))

	done := make(chan struct{})
	require.True(t, s.Schedule("build:p-2", 20*time.Millisecond, func(ctx context.Context) { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler stopped running tasks after a panic")
	}
}

func TestStop_CancelsPendingAndRejectsNew(t *testing.T) {
	s := New(zerolog.Nop())

	var ran atomic.Bool
	require.True(t, s.Schedule("poll:b-1", time.Hour, func(ctx context.Context) { ran.Store(true) }))

	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, ran.Load())
	assert.False(t, s.Pending("poll:b-1"))
	assert.False(t, s.Schedule("poll:b-2", 0, func(ctx context.Context) {}))
}

func TestStop_WaitsForRunningTask(t *testing.T) {
	s := New(zerolog.Nop())

	started := make(chan struct{})
	var sawCancel atomic.Bool
	require.True(t, s.Schedule("poll:b-1", 0, func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		sawCancel.Store(true)
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.True(t, sawCancel.Load())
}
