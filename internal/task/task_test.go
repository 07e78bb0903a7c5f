package task

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cardboardgarden/garden-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue_Enqueue(t *testing.T) {
	t.Parallel()

	_, log := logger.NewBufferLogger()
	q := NewTaskQueue(2, log)

	require.NoError(t, q.Enqueue(NewFunc("a", func(context.Context) error { return nil })))
	require.NoError(t, q.Enqueue(NewFunc("b", func(context.Context) error { return nil })))

	err := q.Enqueue(NewFunc("c", func(context.Context) error { return nil }))
	assert.ErrorIs(t, err, ErrQueueFull)

	q.Close()
	q.Close()
	assert.ErrorIs(t, q.Enqueue(NewFunc("d", func(context.Context) error { return nil })), ErrQueueClosed)

	var types []string
	for task := range q.GetChannel() {
		types = append(types, task.Type())
	}
	assert.Equal(t, []string{"a", "b"}, types)
}

func TestRunner_ExecutesSubmittedTasks(t *testing.T) {
	t.Parallel()

	_, log := logger.NewBufferLogger()
	r := NewRunner(RunnerConfig{WorkerCount: 3, QueueSize: 50}, log)
	r.Start()

	var count atomic.Int32
	for i := 0; i < 20; i++ {
		require.NoError(t, r.Submit(context.Background(), NewFunc("count", func(context.Context) error {
			count.Add(1)
			return nil
		})))
	}

	r.Stop(5 * time.Second)
	assert.Equal(t, int32(20), count.Load())
	assert.ErrorIs(t, r.Submit(context.Background(), NewFunc("late", func(context.Context) error { return nil })), ErrQueueClosed)
}

func TestRunner_FailuresAreLogged(t *testing.T) {
	t.Parallel()

	buf, log := logger.NewBufferLogger()
	r := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 5}, log)
	r.Start()

	boom := errors.New("boom")
	require.NoError(t, r.Submit(context.Background(), NewFunc("fails", func(context.Context) error { return boom })))
	require.NoError(t, r.Submit(context.Background(), NewFunc("panics", func(context.Context) error { panic("bad") })))
	r.Stop(5 * time.Second)

	entries, err := buf.Entries()
	require.NoError(t, err)

	failed := map[string]string{}
	for _, e := range entries {
		if e["msg"] == "task execution failed" && e["level"] == slog.LevelError.String() {
			failed[e["task_type"].(string)] = e["error"].(string)
		}
	}
	require.Len(t, failed, 2)
	assert.Equal(t, "boom", failed["fails"])
	assert.Contains(t, failed["panics"], "task panicked: bad")
}

func TestRunner_StopCancelsSlowTasks(t *testing.T) {
	t.Parallel()

	_, log := logger.NewBufferLogger()
	r := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 1}, log)
	r.Start()

	started := make(chan struct{})
	require.NoError(t, r.Submit(context.Background(), NewFunc("slow", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})))
	<-started

	stopped := make(chan struct{})
	go func() {
		r.Stop(20 * time.Millisecond)
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestTicker_RunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	_, log := logger.NewBufferLogger()
	var runs atomic.Int32
	ticker := NewTicker("count", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}, log)

	ticker.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	ticker.Stop()
	ticker.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestTicker_LogsFailures(t *testing.T) {
	t.Parallel()

	buf, log := logger.NewBufferLogger()
	ran := make(chan struct{}, 1)
	ticker := NewTicker("cleanup", time.Hour, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return errors.New("db down")
	}, log)

	ticker.Start(context.Background())
	<-ran
	ticker.Stop()

	assert.True(t, buf.HasEntry(slog.LevelError, "periodic job failed"))
}

func TestTicker_StopWithoutStart(t *testing.T) {
	t.Parallel()

	ticker := NewTicker("idle", time.Second, func(context.Context) error { return nil }, nil)
	ticker.Stop()
}
