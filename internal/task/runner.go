package task

import (
	"context"
	"log/slog"
	"time"
)

// RunnerConfig sizes a Runner.
type RunnerConfig struct {
	WorkerCount int
	QueueSize   int
}

// Runner couples a TaskQueue with a WorkerPool.
type Runner struct {
	queue  *TaskQueue
	pool   *WorkerPool
	logger *slog.Logger
}

// NewRunner creates a runner. Call Start before submitting work.
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "task_runner")
	queue := NewTaskQueue(config.QueueSize, logger)
	return &Runner{
		queue:  queue,
		pool:   NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger),
		logger: logger,
	}
}

// Start launches the workers.
func (r *Runner) Start() {
	r.pool.Start()
}

// Submit queues a task without blocking.
func (r *Runner) Submit(_ context.Context, t Task) error {
	return r.queue.Enqueue(t)
}

// Stop closes the queue and waits for queued tasks to finish. If they are
// still running after timeout, their context is cancelled and Stop waits for
// the workers to return.
func (r *Runner) Stop(timeout time.Duration) {
	r.queue.Close()

	done := make(chan struct{})
	go func() {
		r.pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		r.logger.Warn("task runner stop timed out, cancelling in-flight tasks", "timeout", timeout)
		r.pool.Cancel()
		<-done
	}
	r.pool.Cancel()
	r.logger.Info("task runner stopped")
}
