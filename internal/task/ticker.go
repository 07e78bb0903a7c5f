package task

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Ticker runs a job immediately and then on every interval until stopped.
// Runs never overlap.
type Ticker struct {
	name     string
	interval time.Duration
	job      func(ctx context.Context) error
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewTicker creates a periodic job. interval must be positive.
func NewTicker(name string, interval time.Duration, job func(ctx context.Context) error, logger *slog.Logger) *Ticker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ticker{
		name:     name,
		interval: interval,
		job:      job,
		logger:   logger.With("component", "ticker", "job", name),
		done:     make(chan struct{}),
	}
}

// Start launches the loop. The job's context is derived from ctx.
func (t *Ticker) Start(ctx context.Context) {
	ctx, t.cancel = context.WithCancel(ctx)
	go t.loop(ctx)
}

// Stop cancels the loop and waits for a running job to return.
func (t *Ticker) Stop() {
	t.once.Do(func() {
		if t.cancel == nil {
			close(t.done)
			return
		}
		t.cancel()
		<-t.done
	})
}

func (t *Ticker) loop(ctx context.Context) {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.runOnce(ctx)
		}
	}
}

func (t *Ticker) runOnce(ctx context.Context) {
	start := time.Now()
	if err := t.job(ctx); err != nil {
		t.logger.Error("periodic job failed", "error", err)
		return
	}
	t.logger.Debug("periodic job finished", "duration_ms", time.Since(start).Milliseconds())
}
