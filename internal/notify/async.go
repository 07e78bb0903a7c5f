package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardboardgarden/garden-api/internal/redact"
	"github.com/cardboardgarden/garden-api/internal/task"
)

// Submitter accepts background tasks; *task.Runner satisfies it.
type Submitter interface {
	Submit(ctx context.Context, t task.Task) error
}

// AsyncNotifier hands delivery to a background runner. Notify returns once
// the task is queued; delivery errors are logged by the worker that runs it.
type AsyncNotifier struct {
	next      Notifier
	submitter Submitter
	logger    *slog.Logger
}

var _ Notifier = (*AsyncNotifier)(nil)

// NewAsyncNotifier wraps next.
func NewAsyncNotifier(next Notifier, submitter Submitter, logger *slog.Logger) *AsyncNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &AsyncNotifier{next: next, submitter: submitter, logger: logger.With("component", "async_notifier")}
}

// Notify implements Notifier. The returned error only reports a failure to
// queue the delivery.
func (n *AsyncNotifier) Notify(ctx context.Context, msg Message) error {
	t := task.NewFunc("notify_"+string(msg.Kind), func(taskCtx context.Context) error {
		if err := n.next.Notify(taskCtx, msg); err != nil {
			n.logger.Error("email delivery failed",
				"kind", msg.Kind,
				"to", redact.Email(msg.To),
				"error", redact.Error(err))
			return err
		}
		return nil
	})

	if err := n.submitter.Submit(ctx, t); err != nil {
		return fmt.Errorf("queue %s email: %w", msg.Kind, err)
	}
	return nil
}
