package notify

import (
	"context"
	"log/slog"

	"github.com/cardboardgarden/garden-api/internal/redact"
)

// LogNotifier writes the rendered link to the log instead of sending mail.
// It is meant for local development.
type LogNotifier struct {
	renderer *Renderer
	logger   *slog.Logger
}

var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(renderer *Renderer, logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{renderer: renderer, logger: logger.With("component", "log_notifier")}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, msg Message) error {
	email, err := n.renderer.Render(msg)
	if err != nil {
		return err
	}
	n.logger.InfoContext(ctx, "email not sent, mail provider is log",
		"kind", msg.Kind,
		"to", redact.Email(email.To),
		"subject", email.Subject,
		"link", email.Link)
	return nil
}
