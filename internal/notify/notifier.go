package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cardboardgarden/garden-api/internal/config"
)

// Kind identifies which email a Message produces.
type Kind string

const (
	KindVerification  Kind = "verification"
	KindPasswordReset Kind = "password_reset"
)

// ErrUnknownKind is returned when a Message carries a Kind with no template.
var ErrUnknownKind = errors.New("unknown notification kind")

// Message is a request to email a token to an account holder.
type Message struct {
	Kind  Kind
	To    string
	Name  string
	Token string

	// ExpiresIn is how long the token stays valid; zero omits the notice.
	ExpiresIn time.Duration
}

// Notifier sends account emails.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// New builds the notifier selected by cfg.Provider.
func New(cfg config.MailConfig, logger *slog.Logger) (Notifier, error) {
	renderer, err := NewRenderer(cfg.LinkBaseURL)
	if err != nil {
		return nil, err
	}

	switch cfg.Provider {
	case "resend":
		n, err := NewResendNotifier(cfg, renderer, nil)
		if err != nil {
			return nil, err
		}
		return n, nil
	case "log":
		return NewLogNotifier(renderer, logger), nil
	default:
		return nil, fmt.Errorf("unsupported mail provider %q", cfg.Provider)
	}
}
