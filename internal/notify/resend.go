package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cardboardgarden/garden-api/internal/config"
)

// ErrDeliveryRejected is returned when the mail API answers with a non-2xx status.
var ErrDeliveryRejected = errors.New("mail provider rejected message")

const resendTimeout = 5 * time.Second

// ResendNotifier delivers email through the Resend HTTP API.
type ResendNotifier struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
	renderer *Renderer
}

var _ Notifier = (*ResendNotifier)(nil)

// NewResendNotifier creates a notifier for cfg. A nil client gets a default
// one with a short timeout.
func NewResendNotifier(cfg config.MailConfig, renderer *Renderer, client *http.Client) (*ResendNotifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("resend api key is required")
	}
	if renderer == nil {
		return nil, errors.New("renderer is required")
	}
	if client == nil {
		client = &http.Client{Timeout: resendTimeout}
	}

	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	}

	return &ResendNotifier{
		apiKey:   cfg.APIKey,
		from:     from,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		client:   client,
		renderer: renderer,
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Notify implements Notifier.
func (n *ResendNotifier) Notify(ctx context.Context, msg Message) error {
	email, err := n.renderer.Render(msg)
	if err != nil {
		return err
	}

	body, err := json.Marshal(sendRequest{
		From:    n.from,
		To:      []string{email.To},
		Subject: email.Subject,
		HTML:    email.HTML,
	})
	if err != nil {
		return fmt.Errorf("encode %s email: %w", msg.Kind, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s email request: %w", msg.Kind, err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s email: %w", msg.Kind, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", ErrDeliveryRejected, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
