package mocks

import (
	"context"
	"sync"

	"github.com/cardboardgarden/garden-api/internal/notify"
)

// MockNotifier records every message it is asked to send.
type MockNotifier struct {
	NotifyFn func(ctx context.Context, msg notify.Message) error

	mu       sync.Mutex
	messages []notify.Message
}

var _ notify.Notifier = (*MockNotifier)(nil)

// Notify implements notify.Notifier. The message is recorded even when
// NotifyFn returns an error.
func (m *MockNotifier) Notify(ctx context.Context, msg notify.Message) error {
	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()

	if m.NotifyFn != nil {
		return m.NotifyFn(ctx, msg)
	}
	return nil
}

// Messages returns a copy of the recorded messages.
func (m *MockNotifier) Messages() []notify.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Message(nil), m.messages...)
}

// Last returns the most recent message, or false when none was sent.
func (m *MockNotifier) Last() (notify.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return notify.Message{}, false
	}
	return m.messages[len(m.messages)-1], true
}
