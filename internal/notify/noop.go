package notify

import (
	"context"
	"log/slog"
	"sync"
)

// NoOpChannel logs and records messages without delivering them
// anywhere. It is used in tests and when wiring a dispatcher without
// live credentials.
type NoOpChannel struct {
	log *slog.Logger

	mu       sync.Mutex
	messages []string
}

// NewNoOpChannel creates a channel that discards alerts with a log message.
func NewNoOpChannel(log *slog.Logger) *NoOpChannel {
	return &NoOpChannel{log: log}
}

// Name implements Channel.
func (n *NoOpChannel) Name() string { return "noop" }

// Send implements Channel. It always succeeds.
func (n *NoOpChannel) Send(_ context.Context, message string) error {
	n.log.Debug("alert discarded (no backend configured)", "message", message)
	n.mu.Lock()
	n.messages = append(n.messages, message)
	n.mu.Unlock()
	return nil
}

// Messages returns the messages recorded so far.
func (n *NoOpChannel) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// compile-time interface checks.
var (
	_ Channel = (*NoOpChannel)(nil)
	_ Channel = (*PagerDutyChannel)(nil)
	_ Channel = (*SlackChannel)(nil)
)
