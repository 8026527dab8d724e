package notify

import (
	"context"
	"log/slog"

	"github.com/nivinsrinivas/rcb-ticket-monitor/internal/metrics"
)

// Dispatcher fans one alert out to every configured channel. Channels
// are independent: a failing channel never blocks the others, and the
// dispatch succeeds when at least one channel confirms delivery.
type Dispatcher struct {
	channels []Channel
	log      *slog.Logger
}

// NewDispatcher creates a Dispatcher over the given channels.
func NewDispatcher(log *slog.Logger, channels ...Channel) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{channels: channels, log: log}
}

// Dispatch attempts delivery on every channel, in order, without
// short-circuiting, and reports whether at least one succeeded. Channel
// errors are logged, never propagated; there are no retries.
func (d *Dispatcher) Dispatch(ctx context.Context, message string) bool {
	delivered := false

	for _, ch := range d.channels {
		if err := ch.Send(ctx, message); err != nil {
			d.log.Error("alert delivery failed", "channel", ch.Name(), "error", err)
			metrics.NotificationFailuresTotal.WithLabelValues(ch.Name()).Inc()
			continue
		}
		d.log.Info("alert delivered", "channel", ch.Name())
		metrics.NotificationsSentTotal.WithLabelValues(ch.Name()).Inc()
		delivered = true
	}

	return delivered
}
