// Package monitor orchestrates the check-then-notify pipeline: one
// availability check, then alert dispatch if tickets were detected.
package monitor

import (
	"context"
	"log/slog"

	"github.com/nivinsrinivas/rcb-ticket-monitor/internal/detect"
)

// Detector produces an availability signal for a URL.
type Detector interface {
	Detect(ctx context.Context, url string) detect.Signal
}

// Dispatcher delivers an alert over the configured channels and reports
// whether at least one confirmed delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, message string) bool
}

// Result is the outcome of one monitoring run.
type Result struct {
	// Available reports whether tickets were detected.
	Available bool
	// Delivered reports whether at least one alert channel confirmed
	// delivery. Always false when Available is false.
	Delivered bool
}

// Monitor runs the pipeline against a fixed target.
type Monitor struct {
	detector   Detector
	dispatcher Dispatcher
	targetURL  string
	message    string
	log        *slog.Logger
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.log = l }
}

// New creates a Monitor checking targetURL and alerting with message.
func New(d Detector, n Dispatcher, targetURL, message string, opts ...Option) *Monitor {
	m := &Monitor{
		detector:   d,
		dispatcher: n,
		targetURL:  targetURL,
		message:    message,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunOnce performs one availability check and, when tickets are
// available, dispatches the alert over every channel. The dispatcher is
// never invoked on a negative check.
func (m *Monitor) RunOnce(ctx context.Context) Result {
	sig := m.detector.Detect(ctx, m.targetURL)
	if !sig.Available {
		m.log.Info("run complete, tickets not available")
		return Result{}
	}

	m.log.Info("tickets detected, dispatching alerts",
		"rule", sig.Rule,
		"buy_matches", sig.BuyMatches,
	)

	delivered := m.dispatcher.Dispatch(ctx, m.message)
	if delivered {
		m.log.Info("at least one alert delivered")
	} else {
		m.log.Error("all alert channels failed")
	}

	return Result{Available: true, Delivered: delivered}
}
