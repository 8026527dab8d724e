package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultPagerDutyEndpoint is the PagerDuty Events API v2 enqueue URL.
const DefaultPagerDutyEndpoint = "https://events.pagerduty.com/v2/enqueue"

// PagerDutyChannel triggers a PagerDuty incident via the Events API v2.
type PagerDutyChannel struct {
	routingKey string
	summary    string
	source     string
	severity   string
	endpoint   string
	client     *http.Client
}

// PagerDutyOption configures a PagerDutyChannel.
type PagerDutyOption func(*PagerDutyChannel)

// WithPagerDutyHTTPClient sets a custom HTTP client.
func WithPagerDutyHTTPClient(c *http.Client) PagerDutyOption {
	return func(p *PagerDutyChannel) { p.client = c }
}

// WithPagerDutyEndpoint overrides the Events API URL. Tests point this
// at a local server.
func WithPagerDutyEndpoint(url string) PagerDutyOption {
	return func(p *PagerDutyChannel) {
		if url != "" {
			p.endpoint = url
		}
	}
}

// NewPagerDutyChannel creates a channel triggering events with the given
// routing key and fixed event fields.
func NewPagerDutyChannel(routingKey, summary, source, severity string, opts ...PagerDutyOption) *PagerDutyChannel {
	p := &PagerDutyChannel{
		routingKey: routingKey,
		summary:    summary,
		source:     source,
		severity:   severity,
		endpoint:   DefaultPagerDutyEndpoint,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// pagerDutyEvent is the Events API v2 trigger payload.
type pagerDutyEvent struct {
	RoutingKey  string           `json:"routing_key"`
	EventAction string           `json:"event_action"`
	Payload     pagerDutyPayload `json:"payload"`
}

type pagerDutyPayload struct {
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	Severity string `json:"severity"`
}

// Name implements Channel.
func (p *PagerDutyChannel) Name() string { return "pagerduty" }

// Send triggers the event. The message argument is unused: PagerDuty
// events carry the fixed summary configured at construction.
func (p *PagerDutyChannel) Send(ctx context.Context, _ string) error {
	body, err := json.Marshal(pagerDutyEvent{
		RoutingKey:  p.routingKey,
		EventAction: "trigger",
		Payload: pagerDutyPayload{
			Summary:  p.summary,
			Source:   p.source,
			Severity: p.severity,
		},
	})
	if err != nil {
		return fmt.Errorf("marshaling pagerduty event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating pagerduty request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending pagerduty event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("pagerduty returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("pagerduty returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
