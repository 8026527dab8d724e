package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// SlackChannel posts the alert message to a Slack incoming webhook.
type SlackChannel struct {
	webhookURL string
	client     *http.Client
}

// SlackOption configures a SlackChannel.
type SlackOption func(*SlackChannel)

// WithSlackHTTPClient sets a custom HTTP client.
func WithSlackHTTPClient(c *http.Client) SlackOption {
	return func(s *SlackChannel) { s.client = c }
}

// NewSlackChannel creates a channel posting to the given webhook URL.
func NewSlackChannel(webhookURL string, opts ...SlackOption) *SlackChannel {
	s := &SlackChannel{
		webhookURL: webhookURL,
		client:     http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type slackPayload struct {
	Text string `json:"text"`
}

// Name implements Channel.
func (s *SlackChannel) Name() string { return "slack" }

// Send posts the message. Slack acknowledges a delivered webhook with
// status 200 and the literal body "ok"; anything else is a failure.
func (s *SlackChannel) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(slackPayload{Text: message})
	if err != nil {
		return fmt.Errorf("marshaling slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending slack webhook: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading slack response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || string(respBody) != "ok" {
		return fmt.Errorf("slack returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
