// Package notify defines the alert channel interface and the redundant
// dispatcher that fans one alert out to every configured channel.
package notify

import "context"

// Channel is one independent outbound alert transport.
type Channel interface {
	// Name identifies the channel in logs and metrics (e.g. "slack").
	Name() string

	// Send delivers the alert message. A nil return means the transport
	// acknowledged delivery.
	Send(ctx context.Context, message string) error
}
