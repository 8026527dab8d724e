package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid minimal config",
			yaml: `
notifications:
  pagerduty:
    routing_key: rk-123
  slack:
    webhook_url: https://hooks.slack.com/services/T/B/x
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "rk-123", cfg.Notifications.PagerDuty.RoutingKey)
				assert.Equal(t, "https://hooks.slack.com/services/T/B/x", cfg.Notifications.Slack.WebhookURL)
			},
		},
		{
			name: "defaults applied for optional fields",
			yaml: `
notifications:
  pagerduty:
    routing_key: rk-123
  slack:
    webhook_url: https://hooks.slack.com/services/T/B/x
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "https://shop.royalchallengers.com/ticket", cfg.Target.URL)
				assert.Equal(t, 30*time.Second, cfg.Target.SettleWait)
				assert.Equal(t, 1920, cfg.Target.WindowWidth)
				assert.Equal(t, 1080, cfg.Target.WindowHeight)
				assert.Equal(t, 5, cfg.Target.ButtonInspectLimit)
				assert.Contains(t, cfg.Target.UserAgent, "Mozilla/5.0")
				assert.Contains(t, cfg.Alert.Message, "TICKETS ARE NOW AVAILABLE")
				assert.Equal(t, "rcb-ticket-monitor", cfg.Alert.Source)
				assert.Equal(t, "error", cfg.Alert.Severity)
				assert.Equal(t, "https://events.pagerduty.com/v2/enqueue", cfg.Notifications.PagerDuty.Endpoint)
				assert.Equal(t, ".", cfg.Artifacts.Dir)
				assert.Equal(t, "latest_screenshot.png", cfg.Artifacts.Screenshot)
				assert.Equal(t, "latest_dynamic_page.html", cfg.Artifacts.PageHTML)
				assert.Equal(t, 5*time.Minute, cfg.Schedule.CheckInterval)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "env var substitution",
			yaml: `
notifications:
  pagerduty:
    routing_key: "${TEST_PD_ROUTING_KEY}"
  slack:
    webhook_url: "${TEST_SLACK_WEBHOOK}"
`,
			envVars: map[string]string{
				"TEST_PD_ROUTING_KEY": "rk-from-env",
				"TEST_SLACK_WEBHOOK":  "https://hooks.slack.com/services/env",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "rk-from-env", cfg.Notifications.PagerDuty.RoutingKey)
				assert.Equal(t, "https://hooks.slack.com/services/env", cfg.Notifications.Slack.WebhookURL)
			},
		},
		{
			name: "overridden target settings",
			yaml: `
target:
  url: https://example.com/tickets
  settle_wait: 5s
  button_inspect_limit: 10
notifications:
  pagerduty:
    routing_key: rk-123
  slack:
    webhook_url: https://hooks.slack.com/services/T/B/x
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "https://example.com/tickets", cfg.Target.URL)
				assert.Equal(t, 5*time.Second, cfg.Target.SettleWait)
				assert.Equal(t, 10, cfg.Target.ButtonInspectLimit)
			},
		},
		{
			name: "missing routing key",
			yaml: `
notifications:
  slack:
    webhook_url: https://hooks.slack.com/services/T/B/x
`,
			envVars: map[string]string{EnvPagerDutyRoutingKey: ""},
			wantErr: "notifications.pagerduty.routing_key is required",
		},
		{
			name: "missing slack webhook",
			yaml: `
notifications:
  pagerduty:
    routing_key: rk-123
`,
			envVars: map[string]string{EnvSlackWebhook: ""},
			wantErr: "notifications.slack.webhook_url is required",
		},
		{
			name: "both secrets missing reports both",
			yaml: `{}`,
			envVars: map[string]string{
				EnvPagerDutyRoutingKey: "",
				EnvSlackWebhook:        "",
			},
			wantErr: "routing_key is required",
		},
		{
			name:    "invalid YAML",
			yaml:    "notifications: [not a map",
			wantErr: "parsing config YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			cfg, err := Load(path)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			tt.checkFunc(t, cfg)
		})
	}
}

func TestLoad_FileMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv(EnvPagerDutyRoutingKey, "rk-env")
	t.Setenv(EnvSlackWebhook, "https://hooks.slack.com/services/env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "rk-env", cfg.Notifications.PagerDuty.RoutingKey)
	assert.Equal(t, "https://hooks.slack.com/services/env", cfg.Notifications.Slack.WebhookURL)
	assert.Equal(t, "https://shop.royalchallengers.com/ticket", cfg.Target.URL)
}

func TestLoad_EnvOnly_MissingSecrets(t *testing.T) {
	t.Setenv(EnvPagerDutyRoutingKey, "")
	t.Setenv(EnvSlackWebhook, "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvPagerDutyRoutingKey)
	assert.Contains(t, err.Error(), EnvSlackWebhook)
}
