// Package config handles loading and validating the monitor configuration
// from YAML files with environment variable substitution. Secrets come
// from the environment; a missing secret is a fatal configuration error
// raised before any network activity.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables holding the channel secrets when the config file
// does not set them explicitly.
const (
	EnvPagerDutyRoutingKey = "PAGERDUTY_ROUTING_KEY"
	EnvSlackWebhook        = "SLACK_WEBHOOK"
)

// Config is the top-level application configuration.
type Config struct {
	Target        TargetConfig        `yaml:"target"`
	Alert         AlertConfig         `yaml:"alert"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Artifacts     ArtifactsConfig     `yaml:"artifacts"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// TargetConfig defines the page under watch and how it is rendered.
type TargetConfig struct {
	URL                string        `yaml:"url"`
	SettleWait         time.Duration `yaml:"settle_wait"`
	UserAgent          string        `yaml:"user_agent"`
	WindowWidth        int           `yaml:"window_width"`
	WindowHeight       int           `yaml:"window_height"`
	ButtonInspectLimit int           `yaml:"button_inspect_limit"`
}

// AlertConfig defines the alert message and the PagerDuty event fields.
type AlertConfig struct {
	Message  string `yaml:"message"`
	Summary  string `yaml:"summary"`
	Source   string `yaml:"source"`
	Severity string `yaml:"severity"`
}

// NotificationsConfig defines the two alert channels.
type NotificationsConfig struct {
	PagerDuty PagerDutyConfig `yaml:"pagerduty"`
	Slack     SlackConfig     `yaml:"slack"`
}

// PagerDutyConfig defines PagerDuty Events API v2 settings.
type PagerDutyConfig struct {
	RoutingKey string `yaml:"routing_key"`
	Endpoint   string `yaml:"endpoint"`
}

// SlackConfig defines Slack incoming-webhook settings.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// ArtifactsConfig defines where debug artifacts are written. Filenames
// are fixed per run and overwritten on each check.
type ArtifactsConfig struct {
	Dir        string `yaml:"dir"`
	Screenshot string `yaml:"screenshot"`
	PageHTML   string `yaml:"page_html"`
}

// ScheduleConfig defines the watch-mode check interval.
type ScheduleConfig struct {
	CheckInterval time.Duration `yaml:"check_interval"`
}

// ServerConfig defines the watch-mode health/metrics HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load builds the configuration from an optional YAML file plus the
// environment. An empty path skips the file entirely and relies on
// environment variables and defaults. File contents go through
// environment variable substitution before parsing.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyTargetDefaults(&cfg.Target)
	applyAlertDefaults(&cfg.Alert)
	applyNotificationDefaults(&cfg.Notifications)
	applyArtifactDefaults(&cfg.Artifacts)
	applyScheduleDefaults(&cfg.Schedule)
	applyServerDefaults(&cfg.Server)
	applyLoggingDefaults(&cfg.Logging)
}

func applyTargetDefaults(t *TargetConfig) {
	if t.URL == "" {
		t.URL = "https://shop.royalchallengers.com/ticket"
	}
	if t.SettleWait == 0 {
		t.SettleWait = 30 * time.Second
	}
	if t.UserAgent == "" {
		t.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36" +
			" (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}
	if t.WindowWidth == 0 {
		t.WindowWidth = 1920
	}
	if t.WindowHeight == 0 {
		t.WindowHeight = 1080
	}
	if t.ButtonInspectLimit == 0 {
		t.ButtonInspectLimit = 5
	}
}

func applyAlertDefaults(a *AlertConfig) {
	if a.Message == "" {
		a.Message = "🎉 RCB TICKETS ARE NOW AVAILABLE! 🎉 Go to: https://shop.royalchallengers.com/ticket"
	}
	if a.Summary == "" {
		a.Summary = "RCB Tickets now available: shop.royalchallengers.com/ticket"
	}
	if a.Source == "" {
		a.Source = "rcb-ticket-monitor"
	}
	if a.Severity == "" {
		a.Severity = "error"
	}
}

func applyNotificationDefaults(n *NotificationsConfig) {
	if n.PagerDuty.RoutingKey == "" {
		n.PagerDuty.RoutingKey = os.Getenv(EnvPagerDutyRoutingKey)
	}
	if n.PagerDuty.Endpoint == "" {
		n.PagerDuty.Endpoint = "https://events.pagerduty.com/v2/enqueue"
	}
	if n.Slack.WebhookURL == "" {
		n.Slack.WebhookURL = os.Getenv(EnvSlackWebhook)
	}
}

func applyArtifactDefaults(a *ArtifactsConfig) {
	if a.Dir == "" {
		a.Dir = "."
	}
	if a.Screenshot == "" {
		a.Screenshot = "latest_screenshot.png"
	}
	if a.PageHTML == "" {
		a.PageHTML = "latest_dynamic_page.html"
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.CheckInterval == 0 {
		s.CheckInterval = 5 * time.Minute
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Target.URL == "" {
		errs = append(errs, fmt.Errorf("target.url is required"))
	}
	if cfg.Notifications.PagerDuty.RoutingKey == "" {
		errs = append(errs, fmt.Errorf(
			"notifications.pagerduty.routing_key is required (set %s)",
			EnvPagerDutyRoutingKey,
		))
	}
	if cfg.Notifications.Slack.WebhookURL == "" {
		errs = append(errs, fmt.Errorf(
			"notifications.slack.webhook_url is required (set %s)",
			EnvSlackWebhook,
		))
	}

	return errors.Join(errs...)
}
