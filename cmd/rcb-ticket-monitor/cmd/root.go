// Package cmd implements the CLI commands for rcb-ticket-monitor.
package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nivinsrinivas/rcb-ticket-monitor/internal/browser"
	"github.com/nivinsrinivas/rcb-ticket-monitor/internal/config"
	"github.com/nivinsrinivas/rcb-ticket-monitor/internal/detect"
	"github.com/nivinsrinivas/rcb-ticket-monitor/internal/monitor"
	"github.com/nivinsrinivas/rcb-ticket-monitor/internal/notify"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "rcb-ticket-monitor",
	Short: "Watch the RCB ticket shop and alert when tickets go on sale",
	Long: "rcb-ticket-monitor renders the RCB ticket shop page in headless Chrome,\n" +
		"inspects it for purchase affordances, and fires PagerDuty and Slack alerts\n" +
		"when tickets become available.",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().
		StringVar(&cfgFile, "config", "", "config file path (optional, env vars otherwise)")
	rootCmd.PersistentFlags().
		String("url", "", "override the target page URL")

	cobra.CheckErr(viper.BindPFlag("target_url", rootCmd.PersistentFlags().Lookup("url")))

	rootCmd.AddCommand(versionCommand())
}

func initConfig() {
	viper.SetEnvPrefix("RCBMON")
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if u := viper.GetString("target_url"); u != "" {
		cfg.Target.URL = u
	}
	return cfg, nil
}

func buildDetector(cfg *config.Config, log *slog.Logger) *detect.Detector {
	renderer := browser.NewRenderer(browser.Config{
		UserAgent:    cfg.Target.UserAgent,
		WindowWidth:  cfg.Target.WindowWidth,
		WindowHeight: cfg.Target.WindowHeight,
		SettleWait:   cfg.Target.SettleWait,
		Logger:       log,
	})

	sink := detect.NewDirSink(cfg.Artifacts.Dir, cfg.Artifacts.Screenshot, cfg.Artifacts.PageHTML)

	return detect.New(
		detect.RendererFunc(func(ctx context.Context, url string) (detect.Session, error) {
			s, err := renderer.Render(ctx, url)
			if err != nil {
				return nil, err
			}
			return s, nil
		}),
		detect.WithLogger(log),
		detect.WithArtifactSink(sink),
		detect.WithRules(detect.DefaultRules(cfg.Target.ButtonInspectLimit)),
	)
}

func buildDispatcher(cfg *config.Config, log *slog.Logger) *notify.Dispatcher {
	pagerduty := notify.NewPagerDutyChannel(
		cfg.Notifications.PagerDuty.RoutingKey,
		cfg.Alert.Summary,
		cfg.Alert.Source,
		cfg.Alert.Severity,
		notify.WithPagerDutyEndpoint(cfg.Notifications.PagerDuty.Endpoint),
	)
	slack := notify.NewSlackChannel(cfg.Notifications.Slack.WebhookURL)

	return notify.NewDispatcher(log, pagerduty, slack)
}

func buildMonitor(cfg *config.Config, log *slog.Logger) *monitor.Monitor {
	return monitor.New(
		buildDetector(cfg, log),
		buildDispatcher(cfg, log),
		cfg.Target.URL,
		cfg.Alert.Message,
		monitor.WithLogger(log),
	)
}
