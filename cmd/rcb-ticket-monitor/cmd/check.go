package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nivinsrinivas/rcb-ticket-monitor/pkg/logger"
)

// errAllChannelsFailed maps to exit code 1 so an external scheduler can
// tell "tickets detected but nobody was alerted" apart from "all clear".
var errAllChannelsFailed = errors.New("tickets detected but no alert channel delivered")

var debugOnly bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one availability check and alert if tickets are on sale",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().
		BoolVar(&debugOnly, "debug", false, "run the detector only, skipping alert dispatch")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	if debugOnly {
		sig := buildDetector(cfg, log).Detect(cmd.Context(), cfg.Target.URL)
		log.Info("debug check complete, inspect the artifacts",
			"available", sig.Available,
			"screenshot", cfg.Artifacts.Screenshot,
			"page_html", cfg.Artifacts.PageHTML,
		)
		return nil
	}

	res := buildMonitor(cfg, log).RunOnce(cmd.Context())
	if res.Available && !res.Delivered {
		return errAllChannelsFailed
	}
	return nil
}
