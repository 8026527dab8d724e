// Package main is the entry point for rcb-ticket-monitor.
package main

import (
	"os"

	"github.com/nivinsrinivas/rcb-ticket-monitor/cmd/rcb-ticket-monitor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
