package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openmirror/mirrorctl/internal/config"
	"github.com/openmirror/mirrorctl/internal/ui"
	"github.com/openmirror/mirrorctl/internal/version"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:     "mirrorctl",
	Short:   "mirrorctl — MagicMirror configuration manager",
	Version: version.Version,
	// Bare invocation opens the interactive menu.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.Long = ui.Green.Render("mirrorctl") + " " + ui.Cyan.Render(version.Version) + "\n" +
		ui.Dim.Render("Edits a MagicMirror config.js from per-module templates, live-tests each change by restarting the dashboard under PM2, and promotes validated changes to a master config.")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "tool configuration file")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
