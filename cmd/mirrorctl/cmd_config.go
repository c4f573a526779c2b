package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openmirror/mirrorctl/internal/config"
	"github.com/openmirror/mirrorctl/internal/ui"
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and manage the mirrorctl configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		proc := cfg.PM2Process
		if proc == "" {
			proc = "(autodetect)"
		}

		fmt.Println(ui.Cyan.Render("MagicMirror:  ") + ui.White.Render(cfg.MagicMirrorHome))
		fmt.Println(ui.Cyan.Render("Active config:") + " " + ui.White.Render(cfg.ActiveConfigPath()))
		fmt.Println(ui.Cyan.Render("State dir:    ") + ui.White.Render(cfg.StateDir))
		fmt.Println(ui.Dim.Render("  Master:     ") + ui.White.Render(cfg.MasterPath()))
		fmt.Println(ui.Dim.Render("  Templates:  ") + ui.White.Render(cfg.TemplatesPath()))
		fmt.Println(ui.Dim.Render("  History:    ") + ui.White.Render(cfg.HistoryDBPath()))
		fmt.Println(ui.Cyan.Render("PM2 process:  ") + ui.White.Render(proc))
		fmt.Println(ui.Cyan.Render("Pages module: ") + ui.White.Render(cfg.PagesModule))
		fmt.Println()
		fmt.Println(ui.Dim.Render("Config file: " + cfgPath))

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid defaults: %w", err)
		}
		if err := cfg.Save(cfgPath); err != nil {
			return err
		}
		fmt.Println(ui.Green.Render("✓") + " Wrote " + ui.White.Render(cfgPath))
		return nil
	},
}
