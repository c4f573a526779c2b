package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/openmirror/mirrorctl/internal/config"
	"github.com/openmirror/mirrorctl/internal/pm2"
	"github.com/openmirror/mirrorctl/internal/ui"
)

func init() {
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(logsCmd)
}

// resolveProcess returns the configured PM2 process name, autodetecting
// when the config leaves it empty.
func resolveProcess(cfg *config.Config, client *pm2.Client) string {
	if cfg.PM2Process != "" {
		return cfg.PM2Process
	}
	name, err := client.Detect()
	if err != nil {
		fmt.Println(ui.Dim.Render("Could not query PM2, using " + name))
	}
	return name
}

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the MagicMirror process",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := pm2.New(config.DefaultProcessName)
		name := resolveProcess(cfg, client)
		if err := client.Restart(name); err != nil {
			return err
		}
		fmt.Println(ui.Green.Render("✓") + " Restarted " + ui.White.Render(name))
		return nil
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Tail the MagicMirror process logs",
	Long:  "Attaches `pm2 logs` under a pseudo-terminal so PM2 keeps its colorized output. Stop with Ctrl-C.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := pm2.New(config.DefaultProcessName)
		name := resolveProcess(cfg, client)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		fmt.Println(ui.Dim.Render("Tailing logs for " + name + " (Ctrl-C to stop)"))
		return client.Logs(ctx, name, os.Stdout)
	},
}
