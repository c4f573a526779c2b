package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openmirror/mirrorctl/internal/config"
	"github.com/openmirror/mirrorctl/internal/history"
	"github.com/openmirror/mirrorctl/internal/pm2"
	"github.com/openmirror/mirrorctl/internal/session"
	"github.com/openmirror/mirrorctl/internal/template"
	"github.com/openmirror/mirrorctl/internal/ui"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive config manager",
	Long:  "Walks the main menu: test a module, add or remove modules in the master config, and modify pages. Every change is live-tested before it can be promoted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := os.Stat(cfg.MagicMirrorHome); err != nil {
			return fmt.Errorf("MagicMirror directory not found: %s", cfg.MagicMirrorHome)
		}

		store, err := template.NewStore(cfg.TemplatesPath())
		if err != nil {
			return err
		}

		journal, err := history.Open(cfg.HistoryDBPath())
		if err != nil {
			// The journal is bookkeeping; a broken db should not block edits.
			fmt.Println(ui.Dim.Render("history unavailable: " + err.Error()))
			journal = nil
		} else {
			defer journal.Close()
		}

		s := session.New(cfg, store, pm2.New(config.DefaultProcessName), journal)
		return s.Run()
	},
}
