package main

import (
	"github.com/spf13/cobra"

	"github.com/openmirror/mirrorctl/internal/history"
	"github.com/openmirror/mirrorctl/internal/session"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of rows to show")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent test runs and promotions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		journal, err := history.Open(cfg.HistoryDBPath())
		if err != nil {
			return err
		}
		defer journal.Close()

		runs, err := journal.List(historyLimit)
		if err != nil {
			return err
		}
		session.PrintRuns(runs)
		return nil
	},
}
