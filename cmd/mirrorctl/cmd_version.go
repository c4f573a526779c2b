package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openmirror/mirrorctl/internal/ui"
	"github.com/openmirror/mirrorctl/internal/version"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mirrorctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(ui.Green.Render("mirrorctl") + " " + ui.Cyan.Render(version.Version))
	},
}
