package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openmirror/mirrorctl/internal/document"
	"github.com/openmirror/mirrorctl/internal/template"
	"github.com/openmirror/mirrorctl/internal/ui"
)

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesSyncCmd)
	rootCmd.AddCommand(templatesCmd)
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage the module template library",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the selectable module templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := template.NewStore(cfg.TemplatesPath())
		if err != nil {
			return err
		}
		names, err := store.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println(ui.Dim.Render("No templates. Run: mirrorctl templates sync"))
			return nil
		}
		for _, n := range names {
			line := ui.White.Render(n)
			if pos, ok := store.Position(n); ok {
				line += ui.Dim.Render("  (" + pos + ")")
			}
			fmt.Println(line)
		}
		return nil
	},
}

var templatesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Create templates for installed modules that lack one",
	Long:  "For each module checkout without a template, the block is extracted from the master config, then from the module's README.md, then copied from sample/<module>.js.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := template.NewStore(cfg.TemplatesPath())
		if err != nil {
			return err
		}

		master, err := document.Load(cfg.MasterPath())
		if err != nil {
			// First run: seed the master from the live config.
			if _, statErr := os.Stat(cfg.ActiveConfigPath()); statErr != nil {
				return fmt.Errorf("no master config and no active config.js: %w", err)
			}
			master, err = document.Load(cfg.ActiveConfigPath())
			if err != nil {
				return err
			}
			if err := master.Save(cfg.MasterPath()); err != nil {
				return err
			}
			fmt.Println(ui.Dim.Render("Created master config from config.js"))
		}

		installed, err := template.InstalledModules(cfg.ModulesDir())
		if err != nil {
			return err
		}

		created, skipped, err := store.Sync(master, installed, cfg.ModulesDir())
		if err != nil {
			return err
		}
		for _, n := range created {
			fmt.Println(ui.Green.Render("✓") + " " + ui.White.Render(n))
		}
		for _, n := range skipped {
			fmt.Println(ui.Yellow.Render("⚠") + " " + ui.Dim.Render(n+" — no template source found"))
		}
		fmt.Println(ui.Dim.Render(fmt.Sprintf("%d created, %d skipped", len(created), len(skipped))))
		return nil
	},
}
