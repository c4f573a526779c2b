package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openmirror/mirrorctl/internal/document"
	"github.com/openmirror/mirrorctl/internal/ui"
)

func init() {
	modulesCmd.AddCommand(modulesListCmd)
	rootCmd.AddCommand(modulesCmd)
	pagesCmd.AddCommand(pagesListCmd)
	rootCmd.AddCommand(pagesCmd)
}

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "Inspect the master config's modules",
}

var modulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the modules declared in the master config",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		master, err := document.Load(cfg.MasterPath())
		if err != nil {
			return err
		}
		modules, err := master.ListModules()
		if err != nil {
			return err
		}
		for _, m := range modules {
			if m == cfg.PagesModule {
				fmt.Println(ui.White.Render(m) + ui.Dim.Render("  (pages)"))
				continue
			}
			fmt.Println(ui.White.Render(m))
		}
		return nil
	},
}

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Inspect the master config's pages",
}

var pagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the page rows of the pages module",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		master, err := document.Load(cfg.MasterPath())
		if err != nil {
			return err
		}
		pages, err := master.ListPages(cfg.PagesModule)
		if err != nil {
			return err
		}
		if len(pages) == 0 {
			fmt.Println(ui.Dim.Render("No pages."))
			return nil
		}
		for _, p := range pages {
			fmt.Printf("%s %s %s\n",
				ui.Cyan.Render(fmt.Sprintf("PAGE%d", p.Number)),
				ui.White.Render(p.Description),
				ui.Dim.Render("["+strings.Join(p.Modules, ", ")+"]"))
		}
		return nil
	},
}
