package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openmirror/mirrorctl/internal/config"
	"github.com/openmirror/mirrorctl/internal/document"
	"github.com/openmirror/mirrorctl/internal/history"
	"github.com/openmirror/mirrorctl/internal/ui"
)

// menu actions
const (
	actionTest    = "test"
	actionAdd     = "add"
	actionRemove  = "remove"
	actionPages   = "pages"
	actionHistory = "history"
	actionExit    = "exit"
)

// Run drives the interactive main menu until exit or a halting failure.
// A rejection at a validation gate ends the run gracefully.
func (s *Session) Run() error {
	if err := s.EnsureMaster(); err != nil {
		return err
	}

	for {
		choice, err := selectLabeled("MagicMirror Config Manager", []labeled[string]{
			{"Test a module", actionTest},
			{"Add a module to the master config", actionAdd},
			{"Remove a module", actionRemove},
			{"Modify pages", actionPages},
			{"Show history", actionHistory},
			{"Exit", actionExit},
		})
		if err != nil {
			return err
		}

		switch choice {
		case actionTest:
			err = s.TestModule()
		case actionAdd:
			err = s.AddModule()
		case actionRemove:
			err = s.RemoveModule()
		case actionPages:
			err = s.ModifyPages()
		case actionHistory:
			err = s.ShowHistory()
		case actionExit:
			return nil
		}

		if errors.Is(err, ErrRejected) {
			fmt.Println(ui.Yellow.Render("Change rejected; previous config restored."))
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// pickTemplate lets the user choose a module template and resolves its
// module name. An optional position override is applied to a scratch copy;
// the returned cleanup promotes or discards the scratch after the flow.
func (s *Session) pickTemplate() (tplName, moduleName string, cleanup func(keep bool), err error) {
	templates, err := s.Templates.List()
	if err != nil {
		return "", "", nil, err
	}
	if len(templates) == 0 {
		return "", "", nil, fmt.Errorf("no module templates in %s (run: mirrorctl templates sync)", s.Templates.Dir())
	}

	tplName, err = selectString("Select module", templates)
	if err != nil {
		return "", "", nil, err
	}

	moduleName, err = s.Templates.ModuleName(tplName)
	if err != nil {
		return "", "", nil, err
	}

	cleanup = func(bool) {}
	pos, hasPos := s.Templates.Position(tplName)
	if hasPos {
		change, err := confirm(fmt.Sprintf("Position is %q. Change it?", pos), false)
		if err != nil {
			return "", "", nil, err
		}
		if change {
			newPos, err := selectString("New position", config.Positions)
			if err != nil {
				return "", "", nil, err
			}
			scratch, err := s.Templates.ScratchCopy(tplName)
			if err != nil {
				return "", "", nil, err
			}
			if err := s.Templates.OverridePosition(scratch, newPos); err != nil {
				s.Templates.Discard(scratch)
				return "", "", nil, err
			}
			orig := tplName
			tplName = scratch
			cleanup = func(keep bool) {
				if keep {
					if err := s.Templates.Promote(scratch, orig); err != nil {
						fmt.Println(ui.Red.Render("✗") + " " + err.Error())
					}
					return
				}
				s.Templates.Discard(scratch)
			}
		}
	}

	return tplName, moduleName, cleanup, nil
}

// TestModule walks the staged test ladder: the module alone, then with a
// two-page layout, then merged into the full master config.
func (s *Session) TestModule() error {
	tpl, module, cleanup, err := s.pickTemplate()
	if err != nil {
		return err
	}
	keepScratch := false
	defer func() { cleanup(keepScratch) }()

	master, err := s.LoadMaster()
	if err != nil {
		return err
	}
	masterModules, err := master.ListModules()
	if err != nil {
		return err
	}
	hasPages := master.HasModule(s.Cfg.PagesModule)

	if err := s.Backup(); err != nil {
		return err
	}

	fmt.Println(ui.Cyan.Render("=== Testing module alone ==="))
	generated, err := s.Generate(GenerateOptions{Modules: []string{tpl}})
	if err != nil {
		return err
	}
	if err := s.Validate(generated); err != nil {
		s.record(&history.Run{Action: history.ActionTest, Module: module, ConfigPath: generated})
		return err
	}

	if hasPages {
		withPages, err := confirm("Test with 2 pages?", true)
		if err != nil {
			return err
		}
		if withPages {
			fmt.Println(ui.Cyan.Render("=== Testing module with pages ==="))
			generated, err = s.Generate(GenerateOptions{
				Modules:         []string{"clock", tpl},
				UsePages:        true,
				PagesModuleName: module,
			})
			if err != nil {
				return err
			}
			if err := s.Validate(generated); err != nil {
				s.record(&history.Run{Action: history.ActionTest, Module: module, ConfigPath: generated})
				return err
			}
		}
	}

	full, err := confirm("Test with full master?", true)
	if err != nil {
		return err
	}
	if !full {
		fmt.Println(ui.Yellow.Render("Testing cancelled."))
		s.Rollback()
		if err := s.Restarter.Restart(s.Process); err != nil {
			fmt.Println(ui.Red.Render("✗") + " " + err.Error())
		}
		s.record(&history.Run{
			Action: history.ActionTest, Module: module, ConfigPath: generated,
			Approved: true, Detail: "cancelled before full master",
		})
		return nil
	}

	fmt.Println(ui.Cyan.Render("=== Testing with full master config ==="))
	final := append([]string{}, masterModules...)
	if !contains(final, module) {
		fmt.Println(ui.Dim.Render("Adding " + module + " to the module list..."))
		final = append(final, module)
	}
	generated, err = s.Generate(GenerateOptions{Modules: replaceName(final, module, tpl)})
	if err != nil {
		return err
	}
	if err := s.Validate(generated); err != nil {
		s.record(&history.Run{Action: history.ActionTest, Module: module, ConfigPath: generated})
		return err
	}

	promote, err := confirm("Update master?", false)
	if err != nil {
		return err
	}
	if promote {
		if err := s.Promote(generated); err != nil {
			return err
		}
		keepScratch = true
	}
	s.record(&history.Run{
		Action: history.ActionTest, Module: module,
		ConfigPath: generated, Approved: true, Promoted: promote,
	})
	return nil
}

// AddModule inserts the chosen template's block into the master modules
// array (idempotent by name) and assigns the module to a page, then live
// validates before offering promotion.
func (s *Session) AddModule() error {
	tpl, module, cleanup, err := s.pickTemplate()
	if err != nil {
		return err
	}
	keepScratch := false
	defer func() { cleanup(keepScratch) }()

	master, err := s.LoadMaster()
	if err != nil {
		return err
	}

	block, err := s.Templates.Read(tpl)
	if err != nil {
		return err
	}

	if master.HasModule(module) {
		fmt.Println(ui.Dim.Render(module + " already in master config"))
	}
	if err := master.InsertModuleBlock(module, block); err != nil {
		return err
	}

	page, err := s.assignPage(master, module)
	if err != nil {
		return err
	}

	generated, err := s.WriteGenerated(master)
	if err != nil {
		return err
	}
	if err := s.Backup(); err != nil {
		return err
	}
	if err := s.Validate(generated); err != nil {
		s.record(&history.Run{Action: history.ActionAdd, Module: module, Page: page, ConfigPath: generated})
		return err
	}

	promote, err := confirm("Update master?", false)
	if err != nil {
		return err
	}
	if promote {
		if err := s.Promote(generated); err != nil {
			return err
		}
		keepScratch = true
	}
	s.record(&history.Run{
		Action: history.ActionAdd, Module: module, Page: page,
		ConfigPath: generated, Approved: true, Promoted: promote,
	})
	return nil
}

// assignPage offers page placement for a newly added module: an existing
// page row, a brand-new page, or none. Returns the chosen page number.
func (s *Session) assignPage(master *document.Document, module string) (int, error) {
	if !master.HasModule(s.Cfg.PagesModule) {
		return 0, nil
	}

	pages, err := master.ListPages(s.Cfg.PagesModule)
	if err != nil {
		return 0, err
	}

	const (
		newPage = -1
		noPage  = 0
	)
	items := make([]labeled[int], 0, len(pages)+2)
	for _, p := range pages {
		label := fmt.Sprintf("PAGE%d - %s  [%s]", p.Number, p.Description, strings.Join(p.Modules, ", "))
		items = append(items, labeled[int]{label, p.Number})
	}
	items = append(items,
		labeled[int]{"New page", newPage},
		labeled[int]{"No page assignment", noPage},
	)

	choice, err := selectLabeled("Assign "+module+" to a page", items)
	if err != nil {
		return 0, err
	}

	switch choice {
	case noPage:
		return 0, nil
	case newPage:
		desc, err := input("Page description", "Devotional Page")
		if err != nil {
			return 0, err
		}
		p, err := master.AddPage(s.Cfg.PagesModule, module, desc)
		if err != nil {
			return 0, err
		}
		fmt.Println(ui.Green.Render("✓") + fmt.Sprintf(" Created PAGE%d - %s", p.Number, desc))
		return p.Number, nil
	default:
		if err := master.AddModuleToPage(s.Cfg.PagesModule, choice, module); err != nil {
			return 0, err
		}
		return choice, nil
	}
}

// RemoveModule strips a module from one page, every page, or the modules
// array itself, then live validates before offering promotion.
func (s *Session) RemoveModule() error {
	master, err := s.LoadMaster()
	if err != nil {
		return err
	}
	modules, err := master.ListModules()
	if err != nil {
		return err
	}
	if len(modules) == 0 {
		fmt.Println(ui.Dim.Render("No modules found in master config"))
		return nil
	}

	module, err := selectString("Select module to remove", modules)
	if err != nil {
		return err
	}

	page := 0
	detail := ""
	if master.HasModule(s.Cfg.PagesModule) && module != s.Cfg.PagesModule {
		onPages, err := master.PagesContaining(s.Cfg.PagesModule, module)
		if err != nil {
			return err
		}
		if len(onPages) > 0 {
			const (
				allPages = -1
				cancel   = 0
			)
			items := make([]labeled[int], 0, len(onPages)+2)
			for _, p := range onPages {
				label := fmt.Sprintf("PAGE%d - %s  [%s]", p.Number, p.Description, strings.Join(p.Modules, ", "))
				items = append(items, labeled[int]{label, p.Number})
			}
			items = append(items,
				labeled[int]{"All pages", allPages},
				labeled[int]{"Cancel", cancel},
			)

			choice, err := selectLabeled("Remove "+module+" from which page?", items)
			if err != nil {
				return err
			}
			switch choice {
			case cancel:
				return nil
			case allPages:
				if err := master.RemoveModuleFromAllPages(s.Cfg.PagesModule, module); err != nil {
					return err
				}
				detail = "all pages"
			default:
				if err := master.RemoveModuleFromPage(s.Cfg.PagesModule, choice, module); err != nil {
					return err
				}
				page = choice
			}
		}
	}

	dropBlock, err := confirm("Also remove the module block from the modules array?", false)
	if err != nil {
		return err
	}
	if dropBlock {
		if err := master.RemoveModuleFromAllPages(s.Cfg.PagesModule, module); err != nil && !errors.Is(err, document.ErrNoPagesBlock) {
			return err
		}
		if err := master.RemoveModuleBlock(module); err != nil {
			return err
		}
		detail = "block removed"
	}

	generated, err := s.WriteGenerated(master)
	if err != nil {
		return err
	}
	if err := s.Backup(); err != nil {
		return err
	}
	if err := s.Validate(generated); err != nil {
		s.record(&history.Run{Action: history.ActionRemove, Module: module, Page: page, Detail: detail, ConfigPath: generated})
		return err
	}

	promote, err := confirm("Update master?", false)
	if err != nil {
		return err
	}
	if promote {
		if err := s.Promote(generated); err != nil {
			return err
		}
	}
	s.record(&history.Run{
		Action: history.ActionRemove, Module: module, Page: page, Detail: detail,
		ConfigPath: generated, Approved: true, Promoted: promote,
	})
	return nil
}

// ModifyPages prints the page table and offers page-level edits.
func (s *Session) ModifyPages() error {
	master, err := s.LoadMaster()
	if err != nil {
		return err
	}
	if !master.HasModule(s.Cfg.PagesModule) {
		fmt.Println(ui.Dim.Render("Pages not in use."))
		return nil
	}

	pages, err := master.ListPages(s.Cfg.PagesModule)
	if err != nil {
		return err
	}
	fmt.Println(ui.Cyan.Render("Pages:"))
	for _, p := range pages {
		fmt.Printf("  %s %s\n",
			ui.White.Render(fmt.Sprintf("PAGE%d - %s", p.Number, p.Description)),
			ui.Dim.Render("["+strings.Join(p.Modules, ", ")+"]"))
	}

	choice, err := selectLabeled("Page operation", []labeled[string]{
		{"Assign a module to a page", "assign"},
		{"Create a new page", "create"},
		{"Remove a module from a page", "strip"},
		{"Back", "back"},
	})
	if err != nil {
		return err
	}

	switch choice {
	case "back":
		return nil
	case "assign", "create":
		modules, err := master.ListModules()
		if err != nil {
			return err
		}
		module, err := selectString("Module", modules)
		if err != nil {
			return err
		}
		if choice == "create" {
			desc, err := input("Page description", "")
			if err != nil {
				return err
			}
			p, err := master.AddPage(s.Cfg.PagesModule, module, desc)
			if err != nil {
				return err
			}
			fmt.Println(ui.Green.Render("✓") + fmt.Sprintf(" Created PAGE%d - %s", p.Number, desc))
		} else {
			items := make([]labeled[int], 0, len(pages))
			for _, p := range pages {
				items = append(items, labeled[int]{fmt.Sprintf("PAGE%d - %s", p.Number, p.Description), p.Number})
			}
			n, err := selectLabeled("Page", items)
			if err != nil {
				return err
			}
			if err := master.AddModuleToPage(s.Cfg.PagesModule, n, module); err != nil {
				return err
			}
		}
	case "strip":
		items := make([]labeled[int], 0, len(pages))
		for _, p := range pages {
			items = append(items, labeled[int]{fmt.Sprintf("PAGE%d - %s", p.Number, p.Description), p.Number})
		}
		n, err := selectLabeled("Page", items)
		if err != nil {
			return err
		}
		var target *document.Page
		for i := range pages {
			if pages[i].Number == n {
				target = &pages[i]
			}
		}
		if target == nil || len(target.Modules) == 0 {
			fmt.Println(ui.Dim.Render("Page has no modules."))
			return nil
		}
		module, err := selectString("Module to remove", target.Modules)
		if err != nil {
			return err
		}
		if err := master.RemoveModuleFromPage(s.Cfg.PagesModule, n, module); err != nil {
			return err
		}
	}

	generated, err := s.WriteGenerated(master)
	if err != nil {
		return err
	}
	if err := s.Backup(); err != nil {
		return err
	}
	if err := s.Validate(generated); err != nil {
		s.record(&history.Run{Action: history.ActionPages, ConfigPath: generated})
		return err
	}

	promote, err := confirm("Update master?", false)
	if err != nil {
		return err
	}
	if promote {
		if err := s.Promote(generated); err != nil {
			return err
		}
	}
	s.record(&history.Run{Action: history.ActionPages, ConfigPath: generated, Approved: true, Promoted: promote})
	return nil
}

// ShowHistory prints the most recent journal rows.
func (s *Session) ShowHistory() error {
	if s.Journal == nil {
		fmt.Println(ui.Dim.Render("History is unavailable."))
		return nil
	}
	runs, err := s.Journal.List(20)
	if err != nil {
		return err
	}
	PrintRuns(runs)
	return nil
}

// PrintRuns renders journal rows for the terminal.
func PrintRuns(runs []*history.Run) {
	if len(runs) == 0 {
		fmt.Println(ui.Dim.Render("No history yet."))
		return
	}
	for _, r := range runs {
		verdict := ui.Red.Render("rejected")
		if r.Approved {
			verdict = ui.Green.Render("approved")
		}
		if r.Promoted {
			verdict += ui.Cyan.Render(" → master")
		}
		line := fmt.Sprintf("%s  %-7s %-20s %s",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Action, r.Module, verdict)
		if r.Detail != "" {
			line += ui.Dim.Render("  (" + r.Detail + ")")
		}
		fmt.Println(line)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func replaceName(list []string, from, to string) []string {
	if from == to {
		return list
	}
	out := make([]string, len(list))
	for i, v := range list {
		if v == from {
			out[i] = to
		} else {
			out[i] = v
		}
	}
	return out
}
