package document

import (
	"strings"
	"testing"
)

const pagesModule = "MMM-pages"

func TestListPages(t *testing.T) {
	d := fixture(t)
	pages, err := d.ListPages(pagesModule)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("len(pages) = %d, want 2", len(pages))
	}

	if pages[0].Number != 1 || pages[0].Description != "Main" {
		t.Errorf("page 0 = %+v, want PAGE1 Main", pages[0])
	}
	if len(pages[0].Modules) != 1 || pages[0].Modules[0] != "clock" {
		t.Errorf("page 0 modules = %v, want [clock]", pages[0].Modules)
	}

	if pages[1].Number != 2 || pages[1].Description != "Planning" {
		t.Errorf("page 1 = %+v, want PAGE2 Planning", pages[1])
	}
	if len(pages[1].Modules) != 2 || pages[1].Modules[0] != "calendar" || pages[1].Modules[1] != "weather" {
		t.Errorf("page 1 modules = %v, want [calendar weather]", pages[1].Modules)
	}
}

func TestListPagesSurvivesReformatting(t *testing.T) {
	// Extra nesting and blank lines around the page rows must not break
	// discovery: boundaries come from bracket depth, not fixed offsets.
	d := New(`var config = {
	modules: [
		{
			module: "MMM-pages",
			config: {

				modules: [

					[ "clock", "compliments" ],   // PAGE1 - Home

					[ "newsfeed" ] // PAGE2 - News

				],
				animationTime: 1000
			}
		}
	]
};`)
	pages, err := d.ListPages(pagesModule)
	if err != nil {
		t.Fatalf("ListPages: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("len(pages) = %d, want 2", len(pages))
	}
	if len(pages[0].Modules) != 2 || pages[0].Modules[1] != "compliments" {
		t.Errorf("page 0 modules = %v, want [clock compliments]", pages[0].Modules)
	}
}

func TestListPagesNoPagesBlock(t *testing.T) {
	d := New(`var config = {
	modules: [
		{
			module: "clock"
		}
	]
};`)
	if _, err := d.ListPages(pagesModule); err == nil {
		t.Fatal("expected error for document without pages block")
	}
}

func TestNextPageNumber(t *testing.T) {
	d := fixture(t)
	if n := d.NextPageNumber(); n != 3 {
		t.Errorf("NextPageNumber = %d, want 3", n)
	}
}

func TestNextPageNumberNoPages(t *testing.T) {
	d := New("var config = { modules: [] };")
	if n := d.NextPageNumber(); n != 1 {
		t.Errorf("NextPageNumber = %d, want 1", n)
	}
}

func TestAddPage(t *testing.T) {
	d := fixture(t)
	p, err := d.AddPage(pagesModule, "MMM-Scripture", "Devotional Page")
	if err != nil {
		t.Fatalf("AddPage: %v", err)
	}
	if p.Number != 3 {
		t.Errorf("new page number = %d, want 3", p.Number)
	}

	pages, _ := d.ListPages(pagesModule)
	if len(pages) != 3 {
		t.Fatalf("len(pages) = %d, want 3", len(pages))
	}
	last := pages[2]
	if last.Number != 3 || last.Description != "Devotional Page" {
		t.Errorf("last page = %+v, want PAGE3 Devotional Page", last)
	}
	if len(last.Modules) != 1 || last.Modules[0] != "MMM-Scripture" {
		t.Errorf("last page modules = %v, want [MMM-Scripture]", last.Modules)
	}
}

func TestAddPageAfterThree(t *testing.T) {
	d := fixture(t)
	if _, err := d.AddPage(pagesModule, "newsfeed", "News"); err != nil {
		t.Fatal(err)
	}
	p, err := d.AddPage(pagesModule, "MMM-Scripture", "Devotional Page")
	if err != nil {
		t.Fatal(err)
	}
	if p.Number != 4 {
		t.Errorf("page number = %d, want 4", p.Number)
	}
	if !strings.Contains(d.String(), "// PAGE4 - Devotional Page") {
		t.Errorf("PAGE4 tag missing:\n%s", d.String())
	}
}

func TestAddModuleToPage(t *testing.T) {
	d := fixture(t)
	if err := d.AddModuleToPage(pagesModule, 1, "newsfeed"); err != nil {
		t.Fatalf("AddModuleToPage: %v", err)
	}
	pages, _ := d.ListPages(pagesModule)
	if len(pages[0].Modules) != 2 || pages[0].Modules[1] != "newsfeed" {
		t.Errorf("page 1 modules = %v, want [clock newsfeed]", pages[0].Modules)
	}
	// The PAGE tag stays put.
	if pages[0].Description != "Main" {
		t.Errorf("description = %q, want Main", pages[0].Description)
	}
}

func TestAddModuleToPageIdempotent(t *testing.T) {
	d := fixture(t)
	before := d.String()
	if err := d.AddModuleToPage(pagesModule, 2, "weather"); err != nil {
		t.Fatalf("AddModuleToPage: %v", err)
	}
	if d.String() != before {
		t.Error("adding an already-present module changed the document")
	}
}

func TestAddModuleToMissingPage(t *testing.T) {
	d := fixture(t)
	if err := d.AddModuleToPage(pagesModule, 9, "clock"); err == nil {
		t.Fatal("expected error for missing page")
	}
}

func TestRemoveModuleFromPageTrailing(t *testing.T) {
	d := fixture(t)
	if err := d.RemoveModuleFromPage(pagesModule, 2, "weather"); err != nil {
		t.Fatalf("RemoveModuleFromPage: %v", err)
	}
	pages, _ := d.ListPages(pagesModule)
	if len(pages[1].Modules) != 1 || pages[1].Modules[0] != "calendar" {
		t.Errorf("page 2 modules = %v, want [calendar]", pages[1].Modules)
	}
}

func TestRemoveModuleFromPageLeading(t *testing.T) {
	d := fixture(t)
	if err := d.RemoveModuleFromPage(pagesModule, 2, "calendar"); err != nil {
		t.Fatalf("RemoveModuleFromPage: %v", err)
	}
	pages, _ := d.ListPages(pagesModule)
	if len(pages[1].Modules) != 1 || pages[1].Modules[0] != "weather" {
		t.Errorf("page 2 modules = %v, want [weather]", pages[1].Modules)
	}
}

func TestRemoveSoleModuleLeavesEmptyArray(t *testing.T) {
	d := fixture(t)
	if err := d.RemoveModuleFromPage(pagesModule, 1, "clock"); err != nil {
		t.Fatalf("RemoveModuleFromPage: %v", err)
	}
	pages, _ := d.ListPages(pagesModule)
	if len(pages[0].Modules) != 0 {
		t.Errorf("page 1 modules = %v, want empty", pages[0].Modules)
	}
	// The row survives as an empty array with its tag.
	if pages[0].Number != 1 || pages[0].Description != "Main" {
		t.Errorf("page 1 tag lost: %+v", pages[0])
	}
}

func TestAddModuleToEmptiedPageRow(t *testing.T) {
	d := fixture(t)
	if err := d.RemoveModuleFromPage(pagesModule, 1, "clock"); err != nil {
		t.Fatalf("RemoveModuleFromPage: %v", err)
	}
	if err := d.AddModuleToPage(pagesModule, 1, "newsfeed"); err != nil {
		t.Fatalf("AddModuleToPage: %v", err)
	}

	pages, _ := d.ListPages(pagesModule)
	if len(pages[0].Modules) != 1 || pages[0].Modules[0] != "newsfeed" {
		t.Errorf("page 1 modules = %v, want [newsfeed]", pages[0].Modules)
	}
	// No stray comma from the empty row.
	if strings.Contains(d.String(), "[,") {
		t.Errorf("malformed row after refilling emptied page:\n%s", d.String())
	}
}

func TestRemoveModuleFromAllPages(t *testing.T) {
	d := fixture(t)
	if err := d.AddModuleToPage(pagesModule, 1, "weather"); err != nil {
		t.Fatal(err)
	}
	if err := d.RemoveModuleFromAllPages(pagesModule, "weather"); err != nil {
		t.Fatalf("RemoveModuleFromAllPages: %v", err)
	}
	pages, _ := d.ListPages(pagesModule)
	for _, p := range pages {
		for _, m := range p.Modules {
			if m == "weather" {
				t.Errorf("weather still on PAGE%d", p.Number)
			}
		}
	}
}

func TestRemoveFromAllPagesSingleOccurrence(t *testing.T) {
	// Removing from all pages when the module sits on one page matches the
	// targeted removal exactly.
	one := fixture(t)
	all := fixture(t)
	if err := one.RemoveModuleFromPage(pagesModule, 2, "weather"); err != nil {
		t.Fatal(err)
	}
	if err := all.RemoveModuleFromAllPages(pagesModule, "weather"); err != nil {
		t.Fatal(err)
	}
	if one.String() != all.String() {
		t.Error("single-page and all-pages removal diverged")
	}
}

func TestPagesContaining(t *testing.T) {
	d := fixture(t)
	pages, err := d.PagesContaining(pagesModule, "clock")
	if err != nil {
		t.Fatalf("PagesContaining: %v", err)
	}
	if len(pages) != 1 || pages[0].Number != 1 {
		t.Errorf("pages = %+v, want [PAGE1]", pages)
	}
}
