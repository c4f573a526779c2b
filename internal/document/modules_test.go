package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const masterFixture = `/* MagicMirror Config */
var config = {
	address: "localhost",
	port: 8080,

	modules: [
		{
			module: "alert",
		},
		{
			module: "clock",
			position: "top_left"
		},
		{
			module: "calendar",
			header: "US Holidays",
			position: "top_left",
			config: {
				calendars: [
					{
						symbol: "calendar-check",
						url: "webcal://calendarlabs.com/us-holidays.ics"
					}
				]
			}
		},
		{
			module: "MMM-pages",
			config: {
				modules: [
					["clock"], // PAGE1 - Main
					["calendar", "weather"], // PAGE2 - Planning
				],
				fixed: ["alert"]
			}
		},
		{
			module: "weather",
			position: "top_right"
		}
	]
};
`

func fixture(t *testing.T) *Document {
	t.Helper()
	return New(masterFixture)
}

func TestListModules(t *testing.T) {
	d := fixture(t)
	got, err := d.ListModules()
	if err != nil {
		t.Fatalf("ListModules: %v", err)
	}
	want := []string{"alert", "clock", "calendar", "MMM-pages", "weather"}
	if len(got) != len(want) {
		t.Fatalf("modules = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("modules[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListModulesNoArray(t *testing.T) {
	d := New("var config = {};")
	if _, err := d.ListModules(); err == nil {
		t.Fatal("expected error for document without modules array")
	}
}

func TestHasModule(t *testing.T) {
	d := fixture(t)
	if !d.HasModule("clock") {
		t.Error("HasModule(clock) = false, want true")
	}
	if d.HasModule("MMM-Weather") {
		t.Error("HasModule(MMM-Weather) = true, want false")
	}
}

var weatherTemplate = []string{
	`{`,
	`	module: "MMM-Weather",`,
	`	position: "top_right",`,
	`	config: {`,
	`		apiKey: "abc123"`,
	`	}`,
	`},`,
}

func TestInsertModuleBlock(t *testing.T) {
	d := fixture(t)
	if err := d.InsertModuleBlock("MMM-Weather", weatherTemplate); err != nil {
		t.Fatalf("InsertModuleBlock: %v", err)
	}

	mods, _ := d.ListModules()
	if mods[len(mods)-1] != "MMM-Weather" {
		t.Errorf("last module = %q, want MMM-Weather", mods[len(mods)-1])
	}

	text := d.String()
	// The previous last entry gained a trailing comma.
	if !strings.Contains(text, "\t\t},\n\t\t// MMM-Weather") {
		t.Errorf("missing comma correction and marker comment:\n%s", text)
	}
	// The inserted block is the last entry and carries no trailing comma.
	if strings.Contains(text, "},\n\t]") == false {
		// last entry's closing line must be }, stripped of comma
		if !strings.Contains(text, "}\n\t]") {
			t.Errorf("inserted block comma handling wrong:\n%s", text)
		}
	}
}

func TestInsertModuleBlockInlineEmptyArray(t *testing.T) {
	d := New("var config = {\n\tmodules: []\n};\n")
	if err := d.InsertModuleBlock("MMM-Weather", weatherTemplate); err != nil {
		t.Fatalf("InsertModuleBlock: %v", err)
	}

	mods, err := d.ListModules()
	if err != nil {
		t.Fatalf("ListModules: %v", err)
	}
	if len(mods) != 1 || mods[0] != "MMM-Weather" {
		t.Fatalf("modules = %v, want [MMM-Weather]", mods)
	}

	text := d.String()
	if !strings.Contains(text, "\tmodules: [\n") {
		t.Errorf("inline array not split open:\n%s", text)
	}
	if !strings.Contains(text, "}\n\t]") {
		t.Errorf("block not inside the array:\n%s", text)
	}
	if n := strings.Count(text, "[") - strings.Count(text, "]"); n != 0 {
		t.Errorf("bracket imbalance %d after insert:\n%s", n, text)
	}
}

func TestInsertModuleBlockInlineArrayWithEntry(t *testing.T) {
	d := New("var config = {\n\tmodules: [{ module: \"alert\" }]\n};\n")
	if err := d.InsertModuleBlock("MMM-Weather", weatherTemplate); err != nil {
		t.Fatalf("InsertModuleBlock: %v", err)
	}

	mods, err := d.ListModules()
	if err != nil {
		t.Fatalf("ListModules: %v", err)
	}
	if len(mods) != 2 || mods[0] != "alert" || mods[1] != "MMM-Weather" {
		t.Fatalf("modules = %v, want [alert MMM-Weather]", mods)
	}
	// The existing entry gained a separating comma.
	if !strings.Contains(d.String(), "{ module: \"alert\" },") {
		t.Errorf("missing comma after existing entry:\n%s", d.String())
	}
}

func TestNewNormalizesCRLF(t *testing.T) {
	crlf := strings.ReplaceAll(masterFixture, "\n", "\r\n")
	d := New(crlf)

	if err := d.InsertModuleBlock("MMM-Weather", weatherTemplate); err != nil {
		t.Fatalf("InsertModuleBlock: %v", err)
	}
	text := d.String()
	if strings.Contains(text, "\r") {
		t.Error("carriage returns survived loading")
	}
	// Comma correction must see the previous entry's brace, not a \r.
	if !strings.Contains(text, "\t\t},\n\t\t// MMM-Weather") {
		t.Errorf("comma correction failed on CRLF input:\n%s", text)
	}
}

func TestInsertModuleBlockIdempotent(t *testing.T) {
	d := fixture(t)
	if err := d.InsertModuleBlock("MMM-Weather", weatherTemplate); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	before := d.String()
	if err := d.InsertModuleBlock("MMM-Weather", weatherTemplate); err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if d.String() != before {
		t.Error("second insertion changed the document")
	}
}

func TestInsertExistingModuleIsNoop(t *testing.T) {
	d := fixture(t)
	before := d.String()
	if err := d.InsertModuleBlock("clock", weatherTemplate); err != nil {
		t.Fatalf("InsertModuleBlock: %v", err)
	}
	if d.String() != before {
		t.Error("inserting an existing module changed the document")
	}
}

func TestInsertKeepsBalancedBrackets(t *testing.T) {
	d := fixture(t)
	if err := d.InsertModuleBlock("MMM-Weather", weatherTemplate); err != nil {
		t.Fatalf("InsertModuleBlock: %v", err)
	}
	text := d.String()
	if n := strings.Count(text, "{") - strings.Count(text, "}"); n != 0 {
		t.Errorf("brace imbalance %d after insert", n)
	}
	if n := strings.Count(text, "[") - strings.Count(text, "]"); n != 0 {
		t.Errorf("bracket imbalance %d after insert", n)
	}
}

func TestRemoveModuleBlock(t *testing.T) {
	d := fixture(t)
	if err := d.RemoveModuleBlock("weather"); err != nil {
		t.Fatalf("RemoveModuleBlock: %v", err)
	}
	if d.HasModule("weather") {
		t.Error("weather still present after removal")
	}
	// The new last entry (MMM-pages) lost its trailing comma.
	mods, _ := d.ListModules()
	if mods[len(mods)-1] != "MMM-pages" {
		t.Errorf("last module = %q, want MMM-pages", mods[len(mods)-1])
	}
	if strings.Contains(d.String(), "},\n\t]") {
		t.Errorf("dangling comma on new last entry:\n%s", d.String())
	}
}

func TestRemoveModuleBlockNotFound(t *testing.T) {
	d := fixture(t)
	if err := d.RemoveModuleBlock("MMM-Nope"); err == nil {
		t.Fatal("expected error for unknown module")
	}
}

func TestExtractModuleBlock(t *testing.T) {
	d := fixture(t)
	block, err := d.ExtractModuleBlock("calendar")
	if err != nil {
		t.Fatalf("ExtractModuleBlock: %v", err)
	}
	joined := strings.Join(block, "\n")
	if !strings.Contains(joined, `module: "calendar"`) {
		t.Errorf("block missing module field:\n%s", joined)
	}
	if !strings.Contains(joined, "calendar-check") {
		t.Errorf("block missing nested config:\n%s", joined)
	}
	if strings.TrimSpace(block[0]) != "{" {
		t.Errorf("block[0] = %q, want opening brace", block[0])
	}
	last := strings.TrimSpace(block[len(block)-1])
	if last != "}," && last != "}" {
		t.Errorf("block last line = %q, want closing brace", last)
	}
}

func TestSaveAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.js")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	d := fixture(t)
	if err := d.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != d.String() {
		t.Error("saved content differs from document")
	}

	// No temp droppings left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}
