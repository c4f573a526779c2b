package config

const (
	// Reserved fragment names in the state directory. These are boilerplate
	// pieces of the generated config, never selectable as module templates.
	FragmentHead  = "head"
	FragmentTail  = "tail"
	FragmentClock = "clock"
	FragmentPages = "pages"

	// DefaultPagesModule is the module that provides page switching.
	DefaultPagesModule = "MMM-pages"

	// DefaultProcessName is used when PM2 detection fails.
	DefaultProcessName = "MagicMirror"

	// File names inside the state directory.
	MasterName    = "config.Master"
	MasterBakName = "config.Master.bak"
	ActiveBakName = "config.js.bak"
	HistoryDBName = "history.db"
	TemplatesDir  = "templates"

	// ActiveConfigName is the file MagicMirror actually reads.
	ActiveConfigName = "config.js"
)

// Positions lists the documented MagicMirror screen positions. The tool
// offers these when overriding a template's position field but does not
// reject values outside the list.
var Positions = []string{
	"top_bar",
	"top_left",
	"top_center",
	"top_right",
	"upper_third",
	"middle_center",
	"lower_third",
	"bottom_left",
	"bottom_center",
	"bottom_right",
	"bottom_bar",
	"fullscreen_above",
	"fullscreen_below",
	"fullscreen",
	"none",
}
