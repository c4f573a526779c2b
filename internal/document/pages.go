package document

import (
	"fmt"
	"regexp"
	"strings"
)

// Page is one row of the pages module's nested module-list array.
type Page struct {
	Number      int
	Description string
	Modules     []string
	// Line is the row's index in the document.
	Line int
}

var (
	pageTagRe   = regexp.MustCompile(`//\s*PAGE(\d+)\s*-?\s*(.*)`)
	quotedStrRe = regexp.MustCompile(`["']([^"']+)["']`)
)

// pagesArray locates the nested modules: [...] array inside the pages
// module's block (the block whose module: field equals pagesModule) and
// returns its opening and closing line indices.
func (d *Document) pagesArray(pagesModule string) (open, close int, err error) {
	start, end, err := d.blockSpan(pagesModule)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s", ErrNoPagesBlock, pagesModule)
	}

	open = -1
	for i := start; i <= end; i++ {
		if modulesOpenRe.MatchString(d.lines[i]) {
			open = i
			break
		}
	}
	if open < 0 {
		return 0, 0, fmt.Errorf("%w: %s has no modules array", ErrNoPagesBlock, pagesModule)
	}

	depth := 0
	for i := open; i <= end; i++ {
		depth += bracketDepth(d.lines[i])
		if depth <= 0 && i > open {
			return open, i, nil
		}
		if depth == 0 && i == open {
			return open, i, nil
		}
	}
	return 0, 0, fmt.Errorf("pages array starting at line %d: unbalanced brackets", open+1)
}

// ListPages returns the page rows in document order. A row is any line
// inside the pages array tagged with a // PAGE<N> comment.
func (d *Document) ListPages(pagesModule string) ([]Page, error) {
	open, close, err := d.pagesArray(pagesModule)
	if err != nil {
		return nil, err
	}

	var pages []Page
	for i := open + 1; i < close; i++ {
		line := d.lines[i]
		m := pageTagRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		num := atoiSafe(m[1])
		var mods []string
		for _, q := range quotedStrRe.FindAllStringSubmatch(stripComment(line), -1) {
			mods = append(mods, q[1])
		}
		pages = append(pages, Page{
			Number:      num,
			Description: strings.TrimSpace(m[2]),
			Modules:     mods,
			Line:        i,
		})
	}
	return pages, nil
}

// NextPageNumber computes 1 + max(PAGE<N>) over the whole document, or 1
// when no page tags exist anywhere.
func (d *Document) NextPageNumber() int {
	max := 0
	for _, line := range d.lines {
		for _, m := range pageTagRe.FindAllStringSubmatch(line, -1) {
			if n := atoiSafe(m[1]); n > max {
				max = n
			}
		}
	}
	return max + 1
}

// AddPage appends a new single-module page row tagged
// // PAGE<N> - <description>, comma-correcting the previous row.
func (d *Document) AddPage(pagesModule, module, description string) (Page, error) {
	open, close, err := d.pagesArray(pagesModule)
	if err != nil {
		return Page{}, err
	}
	if open == close {
		open, close = d.splitInlineArray(open)
	}

	num := d.NextPageNumber()

	indent := d.entryIndent(open, close)
	if prev := d.lastEntryLine(open, close); prev >= 0 {
		code := strings.TrimRight(stripComment(d.lines[prev]), " \t")
		if !strings.HasSuffix(code, ",") {
			d.lines[prev] = insertBeforeComment(d.lines[prev], ",")
		}
	}

	row := fmt.Sprintf(`%s["%s"] // PAGE%d - %s`, indent, module, num, description)
	d.lines = spliceLines(d.lines, close, 0, []string{row})

	return Page{Number: num, Description: description, Modules: []string{module}, Line: close}, nil
}

// findPageRow returns the line index of the row tagged PAGE<n>.
func (d *Document) findPageRow(pagesModule string, n int) (int, error) {
	pages, err := d.ListPages(pagesModule)
	if err != nil {
		return 0, err
	}
	for _, p := range pages {
		if p.Number == n {
			return p.Line, nil
		}
	}
	return 0, fmt.Errorf("%w: PAGE%d", ErrPageNotFound, n)
}

// AddModuleToPage splices a module name into an existing page row by
// replacing the row's first closing bracket with `, "<module>"]`. Adding a
// module already present on the page is a no-op.
func (d *Document) AddModuleToPage(pagesModule string, n int, module string) error {
	row, err := d.findPageRow(pagesModule, n)
	if err != nil {
		return err
	}
	line := d.lines[row]
	if pageRowHasModule(line, module) {
		return nil
	}
	code := stripComment(line)
	idx := strings.Index(code, "]")
	if idx < 0 {
		return fmt.Errorf("page row %d has no closing bracket", n)
	}
	// A row emptied to [] takes the name without a leading comma.
	b := strings.Index(code, "[")
	if b >= 0 && b < idx && strings.TrimSpace(code[b+1:idx]) == "" {
		d.lines[row] = line[:idx] + fmt.Sprintf(`"%s"]`, module) + line[idx+1:]
		return nil
	}
	d.lines[row] = line[:idx] + fmt.Sprintf(`, "%s"]`, module) + line[idx+1:]
	return nil
}

// PagesContaining returns the pages whose module list includes the name.
func (d *Document) PagesContaining(pagesModule, module string) ([]Page, error) {
	pages, err := d.ListPages(pagesModule)
	if err != nil {
		return nil, err
	}
	var out []Page
	for _, p := range pages {
		for _, m := range p.Modules {
			if m == module {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

// RemoveModuleFromPage strips every occurrence of the quoted module name
// from one page row. Comma placement is normalized by three alternating
// substitutions: leading-comma-then-name, name-then-trailing-comma, and
// bare name. An emptied row is left as [].
func (d *Document) RemoveModuleFromPage(pagesModule string, n int, module string) error {
	row, err := d.findPageRow(pagesModule, n)
	if err != nil {
		return err
	}
	d.lines[row] = removeQuotedName(d.lines[row], module)
	return nil
}

// RemoveModuleFromAllPages strips the module from every page row that
// contains it.
func (d *Document) RemoveModuleFromAllPages(pagesModule, module string) error {
	pages, err := d.PagesContaining(pagesModule, module)
	if err != nil {
		return err
	}
	for _, p := range pages {
		d.lines[p.Line] = removeQuotedName(d.lines[p.Line], module)
	}
	return nil
}

func pageRowHasModule(line, module string) bool {
	for _, q := range quotedStrRe.FindAllStringSubmatch(stripComment(line), -1) {
		if q[1] == module {
			return true
		}
	}
	return false
}

// removeQuotedName edits the code portion of a row, leaving the comment.
func removeQuotedName(line, module string) string {
	code := stripComment(line)
	comment := line[len(code):]

	name := regexp.QuoteMeta(module)
	leading := regexp.MustCompile(`,\s*["']` + name + `["']`)
	trailing := regexp.MustCompile(`["']` + name + `["']\s*,\s*`)
	bare := regexp.MustCompile(`["']` + name + `["']`)

	code = leading.ReplaceAllString(code, "")
	code = trailing.ReplaceAllString(code, "")
	code = bare.ReplaceAllString(code, "")

	if comment != "" {
		return strings.TrimRight(code, " \t") + " " + strings.TrimLeft(comment, " \t")
	}
	return code
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
