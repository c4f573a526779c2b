package document

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	modulesOpenRe = regexp.MustCompile(`^\s*modules\s*:\s*\[`)
	moduleNameRe  = regexp.MustCompile(`module\s*:\s*["']([^"']+)["']`)
)

// modulesArray locates the top-level modules: [...] array and returns the
// indices of its opening and closing lines.
func (d *Document) modulesArray() (open, close int, err error) {
	open = -1
	for i, line := range d.lines {
		if modulesOpenRe.MatchString(line) {
			open = i
			break
		}
	}
	if open < 0 {
		return 0, 0, ErrNoModulesArray
	}

	depth := 0
	for i := open; i < len(d.lines); i++ {
		depth += bracketDepth(d.lines[i])
		if depth <= 0 && i > open {
			return open, i, nil
		}
		if depth == 0 && i == open {
			// opened and closed on the same line; nothing to edit between
			return open, i, nil
		}
	}
	return 0, 0, fmt.Errorf("modules array starting at line %d: unbalanced brackets", open+1)
}

// ListModules returns every module name declared inside the modules array,
// in document order. Nested page lists do not declare module: fields, so the
// scan is safe against the pages block.
func (d *Document) ListModules() ([]string, error) {
	open, close, err := d.modulesArray()
	if err != nil {
		return nil, err
	}
	var names []string
	for i := open + 1; i < close; i++ {
		if m := moduleNameRe.FindStringSubmatch(stripComment(d.lines[i])); m != nil {
			names = append(names, m[1])
		}
	}
	return names, nil
}

// HasModule reports whether a block with the given module name exists.
func (d *Document) HasModule(name string) bool {
	names, err := d.ListModules()
	if err != nil {
		return false
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// moduleLineRe builds a matcher for module: "<name>" with either quote style.
func moduleLineRe(name string) *regexp.Regexp {
	return regexp.MustCompile(`module\s*:\s*["']` + regexp.QuoteMeta(name) + `["']`)
}

// blockSpan locates the { ... } span of the named module's block: the
// module: line is found first, then the opening brace by backward scan and
// the closing brace by brace-depth counting.
func (d *Document) blockSpan(name string) (start, end int, err error) {
	re := moduleLineRe(name)
	nameLine := -1
	for i, line := range d.lines {
		if re.MatchString(stripComment(line)) {
			nameLine = i
			break
		}
	}
	if nameLine < 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}

	start = nameLine
	for start > 0 && !strings.HasPrefix(strings.TrimSpace(d.lines[start]), "{") {
		start--
	}
	if !strings.HasPrefix(strings.TrimSpace(d.lines[start]), "{") {
		return 0, 0, fmt.Errorf("module %s: opening brace not found", name)
	}

	depth := 0
	for i := start; i < len(d.lines); i++ {
		depth += braceDepth(d.lines[i])
		if depth <= 0 && i >= start {
			return start, i, nil
		}
	}
	return 0, 0, fmt.Errorf("module %s: unbalanced braces", name)
}

// ExtractModuleBlock returns the lines of the named module's block, used to
// seed template files from the master config.
func (d *Document) ExtractModuleBlock(name string) ([]string, error) {
	start, end, err := d.blockSpan(name)
	if err != nil {
		return nil, err
	}
	block := make([]string, end-start+1)
	copy(block, d.lines[start:end+1])
	return block, nil
}

// entryIndent derives the indentation used for entries of the modules array
// from the first existing entry, falling back to one level past the opener.
func (d *Document) entryIndent(open, close int) string {
	for i := open + 1; i < close; i++ {
		t := strings.TrimSpace(stripComment(d.lines[i]))
		if t == "" {
			continue
		}
		return indentOf(d.lines[i])
	}
	return indentOf(d.lines[open]) + "\t"
}

// splitInlineArray rewrites an array that opens and closes on the same line
// (modules: []) into multi-line form so entries can be spliced inside it.
// Returns the new opening and closing line indices.
func (d *Document) splitInlineArray(row int) (open, close int) {
	line := d.lines[row]
	code := stripComment(line)
	comment := line[len(code):]

	b := strings.Index(code, "[")
	e := matchingBracket(code, b)
	if b < 0 || e < 0 {
		return row, row
	}

	indent := indentOf(line)
	out := []string{strings.TrimRight(code[:b+1], " \t")}
	if inner := strings.TrimSpace(code[b+1 : e]); inner != "" {
		out = append(out, indent+"\t"+inner)
	}
	out = append(out, indent+strings.TrimRight(code[e:], " \t")+pad(comment))

	d.lines = spliceLines(d.lines, row, 1, out)
	return row, row + len(out) - 1
}

// matchingBracket finds the ] closing the [ at index b, respecting quoted
// strings. Returns -1 when b is out of range or the bracket never closes.
func matchingBracket(code string, b int) int {
	if b < 0 || b >= len(code) || code[b] != '[' {
		return -1
	}
	depth := 0
	inStr := byte(0)
	for i := b; i < len(code); i++ {
		c := code[i]
		if inStr != 0 {
			if c == '\\' {
				i++
			} else if c == inStr {
				inStr = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			inStr = c
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// reindent strips the block's common leading whitespace and applies indent.
func reindent(block []string, indent string) []string {
	common := -1
	for _, line := range block {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(indentOf(line))
		if common < 0 || n < common {
			common = n
		}
	}
	if common < 0 {
		common = 0
	}
	out := make([]string, len(block))
	for i, line := range block {
		if strings.TrimSpace(line) == "" {
			out[i] = ""
			continue
		}
		out[i] = indent + line[common:]
	}
	return out
}

// lastEntryLine finds the last non-blank, non-comment line before the
// array's closing bracket, or -1 when the array is empty.
func (d *Document) lastEntryLine(open, close int) int {
	for i := close - 1; i > open; i-- {
		t := strings.TrimSpace(stripComment(d.lines[i]))
		if t != "" {
			return i
		}
	}
	return -1
}

// InsertModuleBlock inserts a template block at the end of the modules
// array. Insertion is idempotent by module name: if a block with the same
// name already exists the document is left untouched.
func (d *Document) InsertModuleBlock(name string, block []string) error {
	if d.HasModule(name) {
		return nil
	}
	open, close, err := d.modulesArray()
	if err != nil {
		return err
	}
	if open == close {
		open, close = d.splitInlineArray(open)
	}

	// The previous last entry needs a trailing comma before a new sibling.
	if prev := d.lastEntryLine(open, close); prev >= 0 {
		code := strings.TrimRight(stripComment(d.lines[prev]), " \t")
		if !strings.HasSuffix(code, ",") {
			d.lines[prev] = insertBeforeComment(d.lines[prev], ",")
		}
	}

	indent := d.entryIndent(open, close)
	entry := reindent(trimBlankEdges(block), indent)
	if len(entry) == 0 {
		return fmt.Errorf("module %s: empty template block", name)
	}
	// Drop any trailing comma the template carries; the new block is the
	// last entry until the next insertion adds one back.
	last := len(entry) - 1
	entry[last] = strings.TrimRight(entry[last], " \t")
	entry[last] = strings.TrimSuffix(entry[last], ",")

	insert := make([]string, 0, len(entry)+1)
	insert = append(insert, indent+"// "+name)
	insert = append(insert, entry...)

	d.lines = spliceLines(d.lines, close, 0, insert)
	return nil
}

// RemoveModuleBlock deletes the named module's block and its marker comment,
// restoring valid comma placement on the remaining last entry.
func (d *Document) RemoveModuleBlock(name string) error {
	start, end, err := d.blockSpan(name)
	if err != nil {
		return err
	}

	// Take the marker comment above the block with it, if present.
	if start > 0 {
		t := strings.TrimSpace(d.lines[start-1])
		if strings.HasPrefix(t, "//") && strings.Contains(t, name) {
			start--
		}
	}

	d.lines = spliceLines(d.lines, start, end-start+1, nil)

	open, close, err := d.modulesArray()
	if err != nil {
		return err
	}
	if last := d.lastEntryLine(open, close); last >= 0 {
		code := strings.TrimRight(stripComment(d.lines[last]), " \t")
		if strings.HasSuffix(code, ",") {
			d.lines[last] = removeTrailingComma(d.lines[last])
		}
	}
	return nil
}

// insertBeforeComment appends text to the code portion of a line, keeping
// any trailing // comment in place.
func insertBeforeComment(line, text string) string {
	code := stripComment(line)
	comment := line[len(code):]
	return strings.TrimRight(code, " \t") + text + pad(comment)
}

func pad(comment string) string {
	if comment == "" {
		return ""
	}
	return " " + strings.TrimLeft(comment, " \t")
}

// removeTrailingComma strips the final comma of a line's code portion,
// preserving a trailing comment.
func removeTrailingComma(line string) string {
	code := stripComment(line)
	comment := line[len(code):]
	trimmed := strings.TrimRight(code, " \t")
	trimmed = strings.TrimSuffix(trimmed, ",")
	return trimmed + pad(comment)
}

func trimBlankEdges(block []string) []string {
	start, end := 0, len(block)
	for start < end && strings.TrimSpace(block[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(block[end-1]) == "" {
		end--
	}
	return block[start:end]
}

// spliceLines removes n lines at index i and inserts the given lines there.
func spliceLines(lines []string, i, n int, insert []string) []string {
	out := make([]string, 0, len(lines)-n+len(insert))
	out = append(out, lines[:i]...)
	out = append(out, insert...)
	out = append(out, lines[i+n:]...)
	return out
}
