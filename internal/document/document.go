// Package document edits a MagicMirror config.js as an ordered sequence of
// text lines. The file is JS-object-literal text with recognizable field
// patterns; edits are targeted line operations that preserve all surrounding
// formatting and comments. Array and block boundaries are found by counting
// bracket depth, never by fixed offsets.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoModulesArray means the document has no modules: [...] array.
	ErrNoModulesArray = errors.New("no modules array found")
	// ErrNoPagesBlock means the pages module block is absent.
	ErrNoPagesBlock = errors.New("no pages module block found")
	// ErrModuleNotFound means no block with the requested module name exists.
	ErrModuleNotFound = errors.New("module not found")
	// ErrPageNotFound means no page row carries the requested PAGE number.
	ErrPageNotFound = errors.New("page not found")
)

// Document is a config file held as lines. The zero value is an empty document.
type Document struct {
	lines []string
}

// New builds a Document from raw file text. CRLF line endings are
// normalized to LF so line-level suffix checks see the code, not a \r.
func New(text string) *Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return &Document{lines: strings.Split(text, "\n")}
}

// FromLines builds a Document from a line slice. The slice is copied.
func FromLines(lines []string) *Document {
	d := &Document{lines: make([]string, len(lines))}
	copy(d.lines, lines)
	return d
}

// Load reads a document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return New(string(data)), nil
}

// Lines returns a copy of the document's lines.
func (d *Document) Lines() []string {
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

// String reassembles the document text.
func (d *Document) String() string {
	return strings.Join(d.lines, "\n")
}

// Save writes the document to path via a temp file in the same directory
// followed by a rename, so readers never observe a partial write.
func (d *Document) Save(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(d.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// bracketDepth returns the net [ ] depth change contributed by a line,
// ignoring brackets inside quoted strings and after // comments.
func bracketDepth(line string) int {
	return depthCount(line, '[', ']')
}

// braceDepth is bracketDepth for { }.
func braceDepth(line string) int {
	return depthCount(line, '{', '}')
}

func depthCount(line string, open, close byte) int {
	depth := 0
	inStr := byte(0)
	for i := 0; i < len(line); i++ {
		c := line[i]
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
		case '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return depth
			}
		case open:
			depth++
		case close:
			depth--
		}
	}
	return depth
}

// stripComment returns the portion of a line before any // comment,
// respecting quoted strings.
func stripComment(line string) string {
	inStr := byte(0)
	for i := 0; i < len(line); i++ {
		c := line[i]
		if inStr != 0 {
			if c == '\\' {
				i++
			} else if c == inStr {
				inStr = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			inStr = c
		} else if c == '/' && i+1 < len(line) && line[i+1] == '/' {
			return line[:i]
		}
	}
	return line
}

// indentOf returns the leading whitespace of a line.
func indentOf(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
