// Package template manages the library of per-module config fragments. Each
// template is a standalone .js file holding one module block, used as the
// source of truth when inserting into the master config.
package template

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/openmirror/mirrorctl/internal/config"
	"github.com/openmirror/mirrorctl/internal/document"
)

// Store is a template library rooted at a directory.
type Store struct {
	dir string
}

// NewStore returns a Store for dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating template directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the library root.
func (s *Store) Dir() string { return s.dir }

// reserved names never offered as module templates.
var reserved = map[string]bool{
	config.FragmentHead:  true,
	config.FragmentTail:  true,
	config.FragmentClock: true,
	config.FragmentPages: true,
}

// selectable reports whether a directory entry is a module template.
func selectable(name string) bool {
	base := strings.TrimSuffix(name, ".js")
	if reserved[base] || reserved[name] {
		return false
	}
	if strings.HasPrefix(name, "config.") {
		return false
	}
	if strings.HasSuffix(name, ".backup") || strings.HasSuffix(name, ".tmp") {
		return false
	}
	return true
}

// List enumerates the selectable template names (without extension), sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading template directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !selectable(e.Name()) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".js"))
	}
	sort.Strings(names)
	return names, nil
}

// Path returns the on-disk location of a template.
func (s *Store) Path(name string) string {
	if strings.HasSuffix(name, ".js") || strings.HasSuffix(name, ".tmp") {
		return filepath.Join(s.dir, name)
	}
	return filepath.Join(s.dir, name+".js")
}

// Read returns a template's lines.
func (s *Store) Read(name string) ([]string, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", name, err)
	}
	return strings.Split(string(data), "\n"), nil
}

// Write persists a template.
func (s *Store) Write(name string, lines []string) error {
	if err := os.WriteFile(s.Path(name), []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		return fmt.Errorf("writing template %s: %w", name, err)
	}
	return nil
}

// ModuleName extracts the module: field from a template. A template without
// a module name cannot be inserted and is an error.
func (s *Store) ModuleName(name string) (string, error) {
	lines, err := s.Read(name)
	if err != nil {
		return "", err
	}
	mod, ok := document.ExtractField(lines, "module")
	if !ok {
		return "", fmt.Errorf("template %s: no module name found", name)
	}
	return mod, nil
}

// Position extracts the position: field from a template, if present.
func (s *Store) Position(name string) (string, bool) {
	lines, err := s.Read(name)
	if err != nil {
		return "", false
	}
	return document.ExtractField(lines, "position")
}

// ScratchCopy copies a template to <name>.tmp and returns the scratch name.
// Position overrides are applied to the scratch so the original template
// stays untouched until the change is confirmed.
func (s *Store) ScratchCopy(name string) (string, error) {
	scratch := name + ".tmp"
	if err := copyFile(s.Path(name), s.Path(scratch)); err != nil {
		return "", fmt.Errorf("creating scratch copy of %s: %w", name, err)
	}
	return scratch, nil
}

// OverridePosition rewrites the position field of a scratch template.
func (s *Store) OverridePosition(scratch, position string) error {
	lines, err := s.Read(scratch)
	if err != nil {
		return err
	}
	out, ok := document.RewriteField(lines, "position", position)
	if !ok {
		return fmt.Errorf("template %s has no position field", scratch)
	}
	return s.Write(scratch, out)
}

// Promote replaces the original template with its scratch copy.
func (s *Store) Promote(scratch, name string) error {
	if err := os.Rename(s.Path(scratch), s.Path(name)); err != nil {
		return fmt.Errorf("promoting scratch template: %w", err)
	}
	return nil
}

// Discard removes a scratch copy, ignoring a missing file.
func (s *Store) Discard(scratch string) {
	os.Remove(s.Path(scratch))
}

// Sync creates a template for every installed module that lacks one. The
// block is taken from the master config when present, then from the module's
// README.md, then from a sample/<module>.js file. Modules with no source are
// skipped and reported in the returned list.
func (s *Store) Sync(master *document.Document, installed []string, modulesDir string) (created, skipped []string, err error) {
	for _, mod := range installed {
		if _, statErr := os.Stat(s.Path(mod)); statErr == nil {
			continue
		}

		if block, blockErr := master.ExtractModuleBlock(mod); blockErr == nil {
			if err := s.Write(mod, block); err != nil {
				return created, skipped, err
			}
			created = append(created, mod)
			continue
		}

		readme := filepath.Join(modulesDir, mod, "README.md")
		if data, readErr := os.ReadFile(readme); readErr == nil {
			doc := document.New(string(data))
			if block, blockErr := doc.ExtractModuleBlock(mod); blockErr == nil {
				if err := s.Write(mod, block); err != nil {
					return created, skipped, err
				}
				created = append(created, mod)
				continue
			}
		}

		sample := filepath.Join(modulesDir, mod, "sample", mod+".js")
		if data, readErr := os.ReadFile(sample); readErr == nil {
			if err := s.Write(mod, strings.Split(strings.TrimRight(string(data), "\n"), "\n")); err != nil {
				return created, skipped, err
			}
			created = append(created, mod)
			continue
		}

		skipped = append(skipped, mod)
	}
	return created, skipped, nil
}

// InstalledModules lists the module checkouts under modulesDir, excluding
// hidden entries and the default bundle.
func InstalledModules(modulesDir string) ([]string, error) {
	entries, err := os.ReadDir(modulesDir)
	if err != nil {
		return nil, fmt.Errorf("reading modules directory: %w", err)
	}
	var mods []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") || e.Name() == "default" {
			continue
		}
		mods = append(mods, e.Name())
	}
	sort.Strings(mods)
	return mods, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
