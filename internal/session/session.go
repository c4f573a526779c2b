// Package session drives an editing session: it threads explicit state
// through the four stages (template selection, master editing, live
// validation, master promotion) instead of ambient globals, and injects the
// process-control collaborator so the flows are testable without PM2.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/openmirror/mirrorctl/internal/config"
	"github.com/openmirror/mirrorctl/internal/document"
	"github.com/openmirror/mirrorctl/internal/history"
	"github.com/openmirror/mirrorctl/internal/pm2"
	"github.com/openmirror/mirrorctl/internal/template"
	"github.com/openmirror/mirrorctl/internal/ui"
)

// ErrRejected marks an explicit decline at a validation gate. The run rolls
// back and ends gracefully; it is not a failure.
var ErrRejected = errors.New("change rejected")

// Session holds the state of one editing run.
type Session struct {
	Cfg       *config.Config
	Templates *template.Store
	Restarter pm2.Restarter
	Journal   *history.Store

	// Process is the resolved PM2 process name.
	Process string

	// now is swappable in tests for deterministic file names.
	now func() time.Time
}

// New builds a Session, resolving the PM2 process name once up front.
func New(cfg *config.Config, store *template.Store, restarter pm2.Restarter, journal *history.Store) *Session {
	s := &Session{
		Cfg:       cfg,
		Templates: store,
		Restarter: restarter,
		Journal:   journal,
		now:       time.Now,
	}

	s.Process = cfg.PM2Process
	if s.Process == "" {
		name, err := restarter.Detect()
		if err != nil {
			fmt.Println(ui.Dim.Render("Could not query PM2, using " + name))
		} else {
			fmt.Println(ui.Dim.Render("Detected PM2 process: " + name))
		}
		s.Process = name
	}
	return s
}

// EnsureMaster makes sure the master config exists, seeding it from the
// active config.js on first run. A session without a master cannot start.
func (s *Session) EnsureMaster() error {
	if err := os.MkdirAll(s.Cfg.StateDir, 0750); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if _, err := os.Stat(s.Cfg.MasterPath()); err == nil {
		return nil
	}
	if _, err := os.Stat(s.Cfg.ActiveConfigPath()); err != nil {
		return fmt.Errorf("missing master config and no active config.js to seed it: %w", err)
	}
	fmt.Println(ui.Dim.Render("Creating " + config.MasterName + " from " + config.ActiveConfigName))
	return copyFile(s.Cfg.ActiveConfigPath(), s.Cfg.MasterPath())
}

// LoadMaster reads the master document.
func (s *Session) LoadMaster() (*document.Document, error) {
	doc, err := document.Load(s.Cfg.MasterPath())
	if err != nil {
		return nil, fmt.Errorf("loading master config: %w", err)
	}
	return doc, nil
}

// Backup snapshots the master and active configs for rollback.
func (s *Session) Backup() error {
	if _, err := os.Stat(s.Cfg.MasterPath()); err == nil {
		if err := copyFile(s.Cfg.MasterPath(), s.Cfg.MasterBackupPath()); err != nil {
			return fmt.Errorf("backing up master: %w", err)
		}
	}
	if _, err := os.Stat(s.Cfg.ActiveConfigPath()); err == nil {
		if err := copyFile(s.Cfg.ActiveConfigPath(), s.Cfg.ActiveBackupPath()); err != nil {
			return fmt.Errorf("backing up active config: %w", err)
		}
	}
	return nil
}

// Rollback restores the snapshots taken by Backup.
func (s *Session) Rollback() {
	fmt.Println(ui.Yellow.Render("Rolling back..."))
	if _, err := os.Stat(s.Cfg.MasterBackupPath()); err == nil {
		if err := copyFile(s.Cfg.MasterBackupPath(), s.Cfg.MasterPath()); err != nil {
			fmt.Println(ui.Red.Render("✗") + " restoring master: " + err.Error())
		}
	}
	if _, err := os.Stat(s.Cfg.ActiveBackupPath()); err == nil {
		if err := copyFile(s.Cfg.ActiveBackupPath(), s.Cfg.ActiveConfigPath()); err != nil {
			fmt.Println(ui.Red.Render("✗") + " restoring active config: " + err.Error())
		}
	}
}

// Activate copies a candidate config over the live config.js and restarts
// the dashboard process.
func (s *Session) Activate(candidate string) error {
	if err := copyFile(candidate, s.Cfg.ActiveConfigPath()); err != nil {
		return fmt.Errorf("activating candidate config: %w", err)
	}
	fmt.Println(ui.Cyan.Render("Restarting " + s.Process + "..."))
	if err := s.Restarter.Restart(s.Process); err != nil {
		// Restart failure is reported but not fatal: the user judges the
		// result on screen either way.
		fmt.Println(ui.Red.Render("✗") + " " + err.Error())
	}
	return nil
}

// Validate runs the live validation gate: activate the candidate, ask the
// user, and on decline restore the previous config and restart again.
// Declining is reported as ErrRejected so callers end the run with exit 0.
func (s *Session) Validate(candidate string) error {
	if err := s.Activate(candidate); err != nil {
		return err
	}

	ok, err := confirm("Did the mirror render correctly?", false)
	if err != nil {
		return err
	}
	if !ok {
		s.Rollback()
		fmt.Println(ui.Cyan.Render("Restarting " + s.Process + "..."))
		if err := s.Restarter.Restart(s.Process); err != nil {
			fmt.Println(ui.Red.Render("✗") + " " + err.Error())
		}
		return ErrRejected
	}
	return nil
}

// WriteGenerated saves a document as a timestamped generated config and
// returns its path.
func (s *Session) WriteGenerated(doc *document.Document) (string, error) {
	path := s.Cfg.GeneratedPath(s.now())
	if err := doc.Save(path); err != nil {
		return "", fmt.Errorf("writing generated config: %w", err)
	}
	return path, nil
}

// Promote archives the master under a timestamped backup and replaces it
// with the generated config. Old backups are never pruned.
func (s *Session) Promote(generated string) error {
	backup := s.Cfg.ArchiveBackupPath(s.now())
	if _, err := os.Stat(s.Cfg.MasterPath()); err == nil {
		if err := copyFile(s.Cfg.MasterPath(), backup); err != nil {
			return fmt.Errorf("archiving master: %w", err)
		}
		fmt.Println(ui.Dim.Render("Master archived: " + backup))
	}
	if err := copyFile(generated, s.Cfg.MasterPath()); err != nil {
		return fmt.Errorf("updating master: %w", err)
	}
	fmt.Println(ui.Green.Render("✓") + " Master updated.")
	return nil
}

// record writes a history row, tolerating a nil journal.
func (s *Session) record(r *history.Run) {
	if s.Journal == nil {
		return
	}
	if err := s.Journal.Record(r); err != nil {
		fmt.Println(ui.Dim.Render("history: " + err.Error()))
	}
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
