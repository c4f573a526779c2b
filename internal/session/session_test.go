package session

import (
	"os"
	"testing"

	"github.com/openmirror/mirrorctl/internal/document"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func TestEnsureMasterSeedsFromActive(t *testing.T) {
	s, _ := testSession(t)
	writeFile(t, s.Cfg.ActiveConfigPath(), "var config = {};\n")

	if err := s.EnsureMaster(); err != nil {
		t.Fatalf("EnsureMaster: %v", err)
	}
	if got := readFile(t, s.Cfg.MasterPath()); got != "var config = {};\n" {
		t.Errorf("master = %q, want seeded copy of config.js", got)
	}
}

func TestEnsureMasterKeepsExisting(t *testing.T) {
	s, _ := testSession(t)
	writeFile(t, s.Cfg.ActiveConfigPath(), "active")
	writeFile(t, s.Cfg.MasterPath(), "master")

	if err := s.EnsureMaster(); err != nil {
		t.Fatalf("EnsureMaster: %v", err)
	}
	if got := readFile(t, s.Cfg.MasterPath()); got != "master" {
		t.Errorf("master = %q, existing master was clobbered", got)
	}
}

func TestEnsureMasterNoSeedSource(t *testing.T) {
	s, _ := testSession(t)
	if err := s.EnsureMaster(); err == nil {
		t.Fatal("expected error with no master and no active config")
	}
}

func TestBackupAndRollback(t *testing.T) {
	s, _ := testSession(t)
	writeFile(t, s.Cfg.MasterPath(), "master v1")
	writeFile(t, s.Cfg.ActiveConfigPath(), "active v1")

	if err := s.Backup(); err != nil {
		t.Fatalf("Backup: %v", err)
	}

	writeFile(t, s.Cfg.MasterPath(), "master v2")
	writeFile(t, s.Cfg.ActiveConfigPath(), "active v2")

	s.Rollback()

	if got := readFile(t, s.Cfg.MasterPath()); got != "master v1" {
		t.Errorf("master after rollback = %q, want master v1", got)
	}
	if got := readFile(t, s.Cfg.ActiveConfigPath()); got != "active v1" {
		t.Errorf("active after rollback = %q, want active v1", got)
	}
}

func TestBackupMissingFilesIsNoop(t *testing.T) {
	s, _ := testSession(t)
	if err := s.Backup(); err != nil {
		t.Fatalf("Backup with nothing to snapshot: %v", err)
	}
}

func TestActivateCopiesAndRestarts(t *testing.T) {
	s, fake := testSession(t)
	candidate := s.Cfg.GeneratedPath(s.now())
	writeFile(t, candidate, "candidate config")

	if err := s.Activate(candidate); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if got := readFile(t, s.Cfg.ActiveConfigPath()); got != "candidate config" {
		t.Errorf("active = %q, want candidate contents", got)
	}
	if len(fake.restarts) != 1 || fake.restarts[0] != "mirror" {
		t.Errorf("restarts = %v, want [mirror]", fake.restarts)
	}
}

func TestPromoteArchivesMaster(t *testing.T) {
	s, _ := testSession(t)
	writeFile(t, s.Cfg.MasterPath(), "old master")
	generated := s.Cfg.GeneratedPath(s.now())
	writeFile(t, generated, "new master")

	if err := s.Promote(generated); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if got := readFile(t, s.Cfg.MasterPath()); got != "new master" {
		t.Errorf("master = %q, want promoted config", got)
	}
	archive := s.Cfg.ArchiveBackupPath(s.now())
	if got := readFile(t, archive); got != "old master" {
		t.Errorf("archive = %q, want previous master", got)
	}
}

func TestPromoteFirstMaster(t *testing.T) {
	s, _ := testSession(t)
	generated := s.Cfg.GeneratedPath(s.now())
	writeFile(t, generated, "first master")

	if err := s.Promote(generated); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if got := readFile(t, s.Cfg.MasterPath()); got != "first master" {
		t.Errorf("master = %q", got)
	}
	if _, err := os.Stat(s.Cfg.ArchiveBackupPath(s.now())); !os.IsNotExist(err) {
		t.Error("archive created with no prior master")
	}
}

func TestWriteGenerated(t *testing.T) {
	s, _ := testSession(t)
	doc := document.New("var config = {\n\tmodules: []\n};\n")

	path, err := s.WriteGenerated(doc)
	if err != nil {
		t.Fatalf("WriteGenerated: %v", err)
	}
	if path != s.Cfg.GeneratedPath(s.now()) {
		t.Errorf("path = %q, want timestamped generated path", path)
	}
	if got := readFile(t, path); got != "var config = {\n\tmodules: []\n};\n" {
		t.Errorf("generated = %q", got)
	}
}
