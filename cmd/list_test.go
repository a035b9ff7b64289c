package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/drawkit/draw-session/testutil"
)

func TestListCommand_EmptyStore(t *testing.T) {
	dir := t.TempDir()
	if err := execute(t, "--data-dir", dir, "list"); err != nil {
		t.Errorf("list on empty store error = %v", err)
	}
}

func TestListCommand_SeededStore(t *testing.T) {
	dir := testutil.CreateDataDir(t, 3)
	if err := execute(t, "--data-dir", dir, "list"); err != nil {
		t.Errorf("list error = %v", err)
	}
}

func TestShowCommand(t *testing.T) {
	dir := testutil.CreateDataDir(t, 1)
	if err := execute(t, "--data-dir", dir, "show", "session-000"); err != nil {
		t.Errorf("show error = %v", err)
	}
	if err := execute(t, "--data-dir", dir, "show", "missing"); err == nil {
		t.Error("show of unknown session succeeded, want error")
	}
}

func TestDeleteCommand(t *testing.T) {
	dir := testutil.CreateDataDir(t, 2)
	if err := execute(t, "--data-dir", dir, "delete", "session-000"); err != nil {
		t.Fatalf("delete error = %v", err)
	}
	if err := execute(t, "--data-dir", dir, "delete", "session-000"); err == nil {
		t.Error("second delete of same session succeeded, want not-found error")
	}
}

func TestExportCommand(t *testing.T) {
	dir := testutil.CreateDataDir(t, 2)
	out := t.TempDir()
	if err := execute(t, "--data-dir", dir, "export", "--format", "md", "--output", out); err != nil {
		t.Fatalf("export error = %v", err)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatalf("failed to read output dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("exported %d files, want 2", len(entries))
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != ".md" {
			t.Errorf("exported file %s, want .md extension", entry.Name())
		}
	}
}

func TestExportCommand_BadFormat(t *testing.T) {
	dir := testutil.CreateDataDir(t, 1)
	if err := execute(t, "--data-dir", dir, "export", "--format", "xlsx"); err == nil {
		t.Error("export with unsupported format succeeded, want error")
	}
}

func TestMigrateCommand(t *testing.T) {
	dir := t.TempDir()
	if err := execute(t, "--data-dir", dir, "migrate"); err != nil {
		t.Errorf("migrate on empty data dir error = %v", err)
	}
}
