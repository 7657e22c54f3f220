package db

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenCreatesWorkspace(t *testing.T) {
	workspace := t.TempDir()
	conn, err := Open(Config{Workspace: workspace})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if _, err := os.Stat(filepath.Join(workspace, ".teamboard")); err != nil {
		t.Fatalf("workspace dir not created: %v", err)
	}

	// force the lazy pool to touch the file
	if _, err := conn.Exec(`CREATE TABLE scratch(id INTEGER)`); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if _, err := os.Stat(Path(workspace)); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
}

func TestDSNCarriesPragmas(t *testing.T) {
	got := dsn("/tmp/x.db")
	want := "file:/tmp/x.db?cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)"
	if got != want {
		t.Fatalf("dsn = %q, want %q", got, want)
	}
}
