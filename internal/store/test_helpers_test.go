package store

import (
	"path/filepath"
	"testing"

	"github.com/midiscript/midiscript/internal/config"
)

// createTestStore opens a fresh database in a temp dir, closed on cleanup.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestBuild returns a build of source with a fake output.
func createTestBuild(sourcePath, source string) Build {
	return NewBuild(sourcePath, source, "out.mid", []byte("MThd"+source), config.Default(), 1)
}
