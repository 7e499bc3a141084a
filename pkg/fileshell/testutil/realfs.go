package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/arthur-debert/fileshell/pkg/fileshell/filesystem"
)

// RealFSTestHelper provides utilities for testing with real filesystem operations.
// This helper is Unix-only (Linux/macOS); tests are skipped on Windows.
type RealFSTestHelper struct {
	t       *testing.T
	tempDir string
	fs      filesystem.FileSystem
}

// NewRealFSTestHelper creates a helper rooted in a fresh temporary directory.
func NewRealFSTestHelper(t *testing.T) *RealFSTestHelper {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fileshell tests assume Unix path semantics")
	}

	// Resolve symlinked temp roots (macOS /var -> /private/var) so printed
	// cursors match.
	tempDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to resolve temp dir: %v", err)
	}

	return &RealFSTestHelper{
		t:       t,
		tempDir: tempDir,
		fs:      filesystem.NewOSFileSystem(),
	}
}

// FileSystem returns the real filesystem instance
func (h *RealFSTestHelper) FileSystem() filesystem.FileSystem {
	return h.fs
}

// TempDir returns the temporary directory path
func (h *RealFSTestHelper) TempDir() string {
	return h.tempDir
}

// Path joins rel onto the temporary directory.
func (h *RealFSTestHelper) Path(rel ...string) string {
	return filepath.Join(append([]string{h.tempDir}, rel...)...)
}

// WriteFile creates rel with content, creating parent directories.
func (h *RealFSTestHelper) WriteFile(rel string, content []byte) string {
	h.t.Helper()
	path := h.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		h.t.Fatalf("Failed to create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		h.t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// Mkdir creates rel and its parents.
func (h *RealFSTestHelper) Mkdir(rel string) string {
	h.t.Helper()
	path := h.Path(rel)
	if err := os.MkdirAll(path, 0755); err != nil {
		h.t.Fatalf("Failed to create directory %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of rel.
func (h *RealFSTestHelper) ReadFile(rel string) []byte {
	h.t.Helper()
	data, err := os.ReadFile(h.Path(rel))
	if err != nil {
		h.t.Fatalf("Failed to read %s: %v", rel, err)
	}
	return data
}

// Exists reports whether rel exists, without following a final symlink.
func (h *RealFSTestHelper) Exists(rel string) bool {
	_, err := os.Lstat(h.Path(rel))
	return err == nil
}

// AssertFileExists verifies a file exists
func (h *RealFSTestHelper) AssertFileExists(rel string) {
	h.t.Helper()
	if !h.Exists(rel) {
		h.t.Errorf("Expected %s to exist", rel)
	}
}

// AssertNotExists verifies a path does not exist
func (h *RealFSTestHelper) AssertNotExists(rel string) {
	h.t.Helper()
	if h.Exists(rel) {
		h.t.Errorf("Expected %s to not exist", rel)
	}
}

// Entries lists the names in rel, sorted. Use it to check that no temporary
// files were left behind.
func (h *RealFSTestHelper) Entries(rel string) []string {
	h.t.Helper()
	entries, err := os.ReadDir(h.Path(rel))
	if err != nil {
		h.t.Fatalf("Failed to read directory %s: %v", rel, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
