package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WorkDir builds a throwaway directory tree for content fixtures. The root
// lives under the test's temp dir and disappears with the test.
type WorkDir struct {
	tb   testing.TB
	root string
}

// NewWorkDir creates an empty work dir rooted in tb's temp directory.
func NewWorkDir(tb testing.TB) *WorkDir {
	tb.Helper()
	return &WorkDir{tb: tb, root: tb.TempDir()}
}

// Root returns the absolute path of the work dir.
func (w *WorkDir) Root() string {
	return w.root
}

// Path joins rel onto the work dir root.
func (w *WorkDir) Path(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

// WriteFile writes content at the slash-separated relative path, creating
// parent directories as needed.
func (w *WorkDir) WriteFile(rel, content string) string {
	w.tb.Helper()
	return w.WriteBytes(rel, []byte(content))
}

// WriteBytes is WriteFile for binary payloads such as images.
func (w *WorkDir) WriteBytes(rel string, content []byte) string {
	w.tb.Helper()
	target := w.Path(rel)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		w.tb.Fatalf("testsupport: mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		w.tb.Fatalf("testsupport: write %s: %v", rel, err)
	}
	return target
}

// MkdirAll creates the directory at rel and returns its absolute path.
func (w *WorkDir) MkdirAll(rel string) string {
	w.tb.Helper()
	target := w.Path(rel)
	if err := os.MkdirAll(target, 0o755); err != nil {
		w.tb.Fatalf("testsupport: mkdir %s: %v", rel, err)
	}
	return target
}

// CopyFile copies an existing file into the work dir at rel.
func (w *WorkDir) CopyFile(src, rel string) string {
	w.tb.Helper()
	content, err := os.ReadFile(src)
	if err != nil {
		w.tb.Fatalf("testsupport: read fixture %s: %v", src, err)
	}
	return w.WriteBytes(rel, content)
}

// ReadFile returns the content at rel, failing the test when missing.
func (w *WorkDir) ReadFile(rel string) []byte {
	w.tb.Helper()
	content, err := os.ReadFile(w.Path(rel))
	if err != nil {
		w.tb.Fatalf("testsupport: read %s: %v", rel, err)
	}
	return content
}

// Exists reports whether a file or directory exists at rel.
func (w *WorkDir) Exists(rel string) bool {
	_, err := os.Stat(w.Path(rel))
	return err == nil
}
