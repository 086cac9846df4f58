package e2e

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/snippetsync/internal/model"
)

// Fixture provides helpers for creating test fixtures in E2E tests.
type Fixture struct {
	t       *testing.T
	baseDir string
}

// NewFixture creates a new fixture helper rooted at the given directory.
func NewFixture(t *testing.T, baseDir string) *Fixture {
	t.Helper()
	return &Fixture{
		t:       t,
		baseDir: baseDir,
	}
}

// WriteFile writes content to a file relative to the fixture base directory.
// It creates parent directories as needed.
func (f *Fixture) WriteFile(relPath, content string) string {
	f.t.Helper()
	return f.WriteBytes(relPath, []byte(content))
}

// WriteBytes writes raw bytes, for fixtures that are not valid UTF-8.
func (f *Fixture) WriteBytes(relPath string, content []byte) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		f.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, content, 0o600); err != nil {
		f.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}

	return fullPath
}

// WriteSnippet writes a snippet file holding a single snippet. An empty
// scope leaves the scope field out.
func (f *Fixture) WriteSnippet(name, key, prefix, scope string) string {
	f.t.Helper()

	entry := map[string]any{
		"prefix": prefix,
		"body":   []string{prefix + "$0"},
	}
	if scope != "" {
		entry["scope"] = scope
	}
	data, err := json.MarshalIndent(map[string]any{key: entry}, "", "\t")
	if err != nil {
		f.t.Fatalf("failed to encode snippet %s: %v", key, err)
	}

	return f.WriteFile(name, string(data)+"\n")
}

// Path returns the full path for a relative path.
func (f *Fixture) Path(relPath string) string {
	return filepath.Join(f.baseDir, relPath)
}

// Exists returns true if the file or directory exists.
func (f *Fixture) Exists(relPath string) bool {
	f.t.Helper()
	_, err := os.Stat(filepath.Join(f.baseDir, relPath))
	return err == nil
}

// ReadFile reads and returns the content of a file.
func (f *Fixture) ReadFile(relPath string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	// #nosec G304 - fullPath is constructed from trusted test fixture base and test-provided path
	data, err := os.ReadFile(fullPath)
	if err != nil {
		f.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}

	return string(data)
}

// storeFixture returns a fixture for the snippets directory of store.
func (h *Harness) storeFixture(store model.Store) *Fixture {
	h.t.Helper()

	dir := h.roots.SnippetsDir(store)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		h.t.Fatalf("failed to create %s snippets directory: %v", store.DisplayName(), err)
	}
	return NewFixture(h.t, dir)
}

// VSCodeFixture creates a fixture helper for the VS Code snippets directory.
func (h *Harness) VSCodeFixture() *Fixture {
	h.t.Helper()
	return h.storeFixture(model.VSCode)
}

// NvimFixture creates a fixture helper for the Neovim snippets directory.
func (h *Harness) NvimFixture() *Fixture {
	h.t.Helper()
	return h.storeFixture(model.Nvim)
}

// TempFixture creates a fixture helper for a new temporary directory.
func (h *Harness) TempFixture() *Fixture {
	h.t.Helper()
	return NewFixture(h.t, h.t.TempDir())
}
