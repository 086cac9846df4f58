package e2e

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/klauern/snippetsync/internal/model"
)

// AssertSuccess fails the test if the command returned an error.
func AssertSuccess(t *testing.T, r *Result) {
	t.Helper()
	if !r.Success() {
		t.Fatalf("expected success, got error: %v\nstdout: %s", r.Err, r.Stdout)
	}
}

// AssertError fails the test if the command succeeded.
func AssertError(t *testing.T, r *Result) {
	t.Helper()
	if r.Success() {
		t.Fatalf("expected error, but command succeeded\nstdout: %s", r.Stdout)
	}
}

// AssertErrorContains fails the test unless the command failed with an error
// mentioning substr.
func AssertErrorContains(t *testing.T, r *Result, substr string) {
	t.Helper()
	AssertError(t, r)
	if msg := r.Err.Error(); !strings.Contains(msg, substr) {
		t.Errorf("expected error to contain %q\ngot: %s", substr, msg)
	}
}

// AssertExitCode fails the test if the inferred exit code differs.
func AssertExitCode(t *testing.T, r *Result, want int) {
	t.Helper()
	if r.ExitCode != want {
		t.Errorf("exit code = %d, want %d\nerror: %v", r.ExitCode, want, r.Err)
	}
}

// AssertOutputContains fails the test if stdout lacks substr.
func AssertOutputContains(t *testing.T, r *Result, substr string) {
	t.Helper()
	if !strings.Contains(r.Stdout, substr) {
		t.Errorf("expected output to contain %q\ngot: %s", substr, r.Stdout)
	}
}

// AssertOutputNotContains fails the test if stdout holds substr.
func AssertOutputNotContains(t *testing.T, r *Result, substr string) {
	t.Helper()
	if strings.Contains(r.Stdout, substr) {
		t.Errorf("expected output to NOT contain %q\ngot: %s", substr, r.Stdout)
	}
}

// AssertOutputMatches compares stdout with testdata/<name>.golden, rewriting
// the golden file instead when -update is set.
func AssertOutputMatches(t *testing.T, r *Result, testdataDir, name string) {
	t.Helper()
	goldenPath := filepath.Join(testdataDir, name+".golden")

	if UpdateGolden() {
		if err := os.MkdirAll(testdataDir, 0o750); err != nil {
			t.Fatalf("failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, []byte(r.Stdout), 0o600); err != nil {
			t.Fatalf("failed to write golden file: %v", err)
		}
		return
	}

	want := readFile(t, goldenPath)
	if r.Stdout != want {
		t.Errorf("output mismatch for %s\n--- got ---\n%s\n--- want ---\n%s", name, r.Stdout, want)
	}
}

// AssertFileExists fails the test if path is missing.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test if path exists.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file to NOT exist: %s", path)
	}
}

// AssertFileContains fails the test if the file at path lacks substr.
func AssertFileContains(t *testing.T, path, substr string) {
	t.Helper()
	if got := readFile(t, path); !strings.Contains(got, substr) {
		t.Errorf("expected %s to contain %q\ngot: %s", path, substr, got)
	}
}

// AssertFileEquals fails the test unless the file holds exactly want. Sync
// copies Neovim files byte for byte, so this is the check for B -> A copies.
func AssertFileEquals(t *testing.T, path, want string) {
	t.Helper()
	if got := readFile(t, path); got != want {
		t.Errorf("content mismatch for %s\nwant: %q\ngot:  %q", path, want, got)
	}
}

// AssertSnippetScopes parses the snippet file at path and fails the test
// unless the snippet named key declares exactly the given scope tokens.
func AssertSnippetScopes(t *testing.T, path, key string, want ...string) {
	t.Helper()

	var file model.SnippetFile
	if err := json.Unmarshal([]byte(readFile(t, path)), &file); err != nil {
		t.Fatalf("%s is not strict JSON: %v", path, err)
	}
	entry, ok := file[key]
	if !ok {
		t.Fatalf("%s has no snippet %q", path, key)
	}
	if got := entry.Scopes(); !slices.Equal(got, want) {
		t.Errorf("scopes of %q in %s = %v, want %v", key, filepath.Base(path), got, want)
	}
}

// AssertManifestLanguage reads the package.json in dir and fails the test
// unless the entry for snippet file name carries the language expression want.
func AssertManifestLanguage(t *testing.T, dir, name, want string) {
	t.Helper()

	path := filepath.Join(dir, model.ManifestFileName)
	var m model.Manifest
	if err := json.Unmarshal([]byte(readFile(t, path)), &m); err != nil {
		t.Fatalf("failed to parse %s: %v", path, err)
	}
	if m.Name != model.ManifestName {
		t.Errorf("manifest name = %q, want %q", m.Name, model.ManifestName)
	}
	entry, ok := m.Lookup("./" + name)
	if !ok {
		t.Fatalf("manifest %s has no entry for %s", path, name)
	}
	if entry.Language != want {
		t.Errorf("manifest language for %s = %q, want %q", name, entry.Language, want)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	// #nosec G304 - path is provided by test code
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return string(data)
}

var updateGoldenFlag bool

// SetUpdateGolden records whether golden files should be rewritten. Call it
// from TestMain after flag.Parse.
func SetUpdateGolden(update bool) {
	updateGoldenFlag = update
}

// UpdateGolden reports whether golden files should be rewritten.
func UpdateGolden() bool {
	return updateGoldenFlag
}
