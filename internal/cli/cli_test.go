package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauern/snippetsync/internal/config"
	"github.com/klauern/snippetsync/internal/logging"
	"github.com/klauern/snippetsync/internal/model"
	"github.com/klauern/snippetsync/internal/util"
)

const pythonSnippets = `{
	// VS Code keeps comments in snippet files
	"Print": {
		"prefix": "pr",
		"body": ["print($1)"],
		"scope": "python"
	}
}
`

// testStores points both store roots at fresh temp directories and isolates
// the snippetsync data directory.
type testStores struct {
	roots model.Roots
}

func newTestStores(t *testing.T) *testStores {
	t.Helper()
	base := t.TempDir()
	roots := model.Roots{
		VSCode: filepath.Join(base, "Code", "User"),
		Nvim:   filepath.Join(base, "nvim"),
	}
	t.Setenv("SNIPPETSYNC_HOME", filepath.Join(base, "snippetsync"))
	t.Setenv("SNIPPETSYNC_VSCODE_ROOT", roots.VSCode)
	t.Setenv("SNIPPETSYNC_NVIM_ROOT", roots.Nvim)
	return &testStores{roots: roots}
}

func (s *testStores) path(store model.Store, name string) string {
	return filepath.Join(s.roots.SnippetsDir(store), name)
}

// runCLI runs the application and returns what it printed to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	runErr := Run(context.Background(), append([]string{"snippetsync"}, args...))

	if err := w.Close(); err != nil {
		t.Fatalf("failed to close pipe writer: %v", err)
	}
	os.Stdout = old
	output := <-done
	_ = r.Close()

	return output, runErr
}

func TestVersionVariables(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if Commit == "" {
		t.Error("Commit should not be empty")
	}
	if BuildDate == "" {
		t.Error("BuildDate should not be empty")
	}
}

func TestConfigureLogging(t *testing.T) {
	tests := map[string]struct {
		args      []string
		wantDebug bool
	}{
		"no flags":     {args: []string{"version"}},
		"verbose flag": {args: []string{"--verbose", "version"}},
		"debug flag":   {args: []string{"--debug", "version"}, wantDebug: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			logging.SetDefault(logging.New(logging.DefaultOptions()))

			if _, err := runCLI(t, tt.args...); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			got := slog.Default().Enabled(context.Background(), slog.LevelDebug)
			if got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestConfigureLogging_File(t *testing.T) {
	newTestStores(t)
	logFile := filepath.Join(t.TempDir(), "logs", "snippetsync.log")

	if _, err := runCLI(t, "--debug", "--log-file", logFile, "version"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	logging.Debug("flush check")
	util.AssertFileExists(t, logFile)

	logging.SetDefault(logging.New(logging.DefaultOptions()))
}

func TestSyncCommand(t *testing.T) {
	tests := map[string]struct {
		args       []string
		wantOutput []string
		wantNvim   bool
	}{
		"sync": {
			args:       []string{"sync"},
			wantOutput: []string{"Synced vscode->nvim", "Created:     1", "Manifest: 1 snippet files"},
			wantNvim:   true,
		},
		"dry run": {
			args:       []string{"sync", "--dry-run"},
			wantOutput: []string{"Dry run - no changes made", "Created:     1"},
		},
		"short dry run flag": {
			args:       []string{"sync", "-d"},
			wantOutput: []string{"Dry run - no changes made"},
		},
		"skip validation": {
			args:       []string{"sync", "--skip-validation", "--no-manifest"},
			wantOutput: []string{"Synced nvim->vscode"},
			wantNvim:   true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s := newTestStores(t)
			util.WriteFile(t, s.path(model.VSCode, "python.code-snippets"), pythonSnippets)

			output, err := runCLI(t, tt.args...)
			if err != nil {
				t.Fatalf("Run() error = %v\noutput: %s", err, output)
			}
			for _, want := range tt.wantOutput {
				if !strings.Contains(output, want) {
					t.Errorf("output = %q, want substring %q", output, want)
				}
			}

			nvimFile := s.path(model.Nvim, "python.code-snippets")
			if tt.wantNvim {
				util.AssertFileExists(t, nvimFile)
				if strings.Contains(util.ReadFile(t, nvimFile), "//") {
					t.Error("comment lines should be dropped from the Neovim copy")
				}
			} else {
				util.AssertNoFile(t, nvimFile)
			}
		})
	}
}

func TestSyncCommand_ManifestFlag(t *testing.T) {
	s := newTestStores(t)
	util.WriteFile(t, s.path(model.VSCode, "python.code-snippets"), pythonSnippets)

	if _, err := runCLI(t, "sync", "--no-manifest"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	util.AssertNoFile(t, filepath.Join(s.roots.SnippetsDir(model.Nvim), model.ManifestFileName))

	if _, err := runCLI(t, "sync"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	manifest := util.ReadFile(t, filepath.Join(s.roots.SnippetsDir(model.Nvim), model.ManifestFileName))
	for _, want := range []string{`"name": "nvim-snippets"`, `"language": "python"`, `"path": "./python.code-snippets"`} {
		if !strings.Contains(manifest, want) {
			t.Errorf("manifest missing %s:\n%s", want, manifest)
		}
	}
}

func TestSyncCommand_ForceCreatesBackup(t *testing.T) {
	s := newTestStores(t)
	util.WriteFile(t, s.path(model.VSCode, "python.code-snippets"), pythonSnippets)
	util.WriteFile(t, s.path(model.Nvim, "python.code-snippets"), `{"Old": {"prefix": "old", "body": "old"}}`)

	output, err := runCLI(t, "sync", "--force-vscode")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(output, "Overwritten: 1") {
		t.Errorf("output = %q, want an overwrite", output)
	}
	if strings.Contains(util.ReadFile(t, s.path(model.Nvim, "python.code-snippets")), "Old") {
		t.Error("Neovim copy should have been replaced")
	}

	output, err = runCLI(t, "backup", "list", "--store", "nvim")
	if err != nil {
		t.Fatalf("backup list error = %v", err)
	}
	if !strings.Contains(output, s.path(model.Nvim, "python.code-snippets")) {
		t.Errorf("backup list = %q, want the replaced file", output)
	}
}

func TestSyncCommand_SkipBackup(t *testing.T) {
	s := newTestStores(t)
	util.WriteFile(t, s.path(model.VSCode, "python.code-snippets"), pythonSnippets)
	util.WriteFile(t, s.path(model.Nvim, "python.code-snippets"), `{}`)

	if _, err := runCLI(t, "sync", "-v", "--skip-backup"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	output, err := runCLI(t, "backup", "list")
	if err != nil {
		t.Fatalf("backup list error = %v", err)
	}
	if !strings.Contains(output, "No backups found") {
		t.Errorf("backup list = %q, want no backups", output)
	}
}

func TestSyncCommand_ValidationFailure(t *testing.T) {
	s := newTestStores(t)
	util.WriteFile(t, s.roots.SnippetsDir(model.Nvim), "not a directory")

	if _, err := runCLI(t, "sync"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSyncCommand_DecodeFailure(t *testing.T) {
	s := newTestStores(t)
	util.WriteBytes(t, s.path(model.VSCode, "broken.code-snippets"), []byte{0xff, 0xfe, 0x81, 0x00})

	if _, err := runCLI(t, "sync"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNewCommand(t *testing.T) {
	s := newTestStores(t)
	input := filepath.Join(t.TempDir(), "header.txt")
	util.WriteFile(t, input, "# Copyright\n# SPDX-License-Identifier: MIT\n")
	target := s.path(model.VSCode, "header.code-snippets")

	output, err := runCLI(t, "new", "--dry-run", input)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(output, `"body": [`) || !strings.Contains(output, `"# SPDX-License-Identifier: MIT"`) {
		t.Errorf("output = %q, want the snippet JSON", output)
	}
	util.AssertNoFile(t, target)

	output, err = runCLI(t, "new", "--scope", "python", input)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(output, "Snippet 'header' created") {
		t.Errorf("output = %q", output)
	}
	content := util.ReadFile(t, target)
	for _, want := range []string{`"prefix": "header"`, `"scope": "python"`, `"description": "Snippet for header"`, `    "header": {`} {
		if !strings.Contains(content, want) {
			t.Errorf("snippet file missing %q:\n%s", want, content)
		}
	}

	if _, err := runCLI(t, "new", input); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected an error for an existing file, got %v", err)
	}
	if _, err := runCLI(t, "new", "--force", input); err != nil {
		t.Errorf("--force should overwrite, got %v", err)
	}
}

func TestNewCommand_Errors(t *testing.T) {
	newTestStores(t)

	tests := map[string]struct {
		args []string
		want string
	}{
		"missing argument": {args: []string{"new"}, want: "requires a text file"},
		"missing file":     {args: []string{"new", filepath.Join(t.TempDir(), "nope.txt")}, want: "file not found"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestManifestCommand(t *testing.T) {
	s := newTestStores(t)
	util.WriteFile(t, s.path(model.Nvim, "lua.code-snippets"), `{"Fn": {"prefix": "fn", "body": "function", "scope": "lua"}}`)
	manifestPath := filepath.Join(s.roots.SnippetsDir(model.Nvim), model.ManifestFileName)

	output, err := runCLI(t, "manifest", "--dry-run")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(output, `"language": "lua"`) {
		t.Errorf("output = %q, want the manifest JSON", output)
	}
	util.AssertNoFile(t, manifestPath)

	output, err = runCLI(t, "manifest")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(output, "1 snippet files") {
		t.Errorf("output = %q", output)
	}
	util.AssertFileExists(t, manifestPath)
}

func TestStatusCommand(t *testing.T) {
	s := newTestStores(t)
	util.WriteFile(t, s.path(model.VSCode, "python.code-snippets"), pythonSnippets)
	util.WriteFile(t, s.path(model.VSCode, "go.code-snippets"), "{}")
	util.WriteFile(t, s.path(model.Nvim, "go.code-snippets"), "{}")
	util.WriteFile(t, s.path(model.Nvim, "lua.code-snippets"), "{}")

	output, err := runCLI(t, "status")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, want := range []string{"python.code-snippets", "lua.code-snippets", "3 files: 1 in both, 1 VS Code only, 1 Neovim only"} {
		if !strings.Contains(output, want) {
			t.Errorf("output = %q, want substring %q", output, want)
		}
	}
}

func TestStatusCommand_Empty(t *testing.T) {
	newTestStores(t)

	output, err := runCLI(t, "status")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(output, "No snippet files found") {
		t.Errorf("output = %q", output)
	}
}

func TestScopesCommand(t *testing.T) {
	tests := map[string]struct {
		args []string
		want []string
	}{
		"forward": {args: []string{"scopes"}, want: []string{"shellscript", "sh,zsh", "VS Code"}},
		"reverse": {args: []string{"scopes", "--reverse"}, want: []string{"bash", "shellscript", "Neovim"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			newTestStores(t)
			output, err := runCLI(t, tt.args...)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("output = %q, want substring %q", output, want)
				}
			}
		})
	}
}

func TestScopesCommand_Overlay(t *testing.T) {
	newTestStores(t)
	overlay := filepath.Join(t.TempDir(), "scopes.toml")
	util.WriteFile(t, overlay, "[vscode_to_nvim]\nmarkdown = \"md\"\n")
	t.Setenv("SNIPPETSYNC_SCOPES_OVERLAY_PATH", overlay)

	output, err := runCLI(t, "scopes")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(output, "markdown") {
		t.Errorf("output = %q, want the overlay entry", output)
	}
}

func TestBackupRestoreCommand(t *testing.T) {
	s := newTestStores(t)
	target := s.path(model.Nvim, "python.code-snippets")
	util.WriteFile(t, s.path(model.VSCode, "python.code-snippets"), pythonSnippets)
	util.WriteFile(t, target, `{"Mine": {"prefix": "mine", "body": "mine"}}`)

	if _, err := runCLI(t, "sync", "--force-vscode"); err != nil {
		t.Fatalf("sync error = %v", err)
	}

	cfg, err := config.Load()
	util.AssertNoError(t, err)
	env := &environment{cfg: cfg}
	backups, err := env.backups().List("")
	util.AssertNoError(t, err)
	if len(backups) != 1 {
		t.Fatalf("expected 1 backup in %s, got %d", cfg.Backup.Location, len(backups))
	}

	output, err := runCLI(t, "backup", "restore", backups[0].ID)
	if err != nil {
		t.Fatalf("restore error = %v", err)
	}
	if !strings.Contains(output, "Restored") {
		t.Errorf("output = %q", output)
	}
	if !strings.Contains(util.ReadFile(t, target), "Mine") {
		t.Error("restore should bring back the replaced content")
	}
}

func TestBackupRestoreCommand_Errors(t *testing.T) {
	tests := map[string][]string{
		"missing id": {"backup", "restore"},
		"unknown id": {"backup", "restore", "nope"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			newTestStores(t)
			if _, err := runCLI(t, args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBackupListCommand_InvalidStore(t *testing.T) {
	newTestStores(t)
	if _, err := runCLI(t, "backup", "list", "--store", "emacs"); err == nil {
		t.Error("expected error for unknown store")
	}
}

func TestBackupCleanupCommand(t *testing.T) {
	newTestStores(t)
	output, err := runCLI(t, "backup", "cleanup", "--dry-run")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(output, "Would delete 0 backup(s)") {
		t.Errorf("output = %q", output)
	}
}

func TestConfigCommand(t *testing.T) {
	tests := map[string]struct {
		args       []string
		wantErr    bool
		wantOutput string
	}{
		"config default":          {args: []string{"config"}, wantOutput: "snippetsync configuration"},
		"config show":             {args: []string{"config", "show"}, wantOutput: "max_backups: 20"},
		"config show json":        {args: []string{"config", "show", "--format", "json"}, wantOutput: `"MaxBackups": 20`},
		"config show short flag":  {args: []string{"config", "show", "-f", "yaml"}, wantOutput: "write_manifest: true"},
		"config show bad format":  {args: []string{"config", "show", "--format", "xml"}, wantErr: true},
		"config path":             {args: []string{"config", "path"}, wantOutput: "config.yaml"},
		"config roots from flags": {args: []string{"--nvim-root", "/flag/nvim", "config", "show"}, wantOutput: "/flag/nvim"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			newTestStores(t)
			output, err := runCLI(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !strings.Contains(output, tt.wantOutput) {
				t.Errorf("output = %q, want substring %q", output, tt.wantOutput)
			}
		})
	}
}

func TestConfigInitCommand(t *testing.T) {
	newTestStores(t)
	path := filepath.Join(t.TempDir(), "snippetsync.yaml")

	output, err := runCLI(t, "--config", path, "config", "init")
	if err != nil {
		t.Fatalf("init error = %v", err)
	}
	if !strings.Contains(output, "Created config file") {
		t.Errorf("output = %q", output)
	}
	util.AssertFileExists(t, path)

	if _, err := runCLI(t, "--config", path, "config", "init"); err == nil {
		t.Error("expected error when the config file exists")
	}
	if _, err := runCLI(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}

func TestConfigFileSettingsApply(t *testing.T) {
	s := newTestStores(t)
	path := filepath.Join(t.TempDir(), "snippetsync.yaml")
	util.WriteFile(t, path, "sync:\n  write_manifest: false\n")
	util.WriteFile(t, s.path(model.VSCode, "python.code-snippets"), pythonSnippets)

	if _, err := runCLI(t, "--config", path, "sync"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	util.AssertFileExists(t, s.path(model.Nvim, "python.code-snippets"))
	util.AssertNoFile(t, filepath.Join(s.roots.SnippetsDir(model.Nvim), model.ManifestFileName))
}
