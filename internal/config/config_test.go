package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauern/snippetsync/internal/model"
	"github.com/klauern/snippetsync/internal/util"
)

// clearEnv isolates tests from SNIPPETSYNC_* variables set by the environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SNIPPETSYNC_VSCODE_ROOT", "SNIPPETSYNC_NVIM_ROOT", "SNIPPETSYNC_STORES_EXTENSION",
		"SNIPPETSYNC_SYNC_FORCE_VSCODE", "SNIPPETSYNC_SYNC_AUTO_BACKUP", "SNIPPETSYNC_SYNC_WRITE_MANIFEST",
		"SNIPPETSYNC_SCOPES_OVERLAY_PATH", "SNIPPETSYNC_BACKUP_ENABLED", "SNIPPETSYNC_BACKUP_LOCATION",
		"SNIPPETSYNC_BACKUP_MAX_BACKUPS", "SNIPPETSYNC_OUTPUT_COLOR", "SNIPPETSYNC_OUTPUT_VERBOSE",
		"SNIPPETSYNC_WATCH_DEBOUNCE", "SNIPPETSYNC_LOG_FILE",
	} {
		t.Setenv(key, "")
	}
	t.Setenv(util.HomeEnv, t.TempDir())
}

func TestDefault(t *testing.T) {
	clearEnv(t)
	cfg := Default()

	if cfg.Stores.Extension != model.DefaultExtension {
		t.Errorf("expected extension %q, got %q", model.DefaultExtension, cfg.Stores.Extension)
	}
	if cfg.Sync.ForceVSCode {
		t.Error("expected ForceVSCode to be false by default")
	}
	if !cfg.Sync.AutoBackup || !cfg.Sync.WriteManifest {
		t.Error("expected AutoBackup and WriteManifest to be true by default")
	}
	if !cfg.Backup.Enabled {
		t.Error("expected Backup.Enabled to be true by default")
	}
	if cfg.Backup.MaxBackups != 20 {
		t.Errorf("expected Backup.MaxBackups to be 20, got %d", cfg.Backup.MaxBackups)
	}
	if cfg.Output.Color != "auto" {
		t.Errorf("expected Output.Color to be 'auto', got %q", cfg.Output.Color)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected Watch.Debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if filepath.Base(cfg.Scopes.OverlayPath) != "scopes.toml" {
		t.Errorf("unexpected overlay path %q", cfg.Scopes.OverlayPath)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Stores.VSCodeRoot = "/opt/code/User"
	cfg.Stores.NvimRoot = "/opt/nvim"
	cfg.Sync.ForceVSCode = true
	cfg.Watch.Debounce = 2 * time.Second
	cfg.Output.Verbose = true

	if err := cfg.SaveToPath(configPath); err != nil {
		t.Fatalf("SaveToPath failed: %v", err)
	}

	loaded, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if loaded.Stores.VSCodeRoot != "/opt/code/User" || loaded.Stores.NvimRoot != "/opt/nvim" {
		t.Errorf("roots not preserved: %+v", loaded.Stores)
	}
	if !loaded.Sync.ForceVSCode {
		t.Error("ForceVSCode not preserved")
	}
	if loaded.Watch.Debounce != 2*time.Second {
		t.Errorf("Debounce not preserved: %v", loaded.Watch.Debounce)
	}
	if !loaded.Output.Verbose {
		t.Error("Verbose not preserved")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := FilePath()
	util.WriteFile(t, path, "stores:\n  nvim_root: /srv/nvim\nwatch:\n  debounce: 1s\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Stores.NvimRoot != "/srv/nvim" {
		t.Errorf("expected nvim root from file, got %q", cfg.Stores.NvimRoot)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("expected 1s debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.Stores.Extension != model.DefaultExtension {
		t.Errorf("expected default extension to survive, got %q", cfg.Stores.Extension)
	}
	if !Exists() {
		t.Error("Exists() should report the written config")
	}
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Stores.Extension != model.DefaultExtension {
		t.Errorf("expected defaults, got %+v", cfg.Stores)
	}
	if Exists() {
		t.Error("Exists() should be false without a config file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	util.WriteFile(t, FilePath(), "stores: [unterminated")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFromPath_Missing(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml")); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("SNIPPETSYNC_NVIM_ROOT", "/env/nvim")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	util.AssertNoError(t, err)
	util.AssertEqual(t, cfg.Stores.NvimRoot, "/env/nvim")
	util.AssertEqual(t, cfg.Backup.MaxBackups, 20)

	path := filepath.Join(t.TempDir(), "config.yaml")
	util.WriteFile(t, path, "backup:\n  max_backups: 3\n")
	cfg, err = LoadOrDefault(path)
	util.AssertNoError(t, err)
	util.AssertEqual(t, cfg.Backup.MaxBackups, 3)
}

func TestApplyEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("SNIPPETSYNC_VSCODE_ROOT", "/env/code")
	t.Setenv("SNIPPETSYNC_NVIM_ROOT", "/env/nvim")
	t.Setenv("SNIPPETSYNC_SYNC_FORCE_VSCODE", "yes")
	t.Setenv("SNIPPETSYNC_BACKUP_ENABLED", "0")
	t.Setenv("SNIPPETSYNC_BACKUP_MAX_BACKUPS", "7")
	t.Setenv("SNIPPETSYNC_WATCH_DEBOUNCE", "250ms")
	t.Setenv("SNIPPETSYNC_LOG_FILE", "/tmp/snippetsync.log")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Stores.VSCodeRoot != "/env/code" || cfg.Stores.NvimRoot != "/env/nvim" {
		t.Errorf("roots not overridden: %+v", cfg.Stores)
	}
	if !cfg.Sync.ForceVSCode {
		t.Error("expected ForceVSCode from environment")
	}
	if cfg.Backup.Enabled {
		t.Error("expected backups disabled from environment")
	}
	if cfg.Backup.MaxBackups != 7 {
		t.Errorf("expected MaxBackups 7, got %d", cfg.Backup.MaxBackups)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("expected 250ms debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.Log.File != "/tmp/snippetsync.log" {
		t.Errorf("expected log file from environment, got %q", cfg.Log.File)
	}
}

func TestParseBool(t *testing.T) {
	for input, want := range map[string]bool{
		"true": true, "TRUE": true, "1": true, "yes": true, " on ": true,
		"false": false, "0": false, "no": false, "": false, "maybe": false,
	} {
		if got := parseBool(input); got != want {
			t.Errorf("parseBool(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]struct {
		ext  string
		want string
	}{
		"default":   {ext: "", want: model.DefaultExtension},
		"with dot":  {ext: ".json", want: ".json"},
		"no dot":    {ext: "json", want: ".json"},
		"surrounds": {ext: " .code-snippets ", want: ".code-snippets"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := &Config{Stores: StoresConfig{Extension: tt.ext}}
			if got := cfg.Extension(); got != tt.want {
				t.Errorf("Extension() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectRoots(t *testing.T) {
	home := "/home/tester"
	tests := map[string]struct {
		goos string
		want model.Roots
	}{
		"linux": {goos: "linux", want: model.Roots{
			VSCode: filepath.Join(home, ".config", "Code", "User"),
			Nvim:   filepath.Join(home, ".config", "nvim"),
		}},
		"darwin": {goos: "darwin", want: model.Roots{
			VSCode: filepath.Join(home, "Library", "Application Support", "Code", "User"),
			Nvim:   filepath.Join(home, ".config", "nvim"),
		}},
		"windows": {goos: "windows", want: model.Roots{
			VSCode: filepath.Join(home, "AppData", "Roaming", "Code", "User"),
			Nvim:   filepath.Join(home, "AppData", "Local", "nvim"),
		}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := DetectRoots(tt.goos, home)
			if err != nil {
				t.Fatalf("DetectRoots(%q) failed: %v", tt.goos, err)
			}
			if got != tt.want {
				t.Errorf("DetectRoots(%q) = %+v, want %+v", tt.goos, got, tt.want)
			}
		})
	}
}

func TestDetectRoots_Unsupported(t *testing.T) {
	_, err := DetectRoots("plan9", "/home/tester")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if cfgErr.Field != "platform" {
		t.Errorf("expected platform field, got %q", cfgErr.Field)
	}

	if _, err := DetectRoots("linux", ""); !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigurationError for empty home, got %v", err)
	}
}

func TestRootsFor(t *testing.T) {
	cfg := &Config{Stores: StoresConfig{NvimRoot: "/custom/nvim"}}

	roots, err := cfg.RootsFor("linux", "/home/tester")
	if err != nil {
		t.Fatalf("RootsFor failed: %v", err)
	}
	if roots.Nvim != "/custom/nvim" {
		t.Errorf("expected explicit nvim root, got %q", roots.Nvim)
	}
	if roots.VSCode != filepath.Join("/home/tester", ".config", "Code", "User") {
		t.Errorf("expected detected vscode root, got %q", roots.VSCode)
	}
}

func TestRootsFor_ExplicitRootsSkipDetection(t *testing.T) {
	cfg := &Config{Stores: StoresConfig{VSCodeRoot: "/a", NvimRoot: "/b"}}

	roots, err := cfg.RootsFor("plan9", "")
	if err != nil {
		t.Fatalf("explicit roots should not need detection: %v", err)
	}
	if roots.VSCode != "/a" || roots.Nvim != "/b" {
		t.Errorf("unexpected roots %+v", roots)
	}
}

func TestRootsFor_Unsupported(t *testing.T) {
	cfg := &Config{}
	var cfgErr *ConfigurationError
	if _, err := cfg.RootsFor("plan9", "/home/tester"); !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigurationError, got %v", err)
	}
}

func TestConfigurationError(t *testing.T) {
	inner := errors.New("boom")
	err := &ConfigurationError{Field: "roots", Message: "unresolved", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("expected Unwrap to expose the inner error")
	}
	if err.Error() != `configuration error for "roots": unresolved: boom` {
		t.Errorf("unexpected message %q", err.Error())
	}
}
