// Package config provides configuration management for snippetsync.
// It supports YAML configuration files, environment variables, and sensible defaults.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/klauern/snippetsync/internal/model"
	"github.com/klauern/snippetsync/internal/util"
)

// Config represents the complete snippetsync configuration.
type Config struct {
	// Stores locates the two snippet stores
	Stores StoresConfig `yaml:"stores"`

	// Sync configures default synchronization behavior
	Sync SyncConfig `yaml:"sync"`

	// Scopes configures scope translation
	Scopes ScopesConfig `yaml:"scopes"`

	// Backup configures backups taken before force overwrites
	Backup BackupConfig `yaml:"backup"`

	// Output configures display preferences
	Output OutputConfig `yaml:"output"`

	// Watch configures the watch command
	Watch WatchConfig `yaml:"watch"`

	// Log configures the optional log file
	Log LogConfig `yaml:"log"`
}

// StoresConfig holds the store roots and snippet file extension.
type StoresConfig struct {
	// VSCodeRoot is the VS Code user directory. Empty means detect per OS.
	VSCodeRoot string `yaml:"vscode_root"`
	// NvimRoot is the Neovim config directory. Empty means detect per OS.
	NvimRoot string `yaml:"nvim_root"`
	// Extension is the snippet file suffix, including the dot
	Extension string `yaml:"extension"`
}

// SyncConfig holds synchronization settings.
type SyncConfig struct {
	// ForceVSCode overwrites every Neovim copy from VS Code on each run
	ForceVSCode bool `yaml:"force_vscode"`
	// AutoBackup backs up Neovim files before they are overwritten
	AutoBackup bool `yaml:"auto_backup"`
	// WriteManifest regenerates package.json after syncing
	WriteManifest bool `yaml:"write_manifest"`
}

// ScopesConfig holds scope translation settings.
type ScopesConfig struct {
	// OverlayPath points to a TOML file extending the built-in tables
	OverlayPath string `yaml:"overlay_path"`
}

// BackupConfig holds backup settings.
type BackupConfig struct {
	// Enabled enables backups
	Enabled bool `yaml:"enabled"`
	// Location is the backup directory path
	Location string `yaml:"location"`
	// MaxBackups is the maximum number of backups to keep
	MaxBackups int `yaml:"max_backups"`
}

// OutputConfig holds display preferences.
type OutputConfig struct {
	// Color controls color output (auto, always, never)
	Color string `yaml:"color"`
	// Verbose enables verbose output
	Verbose bool `yaml:"verbose"`
}

// WatchConfig holds watch command settings.
type WatchConfig struct {
	// Debounce is how long to wait for more changes before syncing
	Debounce time.Duration `yaml:"debounce"`
}

// LogConfig holds log file settings.
type LogConfig struct {
	// File is the log file path; empty logs to stderr
	File string `yaml:"file"`
	// MaxSizeMB rotates the file once it reaches this size
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files kept
	MaxBackups int `yaml:"max_backups"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Stores: StoresConfig{
			Extension: model.DefaultExtension,
		},
		Sync: SyncConfig{
			ForceVSCode:   false,
			AutoBackup:    true,
			WriteManifest: true,
		},
		Scopes: ScopesConfig{
			OverlayPath: filepath.Join(util.SnippetsyncConfigPath(), "scopes.toml"),
		},
		Backup: BackupConfig{
			Enabled:    true,
			Location:   util.SnippetsyncBackupsPath(),
			MaxBackups: 20,
		},
		Output: OutputConfig{
			Color:   "auto",
			Verbose: false,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Log: LogConfig{
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
	}
}

// configFileName is the name of the config file.
const configFileName = "config.yaml"

// FilePath returns the path to the config file.
func FilePath() string {
	return filepath.Join(util.SnippetsyncConfigPath(), configFileName)
}

// Load loads the configuration from file, merging with defaults.
// If the config file doesn't exist, returns default configuration.
func Load() (*Config, error) {
	return LoadOrDefault(FilePath())
}

// LoadOrDefault loads configuration from path, falling back to the defaults
// (plus environment overrides) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := LoadFromPath(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = Default()
			cfg.applyEnvironment()
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnvironment()
	return cfg, nil
}

// Save writes the configuration to the config file.
func (c *Config) Save() error {
	return c.SaveToPath(FilePath())
}

// SaveToPath writes the configuration to a specific path.
func (c *Config) SaveToPath(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// #nosec G306 - config file should be readable by user
	return os.WriteFile(path, data, 0o644)
}

// applyEnvironment applies environment variable overrides.
// Environment variables follow the pattern SNIPPETSYNC_<SECTION>_<KEY>.
func (c *Config) applyEnvironment() {
	// Store settings
	if v := os.Getenv("SNIPPETSYNC_VSCODE_ROOT"); v != "" {
		c.Stores.VSCodeRoot = v
	}
	if v := os.Getenv("SNIPPETSYNC_NVIM_ROOT"); v != "" {
		c.Stores.NvimRoot = v
	}
	if v := os.Getenv("SNIPPETSYNC_STORES_EXTENSION"); v != "" {
		c.Stores.Extension = v
	}

	// Sync settings
	if v := os.Getenv("SNIPPETSYNC_SYNC_FORCE_VSCODE"); v != "" {
		c.Sync.ForceVSCode = parseBool(v)
	}
	if v := os.Getenv("SNIPPETSYNC_SYNC_AUTO_BACKUP"); v != "" {
		c.Sync.AutoBackup = parseBool(v)
	}
	if v := os.Getenv("SNIPPETSYNC_SYNC_WRITE_MANIFEST"); v != "" {
		c.Sync.WriteManifest = parseBool(v)
	}

	if v := os.Getenv("SNIPPETSYNC_SCOPES_OVERLAY_PATH"); v != "" {
		c.Scopes.OverlayPath = v
	}

	// Backup settings
	if v := os.Getenv("SNIPPETSYNC_BACKUP_ENABLED"); v != "" {
		c.Backup.Enabled = parseBool(v)
	}
	if v := os.Getenv("SNIPPETSYNC_BACKUP_LOCATION"); v != "" {
		c.Backup.Location = v
	}
	if v := os.Getenv("SNIPPETSYNC_BACKUP_MAX_BACKUPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Backup.MaxBackups = n
		}
	}

	// Output settings
	if v := os.Getenv("SNIPPETSYNC_OUTPUT_COLOR"); v != "" {
		c.Output.Color = v
	}
	if v := os.Getenv("SNIPPETSYNC_OUTPUT_VERBOSE"); v != "" {
		c.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv("SNIPPETSYNC_WATCH_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.Watch.Debounce = d
		}
	}

	if v := os.Getenv("SNIPPETSYNC_LOG_FILE"); v != "" {
		c.Log.File = v
	}
}

// parseBool parses a boolean from common string representations.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// Extension returns the configured snippet file extension, defaulting to
// .code-snippets.
func (c *Config) Extension() string {
	ext := strings.TrimSpace(c.Stores.Extension)
	if ext == "" {
		return model.DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Roots returns the configured store roots, detecting any unset root for the
// running operating system.
func (c *Config) Roots() (model.Roots, error) {
	return c.RootsFor(runtime.GOOS, util.HomeDir())
}

// RootsFor resolves the store roots as Roots does, for an explicit OS and home
// directory.
func (c *Config) RootsFor(goos, home string) (model.Roots, error) {
	roots := model.Roots{
		VSCode: util.ExpandPath(c.Stores.VSCodeRoot, ""),
		Nvim:   util.ExpandPath(c.Stores.NvimRoot, ""),
	}
	if roots.VSCode != "" && roots.Nvim != "" {
		return roots, nil
	}

	detected, err := DetectRoots(goos, home)
	if err != nil {
		return model.Roots{}, err
	}
	if roots.VSCode == "" {
		roots.VSCode = detected.VSCode
	}
	if roots.Nvim == "" {
		roots.Nvim = detected.Nvim
	}
	return roots, nil
}

// DetectRoots returns the default VS Code and Neovim directories for goos.
func DetectRoots(goos, home string) (model.Roots, error) {
	if home == "" {
		return model.Roots{}, &ConfigurationError{Field: "home", Message: "home directory could not be determined"}
	}
	switch goos {
	case "windows":
		return model.Roots{
			VSCode: filepath.Join(home, "AppData", "Roaming", "Code", "User"),
			Nvim:   filepath.Join(home, "AppData", "Local", "nvim"),
		}, nil
	case "darwin":
		return model.Roots{
			VSCode: filepath.Join(home, "Library", "Application Support", "Code", "User"),
			Nvim:   filepath.Join(home, ".config", "nvim"),
		}, nil
	case "linux":
		return model.Roots{
			VSCode: filepath.Join(home, ".config", "Code", "User"),
			Nvim:   filepath.Join(home, ".config", "nvim"),
		}, nil
	default:
		return model.Roots{}, &ConfigurationError{
			Field:   "platform",
			Message: "unsupported platform: " + goos,
		}
	}
}

// Exists returns true if a config file exists.
func Exists() bool {
	_, err := os.Stat(FilePath())
	return err == nil
}
