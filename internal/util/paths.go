package util

import (
	"os"
	"path/filepath"
	"strings"
)

// HomeEnv overrides the snippetsync data directory.
const HomeEnv = "SNIPPETSYNC_HOME"

// HomeDir returns the user's home directory
func HomeDir() string {
	home, _ := os.UserHomeDir()
	return home
}

// SnippetsyncConfigPath returns the directory holding snippetsync's own
// configuration, backups and metadata.
func SnippetsyncConfigPath() string {
	if v := os.Getenv(HomeEnv); v != "" {
		return v
	}
	return filepath.Join(HomeDir(), ".config", "snippetsync")
}

// SnippetsyncBackupsPath returns the default backup directory
func SnippetsyncBackupsPath() string {
	return filepath.Join(SnippetsyncConfigPath(), "backups")
}

// ExpandPath expands a leading ~ to the home directory and resolves relative
// paths against baseDir. An empty path stays empty.
func ExpandPath(path, baseDir string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" {
		return HomeDir()
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		path = filepath.Join(HomeDir(), path[2:])
	}
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	return filepath.Clean(path)
}
