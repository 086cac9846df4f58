package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Store identifies one of the two snippet stores
type Store string

const (
	// VSCode is store A, keyed by VS Code language identifiers.
	VSCode Store = "vscode"
	// Nvim is store B, keyed by Neovim filetypes.
	Nvim Store = "nvim"
)

// SnippetsDirName is the subdirectory of a store root holding snippet files.
const SnippetsDirName = "snippets"

// DefaultExtension is the snippet file extension shared by both stores.
const DefaultExtension = ".code-snippets"

// IsValid returns true if the store is recognized
func (s Store) IsValid() bool {
	switch s {
	case VSCode, Nvim:
		return true
	default:
		return false
	}
}

// Other returns the opposite store.
func (s Store) Other() Store {
	if s == VSCode {
		return Nvim
	}
	return VSCode
}

// String returns the string representation of the store.
func (s Store) String() string {
	return string(s)
}

// DisplayName returns the editor name for user-facing output.
func (s Store) DisplayName() string {
	switch s {
	case VSCode:
		return "VS Code"
	case Nvim:
		return "Neovim"
	default:
		return string(s)
	}
}

// AllStores returns both stores in sync order of the A side first.
func AllStores() []Store {
	return []Store{VSCode, Nvim}
}

// ParseStore converts a user-supplied name into a Store.
func ParseStore(name string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vscode", "code", "a":
		return VSCode, nil
	case "nvim", "neovim", "b":
		return Nvim, nil
	default:
		return "", fmt.Errorf("unknown store %q (valid: vscode, nvim)", name)
	}
}

// Roots is the pair of configuration directories the sync runs against.
type Roots struct {
	VSCode string `yaml:"vscode_root" json:"vscode_root"`
	Nvim   string `yaml:"nvim_root" json:"nvim_root"`
}

// Root returns the root directory for the given store.
func (r Roots) Root(s Store) string {
	if s == VSCode {
		return r.VSCode
	}
	return r.Nvim
}

// SnippetsDir returns <root>/snippets for the given store.
func (r Roots) SnippetsDir(s Store) string {
	return filepath.Join(r.Root(s), SnippetsDirName)
}

// Validate reports which root, if any, is unset.
func (r Roots) Validate() error {
	if strings.TrimSpace(r.VSCode) == "" {
		return fmt.Errorf("%s root is not set", VSCode)
	}
	if strings.TrimSpace(r.Nvim) == "" {
		return fmt.Errorf("%s root is not set", Nvim)
	}
	return nil
}
