// Package scope translates snippet scope tokens between the VS Code language
// identifier vocabulary and the Neovim filetype vocabulary.
//
// The two directions are kept as independent tables. Several Neovim filetypes
// fold into one VS Code identifier (sh, zsh and bash all become shellscript), so
// translating VS Code -> Neovim -> VS Code does not always return the original
// token and neither table is derived from the other.
package scope

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/klauern/snippetsync/internal/logging"
	"github.com/klauern/snippetsync/internal/model"
)

// Direction selects which table a translation uses.
type Direction int

const (
	// VSCodeToNvim translates store A tokens into store B tokens.
	VSCodeToNvim Direction = iota
	// NvimToVSCode translates store B tokens into store A tokens.
	NvimToVSCode
)

// String returns a human-readable representation of the direction.
func (d Direction) String() string {
	switch d {
	case VSCodeToNvim:
		return "vscode->nvim"
	case NvimToVSCode:
		return "nvim->vscode"
	default:
		return "unknown"
	}
}

// vscodeToNvim maps VS Code language identifiers to Neovim filetypes.
var vscodeToNvim = map[string]string{
	"plaintext":        "text",
	"bat":              "dosbatch",
	"powershell":       "ps1",
	"ignore":           "gitignore",
	"shellscript":      "sh,zsh",
	"pip-requirements": "requirements",
}

// nvimToVSCode maps Neovim filetypes to VS Code language identifiers.
var nvimToVSCode = map[string]string{
	"text":         "plaintext",
	"dosbatch":     "bat",
	"ps1":          "powershell",
	"gitignore":    "ignore",
	"sh":           "shellscript",
	"zsh":          "shellscript",
	"bash":         "shellscript",
	"requirements": "pip-requirements",
}

// Translator maps scope tokens in both directions.
type Translator struct {
	toNvim   map[string]string
	toVSCode map[string]string
}

// Default returns a translator holding only the built-in tables.
func Default() *Translator {
	return &Translator{
		toNvim:   maps.Clone(vscodeToNvim),
		toVSCode: maps.Clone(nvimToVSCode),
	}
}

// Translate returns the token in the other vocabulary, or the token unchanged
// when no mapping exists.
func (t *Translator) Translate(token string, dir Direction) string {
	if mapped, ok := t.table(dir)[token]; ok {
		return mapped
	}
	return token
}

// TranslateList splits a comma-separated scope value, translates each token and
// returns the translated tokens in order. Mappings that expand to several tokens
// are flattened.
func (t *Translator) TranslateList(value string, dir Direction) []string {
	var out []string
	for _, token := range model.SplitScopes(value) {
		out = append(out, model.SplitScopes(t.Translate(token, dir))...)
	}
	return out
}

// Table returns a copy of the table for one direction.
func (t *Translator) Table(dir Direction) map[string]string {
	return maps.Clone(t.table(dir))
}

// Keys returns the mapped tokens of one direction in sorted order.
func (t *Translator) Keys(dir Direction) []string {
	return slices.Sorted(maps.Keys(t.table(dir)))
}

func (t *Translator) table(dir Direction) map[string]string {
	if dir == NvimToVSCode {
		return t.toVSCode
	}
	return t.toNvim
}

// Overlay holds user-supplied additions to the built-in tables.
type Overlay struct {
	VSCodeToNvim map[string]string `toml:"vscode_to_nvim"`
	NvimToVSCode map[string]string `toml:"nvim_to_vscode"`
}

// Apply adds the overlay entries to the translator, replacing built-in entries
// with the same key. Each table is applied only to its own direction.
func (t *Translator) Apply(o Overlay) {
	for k, v := range o.VSCodeToNvim {
		t.toNvim[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	for k, v := range o.NvimToVSCode {
		t.toVSCode[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
}

// Load returns the built-in translator extended with the TOML overlay at path.
// An empty path or a missing file yields the built-in tables.
func Load(path string) (*Translator, error) {
	t := Default()
	if path == "" {
		return t, nil
	}

	// #nosec G304 - path comes from user configuration
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Debug("no scope overlay found", logging.Path(path))
			return t, nil
		}
		return nil, fmt.Errorf("failed to read scope overlay: %w", err)
	}

	var overlay Overlay
	md, err := toml.Decode(string(data), &overlay)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scope overlay %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		logging.Warn("ignoring unknown scope overlay key",
			logging.Path(path),
			logging.Key(key.String()),
		)
	}

	t.Apply(overlay)
	logging.Debug("loaded scope overlay",
		logging.Path(path),
		logging.Count(len(overlay.VSCodeToNvim)+len(overlay.NvimToVSCode)),
	)
	return t, nil
}
