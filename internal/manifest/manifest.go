// Package manifest generates the package.json that Neovim snippet loaders use
// to map snippet files to filetypes.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauern/snippetsync/internal/codec"
	"github.com/klauern/snippetsync/internal/inventory"
	"github.com/klauern/snippetsync/internal/logging"
	"github.com/klauern/snippetsync/internal/model"
	"github.com/klauern/snippetsync/internal/scope"
)

// MalformedFileError reports a Neovim snippet file that could not be decoded
// or parsed while building the manifest.
type MalformedFileError struct {
	Name string
	Path string
	Err  error
}

// Error returns a formatted error message.
func (e *MalformedFileError) Error() string {
	return fmt.Sprintf("malformed snippet file %s (%s): %v", e.Name, e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *MalformedFileError) Unwrap() error {
	return e.Err
}

// Build reads every snippet file in the Neovim snippets directory and returns
// the manifest describing them. Scopes found in the files are translated to
// Neovim filetypes.
func Build(dir, ext string, tr *scope.Translator) (*model.Manifest, error) {
	defer logging.Timer("manifest build")()

	if ext == "" {
		ext = model.DefaultExtension
	}
	if tr == nil {
		tr = scope.Default()
	}

	names, err := inventory.ListDir(dir, ext)
	if err != nil {
		return nil, err
	}
	slices.Sort(names)

	nvim := codec.ForStore(model.Nvim, tr)
	m := &model.Manifest{
		Name:        model.ManifestName,
		Contributes: model.Contributes{Snippets: make([]model.ManifestEntry, 0, len(names))},
	}

	for _, name := range names {
		path := filepath.Join(dir, name)
		language, err := languageOf(nvim, path, tr)
		if err != nil {
			logging.Error("failed to read snippet file for manifest",
				logging.File(name),
				logging.Path(path),
				logging.Err(err),
			)
			return nil, &MalformedFileError{Name: name, Path: path, Err: err}
		}
		m.Contributes.Snippets = append(m.Contributes.Snippets, model.ManifestEntry{
			Language: language,
			Path:     "./" + name,
		})
	}

	logging.Debug("built manifest",
		logging.Path(dir),
		logging.Count(len(m.Contributes.Snippets)),
	)
	return m, nil
}

// languageOf returns the comma-joined set of filetypes declared by the file,
// or AllLanguages when it declares none. Only the scope of each entry is
// read; the rest of an entry is not checked.
func languageOf(c codec.SnippetFileCodec, path string, tr *scope.Translator) (string, error) {
	// #nosec G304 - path is a file listed from the configured snippets directory
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text, err := c.Decode(path, raw)
	if err != nil {
		return "", err
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", path, err)
	}

	seen := make(map[string]bool)
	for key, entry := range entries {
		value, ok := scopeOf(entry)
		if !ok {
			logging.Warn("ignoring snippet without a string scope",
				logging.Path(path),
				logging.Key(key),
			)
			continue
		}
		for _, token := range tr.TranslateList(value, scope.VSCodeToNvim) {
			seen[strings.ReplaceAll(token, " ", "")] = true
		}
	}
	delete(seen, "")
	if len(seen) == 0 {
		return model.AllLanguages, nil
	}

	tokens := make([]string, 0, len(seen))
	for token := range seen {
		tokens = append(tokens, token)
	}
	slices.Sort(tokens)
	return strings.Join(tokens, ","), nil
}

// scopeOf returns the scope string of one snippet entry. An entry with no
// scope yields "". ok is false when the entry is not an object or its scope
// is not a string.
func scopeOf(entry json.RawMessage) (value string, ok bool) {
	var view struct {
		Scope json.RawMessage `json:"scope"`
	}
	if err := json.Unmarshal(entry, &view); err != nil {
		return "", false
	}
	if len(view.Scope) == 0 || string(view.Scope) == "null" {
		return "", true
	}
	if err := json.Unmarshal(view.Scope, &value); err != nil {
		return "", false
	}
	return value, true
}

// Encode renders m as two-space indented JSON with non-ASCII text left as is.
func Encode(m *model.Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// Write stores m as package.json inside dir, replacing any existing file, and
// returns the path written.
func Write(dir string, m *model.Manifest) (string, error) {
	data, err := Encode(m)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create snippets directory: %w", err)
	}

	path := filepath.Join(dir, model.ManifestFileName)
	// #nosec G306 - package.json is read by the editor
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	logging.Info("wrote manifest",
		logging.Path(path),
		logging.Count(len(m.Contributes.Snippets)),
	)
	return path, nil
}
