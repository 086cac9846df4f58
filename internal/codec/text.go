package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/klauern/snippetsync/internal/model"
)

// SnippetName derives a snippet name from a text file path: the base name
// without its last extension. Dotfiles such as .bashrc keep their full name.
func SnippetName(path string) string {
	base := filepath.Base(path)
	if name := strings.TrimSuffix(base, filepath.Ext(base)); name != "" {
		return name
	}
	return base
}

// FromText builds a snippet file holding one snippet named name whose body is
// the lines of text. The name doubles as the prefix; the scope is left empty
// so the snippet applies to every language.
func FromText(name, text string) model.SnippetFile {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	body := make([]string, 0)
	if text != "" {
		for _, line := range SplitLines(text) {
			body = append(body, strings.TrimSuffix(line, "\n"))
		}
	}

	return model.SnippetFile{
		name: {
			Prefix:      name,
			Description: fmt.Sprintf("Snippet for %s", name),
			Body:        body,
		},
	}
}

// EncodeFile renders a snippet file as four-space indented JSON, the layout
// VS Code uses for files it creates.
func EncodeFile(file model.SnippetFile) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(file); err != nil {
		return nil, fmt.Errorf("failed to encode snippet file: %w", err)
	}
	return buf.Bytes(), nil
}
