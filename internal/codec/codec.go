// Package codec reads and converts snippet files for each store.
//
// VS Code tolerates // comment lines inside snippet files and may hold files
// in a legacy Windows codepage; Neovim loaders expect strict UTF-8 JSON. Each
// store gets its own SnippetFileCodec so the engine never branches on
// formats itself.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/klauern/snippetsync/internal/model"
	"github.com/klauern/snippetsync/internal/scope"
)

// SnippetFileCodec decodes, parses and converts the snippet files of one store.
type SnippetFileCodec interface {
	// Store returns the store whose format this codec reads.
	Store() model.Store
	// Decode converts raw file bytes into text.
	Decode(path string, raw []byte) (string, error)
	// Parse decodes raw and parses it into snippet entries.
	Parse(path string, raw []byte) (model.SnippetFile, error)
	// Convert returns the bytes to write into the other store.
	Convert(path string, raw []byte) ([]byte, error)
}

// ForStore returns the codec for the given store's file format.
func ForStore(s model.Store, tr *scope.Translator) SnippetFileCodec {
	if tr == nil {
		tr = scope.Default()
	}
	if s == model.VSCode {
		return &VSCodeCodec{translator: tr}
	}
	return &NvimCodec{}
}

// VSCodeCodec reads JSON-with-comments files in UTF-8 or cp932.
type VSCodeCodec struct {
	translator *scope.Translator
}

// Store returns model.VSCode.
func (c *VSCodeCodec) Store() model.Store { return model.VSCode }

// Decode tries UTF-8 first and falls back to cp932.
func (c *VSCodeCodec) Decode(path string, raw []byte) (string, error) {
	return DecodeWithFallback(path, raw)
}

// Parse strips comment lines before parsing the JSON document.
func (c *VSCodeCodec) Parse(path string, raw []byte) (model.SnippetFile, error) {
	text, err := c.Decode(path, raw)
	if err != nil {
		return nil, err
	}
	var kept strings.Builder
	for _, line := range SplitLines(text) {
		if !IsCommentLine(line) {
			kept.WriteString(line)
		}
	}
	return parseJSON(path, []byte(kept.String()))
}

// Convert drops comment lines, translates scope declarations to Neovim
// filetypes and re-encodes the result as UTF-8.
func (c *VSCodeCodec) Convert(path string, raw []byte) ([]byte, error) {
	text, err := c.Decode(path, raw)
	if err != nil {
		return nil, err
	}
	lines := FilterAndRewrite(SplitLines(text), c.translator)
	return []byte(strings.Join(lines, "")), nil
}

// NvimCodec reads strict UTF-8 JSON files.
type NvimCodec struct{}

// Store returns model.Nvim.
func (c *NvimCodec) Store() model.Store { return model.Nvim }

// Decode accepts UTF-8 only.
func (c *NvimCodec) Decode(path string, raw []byte) (string, error) {
	return DecodeUTF8(path, raw)
}

// Parse parses the file as strict JSON.
func (c *NvimCodec) Parse(path string, raw []byte) (model.SnippetFile, error) {
	text, err := c.Decode(path, raw)
	if err != nil {
		return nil, err
	}
	return parseJSON(path, []byte(text))
}

// Convert returns raw unchanged; Neovim files load in VS Code as they are.
func (c *NvimCodec) Convert(_ string, raw []byte) ([]byte, error) {
	return raw, nil
}

func parseJSON(path string, data []byte) (model.SnippetFile, error) {
	var file model.SnippetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if file == nil {
		file = model.SnippetFile{}
	}
	return file, nil
}
