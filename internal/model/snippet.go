package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SnippetFileRecord describes where a snippet file was observed.
// A record only exists because the file was seen in at least one store.
type SnippetFileRecord struct {
	Name     string
	InVSCode bool
	InNvim   bool
}

// Valid reports whether the record was observed in at least one store.
func (r SnippetFileRecord) Valid() bool {
	return r.Name != "" && (r.InVSCode || r.InNvim)
}

// In returns whether the file exists in the given store.
func (r SnippetFileRecord) In(s Store) bool {
	if s == VSCode {
		return r.InVSCode
	}
	return r.InNvim
}

// OnlyIn returns whether the file exists in s and not in the other store.
func (r SnippetFileRecord) OnlyIn(s Store) bool {
	return r.In(s) && !r.In(s.Other())
}

// Location returns a short label for status output.
func (r SnippetFileRecord) Location() string {
	switch {
	case r.InVSCode && r.InNvim:
		return "both"
	case r.InVSCode:
		return "vscode only"
	case r.InNvim:
		return "nvim only"
	default:
		return "none"
	}
}

// SnippetEntry is one named snippet inside a snippet file.
type SnippetEntry struct {
	Prefix      string   `json:"prefix"`
	Scope       string   `json:"scope"`
	Description string   `json:"description,omitempty"`
	Body        []string `json:"body"`
}

// Scopes splits the comma-separated scope list, trimming each token.
// Empty tokens are dropped.
func (e SnippetEntry) Scopes() []string {
	return SplitScopes(e.Scope)
}

// UnmarshalJSON accepts prefix and body either as a string or a list of strings,
// both of which editors load.
func (e *SnippetEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Prefix      json.RawMessage `json:"prefix"`
		Scope       string          `json:"scope"`
		Description string          `json:"description"`
		Body        json.RawMessage `json:"body"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	prefix, err := stringOrList(raw.Prefix)
	if err != nil {
		return fmt.Errorf("prefix: %w", err)
	}
	body, err := stringOrList(raw.Body)
	if err != nil {
		return fmt.Errorf("body: %w", err)
	}

	e.Scope = raw.Scope
	e.Description = raw.Description
	e.Body = body
	e.Prefix = ""
	if len(prefix) > 0 {
		e.Prefix = prefix[0]
	}
	return nil
}

func stringOrList(data json.RawMessage) ([]string, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return []string{s}, nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("expected string or array of strings: %w", err)
	}
	return list, nil
}

// SnippetFile maps snippet names to their definitions.
type SnippetFile map[string]SnippetEntry

// SplitScopes splits a comma-separated scope value into trimmed, non-empty tokens.
func SplitScopes(value string) []string {
	parts := strings.Split(value, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}
