// Package inventory lists the snippet files of both stores and records which
// store holds each one.
package inventory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/klauern/snippetsync/internal/config"
	"github.com/klauern/snippetsync/internal/logging"
	"github.com/klauern/snippetsync/internal/model"
)

// ListDir returns the names of regular files directly inside dir that end with
// ext. A missing directory yields no names.
func ListDir(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Debug("snippets directory does not exist", logging.Path(dir))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read snippets directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ext) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// List builds one record per snippet file name found in either store. Records
// come back sorted by name, but callers should not depend on the order.
func List(roots model.Roots, ext string) ([]model.SnippetFileRecord, error) {
	if err := roots.Validate(); err != nil {
		return nil, &config.ConfigurationError{Field: "roots", Message: err.Error()}
	}
	if ext == "" {
		ext = model.DefaultExtension
	}

	byName := make(map[string]*model.SnippetFileRecord)
	for _, store := range model.AllStores() {
		dir := roots.SnippetsDir(store)
		names, err := ListDir(dir, ext)
		if err != nil {
			return nil, err
		}
		logging.Debug("listed snippet files",
			logging.Store(store.String()),
			logging.Path(dir),
			logging.Count(len(names)),
		)

		for _, name := range names {
			rec, ok := byName[name]
			if !ok {
				rec = &model.SnippetFileRecord{Name: name}
				byName[name] = rec
			}
			if store == model.VSCode {
				rec.InVSCode = true
			} else {
				rec.InNvim = true
			}
		}
	}

	records := make([]model.SnippetFileRecord, 0, len(byName))
	for _, rec := range byName {
		records = append(records, *rec)
	}
	slices.SortFunc(records, func(a, b model.SnippetFileRecord) int {
		return strings.Compare(a.Name, b.Name)
	})
	return records, nil
}

// Counts summarizes records by location.
type Counts struct {
	Both       int
	VSCodeOnly int
	NvimOnly   int
}

// Count tallies records by the store(s) holding them.
func Count(records []model.SnippetFileRecord) Counts {
	var c Counts
	for _, r := range records {
		switch {
		case r.InVSCode && r.InNvim:
			c.Both++
		case r.InVSCode:
			c.VSCodeOnly++
		case r.InNvim:
			c.NvimOnly++
		}
	}
	return c
}
