package model

// ManifestName is the package name Neovim snippet loaders expect.
const ManifestName = "nvim-snippets"

// ManifestFileName is written inside the Neovim snippets directory.
const ManifestFileName = "package.json"

// AllLanguages is the language expression used when a file declares no scopes.
const AllLanguages = "all"

// ManifestEntry associates a snippet file with the languages it contributes.
type ManifestEntry struct {
	Language string `json:"language"`
	Path     string `json:"path"`
}

// Contributes holds the snippet contributions of a manifest.
type Contributes struct {
	Snippets []ManifestEntry `json:"snippets"`
}

// Manifest is the package.json document describing the Neovim snippet set.
type Manifest struct {
	Name        string      `json:"name"`
	Contributes Contributes `json:"contributes"`
}

// Lookup returns the entry whose path matches, if any.
func (m *Manifest) Lookup(path string) (ManifestEntry, bool) {
	for _, e := range m.Contributes.Snippets {
		if e.Path == path {
			return e, true
		}
	}
	return ManifestEntry{}, false
}
