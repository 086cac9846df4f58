package ui

import (
	"strings"
	"testing"
)

func TestTable(t *testing.T) {
	out := Table(
		[]string{"File", "Location"},
		[][]string{
			{"go.code-snippets", "both"},
			{"lua.code-snippets", "nvim only"},
		},
	)

	for _, want := range []string{"File", "Location", "go.code-snippets", "both", "lua.code-snippets", "nvim only"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Split(strings.TrimRight(out, "\n"), "\n"); len(lines) < 4 {
		t.Errorf("expected bordered table with header and two rows, got:\n%s", out)
	}
}

func TestTable_Empty(t *testing.T) {
	out := Table([]string{"File"}, nil)
	if !strings.Contains(out, "File") {
		t.Errorf("expected header in empty table:\n%s", out)
	}
}
