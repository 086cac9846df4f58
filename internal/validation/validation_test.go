package validation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauern/snippetsync/internal/model"
	"github.com/klauern/snippetsync/internal/util"
)

func TestError(t *testing.T) {
	tests := map[string]struct {
		err  *Error
		want string
	}{
		"without cause": {
			err:  &Error{Field: "path", Message: "path cannot be empty"},
			want: `validation failed for "path": path cannot be empty`,
		},
		"with cause": {
			err:  &Error{Field: "roots", Message: "bad", Err: errors.New("boom")},
			want: `validation failed for "roots": bad: boom`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			util.AssertEqual(t, tt.err.Error(), tt.want)
		})
	}
}

func TestErrors(t *testing.T) {
	util.AssertEqual(t, Errors(nil).Error(), "no validation errors")
	util.AssertEqual(t, Errors{errors.New("one")}.Error(), "one")
	if got := (Errors{errors.New("one"), errors.New("two")}).Error(); !strings.HasPrefix(got, "2 validation errors") {
		t.Errorf("unexpected message: %s", got)
	}
}

func TestResultSummary(t *testing.T) {
	r := &Result{Valid: true}
	util.AssertEqual(t, r.Summary(), "All validations passed")

	r.AddWarning("careful")
	util.AssertEqual(t, r.Summary(), "Validation passed with warnings (1 warning(s))")

	r.AddError(errors.New("bad"))
	util.AssertEqual(t, r.Summary(), "Validation failed (1 warning(s))")
	if r.Error() == nil || !r.HasErrors() {
		t.Error("expected errors")
	}
}

func TestValidateStores(t *testing.T) {
	tests := map[string]struct {
		setup        func(t *testing.T, base string) model.Roots
		wantValid    bool
		wantWarnings int
	}{
		"both roots exist": {
			setup: func(t *testing.T, base string) model.Roots {
				roots := model.Roots{VSCode: filepath.Join(base, "code"), Nvim: filepath.Join(base, "nvim")}
				util.WriteFile(t, filepath.Join(roots.SnippetsDir(model.VSCode), "a.code-snippets"), "{}")
				if err := os.MkdirAll(roots.Nvim, 0o750); err != nil {
					t.Fatal(err)
				}
				return roots
			},
			wantValid: true,
		},
		"missing root is a warning": {
			setup: func(_ *testing.T, base string) model.Roots {
				return model.Roots{VSCode: filepath.Join(base, "code"), Nvim: filepath.Join(base, "nvim")}
			},
			wantValid:    true,
			wantWarnings: 2,
		},
		"snippets path is a file": {
			setup: func(t *testing.T, base string) model.Roots {
				roots := model.Roots{VSCode: filepath.Join(base, "code"), Nvim: filepath.Join(base, "nvim")}
				util.WriteFile(t, roots.SnippetsDir(model.Nvim), "not a dir")
				if err := os.MkdirAll(roots.VSCode, 0o750); err != nil {
					t.Fatal(err)
				}
				return roots
			},
			wantValid: false,
		},
		"root is a file": {
			setup: func(t *testing.T, base string) model.Roots {
				roots := model.Roots{VSCode: filepath.Join(base, "code"), Nvim: filepath.Join(base, "nvim")}
				util.WriteFile(t, roots.VSCode, "file")
				if err := os.MkdirAll(roots.Nvim, 0o750); err != nil {
					t.Fatal(err)
				}
				return roots
			},
			wantValid: false,
		},
		"unset roots": {
			setup: func(_ *testing.T, _ string) model.Roots {
				return model.Roots{}
			},
			wantValid: false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			roots := tt.setup(t, t.TempDir())
			result := ValidateStores(roots, DefaultOptions())
			if result.Valid != tt.wantValid {
				t.Fatalf("expected valid=%v, got %v (errors: %v)", tt.wantValid, result.Valid, result.Errors)
			}
			if len(result.Warnings) != tt.wantWarnings {
				t.Errorf("expected %d warnings, got %v", tt.wantWarnings, result.Warnings)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	util.WriteFile(t, file, "x")

	tests := map[string]struct {
		path    string
		wantErr bool
	}{
		"directory": {path: dir},
		"empty":     {path: "", wantErr: true},
		"missing":   {path: filepath.Join(dir, "missing"), wantErr: true},
		"file":      {path: file, wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil {
				var ve *Error
				if !errors.As(err, &ve) {
					t.Errorf("expected *Error, got %T", err)
				}
			}
		})
	}
}
