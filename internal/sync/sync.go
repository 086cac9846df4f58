package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/klauern/snippetsync/internal/backup"
	"github.com/klauern/snippetsync/internal/codec"
	"github.com/klauern/snippetsync/internal/inventory"
	"github.com/klauern/snippetsync/internal/logging"
	"github.com/klauern/snippetsync/internal/manifest"
	"github.com/klauern/snippetsync/internal/model"
	"github.com/klauern/snippetsync/internal/scope"
)

// Options configures synchronization behavior.
type Options struct {
	// Extension is the snippet file extension (default .code-snippets).
	Extension string

	// Force re-copies every VS Code file into Neovim, overwriting existing ones.
	Force bool

	// DryRun reports the actions without writing any file.
	DryRun bool

	// Backups, when set, receives a copy of each Neovim file before a forced
	// overwrite replaces it.
	Backups *backup.Manager

	// WriteManifest regenerates package.json after both passes.
	WriteManifest bool

	// Translator maps scopes between the stores (default: built-in tables).
	Translator *scope.Translator

	// Progress, when set, is called once per considered file.
	Progress ProgressFunc

	// RunID tags logs and backups; a random one is generated when empty.
	RunID string
}

// DefaultOptions returns the default sync options.
func DefaultOptions() Options {
	return Options{
		Extension:     model.DefaultExtension,
		WriteManifest: true,
	}
}

// ProgressEvent describes one file about to be processed by a pass.
type ProgressEvent struct {
	Direction scope.Direction
	Name      string
	Current   int
	Total     int
}

// ProgressFunc receives progress events.
type ProgressFunc func(ProgressEvent)

// Engine reconciles the snippet files of the two stores.
type Engine struct {
	roots  model.Roots
	opts   Options
	vscode codec.SnippetFileCodec
}

// New creates an engine for roots.
func New(roots model.Roots, opts Options) *Engine {
	if opts.Extension == "" {
		opts.Extension = model.DefaultExtension
	}
	if opts.Translator == nil {
		opts.Translator = scope.Default()
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return &Engine{
		roots:  roots,
		opts:   opts,
		vscode: codec.ForStore(model.VSCode, opts.Translator),
	}
}

// RunID returns the identifier of this engine's runs.
func (e *Engine) RunID() string {
	return e.opts.RunID
}

// Records lists the snippet files of both stores.
func (e *Engine) Records() ([]model.SnippetFileRecord, error) {
	return inventory.List(e.roots, e.opts.Extension)
}

// Run performs a full sync: Neovim -> VS Code, VS Code -> Neovim, then the
// manifest. Both passes work from one inventory taken at the start. In force
// mode files the first pass copied into VS Code count as VS Code files, so
// they are converted back into Neovim too. The returned result holds whatever
// completed, even when an error stops the run.
func (e *Engine) Run(ctx context.Context) (*RunResult, error) {
	defer logging.Timer("sync")()

	log := logging.WithContext(ctx).With(logging.Run(e.opts.RunID))
	log.Debug("starting sync run",
		logging.Operation("sync"),
		slog.Bool("force", e.opts.Force),
		slog.Bool("dry_run", e.opts.DryRun),
	)

	result := &RunResult{RunID: e.opts.RunID, DryRun: e.opts.DryRun}

	records, err := e.Records()
	if err != nil {
		return result, err
	}
	result.Records = records
	log.Debug("listed snippet files", logging.Count(len(records)))

	result.ToVSCode, err = e.CopyNvimToVSCode(ctx, records)
	if err != nil {
		return result, err
	}

	toNvim := records
	if e.opts.Force && !e.opts.DryRun {
		toNvim = withCopied(records, result.ToVSCode)
	}
	result.ToNvim, err = e.CopyVSCodeToNvim(ctx, toNvim, e.opts.Force)
	if err != nil {
		return result, err
	}

	if e.opts.WriteManifest {
		result.Manifest, result.ManifestPath, err = e.Manifest()
		if err != nil {
			return result, err
		}
	}

	log.Info("sync run complete",
		logging.Count(result.TotalChanged()),
	)
	return result, nil
}

// Manifest rebuilds package.json from the current Neovim snippets directory.
// On dry runs the manifest is built but not written and the path is empty.
func (e *Engine) Manifest() (*model.Manifest, string, error) {
	dir := e.roots.SnippetsDir(model.Nvim)
	m, err := manifest.Build(dir, e.opts.Extension, e.opts.Translator)
	if err != nil {
		return nil, "", err
	}
	if e.opts.DryRun {
		return m, "", nil
	}
	path, err := manifest.Write(dir, m)
	if err != nil {
		return m, "", err
	}
	return m, path, nil
}

// CopyNvimToVSCode copies every file that exists only in Neovim into the VS
// Code snippets directory, byte for byte.
func (e *Engine) CopyNvimToVSCode(ctx context.Context, records []model.SnippetFileRecord) (*Result, error) {
	result := &Result{Direction: scope.NvimToVSCode, DryRun: e.opts.DryRun}
	srcDir := e.roots.SnippetsDir(model.Nvim)
	dstDir := e.roots.SnippetsDir(model.VSCode)

	candidates := filterRecords(records, func(r model.SnippetFileRecord) bool { return r.InNvim })
	for i, rec := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		e.report(scope.NvimToVSCode, rec.Name, i+1, len(candidates))

		fr := FileResult{
			Name:       rec.Name,
			Direction:  scope.NvimToVSCode,
			TargetPath: filepath.Join(dstDir, rec.Name),
		}
		if rec.InVSCode {
			fr.Action = ActionSkipped
			result.Files = append(result.Files, fr)
			continue
		}

		fr.Action = ActionCreated
		if !e.opts.DryRun {
			if err := copyFile(filepath.Join(srcDir, rec.Name), fr.TargetPath); err != nil {
				return e.fail(result, fr, err)
			}
		}
		result.Files = append(result.Files, fr)
		logging.Info("copied snippet file",
			logging.File(rec.Name),
			logging.Direction(scope.NvimToVSCode.String()),
			logging.Run(e.opts.RunID),
		)
	}
	return result, nil
}

// CopyVSCodeToNvim converts every VS Code file missing from Neovim (every VS
// Code file when force is set) and writes it into the Neovim snippets
// directory. A file that cannot be decoded stops the pass; files already
// written stay written.
func (e *Engine) CopyVSCodeToNvim(ctx context.Context, records []model.SnippetFileRecord, force bool) (*Result, error) {
	result := &Result{Direction: scope.VSCodeToNvim, DryRun: e.opts.DryRun}
	srcDir := e.roots.SnippetsDir(model.VSCode)
	dstDir := e.roots.SnippetsDir(model.Nvim)

	candidates := filterRecords(records, func(r model.SnippetFileRecord) bool { return r.InVSCode })
	for i, rec := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		e.report(scope.VSCodeToNvim, rec.Name, i+1, len(candidates))

		fr := FileResult{
			Name:       rec.Name,
			Direction:  scope.VSCodeToNvim,
			TargetPath: filepath.Join(dstDir, rec.Name),
		}
		switch {
		case !rec.InNvim:
			fr.Action = ActionCreated
		case force:
			fr.Action = ActionOverwritten
		default:
			fr.Action = ActionSkipped
			result.Files = append(result.Files, fr)
			continue
		}

		srcPath := filepath.Join(srcDir, rec.Name)
		// #nosec G304 - srcPath is a snippet file inside a configured store
		raw, err := os.ReadFile(srcPath)
		if err != nil {
			return e.fail(result, fr, fmt.Errorf("failed to read %s: %w", srcPath, err))
		}
		converted, err := e.vscode.Convert(srcPath, raw)
		if err != nil {
			return e.fail(result, fr, err)
		}

		if !e.opts.DryRun {
			if fr.Action == ActionOverwritten {
				if fr.BackupID, err = e.backupTarget(fr.TargetPath); err != nil {
					return e.fail(result, fr, err)
				}
			}
			if err := writeFile(fr.TargetPath, converted); err != nil {
				return e.fail(result, fr, err)
			}
		}
		result.Files = append(result.Files, fr)
		logging.Info("converted snippet file",
			logging.File(rec.Name),
			logging.Direction(scope.VSCodeToNvim.String()),
			slog.String("action", string(fr.Action)),
			logging.Run(e.opts.RunID),
		)
	}
	return result, nil
}

// backupTarget saves the Neovim file about to be overwritten.
func (e *Engine) backupTarget(path string) (string, error) {
	if e.opts.Backups == nil {
		return "", nil
	}
	md, err := e.opts.Backups.Create(path, backup.Options{
		Store:       model.Nvim.String(),
		Description: "before forced sync from " + model.VSCode.DisplayName(),
		RunID:       e.opts.RunID,
		Tags:        []string{"force"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}
	return md.ID, nil
}

func (e *Engine) fail(result *Result, fr FileResult, err error) (*Result, error) {
	fr.Action = ActionFailed
	fr.Error = err
	result.Files = append(result.Files, fr)
	logging.Error("sync stopped",
		logging.File(fr.Name),
		logging.Direction(fr.Direction.String()),
		logging.Run(e.opts.RunID),
		logging.Err(err),
	)
	return result, err
}

func (e *Engine) report(dir scope.Direction, name string, current, total int) {
	if e.opts.Progress == nil {
		return
	}
	e.opts.Progress(ProgressEvent{Direction: dir, Name: name, Current: current, Total: total})
}

// withCopied returns a copy of records in which the files pass created in VS
// Code are marked as present there.
func withCopied(records []model.SnippetFileRecord, pass *Result) []model.SnippetFileRecord {
	copied := make(map[string]bool)
	for _, fr := range pass.Created() {
		copied[fr.Name] = true
	}
	out := make([]model.SnippetFileRecord, len(records))
	for i, r := range records {
		if copied[r.Name] {
			r.InVSCode = true
		}
		out[i] = r
	}
	return out
}

func filterRecords(records []model.SnippetFileRecord, keep func(model.SnippetFileRecord) bool) []model.SnippetFileRecord {
	var out []model.SnippetFileRecord
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
