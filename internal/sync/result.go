package sync

import (
	"fmt"
	"strings"

	"github.com/klauern/snippetsync/internal/model"
	"github.com/klauern/snippetsync/internal/scope"
)

// Action represents the action taken on a snippet file during sync.
type Action string

const (
	// ActionCreated indicates the file did not exist in the target and was copied.
	ActionCreated Action = "created"

	// ActionOverwritten indicates an existing target file was replaced (force mode).
	ActionOverwritten Action = "overwritten"

	// ActionSkipped indicates the target already holds a file with this name.
	ActionSkipped Action = "skipped"

	// ActionFailed indicates an error occurred processing the file.
	ActionFailed Action = "failed"
)

// FileResult represents the outcome of syncing a single snippet file.
type FileResult struct {
	// Name is the snippet file name shared by both stores.
	Name string

	// Direction is the pass that processed the file.
	Direction scope.Direction

	// Action is the action that was taken.
	Action Action

	// TargetPath is the path the file was (or would be) written to.
	TargetPath string

	// BackupID identifies the backup taken before an overwrite, if any.
	BackupID string

	// Error contains any error that occurred during processing.
	Error error
}

// Success returns true if the file was processed without error.
func (fr *FileResult) Success() bool {
	return fr.Action != ActionFailed
}

// Result contains the outcome of one sync pass.
type Result struct {
	// Direction is the direction of the pass.
	Direction scope.Direction

	// Files contains the result for each considered file, in processing order.
	Files []FileResult

	// DryRun indicates if this was a dry run (no changes made).
	DryRun bool
}

// Created returns files that were created.
func (r *Result) Created() []FileResult {
	return r.filterByAction(ActionCreated)
}

// Overwritten returns files that were overwritten.
func (r *Result) Overwritten() []FileResult {
	return r.filterByAction(ActionOverwritten)
}

// Skipped returns files that were skipped.
func (r *Result) Skipped() []FileResult {
	return r.filterByAction(ActionSkipped)
}

// Failed returns files that failed to sync.
func (r *Result) Failed() []FileResult {
	return r.filterByAction(ActionFailed)
}

func (r *Result) filterByAction(action Action) []FileResult {
	var filtered []FileResult
	for _, fr := range r.Files {
		if fr.Action == action {
			filtered = append(filtered, fr)
		}
	}
	return filtered
}

// Success returns true if no file failed.
func (r *Result) Success() bool {
	return len(r.Failed()) == 0
}

// TotalChanged returns the number of files written to the target.
func (r *Result) TotalChanged() int {
	return len(r.Created()) + len(r.Overwritten())
}

// Summary returns a human-readable summary of the pass.
func (r *Result) Summary() string {
	var sb strings.Builder

	if r.DryRun {
		sb.WriteString("Dry run - no changes made\n")
	}

	sb.WriteString(fmt.Sprintf("Synced %s\n", r.Direction))
	sb.WriteString(fmt.Sprintf("  Created:     %d\n", len(r.Created())))
	sb.WriteString(fmt.Sprintf("  Overwritten: %d\n", len(r.Overwritten())))
	sb.WriteString(fmt.Sprintf("  Skipped:     %d\n", len(r.Skipped())))
	sb.WriteString(fmt.Sprintf("  Failed:      %d\n", len(r.Failed())))

	if !r.Success() {
		sb.WriteString("\nErrors:\n")
		for _, f := range r.Failed() {
			sb.WriteString(fmt.Sprintf("  - %s: %v\n", f.Name, f.Error))
		}
	}

	return sb.String()
}

// RunResult contains the outcome of a full sync run.
type RunResult struct {
	// RunID identifies the run in logs and backups.
	RunID string

	// Records is the inventory both passes worked from.
	Records []model.SnippetFileRecord

	// ToVSCode is the Neovim -> VS Code pass.
	ToVSCode *Result

	// ToNvim is the VS Code -> Neovim pass.
	ToNvim *Result

	// Manifest is the generated manifest, nil when manifest generation is off
	// or the run stopped before reaching it.
	Manifest *model.Manifest

	// ManifestPath is where the manifest was written; empty on dry runs.
	ManifestPath string

	// DryRun indicates if this was a dry run (no changes made).
	DryRun bool
}

// TotalChanged returns the number of files written by both passes.
func (r *RunResult) TotalChanged() int {
	n := 0
	for _, pass := range r.passes() {
		n += pass.TotalChanged()
	}
	return n
}

// Success returns true if neither pass recorded a failure.
func (r *RunResult) Success() bool {
	for _, pass := range r.passes() {
		if !pass.Success() {
			return false
		}
	}
	return true
}

// Summary returns a human-readable summary of the run.
func (r *RunResult) Summary() string {
	var sb strings.Builder
	for i, pass := range r.passes() {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(pass.Summary())
	}
	if r.Manifest != nil {
		sb.WriteString(fmt.Sprintf("\nManifest: %d snippet files", len(r.Manifest.Contributes.Snippets)))
		if r.ManifestPath != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", r.ManifestPath))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Written returns the target paths of files both passes created or
// overwrote. Dry runs write nothing.
func (r *RunResult) Written() []string {
	if r.DryRun {
		return nil
	}
	var paths []string
	for _, pass := range r.passes() {
		for _, fr := range pass.Files {
			if fr.Action == ActionCreated || fr.Action == ActionOverwritten {
				paths = append(paths, fr.TargetPath)
			}
		}
	}
	return paths
}

func (r *RunResult) passes() []*Result {
	var out []*Result
	for _, pass := range []*Result{r.ToVSCode, r.ToNvim} {
		if pass != nil {
			out = append(out, pass)
		}
	}
	return out
}
