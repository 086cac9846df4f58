// Package e2e provides testing infrastructure for end-to-end CLI tests.
// It includes a harness for running CLI commands against isolated snippet
// stores, fixture management, and assertion helpers.
package e2e

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauern/snippetsync/internal/cli"
	"github.com/klauern/snippetsync/internal/model"
)

// Result contains the outcome of running a CLI command.
type Result struct {
	// Stdout contains the captured standard output.
	Stdout string
	// Err is the error returned by the CLI command, if any.
	Err error
	// ExitCode is the inferred exit code (0 for success, 1 for error).
	ExitCode int
}

// Success returns true if the command completed without error.
func (r *Result) Success() bool {
	return r.Err == nil
}

// Harness provides a test harness for running E2E CLI tests.
// It manages environment isolation, temp directories, and output capture.
type Harness struct {
	t       *testing.T
	homeDir string
	roots   model.Roots
	env     map[string]string
}

// NewHarness creates a new E2E test harness.
// It sets up an isolated SNIPPETSYNC_HOME directory and points both store
// roots at subdirectories of the test home.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	homeDir := t.TempDir()

	h := &Harness{
		t:       t,
		homeDir: homeDir,
		roots: model.Roots{
			VSCode: filepath.Join(homeDir, ".config", "Code", "User"),
			Nvim:   filepath.Join(homeDir, ".config", "nvim"),
		},
		env: make(map[string]string),
	}

	h.SetEnv("SNIPPETSYNC_HOME", filepath.Join(homeDir, ".config", "snippetsync"))
	h.SetEnv("SNIPPETSYNC_VSCODE_ROOT", h.roots.VSCode)
	h.SetEnv("SNIPPETSYNC_NVIM_ROOT", h.roots.Nvim)

	return h
}

// SetEnv sets an environment variable for CLI commands run through this harness.
// The environment will be restored after the test completes.
func (h *Harness) SetEnv(key, value string) {
	h.t.Helper()
	h.env[key] = value
	h.t.Setenv(key, value)
}

// HomeDir returns the isolated home directory for this test harness.
func (h *Harness) HomeDir() string {
	return h.homeDir
}

// Roots returns the store roots the harness points the CLI at.
func (h *Harness) Roots() model.Roots {
	return h.roots
}

// Run executes a CLI command with the given arguments and captures the output.
func (h *Harness) Run(args ...string) *Result {
	h.t.Helper()

	if len(args) == 0 || args[0] != "snippetsync" {
		args = append([]string{"snippetsync"}, args...)
	}

	oldStdout := os.Stdout
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		h.t.Fatalf("failed to create stdout pipe: %v", err)
	}
	os.Stdout = stdoutW

	// Drain concurrently so output larger than the pipe buffer cannot block.
	var stdoutBuf bytes.Buffer
	var copyErr error
	copyDone := make(chan struct{})
	go func() {
		defer close(copyDone)
		_, copyErr = io.Copy(&stdoutBuf, stdoutR)
	}()

	cmdErr := cli.Run(context.Background(), args)

	if err := stdoutW.Close(); err != nil {
		h.t.Fatalf("failed to close stdout pipe writer: %v", err)
	}
	os.Stdout = oldStdout

	<-copyDone
	if copyErr != nil {
		h.t.Fatalf("failed to read captured stdout: %v", copyErr)
	}

	exitCode := 0
	if cmdErr != nil {
		exitCode = 1
	}

	return &Result{
		Stdout:   stdoutBuf.String(),
		Err:      cmdErr,
		ExitCode: exitCode,
	}
}
