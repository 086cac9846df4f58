// Package cli provides the command-line interface for snippetsync.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/snippetsync/internal/config"
	"github.com/klauern/snippetsync/internal/logging"
	"github.com/klauern/snippetsync/internal/ui"
	"github.com/klauern/snippetsync/internal/util"
)

var (
	// Version is the current version of the application.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildDate is the date and time of the build.
	BuildDate = "unknown"
)

// Run executes the CLI application with the given context and arguments.
func Run(ctx context.Context, args []string) error {
	env := &environment{}

	app := &cli.Command{
		Name:    "snippetsync",
		Usage:   "Synchronize code snippets between VS Code and Neovim",
		Version: Version,
		// -v belongs to sync --force-vscode; the version command covers --version.
		HideVersion: true,
		Writer:      os.Stdout,
		ErrWriter:   os.Stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (info level logging)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug output (debug level logging, implies verbose)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the configuration file",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to a rotating file instead of stderr",
			},
			&cli.StringFlag{
				Name:  "vscode-root",
				Usage: "VS Code user directory (overrides config and OS detection)",
			},
			&cli.StringFlag{
				Name:  "nvim-root",
				Usage: "Neovim config directory (overrides config and OS detection)",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := env.load(cmd); err != nil {
				return ctx, err
			}
			configureColors(cmd, env.cfg)
			if err := configureLogging(cmd, env.cfg); err != nil {
				return ctx, err
			}
			return logging.NewContext(ctx, logging.Default()), nil
		},
		DefaultCommand: "sync",
		Commands: []*cli.Command{
			versionCommand(),
			syncCommand(env),
			newCommand(env),
			manifestCommand(env),
			statusCommand(env),
			scopesCommand(env),
			watchCommand(env),
			backupCommand(env),
			configCommand(env),
		},
	}
	return app.Run(ctx, args)
}

// load reads the configuration file and applies the root flags on top of it.
func (e *environment) load(cmd *cli.Command) error {
	e.cfgPath = config.FilePath()
	if p := cmd.String("config"); p != "" {
		e.cfgPath = util.ExpandPath(p, "")
	}
	cfg, err := config.LoadOrDefault(e.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", e.cfgPath, err)
	}

	if v := cmd.String("vscode-root"); v != "" {
		cfg.Stores.VSCodeRoot = v
	}
	if v := cmd.String("nvim-root"); v != "" {
		cfg.Stores.NvimRoot = v
	}
	if v := cmd.String("log-file"); v != "" {
		cfg.Log.File = v
	}
	if cmd.Bool("verbose") {
		cfg.Output.Verbose = true
	}

	e.cfg = cfg
	return nil
}

// configureColors sets up color output based on CLI flags and configuration.
func configureColors(cmd *cli.Command, cfg *config.Config) {
	ui.ConfigureColors(cfg.Output.Color, cmd.Bool("no-color"))
}

// configureLogging sets up the logging level and destination based on CLI
// flags and configuration.
func configureLogging(cmd *cli.Command, cfg *config.Config) error {
	opts := logging.DefaultOptions()

	if cmd.Bool("debug") {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	} else if cfg.Output.Verbose {
		opts.Level = slog.LevelInfo
	} else {
		opts.Level = slog.LevelWarn
	}

	if cfg.Log.File != "" {
		opts.File = &logging.FileOptions{
			Path:       util.ExpandPath(cfg.Log.File, ""),
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		}
	}

	logger := logging.New(opts)
	logging.SetDefault(logger)

	logging.Debug("logging configured", slog.String("level", opts.Level.String()))

	return nil
}
