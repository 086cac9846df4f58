// Package cli provides command definitions for snippetsync.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/klauern/snippetsync/internal/backup"
	"github.com/klauern/snippetsync/internal/inventory"
	"github.com/klauern/snippetsync/internal/logging"
	"github.com/klauern/snippetsync/internal/manifest"
	"github.com/klauern/snippetsync/internal/model"
	"github.com/klauern/snippetsync/internal/progress"
	"github.com/klauern/snippetsync/internal/scope"
	"github.com/klauern/snippetsync/internal/sync"
	"github.com/klauern/snippetsync/internal/ui"
	"github.com/klauern/snippetsync/internal/validation"
)

func syncCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Synchronize snippet files between VS Code and Neovim",
		UsageText: "snippetsync sync [options]",
		Description: `Copy snippet files that exist only in Neovim to VS Code, convert files
   that exist only in VS Code for Neovim, then regenerate the Neovim
   package.json manifest. Files present in both stores are left alone unless
   --force-vscode is given, in which case every VS Code file is converted
   again and replaces its Neovim copy.

   Examples:
     snippetsync sync
     snippetsync sync --dry-run
     snippetsync sync --force-vscode`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force-vscode",
				Aliases: []string{"v"},
				Usage:   "Overwrite Neovim copies with the converted VS Code files",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Preview changes without modifying files",
			},
			&cli.BoolFlag{
				Name:  "skip-backup",
				Usage: "Skip the backup of Neovim files replaced by --force-vscode",
			},
			&cli.BoolFlag{
				Name:  "no-manifest",
				Usage: "Do not regenerate package.json",
			},
			&cli.BoolFlag{
				Name:  "skip-validation",
				Usage: "Skip validation checks (not recommended)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, err := runSync(ctx, env, syncRequest{
				force:      cmd.Bool("force-vscode"),
				dryRun:     cmd.Bool("dry-run"),
				skipBackup: cmd.Bool("skip-backup"),
				noManifest: cmd.Bool("no-manifest"),
			}, !cmd.Bool("skip-validation"))
			return err
		},
	}
}

// runSync validates the stores, runs one sync and prints its outcome.
func runSync(ctx context.Context, env *environment, req syncRequest, validate bool) (*sync.RunResult, error) {
	if validate {
		roots, err := env.roots()
		if err != nil {
			return nil, err
		}
		vr := validation.ValidateStores(roots, validation.Options{RequireWritePermission: !req.dryRun})
		for _, w := range vr.Warnings {
			fmt.Println(ui.StatusWarning(w))
		}
		if vr.HasErrors() {
			return nil, vr.Error()
		}
	}

	tracker := progress.NewTracker(os.Stderr)
	req.progress = func(ev sync.ProgressEvent) {
		tracker.Update(ev.Direction.String(), ev.Current, ev.Total)
	}

	engine, err := env.engine(req)
	if err != nil {
		return nil, err
	}

	result, err := engine.Run(ctx)
	tracker.Done()
	printRunResult(result)
	if err != nil {
		return result, err
	}

	if req.force && !req.dryRun && env.backupsEnabled() && !req.skipBackup {
		cleanupBackups(env)
	}
	return result, nil
}

func printRunResult(result *sync.RunResult) {
	if result == nil {
		return
	}
	for _, pass := range []*sync.Result{result.ToVSCode, result.ToNvim} {
		if pass == nil {
			continue
		}
		for _, fr := range pass.Files {
			if fr.Action == sync.ActionSkipped {
				continue
			}
			msg := fmt.Sprintf("%s (%s)", fr.Name, pass.Direction)
			if fr.Error != nil {
				msg += ": " + fr.Error.Error()
			}
			fmt.Println(ui.ActionStatus(string(fr.Action), msg))
		}
	}
	fmt.Println()
	fmt.Print(result.Summary())
}

// cleanupBackups trims old backups after a forced sync.
func cleanupBackups(env *environment) {
	opts := backup.DefaultCleanupOptions()
	opts.MaxBackups = env.cfg.Backup.MaxBackups
	deleted, err := env.backups().Cleanup(opts)
	if err != nil {
		logging.Warn("backup cleanup failed", logging.Err(err))
		return
	}
	if len(deleted) > 0 {
		logging.Info("removed old backups", logging.Count(len(deleted)))
	}
}

func manifestCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "manifest",
		Usage: "Regenerate the Neovim package.json without syncing",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Print the manifest instead of writing it",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			engine, err := env.engine(syncRequest{dryRun: cmd.Bool("dry-run")})
			if err != nil {
				return err
			}
			m, path, err := engine.Manifest()
			if err != nil {
				return err
			}

			if cmd.Bool("dry-run") {
				data, err := manifest.Encode(m)
				if err != nil {
					return err
				}
				fmt.Print(string(data))
				return nil
			}
			fmt.Println(ui.StatusSuccess(fmt.Sprintf("Wrote %s (%d snippet files)", path, len(m.Contributes.Snippets))))
			return nil
		},
	}
}

func statusCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show which snippet files exist in which store",
		Action: func(_ context.Context, _ *cli.Command) error {
			roots, err := env.roots()
			if err != nil {
				return err
			}
			records, err := inventory.List(roots, env.cfg.Extension())
			if err != nil {
				return err
			}

			fmt.Printf("%s %s\n", ui.Bold(model.VSCode.DisplayName()+":"), roots.SnippetsDir(model.VSCode))
			fmt.Printf("%s %s\n", ui.Bold(model.Nvim.DisplayName()+":"), roots.SnippetsDir(model.Nvim))

			if len(records) == 0 {
				fmt.Println(ui.Dim("No snippet files found"))
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{r.Name, mark(r.InVSCode), mark(r.InNvim), r.Location()})
			}
			fmt.Println(ui.Table([]string{"File", model.VSCode.DisplayName(), model.Nvim.DisplayName(), "Location"}, rows))

			c := inventory.Count(records)
			fmt.Printf("%d files: %d in both, %d VS Code only, %d Neovim only\n",
				len(records), c.Both, c.VSCodeOnly, c.NvimOnly)
			return nil
		},
	}
}

func mark(present bool) string {
	if present {
		return ui.SymbolSuccess
	}
	return ui.SymbolSkipped
}

func scopesCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "scopes",
		Usage: "Show the scope translation table",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "reverse",
				Aliases: []string{"r"},
				Usage:   "Show the Neovim -> VS Code table",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			tr, err := env.translator()
			if err != nil {
				return err
			}

			dir, from, to := scope.VSCodeToNvim, model.VSCode, model.Nvim
			if cmd.Bool("reverse") {
				dir, from, to = scope.NvimToVSCode, model.Nvim, model.VSCode
			}

			table := tr.Table(dir)
			rows := make([][]string, 0, len(table))
			for _, key := range tr.Keys(dir) {
				rows = append(rows, []string{key, table[key]})
			}
			fmt.Println(ui.Table([]string{from.DisplayName(), to.DisplayName()}, rows))
			fmt.Println(ui.Dim("Unlisted scopes are kept as they are."))
			return nil
		},
	}
}

func backupCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Inspect and restore backups of overwritten Neovim snippet files",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List backups, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "store",
						Usage: "Only list backups of one store (vscode, nvim)",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					store := ""
					if s := cmd.String("store"); s != "" {
						parsed, err := model.ParseStore(s)
						if err != nil {
							return err
						}
						store = parsed.String()
					}

					backups, err := env.backups().List(store)
					if err != nil {
						return err
					}
					if len(backups) == 0 {
						fmt.Println(ui.Dim("No backups found"))
						return nil
					}

					rows := make([][]string, 0, len(backups))
					for _, b := range backups {
						rows = append(rows, []string{
							b.ID,
							b.Store,
							b.CreatedAt.Local().Format("2006-01-02 15:04:05"),
							strconv.FormatInt(b.Size, 10),
							b.SourcePath,
						})
					}
					fmt.Println(ui.Table([]string{"ID", "Store", "Created", "Size", "Source"}, rows))
					return nil
				},
			},
			{
				Name:      "restore",
				Usage:     "Restore a backup to its original location",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "target",
						Usage: "Restore to this path instead of the original location",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					id := strings.TrimSpace(cmd.Args().First())
					if id == "" {
						return errors.New("restore requires a backup id (see 'snippetsync backup list')")
					}
					md, err := env.backups().Restore(id, cmd.String("target"))
					if err != nil {
						return fmt.Errorf("failed to restore backup %s: %w", id, err)
					}
					target := cmd.String("target")
					if target == "" {
						target = md.SourcePath
					}
					fmt.Println(ui.StatusSuccess(fmt.Sprintf("Restored %s to %s", md.ID, target)))
					return nil
				},
			},
			{
				Name:  "cleanup",
				Usage: "Delete old backups beyond the configured limit",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "dry-run",
						Aliases: []string{"d"},
						Usage:   "List the backups that would be deleted",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					opts := backup.DefaultCleanupOptions()
					opts.MaxBackups = env.cfg.Backup.MaxBackups
					opts.DryRun = cmd.Bool("dry-run")

					ids, err := env.backups().Cleanup(opts)
					if err != nil {
						return err
					}
					verb := "Deleted"
					if opts.DryRun {
						verb = "Would delete"
					}
					for _, id := range ids {
						fmt.Println(ui.StatusSkipped(id))
					}
					fmt.Printf("%s %d backup(s)\n", verb, len(ids))
					return nil
				},
			},
		},
	}
}
