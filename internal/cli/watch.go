package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/klauern/snippetsync/internal/logging"
	"github.com/klauern/snippetsync/internal/ui"
	"github.com/klauern/snippetsync/internal/watch"
)

func watchCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Sync once, then again whenever a snippet file changes",
		Description: `Runs a sync, then watches both snippets directories and syncs again
   after changes settle. Stop with Ctrl-C.`,
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Quiet period before syncing after a change (default from config)",
			},
			&cli.BoolFlag{
				Name:  "skip-backup",
				Usage: "Skip backups of Neovim files replaced by a forced sync",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			req := syncRequest{skipBackup: cmd.Bool("skip-backup")}
			echoes := watch.NewEchoes()
			res, err := runSync(ctx, env, req, true)
			if err != nil {
				return err
			}
			echoes.Record(res.Written()...)

			roots, err := env.roots()
			if err != nil {
				return err
			}
			fw, err := watch.NewFileWatcher(env.cfg.Extension())
			if err != nil {
				return err
			}
			if err := fw.Start(roots); err != nil {
				return err
			}
			defer func() {
				if err := fw.Stop(); err != nil {
					logging.Warn("failed to stop file watcher", logging.Err(err))
				}
			}()

			wait := env.cfg.Watch.Debounce
			if cmd.IsSet("debounce") {
				wait = cmd.Duration("debounce")
			}

			fmt.Println(ui.Info(fmt.Sprintf("Watching for changes (debounce %s). Press Ctrl-C to stop.", wait)))

			return watch.Debounce(ctx, fw.Events(), fw.Errors(), wait, func(ctx context.Context, batch []watch.FileEvent) error {
				batch = echoes.Filter(batch)
				if len(batch) == 0 {
					return nil
				}
				fmt.Printf("\n%s\n", ui.Dim(fmt.Sprintf("%d change(s) detected", len(batch))))
				res, err := runSync(ctx, env, req, false)
				if res != nil {
					echoes.Record(res.Written()...)
				}
				return err
			})
		},
	}
}
