package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/klauern/snippetsync/internal/codec"
	"github.com/klauern/snippetsync/internal/logging"
	"github.com/klauern/snippetsync/internal/model"
	"github.com/klauern/snippetsync/internal/ui"
)

func newCommand(env *environment) *cli.Command {
	return &cli.Command{
		Name:  "new",
		Usage: "Turn a text file into a snippet file in the VS Code store",
		UsageText: `snippetsync new <text-file> [options]
   snippetsync new header.txt
   snippetsync new header.txt --scope python
   snippetsync new header.txt --output ./header.code-snippets`,
		Description: `Creates a snippet file holding one snippet whose body is the lines of
   the text file. The file name without its extension becomes the snippet
   name and prefix. The next sync copies the new file to Neovim.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to this path instead of the VS Code snippets directory",
			},
			&cli.StringFlag{
				Name:    "scope",
				Aliases: []string{"s"},
				Usage:   "Comma-separated VS Code language ids (empty applies to every language)",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Overwrite an existing snippet file",
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Print the snippet file instead of writing it",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 1 {
				return errors.New("new requires a text file")
			}
			return runNew(env, cmd, cmd.Args().Get(0))
		},
	}
}

func runNew(env *environment, cmd *cli.Command, input string) error {
	// #nosec G304 - input is the file the user asked to convert
	raw, err := os.ReadFile(input)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file not found: %s", input)
		}
		return fmt.Errorf("failed to read %s: %w", input, err)
	}
	text, err := codec.DecodeWithFallback(input, raw)
	if err != nil {
		return err
	}

	name := codec.SnippetName(input)
	file := codec.FromText(name, text)
	if s := cmd.String("scope"); s != "" {
		entry := file[name]
		entry.Scope = s
		file[name] = entry
	}
	data, err := codec.EncodeFile(file)
	if err != nil {
		return err
	}

	if cmd.Bool("dry-run") {
		fmt.Print(string(data))
		return nil
	}

	output := cmd.String("output")
	if output == "" {
		roots, err := env.roots()
		if err != nil {
			return err
		}
		output = filepath.Join(roots.SnippetsDir(model.VSCode), name+env.cfg.Extension())
	}

	if _, err := os.Stat(output); err == nil && !cmd.Bool("force") {
		return fmt.Errorf("snippet file already exists at %s (use --force to overwrite)", output)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", output, err)
	}
	// #nosec G306 - snippet files are read by the editors
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	logging.Info("created snippet file",
		logging.Path(output),
		slog.String("snippet", name),
		logging.Count(len(file[name].Body)),
	)
	fmt.Println(ui.StatusSuccess(fmt.Sprintf("Snippet '%s' created in %s", name, output)))
	return nil
}
