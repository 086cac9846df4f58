package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/klauern/snippetsync/internal/config"
	"github.com/klauern/snippetsync/internal/ui"
)

func configCommand(env *environment) *cli.Command {
	show := &cli.Command{
		Name:  "show",
		Usage: "Print the effective configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "yaml",
				Usage:   "Output format (yaml, json)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return showConfig(env, cmd.String("format"))
		},
	}

	return &cli.Command{
		Name:  "config",
		Usage: "Manage snippetsync configuration",
		Action: func(_ context.Context, _ *cli.Command) error {
			return showConfig(env, "yaml")
		},
		Commands: []*cli.Command{
			show,
			{
				Name:  "path",
				Usage: "Print the configuration file path",
				Action: func(_ context.Context, _ *cli.Command) error {
					fmt.Println(env.cfgPath)
					return nil
				},
			},
			{
				Name:  "init",
				Usage: "Write a configuration file with the default settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing configuration file",
					},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					if _, err := os.Stat(env.cfgPath); err == nil && !cmd.Bool("force") {
						return fmt.Errorf("config file already exists at %s (use --force to overwrite)", env.cfgPath)
					}
					if err := config.Default().SaveToPath(env.cfgPath); err != nil {
						return fmt.Errorf("failed to write config: %w", err)
					}
					fmt.Println(ui.StatusSuccess("Created config file: " + env.cfgPath))
					return nil
				},
			},
		},
	}
}

func showConfig(env *environment, format string) error {
	switch format {
	case "yaml", "yml":
		data, err := yaml.Marshal(env.cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		fmt.Printf("# snippetsync configuration (%s)\n", env.cfgPath)
		fmt.Print(string(data))
	case "json":
		data, err := json.MarshalIndent(env.cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		fmt.Println(string(data))
	default:
		return fmt.Errorf("unsupported format %q (valid: yaml, json)", format)
	}
	return nil
}
