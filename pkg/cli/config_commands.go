package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fluxorio/todos/pkg/config"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where "config init" writes when no path is given.
const DefaultConfigPath = "todo.yaml"

func (a *App) configCommand() *Command {
	return &Command{
		Name:    "config",
		Summary: "Inspect or create configuration",
		Subcommands: []*Command{
			a.configShowCommand(),
			a.configInitCommand(),
		},
	}
}

func (a *App) configShowCommand() *Command {
	var asJSON bool

	return &Command{
		Name:    "show",
		Summary: "Print the effective configuration",
		Usage:   "todo config show [--json]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("show", pflag.ContinueOnError)
			fs.BoolVar(&asJSON, "json", false, "output as JSON")
			return fs
		},
		Run: func(args []string) error {
			if err := requireArgs(args, 0); err != nil {
				return err
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if asJSON {
				return a.writeJSON(cfg)
			}

			enc := yaml.NewEncoder(a.Out)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	}
}

func (a *App) configInitCommand() *Command {
	var force bool

	return &Command{
		Name:    "init",
		Summary: "Write a configuration file with default values",
		Usage:   "todo config init [PATH] [--force]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("init", pflag.ContinueOnError)
			fs.BoolVarP(&force, "force", "f", false, "overwrite an existing file")
			return fs
		},
		Run: func(args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("unexpected argument %q", args[1])
			}
			path := DefaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return a.fail("%s already exists; use --force to overwrite.", path)
				} else if !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("stat %s: %w", path, err)
				}
			}

			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			s := newStyles(a.Out)
			fmt.Fprintln(a.Out, s.success.Render("Config written to "+path))
			return nil
		},
	}
}
