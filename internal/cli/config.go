package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lifeline/pkg/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print or check layout configuration files",
		Long: `Print or check layout configuration files.

Layout settings (margins, font size, actor width, ...) are read from a TOML
file passed with --config. Keys that are left out keep their defaults.`,
	}

	cmd.AddCommand(c.configDefaultsCommand())
	cmd.AddCommand(c.configCheckCommand())

	return cmd
}

// configDefaultsCommand prints the default config as TOML, ready to edit.
func (c *CLI) configDefaultsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the default configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Default().Encode()
			if err != nil {
				return err
			}
			_, err = stdout.Write(data)
			return err
		},
	}
}

// configCheckCommand validates a config file and prints the resolved values.
func (c *CLI) configCheckCommand() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "check [config.toml]",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			printSuccess("%s is valid", args[0])
			if quiet {
				return nil
			}
			data, err := cfg.Encode()
			if err != nil {
				return err
			}
			printNewline()
			_, err = stdout.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only report whether the file is valid")
	return cmd
}
