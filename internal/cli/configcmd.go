package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linkscope/pkg/config"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the linkscope config file",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configPathCommand())

	return cmd
}

func (c *CLI) configFile() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.Path()
}

// configInitCommand writes the defaults to the config file.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Long: `Init writes the default settings to the config file. The format follows
the file extension: .toml, .yaml or .yml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newPrinter(cmd.OutOrStdout())
			path := c.configFile()

			if _, err := os.Stat(path); err == nil && !force {
				out.warning("Config file already exists")
				out.nextStep("Overwrite with", "linkscope config init --force")
				return nil
			}
			if err := config.Save(config.Default(), path); err != nil {
				return err
			}
			out.success("Wrote default config")
			out.file(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

// configShowCommand prints the effective configuration.
func (c *CLI) configShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Show prints the configuration after the config file and LINKSCOPE_*
environment variables are applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			var name string
			switch format {
			case "toml":
				name = "config.toml"
			case "yaml", "yml":
				name = "config.yaml"
			default:
				return fmt.Errorf("invalid format: %q (must be toml or yaml)", format)
			}
			return config.Encode(cmd.OutOrStdout(), cfg, name)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "toml", "output format: toml, yaml")
	return cmd
}

// configPathCommand prints the config file path.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.configFile())
			return nil
		},
	}
}
