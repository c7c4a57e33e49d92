package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/msalah0e/subtick/internal/config"
	"github.com/msalah0e/subtick/internal/ui"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(configFilePath())
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write a config file with defaults if none exists",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				path := configFilePath()
				if err := config.EnsureExists(path); err != nil {
					ui.Bad.Printf("subtick: %v\n", err)
					os.Exit(1)
				}
				ui.Good.Printf("  %s Config at %s\n", ui.StatusIcon(true), path)
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
					ui.Bad.Printf("subtick: %v\n", err)
					os.Exit(1)
				}
			},
		},
	)

	return cmd
}

func configFilePath() string {
	if configFile != "" {
		return configFile
	}
	return config.Path()
}
