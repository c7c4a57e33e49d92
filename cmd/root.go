package cmd

import (
	"os"

	"github.com/msalah0e/subtick/internal/config"
	"github.com/msalah0e/subtick/internal/ui"
	"github.com/spf13/cobra"
)

var version = "0.3.0"

var (
	cfg        *config.Config
	configFile string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "subtick",
	Short: "subtick — signal a serial device when a subscriber count changes",
	Long: ui.Brand.Sprint(ui.Bell+" subtick") + " — watch a YouTube channel's subscriber count\n" +
		ui.Subtle.Sprint("Pick a preset, then every change is sent to your serial device as a single byte"),
	Version: version + " " + ui.Bell,
	Args:    cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		c, err := config.Load(configFile)
		if err != nil {
			ui.Bad.Printf("subtick: %v\n", err)
			os.Exit(1)
		}
		cfg = c
		ui.SetColor(cfg.UI.Color && !noColor)
	},
	Run: runMonitor,
}

func init() {
	rootCmd.SetVersionTemplate("subtick {{ .Version }}\n")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/subtick/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	bindRunFlags(rootCmd)

	rootCmd.AddCommand(
		portsCmd(),
		presetsCmd(),
		checkCmd(),
		configCmd(),
		doctorCmd(),
		completionCmd(),
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
