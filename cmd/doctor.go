package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/msalah0e/subtick/internal/device"
	"github.com/msalah0e/subtick/internal/preset"
	"github.com/msalah0e/subtick/internal/ui"
	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "doctor",
		Aliases: []string{"dr"},
		Short:   "Health check — verify config, presets and serial ports",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ui.Banner("health check")

			problems := 0

			if _, err := os.Stat(configFilePath()); err == nil {
				fmt.Printf("  %s config %s\n", ui.StatusIcon(true), ui.Subtle.Sprint(configFilePath()))
			} else {
				fmt.Printf("  %s config %s\n", ui.StatusIcon(true), ui.Subtle.Sprint("defaults (no file)"))
			}

			f := preset.NewFile(cfg.Presets.Path)
			store, err := f.Load()
			switch {
			case err == nil:
				fmt.Printf("  %s presets %s — %d stored\n", ui.StatusIcon(true), ui.Subtle.Sprint(f.Path), store.Len())
			case errors.Is(err, preset.ErrNotFound):
				fmt.Printf("  %s presets %s — not created yet\n", ui.WarnIcon(), ui.Subtle.Sprint(f.Path))
			default:
				fmt.Printf("  %s presets %v\n", ui.StatusIcon(false), err)
				problems++
			}

			ports, err := device.Ports()
			switch {
			case err != nil:
				fmt.Printf("  %s serial %v\n", ui.StatusIcon(false), err)
				problems++
			case cfg.Serial.Port != "" && !slices.Contains(ports, cfg.Serial.Port):
				fmt.Printf("  %s serial configured port %s not present (%d ports found)\n", ui.StatusIcon(false), cfg.Serial.Port, len(ports))
				problems++
			default:
				fmt.Printf("  %s serial %d port(s) found\n", ui.StatusIcon(true), len(ports))
			}

			fmt.Println()
			if problems > 0 {
				ui.Bad.Printf("  %d problem(s) found\n", problems)
				os.Exit(1)
			}
			ui.Good.Println("  All good!")
		},
	}
}
