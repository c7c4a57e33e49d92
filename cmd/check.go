package cmd

import (
	"fmt"
	"os"

	"github.com/msalah0e/subtick/internal/counter"
	"github.com/msalah0e/subtick/internal/menu"
	"github.com/msalah0e/subtick/internal/preset"
	"github.com/msalah0e/subtick/internal/prompt"
	"github.com/msalah0e/subtick/internal/ui"
	"github.com/spf13/cobra"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "check [preset]",
		Short:             "Fetch the subscriber count once, without touching the serial port",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: presetNames,
		Run: func(cmd *cobra.Command, args []string) {
			file := preset.NewFile(cfg.Presets.Path)

			var cred preset.Credential
			if len(args) == 1 {
				store, err := file.Load()
				if err != nil {
					ui.Bad.Printf("subtick: %v\n", err)
					os.Exit(1)
				}
				c, ok := store.Get(args[0])
				if !ok {
					ui.Bad.Printf("subtick: unknown preset %q\n", args[0])
					fmt.Println("  Run `subtick presets list` to see saved presets")
					os.Exit(1)
				}
				cred = c
			} else {
				c, err := menu.Resolve(file, prompt.NewTerminal(os.Stdin, os.Stdout), os.Stdout)
				if err != nil {
					ui.Bad.Printf("subtick: %v\n", err)
					os.Exit(1)
				}
				cred = c
			}

			client := counter.NewClient(cfg.API.BaseURL, cfg.Timeout())
			n, err := client.Fetch(cmd.Context(), cred)
			if err != nil {
				fmt.Printf("  %s %v\n", ui.StatusIcon(false), err)
				os.Exit(1)
			}
			fmt.Printf("  %s %s has %s subscribers\n", ui.StatusIcon(true), cred.ResourceID, ui.Brand.Sprint(n))
		},
	}
}
