package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/msalah0e/subtick/internal/preset"
	"github.com/msalah0e/subtick/internal/ui"
	"github.com/spf13/cobra"
)

func presetsCmd() *cobra.Command {
	var path string

	presetsCmd := &cobra.Command{
		Use:     "presets",
		Aliases: []string{"preset"},
		Short:   "Inspect saved credential presets",
	}
	presetsCmd.PersistentFlags().StringVar(&path, "presets", "", "Preset file (default from config)")

	presetsFile := func() *preset.File {
		if path != "" {
			return preset.NewFile(path)
		}
		return preset.NewFile(cfg.Presets.Path)
	}

	presetsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List presets (masked keys)",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				f := presetsFile()
				store, err := f.Load()
				if errors.Is(err, preset.ErrNotFound) {
					fmt.Printf("  No preset file at %s.\n", f.Path)
					fmt.Println("  Run `subtick` to create one")
					return
				}
				if err != nil {
					ui.Bad.Printf("subtick: %v\n", err)
					os.Exit(1)
				}

				ui.Banner("presets")
				printPresets(os.Stdout, store)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the preset file location",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				p := presetsFile().Path
				if abs, err := filepath.Abs(p); err == nil {
					p = abs
				}
				fmt.Println(p)
			},
		},
	)

	return presetsCmd
}

func printPresets(w io.Writer, store *preset.Store) {
	entries := store.List()
	if len(entries) == 0 {
		fmt.Fprintln(w, "  No presets stored.")
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		cred, _ := store.Get(e.Name)
		rows = append(rows, []string{strconv.Itoa(e.Index), e.Name, cred.ResourceID, ui.Mask(cred.Secret)})
	}
	ui.Ftable(w, []string{"#", "NAME", "CHANNEL", "KEY"}, rows)
	fmt.Fprintf(w, "\n  %d presets stored\n", len(entries))
}

// presetNames completes preset names for commands that take one.
func presetNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 || cfg == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	store, err := preset.NewFile(cfg.Presets.Path).Load()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var names []string
	for _, e := range store.List() {
		names = append(names, e.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
