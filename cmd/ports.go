package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/msalah0e/subtick/internal/device"
	"github.com/msalah0e/subtick/internal/ui"
	"github.com/spf13/cobra"
)

func portsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List available serial ports",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ports, err := device.Ports()
			if errors.Is(err, device.ErrNoPorts) {
				fmt.Println("  No serial ports found.")
				fmt.Println("  Plug in the counter display and try again")
				return
			}
			if err != nil {
				ui.Bad.Printf("subtick: %v\n", err)
				os.Exit(1)
			}

			ui.Banner("serial ports")
			for i, p := range ports {
				fmt.Printf("  %s %s\n", ui.Info.Sprintf("%2d:", i), p)
			}
			if cfg.Serial.Port != "" {
				fmt.Printf("\n  Configured port: %s\n", ui.Brand.Sprint(cfg.Serial.Port))
			}
		},
	}
}
