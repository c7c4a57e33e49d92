package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/msalah0e/subtick/internal/config"
	"github.com/msalah0e/subtick/internal/counter"
	"github.com/msalah0e/subtick/internal/device"
	"github.com/msalah0e/subtick/internal/logging"
	"github.com/msalah0e/subtick/internal/menu"
	"github.com/msalah0e/subtick/internal/monitor"
	"github.com/msalah0e/subtick/internal/preset"
	"github.com/msalah0e/subtick/internal/prompt"
	"github.com/msalah0e/subtick/internal/ui"
	"github.com/spf13/cobra"
)

type runOptions struct {
	presets  string
	port     string
	baud     int
	interval int
}

var runOpts runOptions

func bindRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runOpts.presets, "presets", "", "Preset file (default from config, presets.json)")
	cmd.Flags().StringVar(&runOpts.port, "port", "", "Serial port to signal (default: ask)")
	cmd.Flags().IntVar(&runOpts.baud, "baud", device.DefaultBaud, "Serial baud rate")
	cmd.Flags().IntVar(&runOpts.interval, "interval", 10, "Seconds between subscriber count checks")
}

// applyRunFlags copies explicitly set flags over the loaded config.
func applyRunFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("presets") {
		c.Presets.Path = runOpts.presets
	}
	if flags.Changed("port") {
		c.Serial.Port = runOpts.port
	}
	if flags.Changed("baud") {
		c.Serial.Baud = runOpts.baud
	}
	if flags.Changed("interval") {
		c.Monitor.IntervalSeconds = runOpts.interval
	}
	return c.Validate()
}

func runMonitor(cmd *cobra.Command, args []string) {
	if err := applyRunFlags(cmd, cfg); err != nil {
		ui.Bad.Printf("subtick: %v\n", err)
		os.Exit(1)
	}

	ui.Banner("subscriber signal")
	in := prompt.NewTerminal(os.Stdin, os.Stdout)

	portName := cfg.Serial.Port
	if portName == "" {
		ports, err := device.Ports()
		if err != nil {
			ui.Bad.Printf("subtick: %v\n", err)
			os.Exit(1)
		}
		portName, err = choosePort(in, os.Stdout, ports)
		if err != nil {
			ui.Bad.Printf("subtick: %v\n", err)
			os.Exit(1)
		}
	}

	dev, err := device.Open(portName, cfg.Serial.Baud)
	if err != nil {
		ui.Bad.Printf("subtick: %v\n", err)
		os.Exit(1)
	}
	defer dev.Close()

	cred, err := menu.Resolve(preset.NewFile(cfg.Presets.Path), in, os.Stdout)
	if err != nil {
		if errors.Is(err, menu.ErrAborted) {
			ui.Warn.Printf("  %s %v\n", ui.WarnIcon(), err)
		} else {
			ui.Bad.Printf("subtick: %v\n", err)
		}
		dev.Close()
		os.Exit(1)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level)
	if err != nil {
		ui.Bad.Printf("subtick: %v\n", err)
		dev.Close()
		os.Exit(1)
	}

	increase, decrease := cfg.Signals()
	m := monitor.New(
		counter.NewClient(cfg.API.BaseURL, cfg.Timeout()),
		dev,
		cred,
		monitor.WithInterval(cfg.Interval()),
		monitor.WithSignals(increase, decrease),
		monitor.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println()
	if err := m.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			ui.Subtle.Println("\n  Stopped.")
			return
		}
		ui.Bad.Printf("subtick: %v\n", err)
		dev.Close()
		os.Exit(1)
	}
}

// choosePort lists ports by index and asks until a valid one is picked.
func choosePort(in prompt.Prompter, out io.Writer, ports []string) (string, error) {
	if len(ports) == 0 {
		return "", device.ErrNoPorts
	}
	for i, p := range ports {
		fmt.Fprintf(out, "  %s %s\n", ui.Info.Sprintf("%2d:", i), p)
	}
	for {
		input, err := in.Line(fmt.Sprintf("  Enter a number between 0 and %d to choose a port: ", len(ports)-1))
		if err != nil {
			return "", err
		}
		n, err := strconv.Atoi(input)
		if err != nil {
			ui.Warn.Fprintln(out, "  Please enter a number")
			continue
		}
		if n < 0 || n >= len(ports) {
			ui.Warn.Fprintf(out, "  Please enter a number between 0 and %d\n", len(ports)-1)
			continue
		}
		return ports[n], nil
	}
}
