package monitor

import (
	"context"
	"fmt"
	"time"

	clog "github.com/charmbracelet/log"
	"github.com/msalah0e/subtick/internal/preset"
)

// DefaultInterval is the pause between two fetches.
const DefaultInterval = 10 * time.Second

// Fetcher returns the current subscriber count.
type Fetcher interface {
	Fetch(ctx context.Context, cred preset.Credential) (uint32, error)
}

// Sender delivers one signal byte to the hardware.
type Sender interface {
	Send(b byte) error
}

// Signal is the outcome of one tick.
type Signal int

const (
	None Signal = iota
	Increase
	Decrease
)

func (s Signal) String() string {
	switch s {
	case Increase:
		return "increase"
	case Decrease:
		return "decrease"
	}
	return "none"
}

// DeviceError means the signal could not be written. The link is considered
// unusable and the monitor stops.
type DeviceError struct {
	Signal Signal
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("send %s signal: %v", e.Signal, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval sets the pause between fetches.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) { m.interval = d }
}

// WithSignals sets the bytes written on increase and decrease.
func WithSignals(increase, decrease byte) Option {
	return func(m *Monitor) {
		m.increase = increase
		m.decrease = decrease
	}
}

// WithLogger sets where counts and fetch errors are reported.
func WithLogger(l *clog.Logger) Option {
	return func(m *Monitor) { m.log = l }
}

// WithSleep replaces the wait between ticks.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(m *Monitor) { m.sleep = sleep }
}

// Monitor polls a Fetcher and signals changes through a Sender.
type Monitor struct {
	fetcher Fetcher
	sender  Sender
	cred    preset.Credential

	interval time.Duration
	increase byte
	decrease byte
	log      *clog.Logger
	sleep    func(ctx context.Context, d time.Duration) error

	observed uint32
	seen     bool
}

// New returns a Monitor for cred. Defaults: 10s interval, '+' and '-' signals.
func New(f Fetcher, s Sender, cred preset.Credential, opts ...Option) *Monitor {
	m := &Monitor{
		fetcher:  f,
		sender:   s,
		cred:     cred,
		interval: DefaultInterval,
		increase: '+',
		decrease: '-',
		log:      clog.Default(),
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Observed returns the last successfully fetched count, and false before the
// first success.
func (m *Monitor) Observed() (uint32, bool) {
	return m.observed, m.seen
}

// Tick fetches once and signals a change against the observed count. Fetch
// failures are logged and leave the state alone; only a device failure is
// returned.
func (m *Monitor) Tick(ctx context.Context) (Signal, error) {
	n, err := m.fetcher.Fetch(ctx, m.cred)
	if err != nil {
		m.log.Error("error getting subscriber count", "err", err)
		return None, nil
	}

	if !m.seen {
		m.observed, m.seen = n, true
		m.log.Info("starting subscriber count", "count", n)
		return None, nil
	}

	old := m.observed
	switch {
	case n > old:
		m.observed = n
		if err := m.sender.Send(m.increase); err != nil {
			return Increase, &DeviceError{Signal: Increase, Err: err}
		}
		m.log.Info("gained subscribers", "count", n, "delta", n-old)
		return Increase, nil
	case n < old:
		m.observed = n
		if err := m.sender.Send(m.decrease); err != nil {
			return Decrease, &DeviceError{Signal: Decrease, Err: err}
		}
		m.log.Info("lost subscribers", "count", n, "delta", old-n)
		return Decrease, nil
	}
	return None, nil
}

// Run ticks forever, sleeping the configured interval after each tick. It
// returns on a device failure or when ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("monitoring", "channel", m.cred.ResourceID, "interval", m.interval)
	for {
		if _, err := m.Tick(ctx); err != nil {
			return err
		}
		if err := m.sleep(ctx, m.interval); err != nil {
			return err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
