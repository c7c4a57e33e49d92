package device

import (
	"errors"
	"fmt"
	"io"

	"go.bug.st/serial"
)

// DefaultBaud matches the firmware on the counter display.
const DefaultBaud = 9600

// ErrNoPorts is returned when no serial ports are available.
var ErrNoPorts = errors.New("no serial ports found")

// Device writes single-byte signals to a serial link.
type Device struct {
	name string
	w    io.WriteCloser
}

// Open opens the named serial port at baud, 8N1.
func Open(name string, baud int) (*Device, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return &Device{name: name, w: port}, nil
}

// New wraps an already open link.
func New(name string, w io.WriteCloser) *Device {
	return &Device{name: name, w: w}
}

// Name returns the port name.
func (d *Device) Name() string {
	return d.name
}

// Send writes exactly one byte.
func (d *Device) Send(b byte) error {
	n, err := d.w.Write([]byte{b})
	if err != nil {
		return fmt.Errorf("write %s: %w", d.name, err)
	}
	if n != 1 {
		return fmt.Errorf("write %s: %w", d.name, io.ErrShortWrite)
	}
	return nil
}

func (d *Device) Close() error {
	return d.w.Close()
}

// Ports lists the serial ports present on this machine.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	if len(ports) == 0 {
		return nil, ErrNoPorts
	}
	return ports, nil
}
