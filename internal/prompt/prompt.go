package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Prompter reads operator answers.
type Prompter interface {
	// Line prints label and returns the next input line, trimmed.
	Line(label string) (string, error)
	// Secret is like Line but does not echo the answer when possible.
	Secret(label string) (string, error)
}

// Terminal prompts on a pair of streams, typically stdin and stdout.
type Terminal struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	masked bool
}

// NewTerminal returns a Terminal reading from in and writing prompts to out.
// Secrets are read without echo only when in is a terminal.
func NewTerminal(in *os.File, out io.Writer) *Terminal {
	return &Terminal{
		in:     bufio.NewReader(in),
		out:    out,
		fd:     int(in.Fd()),
		masked: isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()),
	}
}

// NewReader returns a Terminal over an arbitrary reader. Secrets are echoed.
func NewReader(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

func (t *Terminal) Line(label string) (string, error) {
	fmt.Fprint(t.out, label)
	line, err := t.in.ReadString('\n')
	if err != nil {
		// A final line without a newline still counts.
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) Secret(label string) (string, error) {
	if !t.masked {
		return t.Line(label)
	}
	fmt.Fprint(t.out, label)
	b, err := term.ReadPassword(t.fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// Confirm asks a yes/no question. Anything but y or yes is a no.
func Confirm(p Prompter, label string) (bool, error) {
	answer, err := p.Line(label + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
