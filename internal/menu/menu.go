package menu

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/msalah0e/subtick/internal/preset"
	"github.com/msalah0e/subtick/internal/prompt"
	"github.com/msalah0e/subtick/internal/ui"
)

// ErrAborted is returned when the operator keeps a corrupt preset file.
var ErrAborted = errors.New("preset file is corrupt and was kept; nothing to do")

// State is what the menu does with the next selection.
type State int

const (
	SelectingLoad State = iota
	SelectingUpdate
	SelectingNew
	SelectingRemove
	Skipping
)

func (s State) String() string {
	switch s {
	case SelectingLoad:
		return "load"
	case SelectingUpdate:
		return "update"
	case SelectingNew:
		return "new"
	case SelectingRemove:
		return "remove"
	case Skipping:
		return "skip"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var commands = map[string]State{
	"l": SelectingLoad,
	"u": SelectingUpdate,
	"n": SelectingNew,
	"r": SelectingRemove,
	"s": Skipping,
}

// Repository persists the preset store.
type Repository interface {
	Load() (*preset.Store, error)
	Save(s *preset.Store) error
	Delete() error
}

// Menu walks the operator through the presets until one credential is chosen.
type Menu struct {
	repo  Repository
	store *preset.Store
	in    prompt.Prompter
	out   io.Writer
	state State
}

// New returns a menu over store starting in initial. Every mutation is saved
// through repo.
func New(repo Repository, store *preset.Store, in prompt.Prompter, out io.Writer, initial State) *Menu {
	if store == nil {
		store = preset.NewStore()
	}
	return &Menu{repo: repo, store: store, in: in, out: out, state: initial}
}

// State returns the current state.
func (m *Menu) State() State {
	return m.state
}

// Resolve loads the presets from repo and runs the menu. A missing file is
// offered to be created; a corrupt file is only ever deleted on request.
func Resolve(repo Repository, in prompt.Prompter, out io.Writer) (preset.Credential, error) {
	for {
		store, err := repo.Load()
		switch {
		case err == nil:
			initial := SelectingLoad
			if store.Len() == 0 {
				initial = SelectingNew
			}
			return New(repo, store, in, out, initial).Run()

		case errors.Is(err, preset.ErrNotFound):
			create, err := prompt.Confirm(in, "  No preset file found. Create one?")
			if err != nil {
				return preset.Credential{}, err
			}
			if !create {
				return New(repo, nil, in, out, Skipping).Run()
			}
			store = preset.NewStore()
			if err := repo.Save(store); err != nil {
				return preset.Credential{}, fmt.Errorf("create preset file: %w", err)
			}
			ui.Good.Fprintf(out, "  %s Created an empty preset file\n", ui.StatusIcon(true))
			return New(repo, store, in, out, Skipping).Run()

		case errors.Is(err, preset.ErrCorrupt):
			ui.Bad.Fprintf(out, "  Could not read presets: %v\n", err)
			del, cerr := prompt.Confirm(in, "  Delete the preset file and start over?")
			if cerr != nil {
				return preset.Credential{}, cerr
			}
			if !del {
				return preset.Credential{}, ErrAborted
			}
			if err := repo.Delete(); err != nil {
				return preset.Credential{}, fmt.Errorf("delete preset file: %w", err)
			}
			ui.Warn.Fprintf(out, "  %s Preset file deleted\n", ui.WarnIcon())

		default:
			return preset.Credential{}, err
		}
	}
}

// Run blocks until a credential is loaded or entered. It only fails on input
// or save errors.
func (m *Menu) Run() (preset.Credential, error) {
	for {
		var (
			cred preset.Credential
			done bool
			err  error
		)
		switch m.state {
		case Skipping:
			return m.transient()
		case SelectingNew:
			err = m.create()
		default:
			cred, done, err = m.choose()
		}
		if err != nil {
			return preset.Credential{}, err
		}
		if done {
			return cred, nil
		}
	}
}

// choose handles one turn of the load, update and remove states.
func (m *Menu) choose() (preset.Credential, bool, error) {
	entries := m.store.List()
	m.printListing(entries)

	input, err := m.in.Line(fmt.Sprintf("  Preset to %s: ", m.state))
	if err != nil {
		return preset.Credential{}, false, err
	}
	input = strings.TrimSpace(input)

	if next, ok := commands[strings.ToLower(input)]; ok {
		m.state = next
		return preset.Credential{}, false, nil
	}

	idx, err := strconv.Atoi(input)
	if err != nil || idx < 0 || idx >= len(entries) {
		ui.Warn.Fprintf(m.out, "  Unknown option %q\n", input)
		return preset.Credential{}, false, nil
	}
	name := entries[idx].Name

	switch m.state {
	case SelectingLoad:
		cred, _ := m.store.Get(name)
		ui.Good.Fprintf(m.out, "  %s Loaded preset %s\n", ui.StatusIcon(true), name)
		return cred, true, nil
	case SelectingUpdate:
		return preset.Credential{}, false, m.update(name)
	case SelectingRemove:
		m.store.Remove(name)
		if err := m.save(); err != nil {
			return preset.Credential{}, false, err
		}
		ui.Good.Fprintf(m.out, "  %s Removed preset %s\n", ui.StatusIcon(true), name)
	}
	return preset.Credential{}, false, nil
}

func (m *Menu) update(name string) error {
	cur, _ := m.store.Get(name)

	secret, err := m.in.Secret(fmt.Sprintf("  New API key for %s (blank keeps %s): ", name, ui.Mask(cur.Secret)))
	if err != nil {
		return err
	}
	channel, err := m.in.Line(fmt.Sprintf("  New channel id (blank keeps %s): ", cur.ResourceID))
	if err != nil {
		return err
	}
	newName, err := m.in.Line("  New name (blank keeps the current one): ")
	if err != nil {
		return err
	}

	next := cur
	if secret != "" {
		next.Secret = secret
	}
	if channel != "" {
		next.ResourceID = channel
	}
	if err := m.store.Update(name, next); err != nil {
		return err
	}
	final := name
	if newName != "" {
		err := m.store.Rename(name, newName)
		switch {
		case err == nil:
			final = newName
		case errors.Is(err, preset.ErrDuplicateName):
			ui.Warn.Fprintf(m.out, "  %s A preset named %s already exists, keeping the name %s\n", ui.WarnIcon(), newName, name)
		default:
			return err
		}
	}

	m.state = SelectingLoad
	if secret == "" && channel == "" && newName == "" {
		ui.Subtle.Fprintln(m.out, "  Nothing changed")
		return nil
	}
	if err := m.save(); err != nil {
		return err
	}
	ui.Good.Fprintf(m.out, "  %s Updated preset %s\n", ui.StatusIcon(true), final)
	return nil
}

func (m *Menu) create() error {
	name, err := m.in.Line("  Name for the new preset (blank to go back, s to skip): ")
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		m.state = SelectingLoad
		return nil
	}
	// Single-letter commands switch modes here too; they are never preset names.
	if next, ok := commands[strings.ToLower(name)]; ok {
		m.state = next
		return nil
	}
	if _, taken := m.store.Get(name); taken {
		ui.Warn.Fprintf(m.out, "  %s A preset named %s already exists\n", ui.WarnIcon(), name)
		return nil
	}

	cred, err := m.askCredential()
	if err != nil {
		return err
	}
	if err := m.store.Insert(name, cred); err != nil {
		return err
	}
	if err := m.save(); err != nil {
		return err
	}
	ui.Good.Fprintf(m.out, "  %s Saved preset %s\n", ui.StatusIcon(true), name)
	m.state = SelectingLoad
	return nil
}

func (m *Menu) transient() (preset.Credential, error) {
	ui.Subtle.Fprintln(m.out, "  Enter a credential for this session only; it will not be saved.")
	return m.askCredential()
}

func (m *Menu) askCredential() (preset.Credential, error) {
	secret, err := m.in.Secret("  YouTube Data API v3 key: ")
	if err != nil {
		return preset.Credential{}, err
	}
	channel, err := m.in.Line("  Channel id: ")
	if err != nil {
		return preset.Credential{}, err
	}
	return preset.Credential{Secret: secret, ResourceID: channel}, nil
}

func (m *Menu) save() error {
	if err := m.repo.Save(m.store); err != nil {
		return fmt.Errorf("save presets: %w", err)
	}
	return nil
}

func (m *Menu) printListing(entries []preset.Entry) {
	fmt.Fprintln(m.out)
	fmt.Fprintf(m.out, "  %s %s   %s\n",
		ui.Subtle.Sprint("mode:"), ui.Brand.Sprint(m.state),
		ui.Subtle.Sprint("[l]oad [u]pdate [n]ew [r]emove [s]kip"))
	if len(entries) == 0 {
		ui.Subtle.Fprintln(m.out, "  No presets yet. Enter n to create one or s to skip.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(m.out, "  %s %s\n", ui.Info.Sprintf("%2d:", e.Index), e.Name)
	}
}
