package preset

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrDuplicateName is returned when a name is already taken by another preset.
	ErrDuplicateName = errors.New("preset name already exists")
	// ErrUnknownPreset is returned when an operation names a preset that does not exist.
	ErrUnknownPreset = errors.New("preset not found")
)

// Credential is the API key and channel a preset monitors.
type Credential struct {
	Secret     string `json:"ytapi_key"`
	ResourceID string `json:"channel_id"`
}

// Entry is one line of a store listing.
type Entry struct {
	Index int
	Name  string
}

// Store maps preset names to credentials. It is not safe for concurrent use.
type Store struct {
	presets map[string]Credential
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{presets: make(map[string]Credential)}
}

// Len returns the number of presets.
func (s *Store) Len() int {
	return len(s.presets)
}

// Get returns the credential stored under name.
func (s *Store) Get(name string) (Credential, bool) {
	c, ok := s.presets[name]
	return c, ok
}

// Insert adds a new preset. An existing preset with the same name is left untouched.
func (s *Store) Insert(name string, cred Credential) error {
	if _, ok := s.presets[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	s.presets[name] = cred
	return nil
}

// Update replaces the credential of an existing preset.
func (s *Store) Update(name string, cred Credential) error {
	if _, ok := s.presets[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	s.presets[name] = cred
	return nil
}

// Rename moves a preset to a new name. Renaming a preset to its own name is a no-op.
func (s *Store) Rename(oldName, newName string) error {
	cred, ok := s.presets[oldName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPreset, oldName)
	}
	if oldName == newName {
		return nil
	}
	if _, taken := s.presets[newName]; taken {
		return fmt.Errorf("%w: %s", ErrDuplicateName, newName)
	}
	delete(s.presets, oldName)
	s.presets[newName] = cred
	return nil
}

// Remove deletes a preset. Removing a missing name does nothing.
func (s *Store) Remove(name string) {
	delete(s.presets, name)
}

// List enumerates presets in ascending name order. The order only changes
// when the store is mutated.
func (s *Store) List() []Entry {
	names := make([]string, 0, len(s.presets))
	for name := range s.presets {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, len(names))
	for i, name := range names {
		entries[i] = Entry{Index: i, Name: name}
	}
	return entries
}

func (s *Store) snapshot() map[string]Credential {
	out := make(map[string]Credential, len(s.presets))
	for k, v := range s.presets {
		out[k] = v
	}
	return out
}
