package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPath is where presets live when nothing else is configured.
const DefaultPath = "presets.json"

var (
	// ErrNotFound means the store file does not exist yet.
	ErrNotFound = errors.New("preset file not found")
	// ErrCorrupt means the store file exists but could not be parsed.
	ErrCorrupt = errors.New("preset file is corrupt")
)

// CorruptError describes a store file that failed to parse.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() []error {
	return []error{ErrCorrupt, e.Err}
}

// File is the durable JSON form of a Store.
type File struct {
	Path string
}

// NewFile returns a File at path, or at DefaultPath when path is empty.
func NewFile(path string) *File {
	if path == "" {
		path = DefaultPath
	}
	return &File{Path: path}
}

// Load reads the store file. A missing file yields ErrNotFound; malformed
// content yields a *CorruptError and the file is left as it is.
func (f *File) Load() (*Store, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var presets map[string]Credential
	if err := json.Unmarshal(data, &presets); err != nil {
		return nil, &CorruptError{Path: f.Path, Err: err}
	}
	if presets == nil {
		return nil, &CorruptError{Path: f.Path, Err: errors.New("top-level value is not an object")}
	}
	return &Store{presets: presets}, nil
}

// Save writes the whole store to a temp file next to Path and renames it into
// place, so a failed write never clobbers the previous file.
func (f *File) Save(s *Store) error {
	data, err := json.MarshalIndent(s.snapshot(), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write presets: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, f.Path)
}

// Delete removes the store file. A missing file is not an error.
func (f *File) Delete() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
