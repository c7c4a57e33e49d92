package menu

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/msalah0e/subtick/internal/preset"
	"github.com/msalah0e/subtick/internal/ui"
)

func init() {
	ui.SetColor(false)
}

// scriptedPrompter answers prompts from a fixed list and records which
// prompts asked for secrets.
type scriptedPrompter struct {
	answers []string
	asked   []string
	secrets []string
}

func (p *scriptedPrompter) next(label string) (string, error) {
	p.asked = append(p.asked, label)
	if len(p.answers) == 0 {
		return "", io.EOF
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func (p *scriptedPrompter) Line(label string) (string, error) {
	return p.next(label)
}

func (p *scriptedPrompter) Secret(label string) (string, error) {
	p.secrets = append(p.secrets, label)
	return p.next(label)
}

// memRepo is an in-memory Repository that keeps a copy of every save.
type memRepo struct {
	loads   []error
	initial map[string]preset.Credential
	saves   []map[string]preset.Credential
	deletes int
	saveErr error
}

func (r *memRepo) Load() (*preset.Store, error) {
	if len(r.loads) > 0 {
		err := r.loads[0]
		r.loads = r.loads[1:]
		if err != nil {
			return nil, err
		}
	}
	return storeOf(r.initial), nil
}

func (r *memRepo) Save(s *preset.Store) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves = append(r.saves, contents(s))
	return nil
}

func (r *memRepo) Delete() error {
	r.deletes++
	return nil
}

func storeOf(m map[string]preset.Credential) *preset.Store {
	s := preset.NewStore()
	for name, cred := range m {
		s.Insert(name, cred)
	}
	return s
}

func contents(s *preset.Store) map[string]preset.Credential {
	out := make(map[string]preset.Credential)
	for _, e := range s.List() {
		out[e.Name], _ = s.Get(e.Name)
	}
	return out
}

func TestMenu_CreateThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.json")
	os.WriteFile(path, []byte("{}"), 0o600)
	file := preset.NewFile(path)

	p := &scriptedPrompter{answers: []string{"main", "k1", "c1", "0"}}
	var out bytes.Buffer

	cred, err := Resolve(file, p, &out)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := preset.Credential{Secret: "k1", ResourceID: "c1"}
	if cred != want {
		t.Errorf("expected %+v, got %+v", want, cred)
	}

	data, _ := os.ReadFile(path)
	var raw map[string]map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("store file is not valid JSON: %v", err)
	}
	if len(raw) != 1 || len(raw["main"]) != 2 || raw["main"]["ytapi_key"] != "k1" || raw["main"]["channel_id"] != "c1" {
		t.Errorf("unexpected store file %s", data)
	}

	if len(p.secrets) != 1 || !strings.Contains(p.secrets[0], "API") {
		t.Errorf("expected the API key to be read as a secret, got %v", p.secrets)
	}
}

func TestMenu_NewFromLoadState(t *testing.T) {
	repo := &memRepo{}
	p := &scriptedPrompter{answers: []string{"N", "main", "k1", "c1", "0"}}
	m := New(repo, preset.NewStore(), p, io.Discard, SelectingLoad)

	cred, err := m.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if cred.Secret != "k1" || cred.ResourceID != "c1" {
		t.Errorf("unexpected credential %+v", cred)
	}
	if len(repo.saves) != 1 {
		t.Errorf("expected 1 save, got %d", len(repo.saves))
	}
}

func TestMenu_RemoveChain(t *testing.T) {
	repo := &memRepo{initial: map[string]preset.Credential{
		"a": {Secret: "ka", ResourceID: "ca"},
		"b": {Secret: "kb", ResourceID: "cb"},
	}}
	p := &scriptedPrompter{answers: []string{"r", "1", "0", "s", "kt", "ct"}}
	var out bytes.Buffer

	cred, err := Resolve(repo, p, &out)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cred.Secret != "kt" || cred.ResourceID != "ct" {
		t.Errorf("expected transient credential, got %+v", cred)
	}

	if len(repo.saves) != 2 {
		t.Fatalf("expected 2 saves, got %d", len(repo.saves))
	}
	if _, ok := repo.saves[0]["a"]; !ok || len(repo.saves[0]) != 1 {
		t.Errorf("first save should hold only 'a', got %v", repo.saves[0])
	}
	if len(repo.saves[1]) != 0 {
		t.Errorf("second save should be empty, got %v", repo.saves[1])
	}
	if !strings.Contains(out.String(), "Removed preset b") {
		t.Errorf("missing removal message in %q", out.String())
	}
}

func TestMenu_UnknownOptions(t *testing.T) {
	repo := &memRepo{}
	store := storeOf(map[string]preset.Credential{"only": {Secret: "k", ResourceID: "c"}})
	p := &scriptedPrompter{answers: []string{"1", "-1", "x", "", "lo", "0"}}
	var out bytes.Buffer
	m := New(repo, store, p, &out, SelectingLoad)

	cred, err := m.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if cred.Secret != "k" {
		t.Errorf("unexpected credential %+v", cred)
	}
	if got := strings.Count(out.String(), "Unknown option"); got != 5 {
		t.Errorf("expected 5 unknown option messages, got %d", got)
	}
	for _, label := range p.asked {
		if label != "  Preset to load: " {
			t.Errorf("state changed on bad input, prompt %q", label)
		}
	}
	if len(repo.saves) != 0 {
		t.Errorf("bad input must not save, got %d saves", len(repo.saves))
	}
}

func TestMenu_CommandsAreCaseInsensitive(t *testing.T) {
	tests := []struct {
		input string
		state State
	}{
		{"l", SelectingLoad}, {"L", SelectingLoad},
		{"u", SelectingUpdate}, {"U", SelectingUpdate},
		{"r", SelectingRemove}, {"R", SelectingRemove},
		{" n ", SelectingNew},
		{"S", Skipping},
	}

	for _, tt := range tests {
		p := &scriptedPrompter{answers: []string{tt.input}}
		m := New(&memRepo{}, preset.NewStore(), p, io.Discard, SelectingLoad)
		if _, _, err := m.choose(); err != nil {
			t.Fatalf("choose(%q) failed: %v", tt.input, err)
		}
		if m.State() != tt.state {
			t.Errorf("input %q: expected %v, got %v", tt.input, tt.state, m.State())
		}
	}
}

func TestMenu_UpdateKeepsBlankFields(t *testing.T) {
	repo := &memRepo{}
	store := storeOf(map[string]preset.Credential{"main": {Secret: "k1", ResourceID: "c1"}})
	p := &scriptedPrompter{answers: []string{"u", "0", "", "c2", ""}}
	m := New(repo, store, p, io.Discard, SelectingLoad)

	for i := 0; i < 2; i++ {
		if _, _, err := m.choose(); err != nil {
			t.Fatalf("choose failed: %v", err)
		}
	}

	if m.State() != SelectingLoad {
		t.Errorf("update should return to load, got %v", m.State())
	}
	if len(repo.saves) != 1 {
		t.Fatalf("expected 1 save, got %d", len(repo.saves))
	}
	want := preset.Credential{Secret: "k1", ResourceID: "c2"}
	if got := repo.saves[0]["main"]; got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if len(p.secrets) != 1 {
		t.Errorf("expected the new key to be read as a secret, got %v", p.secrets)
	}
}

func TestMenu_UpdateNothingChanged(t *testing.T) {
	repo := &memRepo{}
	store := storeOf(map[string]preset.Credential{"main": {Secret: "k1", ResourceID: "c1"}})
	p := &scriptedPrompter{answers: []string{"0", "", "", ""}}
	m := New(repo, store, p, io.Discard, SelectingUpdate)

	if _, _, err := m.choose(); err != nil {
		t.Fatalf("choose failed: %v", err)
	}
	if len(repo.saves) != 0 {
		t.Errorf("expected no save, got %d", len(repo.saves))
	}
	if m.State() != SelectingLoad {
		t.Errorf("expected load state, got %v", m.State())
	}
}

func TestMenu_UpdateRename(t *testing.T) {
	repo := &memRepo{}
	store := storeOf(map[string]preset.Credential{"main": {Secret: "k1", ResourceID: "c1"}})
	p := &scriptedPrompter{answers: []string{"0", "", "", "primary"}}
	m := New(repo, store, p, io.Discard, SelectingUpdate)

	if _, _, err := m.choose(); err != nil {
		t.Fatalf("choose failed: %v", err)
	}
	if len(repo.saves) != 1 {
		t.Fatalf("expected 1 save, got %d", len(repo.saves))
	}
	saved := repo.saves[0]
	if _, ok := saved["main"]; ok {
		t.Error("old name still present after rename")
	}
	if saved["primary"] != (preset.Credential{Secret: "k1", ResourceID: "c1"}) {
		t.Errorf("renamed preset lost its credential: %+v", saved["primary"])
	}
}

func TestMenu_UpdateRenameCollision(t *testing.T) {
	repo := &memRepo{}
	store := storeOf(map[string]preset.Credential{
		"a": {Secret: "ka", ResourceID: "ca"},
		"b": {Secret: "kb", ResourceID: "cb"},
	})
	p := &scriptedPrompter{answers: []string{"0", "new-key", "", "b"}}
	var out bytes.Buffer
	m := New(repo, store, p, &out, SelectingUpdate)

	if _, _, err := m.choose(); err != nil {
		t.Fatalf("choose failed: %v", err)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("expected collision warning, got %q", out.String())
	}
	if len(repo.saves) != 1 {
		t.Fatalf("expected 1 save, got %d", len(repo.saves))
	}
	saved := repo.saves[0]
	if saved["a"] != (preset.Credential{Secret: "new-key", ResourceID: "ca"}) {
		t.Errorf("key change should still apply to 'a': %+v", saved["a"])
	}
	if saved["b"] != (preset.Credential{Secret: "kb", ResourceID: "cb"}) {
		t.Errorf("'b' must be untouched: %+v", saved["b"])
	}
}

func TestMenu_NewNameCollision(t *testing.T) {
	repo := &memRepo{}
	store := storeOf(map[string]preset.Credential{"main": {Secret: "k1", ResourceID: "c1"}})
	p := &scriptedPrompter{answers: []string{"main", "other", "k2", "c2"}}
	var out bytes.Buffer
	m := New(repo, store, p, &out, SelectingNew)

	if err := m.create(); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if m.State() != SelectingNew {
		t.Errorf("collision should stay in new, got %v", m.State())
	}
	if len(repo.saves) != 0 {
		t.Errorf("collision must not save, got %d", len(repo.saves))
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("expected collision message, got %q", out.String())
	}

	if err := m.create(); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if m.State() != SelectingLoad {
		t.Errorf("expected load after create, got %v", m.State())
	}
	if len(repo.saves) != 1 || len(repo.saves[0]) != 2 {
		t.Fatalf("expected one save with 2 presets, got %v", repo.saves)
	}
	if repo.saves[0]["main"] != (preset.Credential{Secret: "k1", ResourceID: "c1"}) {
		t.Errorf("existing preset changed: %+v", repo.saves[0]["main"])
	}
}

func TestMenu_NewBlankNameGoesBack(t *testing.T) {
	repo := &memRepo{}
	p := &scriptedPrompter{answers: []string{"  "}}
	m := New(repo, preset.NewStore(), p, io.Discard, SelectingNew)

	if err := m.create(); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if m.State() != SelectingLoad {
		t.Errorf("expected load, got %v", m.State())
	}
	if len(p.asked) != 1 {
		t.Errorf("blank name should not prompt further, asked %v", p.asked)
	}
}

func TestMenu_CommandsInNewState(t *testing.T) {
	repo := &memRepo{}
	p := &scriptedPrompter{answers: []string{"S", "tk", "tc"}}
	m := New(repo, preset.NewStore(), p, io.Discard, SelectingNew)

	cred, err := m.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if cred != (preset.Credential{Secret: "tk", ResourceID: "tc"}) {
		t.Errorf("unexpected credential %+v", cred)
	}
	if len(repo.saves) != 0 {
		t.Errorf("command must not be saved as a preset name, got %v", repo.saves)
	}

	p = &scriptedPrompter{answers: []string{"l"}}
	m = New(repo, preset.NewStore(), p, io.Discard, SelectingNew)
	if err := m.create(); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if m.State() != SelectingLoad {
		t.Errorf("expected load, got %v", m.State())
	}
	if len(p.asked) != 1 {
		t.Errorf("command should not prompt further, asked %v", p.asked)
	}
}

func TestMenu_SkippingDoesNotSave(t *testing.T) {
	repo := &memRepo{}
	store := storeOf(map[string]preset.Credential{"main": {Secret: "k1", ResourceID: "c1"}})
	p := &scriptedPrompter{answers: []string{"s", "tk", "tc"}}
	m := New(repo, store, p, io.Discard, SelectingLoad)

	cred, err := m.Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if cred != (preset.Credential{Secret: "tk", ResourceID: "tc"}) {
		t.Errorf("unexpected credential %+v", cred)
	}
	if len(repo.saves) != 0 {
		t.Errorf("transient credential must not be saved, got %d saves", len(repo.saves))
	}
	if len(p.secrets) != 1 {
		t.Errorf("expected one secret prompt, got %v", p.secrets)
	}
}

func TestResolve_NotFoundDeclined(t *testing.T) {
	repo := &memRepo{loads: []error{preset.ErrNotFound}}
	p := &scriptedPrompter{answers: []string{"n", "tk", "tc"}}

	cred, err := Resolve(repo, p, io.Discard)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cred != (preset.Credential{Secret: "tk", ResourceID: "tc"}) {
		t.Errorf("unexpected credential %+v", cred)
	}
	if len(repo.saves) != 0 {
		t.Errorf("declining must not create a file, got %d saves", len(repo.saves))
	}
}

func TestResolve_NotFoundCreated(t *testing.T) {
	repo := &memRepo{loads: []error{preset.ErrNotFound}}
	p := &scriptedPrompter{answers: []string{"y", "tk", "tc"}}

	cred, err := Resolve(repo, p, io.Discard)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cred.Secret != "tk" {
		t.Errorf("unexpected credential %+v", cred)
	}
	if len(repo.saves) != 1 || len(repo.saves[0]) != 0 {
		t.Errorf("expected one save of an empty store, got %v", repo.saves)
	}
}

func TestResolve_CorruptKept(t *testing.T) {
	corrupt := &preset.CorruptError{Path: "presets.json", Err: errors.New("unexpected end of JSON input")}
	repo := &memRepo{loads: []error{corrupt}}
	p := &scriptedPrompter{answers: []string{"n"}}
	var out bytes.Buffer

	_, err := Resolve(repo, p, &out)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if repo.deletes != 0 || len(repo.saves) != 0 {
		t.Errorf("corrupt file must be left alone, deletes=%d saves=%d", repo.deletes, len(repo.saves))
	}
	if !strings.Contains(out.String(), "unexpected end of JSON input") {
		t.Errorf("parse error not shown: %q", out.String())
	}
}

func TestResolve_CorruptDeleted(t *testing.T) {
	corrupt := &preset.CorruptError{Path: "presets.json", Err: errors.New("bad")}
	repo := &memRepo{loads: []error{corrupt, preset.ErrNotFound}}
	p := &scriptedPrompter{answers: []string{"y", "n", "tk", "tc"}}

	cred, err := Resolve(repo, p, io.Discard)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if repo.deletes != 1 {
		t.Errorf("expected 1 delete, got %d", repo.deletes)
	}
	if cred.Secret != "tk" {
		t.Errorf("unexpected credential %+v", cred)
	}
}

func TestResolve_CorruptFileOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.json")
	os.WriteFile(path, []byte(`{"main": `), 0o600)
	p := &scriptedPrompter{answers: []string{""}}

	_, err := Resolve(preset.NewFile(path), p, io.Discard)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"main": ` {
		t.Errorf("corrupt file was modified: %q", data)
	}
}

func TestResolve_StartsInLoadWithPresets(t *testing.T) {
	repo := &memRepo{initial: map[string]preset.Credential{
		"b": {Secret: "kb", ResourceID: "cb"},
		"a": {Secret: "ka", ResourceID: "ca"},
	}}
	p := &scriptedPrompter{answers: []string{"1"}}
	var out bytes.Buffer

	cred, err := Resolve(repo, p, &out)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cred.Secret != "kb" {
		t.Errorf("index 1 should be 'b' in name order, got %+v", cred)
	}
	listing := out.String()
	if strings.Index(listing, " 0: a") > strings.Index(listing, " 1: b") {
		t.Errorf("listing out of order: %q", listing)
	}
}

func TestMenu_InputExhausted(t *testing.T) {
	m := New(&memRepo{}, preset.NewStore(), &scriptedPrompter{}, io.Discard, SelectingLoad)

	if _, err := m.Run(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestMenu_SaveFailure(t *testing.T) {
	diskFull := errors.New("no space left on device")
	repo := &memRepo{saveErr: diskFull}
	p := &scriptedPrompter{answers: []string{"main", "k", "c"}}
	m := New(repo, preset.NewStore(), p, io.Discard, SelectingNew)

	if _, err := m.Run(); !errors.Is(err, diskFull) {
		t.Errorf("expected save error, got %v", err)
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		SelectingLoad:   "load",
		SelectingUpdate: "update",
		SelectingNew:    "new",
		SelectingRemove: "remove",
		Skipping:        "skip",
		State(42):       "State(42)",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("expected %q, got %q", want, s.String())
		}
	}
}
