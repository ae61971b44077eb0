package preset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/go-go-golems/tadakan/pkg/presetid"
)

// ErrNotFound is returned when no preset file exists for a name or id.
var ErrNotFound = errors.New("preset not found")

// ValidationError rejects a preset definition passed to Store.Create.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid preset: " + e.Reason
}

// Store persists presets as one "{name}.json" file each.
type Store struct {
	fs  afero.Fs
	dir string
	ids *presetid.Generator
}

func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir, ids: presetid.NewGenerator(nil)}
}

// WithIDGenerator replaces the generator used by Create.
func (s *Store) WithIDGenerator(g *presetid.Generator) *Store {
	s.ids = g
	return s
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) pathFor(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Create validates a definition and builds a preset with an id that is unique
// among the presets currently stored. The preset is not saved.
func (s *Store) Create(name string, fields []string, namingPattern string, defaults map[string]string, exts []string) (*Preset, error) {
	if err := validateDefinition(name, fields, namingPattern); err != nil {
		return nil, err
	}
	existing, err := s.ExistingIDs()
	if err != nil {
		return nil, err
	}
	id, err := s.ids.GenerateUnique(existing)
	if err != nil {
		return nil, err
	}
	return build(name, fields, namingPattern, defaults, exts, id)
}

// Replace rebuilds old with a new definition and keeps its id, so batch
// files already generated from old stay attributed to it.
func (s *Store) Replace(old *Preset, fields []string, namingPattern string, defaults map[string]string, exts []string) (*Preset, error) {
	if old == nil || old.ID == "" {
		return nil, &ValidationError{Reason: "preset to replace has no id"}
	}
	if err := validateDefinition(old.Name, fields, namingPattern); err != nil {
		return nil, err
	}
	return build(old.Name, fields, namingPattern, defaults, exts, old.ID)
}

func validateDefinition(name string, fields []string, namingPattern string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Reason: "name is required"}
	}
	if len(fields) == 0 {
		return &ValidationError{Reason: "at least one field is required"}
	}
	if strings.TrimSpace(namingPattern) == "" {
		return &ValidationError{Reason: "naming pattern is required"}
	}
	seen := map[string]struct{}{}
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			return &ValidationError{Reason: fmt.Sprintf("duplicate field %q", f)}
		}
		seen[f] = struct{}{}
	}
	return nil
}

func build(name string, fields []string, namingPattern string, defaults map[string]string, exts []string, id string) (*Preset, error) {
	p := New(strings.TrimSpace(name), fields, namingPattern, WithDefaultValues(defaults), WithTargetExtensions(exts), WithID(id))
	if undeclared := p.UndeclaredPlaceholders(); len(undeclared) > 0 {
		return nil, &ValidationError{Reason: fmt.Sprintf("naming pattern references undeclared fields: %s", strings.Join(undeclared, ", "))}
	}
	return p, nil
}

// Save writes the preset to "{name}.json" and returns the path.
func (s *Store) Save(p *Preset) (string, error) {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create presets directory %s: %w", s.dir, err)
	}
	path := s.pathFor(p.Name)
	if err := s.writeJSON(path, p); err != nil {
		return "", err
	}
	log.Debug().Str("preset", p.Name).Str("id", p.ID).Str("path", path).Msg("preset saved")
	return path, nil
}

func (s *Store) writeJSON(path string, p *Preset) error {
	b, err := Marshal(p)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(s.fs, path, b, 0644); err != nil {
		return fmt.Errorf("failed to write preset %s: %w", path, err)
	}
	return nil
}

// Load reads a preset file from any path.
func (s *Store) Load(path string) (*Preset, error) {
	b, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read preset %s: %w", path, err)
	}
	p, err := Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse preset %s: %w", path, err)
	}
	return p, nil
}

// List loads every preset in the directory sorted by name. Files that cannot
// be loaded are skipped and reported through the returned multierror; the
// presets that did load are always returned.
func (s *Store) List() ([]*Preset, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read presets directory %s: %w", s.dir, err)
	}
	var presets []*Preset
	var errs *multierror.Error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		p, err := s.Load(filepath.Join(s.dir, e.Name()))
		if err != nil {
			log.Warn().Str("file", e.Name()).Err(err).Msg("skipping unreadable preset")
			errs = multierror.Append(errs, err)
			continue
		}
		presets = append(presets, p)
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets, errs.ErrorOrNil()
}

// Get loads the preset stored under name.
func (s *Store) Get(name string) (*Preset, error) {
	return s.Load(s.pathFor(name))
}

// FindByID scans the store for a preset with the given id.
func (s *Store) FindByID(id string) (*Preset, error) {
	presets, _ := s.List()
	for _, p := range presets {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("id %s: %w", id, ErrNotFound)
}

// Delete removes "{name}.json". It reports false when there was nothing to delete.
func (s *Store) Delete(name string) (bool, error) {
	path := s.pathFor(name)
	ok, err := afero.Exists(s.fs, path)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := s.fs.Remove(path); err != nil {
		return false, fmt.Errorf("failed to delete preset %s: %w", path, err)
	}
	log.Debug().Str("preset", name).Msg("preset deleted")
	return true, nil
}

// Export writes the preset to an arbitrary path.
func (s *Store) Export(p *Preset, path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory %s: %w", dir, err)
		}
	}
	return s.writeJSON(path, p)
}

// Import loads a preset file and saves it into the store.
func (s *Store) Import(path string) (*Preset, error) {
	p, err := s.Load(path)
	if err != nil {
		return nil, err
	}
	if _, err := s.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ExistingIDs returns the ids of all loadable presets.
func (s *Store) ExistingIDs() (map[string]struct{}, error) {
	presets, err := s.List()
	if err != nil {
		var merr *multierror.Error
		if !errors.As(err, &merr) {
			return nil, err
		}
	}
	ids := make(map[string]struct{}, len(presets))
	for _, p := range presets {
		ids[p.ID] = struct{}{}
	}
	return ids, nil
}

// Marshal renders a preset as indented JSON without escaping non-ASCII or HTML characters.
func Marshal(p *Preset) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("failed to marshal preset %s: %w", p.Name, err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a preset, applying the same defaults as New for missing
// optional keys. A missing id is generated.
func Unmarshal(b []byte) (*Preset, error) {
	var p Preset
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	if p.DefaultValues == nil {
		p.DefaultValues = map[string]string{}
	}
	if p.TargetExtensions == nil {
		p.TargetExtensions = append([]string(nil), DefaultTargetExtensions...)
	}
	if p.ID == "" {
		p.ID = presetid.NewGenerator(nil).Generate()
	}
	return &p, nil
}
