package rename

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/go-go-golems/tadakan/pkg/fileitem"
	"github.com/go-go-golems/tadakan/pkg/preset"
)

// ReservedCharacters may never appear in a generated filename.
const ReservedCharacters = `<>:"/\|?*`

// DefaultAutoNumberLimit is the highest number tried by auto-numbering.
const DefaultAutoNumberLimit = 9999

// Synthesizer turns presets and field values into filenames. Duplicate checks
// and preview intake go through fs.
type Synthesizer struct {
	fs              afero.Fs
	autoNumberLimit int
	reserving       bool
}

type Option func(*Synthesizer)

// WithAutoNumberLimit overrides DefaultAutoNumberLimit.
func WithAutoNumberLimit(limit int) Option {
	return func(s *Synthesizer) {
		if limit > 0 {
			s.autoNumberLimit = limit
		}
	}
}

// WithReservations layers an in-memory overlay over the filesystem. Names
// passed to Reserve then count as taken for duplicate checks without
// touching the underlying filesystem.
func WithReservations() Option {
	return func(s *Synthesizer) {
		s.fs = afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(s.fs), afero.NewMemMapFs())
		s.reserving = true
	}
}

func NewSynthesizer(fs afero.Fs, opts ...Option) *Synthesizer {
	s := &Synthesizer{fs: fs, autoNumberLimit: DefaultAutoNumberLimit}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GenerateFilename resolves every preset field, substitutes the pattern,
// rejects reserved characters and NG words, and appends the lower-cased
// extension. It performs no I/O.
func (s *Synthesizer) GenerateFilename(p *preset.Preset, inputValues map[string]string, originalExtension string, ngWords []string) (string, error) {
	resolved := make(map[string]string, len(p.Fields))
	var missing []string
	for _, field := range p.Fields {
		v, ok := p.FieldValue(field, inputValues).Get()
		if !ok {
			missing = append(missing, field)
			continue
		}
		resolved[field] = v
	}
	if len(missing) > 0 {
		return "", &MissingFieldError{Fields: missing}
	}

	name := p.NamingPattern
	for _, field := range p.Fields {
		name = strings.ReplaceAll(name, "{"+field+"}", resolved[field])
	}

	if !ValidateCharacters(name) {
		return "", &InvalidCharacterError{Name: name, Reserved: ReservedCharacters}
	}
	if err := CheckNgWords(name, ngWords); err != nil {
		return "", err
	}
	return name + strings.ToLower(originalExtension), nil
}

// CheckNgWords returns an *NgWordError for the first word contained in name.
// Matching is case-sensitive.
func CheckNgWords(name string, ngWords []string) error {
	for _, word := range ngWords {
		if word != "" && strings.Contains(name, word) {
			return &NgWordError{Word: word}
		}
	}
	return nil
}

// CheckDuplicate reports whether the generated name already exists in
// targetDirectory. A name that fails validation is reported as not a
// duplicate; auto-numbering relies on this.
func (s *Synthesizer) CheckDuplicate(p *preset.Preset, inputValues map[string]string, extension, targetDirectory string) bool {
	name, err := s.GenerateFilename(p, inputValues, extension, nil)
	if err != nil {
		log.Debug().Err(err).Msg("duplicate check on invalid name, treating as free")
		return false
	}
	exists, err := afero.Exists(s.fs, filepath.Join(targetDirectory, name))
	if err != nil {
		log.Debug().Err(err).Str("name", name).Msg("duplicate check stat failed")
		return false
	}
	return exists
}

// PreviewList builds one item per path, in order. When the preset declares
// the number field it is set to the 1-based position ("001", "002", ...).
// Items whose name cannot be generated keep their original name; those
// failures are returned together as a multierror alongside the full list.
func (s *Synthesizer) PreviewList(p *preset.Preset, filePaths []string, inputValues map[string]string) ([]*fileitem.Item, error) {
	items := make([]*fileitem.Item, 0, len(filePaths))
	var errs *multierror.Error
	numbered := p.HasField(preset.NumberField)
	for i, path := range filePaths {
		item, err := fileitem.FromPath(s.fs, path)
		if err != nil {
			return nil, err
		}
		values := copyValues(inputValues)
		if numbered {
			values[preset.NumberField] = formatNumber(i + 1)
		}
		name, err := s.GenerateFilename(p, values, item.Extension(false), nil)
		if err != nil {
			log.Warn().Str("file", item.OriginalName).Err(err).Msg("rename preview failed, keeping original name")
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", item.OriginalName, err))
			item.NewName = item.OriginalName
		} else {
			item.NewName = name
		}
		items = append(items, item)
	}
	return items, errs.ErrorOrNil()
}

// GenerateFilenameWithAutoNumber picks the lowest free number for numberField
// in targetDirectory. Presets without that field are generated directly.
func (s *Synthesizer) GenerateFilenameWithAutoNumber(p *preset.Preset, inputValues map[string]string, originalExtension, targetDirectory, numberField string) (string, error) {
	if numberField == "" {
		numberField = preset.NumberField
	}
	if !p.HasField(numberField) {
		return s.GenerateFilename(p, inputValues, originalExtension, nil)
	}

	values := copyValues(inputValues)
	for n := 1; n <= s.autoNumberLimit; n++ {
		values[numberField] = formatNumber(n)
		if !s.CheckDuplicate(p, values, originalExtension, targetDirectory) {
			log.Debug().Int("number", n).Str("dir", targetDirectory).Msg("auto-number slot found")
			return s.GenerateFilename(p, values, originalExtension, nil)
		}
	}
	return "", &AutoNumberLimitError{Limit: s.autoNumberLimit}
}

// Reserve marks targetDirectory/name as taken. It is a no-op unless the
// synthesizer was built WithReservations.
func (s *Synthesizer) Reserve(targetDirectory, name string) error {
	if !s.reserving {
		return nil
	}
	if targetDirectory != "" {
		if err := s.fs.MkdirAll(targetDirectory, 0755); err != nil {
			return fmt.Errorf("failed to reserve %s: %w", name, err)
		}
	}
	path := filepath.Join(targetDirectory, name)
	if err := afero.WriteFile(s.fs, path, nil, 0644); err != nil {
		return fmt.Errorf("failed to reserve %s: %w", path, err)
	}
	return nil
}

// ValidateCharacters is true when name has no reserved characters.
func ValidateCharacters(name string) bool {
	return !strings.ContainsAny(name, ReservedCharacters)
}

// SanitizeFilename replaces every reserved character with replacement.
func SanitizeFilename(name, replacement string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if strings.ContainsRune(ReservedCharacters, r) {
			b.WriteString(replacement)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func formatNumber(n int) string {
	return fmt.Sprintf("%03d", n)
}

func copyValues(in map[string]string) map[string]string {
	out := make(map[string]string, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}
