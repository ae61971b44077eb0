package preset

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/go-go-golems/tadakan/pkg/presetid"
)

// Field names with a fixed meaning. The batch filename convention always
// reads FactionField and CharacterField; NumberField is the auto-numbering slot.
const (
	FactionField   = "陣営"
	CharacterField = "キャラ名"
	NumberField    = "番号"
)

// WildcardExtension in TargetExtensions matches every file.
const WildcardExtension = "*"

// DefaultTargetExtensions is used when a preset is built without extensions.
var DefaultTargetExtensions = []string{".jpg", ".png", ".gif", ".mp3", ".txt"}

var placeholderPattern = regexp.MustCompile(`\{([^}]+)\}`)

// Preset is a reusable naming template.
type Preset struct {
	Name             string            `json:"name" yaml:"name"`
	Fields           []string          `json:"fields" yaml:"fields"`
	NamingPattern    string            `json:"naming_pattern" yaml:"naming_pattern"`
	DefaultValues    map[string]string `json:"default_values" yaml:"default_values"`
	TargetExtensions []string          `json:"target_extensions" yaml:"target_extensions"`
	CreatedAt        Timestamp         `json:"created_at" yaml:"created_at"`
	ID               string            `json:"id" yaml:"id"`
}

type Option func(*Preset)

func WithDefaultValues(defaults map[string]string) Option {
	return func(p *Preset) {
		if defaults != nil {
			p.DefaultValues = defaults
		}
	}
}

func WithTargetExtensions(exts []string) Option {
	return func(p *Preset) {
		if len(exts) > 0 {
			p.TargetExtensions = exts
		}
	}
}

// WithID keeps an existing identifier instead of generating one.
func WithID(id string) Option {
	return func(p *Preset) { p.ID = id }
}

func WithCreatedAt(t time.Time) Option {
	return func(p *Preset) { p.CreatedAt = Timestamp{t} }
}

// New builds a preset. The naming pattern is not validated here; a preset may
// exist in an invalid state until ValidateNamingPattern is consulted.
func New(name string, fields []string, namingPattern string, opts ...Option) *Preset {
	p := &Preset{
		Name:             name,
		Fields:           fields,
		NamingPattern:    namingPattern,
		DefaultValues:    map[string]string{},
		TargetExtensions: append([]string(nil), DefaultTargetExtensions...),
		CreatedAt:        Timestamp{time.Now()},
	}
	for _, o := range opts {
		o(p)
	}
	if p.ID == "" {
		p.ID = presetid.NewGenerator(nil).Generate()
	}
	return p
}

// Placeholders returns the names referenced as {name} in the naming pattern,
// in order of appearance.
func (p *Preset) Placeholders() []string {
	matches := placeholderPattern.FindAllStringSubmatch(p.NamingPattern, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// HasField reports whether name is one of the declared fields.
func (p *Preset) HasField(name string) bool {
	for _, f := range p.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// UndeclaredPlaceholders lists pattern placeholders that are not declared fields.
func (p *Preset) UndeclaredPlaceholders() []string {
	var missing []string
	for _, name := range p.Placeholders() {
		if !p.HasField(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// ValidateNamingPattern is true when every placeholder references a declared
// field. A pattern without placeholders is valid.
func (p *Preset) ValidateNamingPattern() bool {
	return len(p.UndeclaredPlaceholders()) == 0
}

// FieldValue resolves a field: a non-empty input wins, then the preset
// default (which may be the empty string), otherwise Absent.
func (p *Preset) FieldValue(fieldName string, inputValues map[string]string) FieldValue {
	if v, ok := inputValues[fieldName]; ok && v != "" {
		return Present(v)
	}
	if v, ok := p.DefaultValues[fieldName]; ok {
		return Present(v)
	}
	return Absent()
}

// BatchFilename renders "{id}_{陣営}_{キャラ名}.bat". Missing slots render empty.
func (p *Preset) BatchFilename(values map[string]string) string {
	return BatchFilename(p.ID, values)
}

// FilenameWithSequence renders "{id}_{陣営}_{キャラ名}_{sequence}{extension}".
func (p *Preset) FilenameWithSequence(values map[string]string, sequence, extension string) string {
	return fmt.Sprintf("%s_%s%s", BatchStem(p.ID, values), sequence, extension)
}

// IsWildcard reports whether the preset targets every extension.
func (p *Preset) IsWildcard() bool {
	return len(p.TargetExtensions) == 1 && p.TargetExtensions[0] == WildcardExtension
}

// FilterTargetFiles keeps the files this preset targets.
func (p *Preset) FilterTargetFiles(files []string) []string {
	return FilterByExtensions(p.TargetExtensions, files)
}

// FilterByExtensions keeps files whose lower-cased extension is in exts.
// When exts contains "*" the input is returned unchanged.
func FilterByExtensions(exts, files []string) []string {
	if slices.Contains(exts, WildcardExtension) {
		return files
	}
	ret := []string{}
	for _, f := range files {
		if slices.Contains(exts, strings.ToLower(filepath.Ext(f))) {
			ret = append(ret, f)
		}
	}
	return ret
}

// BatchStem is the batch filename without its ".bat" suffix.
func BatchStem(presetID string, values map[string]string) string {
	return fmt.Sprintf("%s_%s_%s", presetID, values[FactionField], values[CharacterField])
}

// BatchFilename is the canonical two-slot batch filename for a preset id.
func BatchFilename(presetID string, values map[string]string) string {
	return BatchStem(presetID, values) + ".bat"
}
