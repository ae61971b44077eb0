package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/tadakan/pkg/preset"
	"github.com/go-go-golems/tadakan/pkg/presetid"
)

// ViperPresetsDirKey is consulted when a bundle does not name its presets dir.
const ViperPresetsDirKey = "seed.presets_dir"

type Options struct {
	DryRun bool
	// Replace overwrites presets that already exist under the same name.
	Replace bool
}

// LoadSpec reads a YAML bundle from fs.
func LoadSpec(fs afero.Fs, path string) (*Spec, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed spec %s: %w", path, err)
	}
	var spec Spec
	if err := yaml.Unmarshal(b, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse seed spec %s: %w", path, err)
	}
	return &spec, nil
}

// ResolvePresetsDir prefers the bundle's presets dir, then the viper setting, then fallback.
func (s *Spec) ResolvePresetsDir(fallback string) string {
	if s.PresetsDir != "" {
		return expandPath(s.PresetsDir)
	}
	if v := viper.GetString(ViperPresetsDirKey); v != "" {
		return expandPath(v)
	}
	return fallback
}

// Run creates every preset of spec in store and returns the presets written
// (or that would be written in dry-run mode).
func Run(fs afero.Fs, store *preset.Store, spec *Spec, opts Options) ([]*preset.Preset, error) {
	log.Info().Str("presets_dir", store.Dir()).Int("presets_total", len(spec.Presets)).Msg("seed: start")

	var written []*preset.Preset
	for i, set := range spec.Presets {
		if existing, err := store.Get(set.Name); err == nil && !opts.Replace {
			log.Info().Str("preset", existing.Name).Str("id", existing.ID).Msg("seed: skipping existing preset")
			continue
		}

		defaults := map[string]string{}
		missingEnv := []string{}
		for k, v := range set.Defaults {
			defaults[k] = v
		}
		for k, envName := range set.Env {
			if val, ok := os.LookupEnv(envName); ok {
				defaults[k] = val
			} else {
				missingEnv = append(missingEnv, envName)
			}
		}
		for k, filePath := range set.Files {
			fp := expandPath(filePath)
			content, err := afero.ReadFile(fs, fp)
			if err != nil {
				return written, fmt.Errorf("preset %d: failed reading %s: %w", i+1, fp, err)
			}
			defaults[k] = strings.TrimSpace(string(content))
		}
		for k, fv := range set.YamlFiles {
			v, err := valueFromFile(fs, fv)
			if err != nil {
				return written, fmt.Errorf("preset %d: %w", i+1, err)
			}
			defaults[k] = convertToString(v)
		}

		log.Debug().
			Int("index", i+1).
			Str("preset", set.Name).
			Int("static_defaults", len(set.Defaults)).
			Int("env_defaults_present", len(set.Env)-len(missingEnv)).
			Int("env_defaults_missing", len(missingEnv)).
			Int("file_defaults", len(set.Files)+len(set.YamlFiles)).
			Strs("missing_env", missingEnv).
			Msg("seed: resolved preset")

		p, err := store.Create(set.Name, set.Fields, set.NamingPattern, defaults, set.TargetExtensions)
		if err != nil {
			return written, fmt.Errorf("preset %d (%s): %w", i+1, set.Name, err)
		}
		if set.ID != "" {
			if err := checkID(store, set); err != nil {
				return written, fmt.Errorf("preset %d (%s): %w", i+1, set.Name, err)
			}
			p.ID = set.ID
		}

		if opts.DryRun {
			log.Debug().Str("preset", p.Name).Str("id", p.ID).Msg("seed: dry-run save")
			written = append(written, p)
			continue
		}
		path, err := store.Save(p)
		if err != nil {
			return written, err
		}
		log.Info().Str("path", path).Str("id", p.ID).Msg("seed: wrote preset")
		written = append(written, p)
	}
	log.Info().Int("written", len(written)).Msg("seed: completed")
	return written, nil
}

// checkID rejects malformed ids and ids owned by a differently named preset.
func checkID(store *preset.Store, set Set) error {
	if !presetid.Validate(set.ID) {
		return fmt.Errorf("invalid id %q", set.ID)
	}
	owner, err := store.FindByID(set.ID)
	if err == nil && owner.Name != set.Name {
		return fmt.Errorf("id %s already used by preset '%s'", set.ID, owner.Name)
	}
	return nil
}

func valueFromFile(fs afero.Fs, fv FileValue) (interface{}, error) {
	fp := expandPath(fv.File)
	content, err := afero.ReadFile(fs, fp)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fp, err)
	}
	var data interface{}
	if strings.EqualFold(filepath.Ext(fp), ".json") {
		if err := json.Unmarshal(content, &data); err != nil {
			return nil, fmt.Errorf("failed to parse JSON file %s: %w", fp, err)
		}
	} else if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file %s: %w", fp, err)
	}
	v, err := extractValueByPath(data, fv.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract path '%s' from %s: %w", fv.Path, fp, err)
	}
	return v, nil
}

// expandPath expands ~ to home directory
func expandPath(filePath string) string {
	if strings.HasPrefix(filePath, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(filePath, "~"))
		}
	}
	return filePath
}

// extractValueByPath extracts a value from nested data using dot notation path
// Examples: "factions.red", "characters.0.name"
func extractValueByPath(data interface{}, path string) (interface{}, error) {
	if path == "" {
		return data, nil
	}

	parts := strings.Split(path, ".")
	current := data

	for i, part := range parts {
		switch v := current.(type) {
		case map[string]interface{}:
			var ok bool
			current, ok = v[part]
			if !ok {
				return nil, fmt.Errorf("key '%s' not found at path segment %d", part, i+1)
			}
		case map[interface{}]interface{}:
			var ok bool
			current, ok = v[part]
			if !ok {
				return nil, fmt.Errorf("key '%s' not found at path segment %d", part, i+1)
			}
		case []interface{}:
			idx, err := parseArrayIndex(part)
			if err != nil {
				return nil, fmt.Errorf("invalid array index '%s' at path segment %d: %w", part, i+1, err)
			}
			if idx < 0 || idx >= len(v) {
				return nil, fmt.Errorf("array index %d out of bounds (length %d) at path segment %d", idx, len(v), i+1)
			}
			current = v[idx]
		default:
			return nil, fmt.Errorf("cannot navigate into %T at path segment %d", current, i+1)
		}
	}

	return current, nil
}

func parseArrayIndex(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty array index")
	}
	var idx int
	_, err := fmt.Sscanf(s, "%d", &idx)
	return idx, err
}

// convertToString renders scalars plainly and anything else as JSON.
func convertToString(value interface{}) string {
	if value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%g", v)
	default:
		if data, err := json.Marshal(value); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", value)
	}
}
