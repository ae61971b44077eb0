package seed

// Spec is a YAML bundle of preset definitions.
type Spec struct {
	PresetsDir string `yaml:"presets_dir"`
	Presets    []Set  `yaml:"presets"`
}

// Set defines one preset. Default values are merged in order: defaults,
// env, files, yaml_files; later sources win.
type Set struct {
	Name             string            `yaml:"name"`
	ID               string            `yaml:"id,omitempty"`
	Fields           []string          `yaml:"fields"`
	NamingPattern    string            `yaml:"naming_pattern"`
	TargetExtensions []string          `yaml:"target_extensions,omitempty"`
	Defaults         map[string]string `yaml:"default_values,omitempty"`
	// Env maps a field to the environment variable holding its default.
	Env map[string]string `yaml:"env,omitempty"`
	// Files maps a field to a file whose trimmed content is its default.
	Files     map[string]string    `yaml:"files,omitempty"`
	YamlFiles map[string]FileValue `yaml:"yaml_files,omitempty"`
}

// FileValue picks a value out of a YAML or JSON document by dotted path,
// e.g. "factions.0.name".
type FileValue struct {
	File string `yaml:"file"`
	Path string `yaml:"path"`
}
