package plan

const (
	KindRename = "rename"
	KindFilter = "filter"
	KindUndo   = "undo"
)

// Config is a YAML rename plan: several script-producing jobs in one run.
type Config struct {
	Workspace  string `yaml:"workspace"`
	OutputDir  string `yaml:"output_dir"`
	PresetsDir string `yaml:"presets_dir,omitempty"`
	Jobs       []Job  `yaml:"jobs"`
}

// FilterSpec is one filter condition of a filter job.
type FilterSpec struct {
	Field     string `yaml:"field"`
	Condition string `yaml:"condition"`
}

// UndoSpec reverts one earlier rename.
type UndoSpec struct {
	Current   string `yaml:"current"`
	Original  string `yaml:"original"`
	Directory string `yaml:"directory,omitempty"`
}

// Job produces one script.
type Job struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Kind is rename (default), filter or undo.
	Kind string `yaml:"kind,omitempty"`
	// Output is the script filename; rename jobs default to the batch stem
	// of the preset and values.
	Output string `yaml:"output,omitempty"`

	// rename
	Preset        string            `yaml:"preset,omitempty"`
	Values        map[string]string `yaml:"values,omitempty"`
	Files         []string          `yaml:"files,omitempty"`
	Depth         int               `yaml:"depth,omitempty"`
	Target        string            `yaml:"target,omitempty"`
	ErrorHandling *bool             `yaml:"error_handling,omitempty"`
	LogFile       string            `yaml:"log_file,omitempty"`
	AutoNumber    bool              `yaml:"auto_number,omitempty"`
	NgWords       []string          `yaml:"ng_words,omitempty"`

	// filter
	Source     string       `yaml:"source,omitempty"`
	Temp       string       `yaml:"temp,omitempty"`
	Conditions []FilterSpec `yaml:"conditions,omitempty"`

	// undo
	Undo []UndoSpec `yaml:"undo,omitempty"`
}
