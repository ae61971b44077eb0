package listing

// Entry is one intake file found below a root.
type Entry struct {
	Path      string `yaml:"path" json:"path"`
	Name      string `yaml:"name" json:"name"`
	Extension string `yaml:"extension" json:"extension"`
	Size      int64  `yaml:"size" json:"size"`
}
