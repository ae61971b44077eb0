package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	RenameBatchesDir = "rename_batches"
	FilterBatchesDir = "filter_batches"
	DisplayDir       = "display"
)

// RequiredSubfolders must exist below every workspace root.
var RequiredSubfolders = []string{RenameBatchesDir, FilterBatchesDir, DisplayDir}

// Workspace is a root folder holding generated scripts.
type Workspace struct {
	fs   afero.Fs
	Path string
}

func New(fs afero.Fs, path string) *Workspace {
	return &Workspace{fs: fs, Path: path}
}

// DefaultPath is ~/Pictures/Tadakan.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, "Pictures", "Tadakan"), nil
}

func (w *Workspace) Fs() afero.Fs { return w.fs }

func (w *Workspace) RenameBatches() string { return filepath.Join(w.Path, RenameBatchesDir) }
func (w *Workspace) FilterBatches() string { return filepath.Join(w.Path, FilterBatchesDir) }
func (w *Workspace) Display() string       { return filepath.Join(w.Path, DisplayDir) }

// Initialize creates the root and every required subfolder, returning the
// paths that did not exist before.
func (w *Workspace) Initialize() ([]string, error) {
	created := []string{}
	dirs := append([]string{w.Path}, w.subfolderPaths()...)
	for _, dir := range dirs {
		exists, err := afero.DirExists(w.fs, dir)
		if err != nil {
			return created, fmt.Errorf("failed to stat %s: %w", dir, err)
		}
		if exists {
			continue
		}
		if err := w.fs.MkdirAll(dir, 0755); err != nil {
			return created, fmt.Errorf("failed to create %s: %w", dir, err)
		}
		created = append(created, dir)
	}
	log.Debug().Str("workspace", w.Path).Strs("created", created).Msg("workspace initialized")
	return created, nil
}

func (w *Workspace) subfolderPaths() []string {
	ret := make([]string, 0, len(RequiredSubfolders))
	for _, s := range RequiredSubfolders {
		ret = append(ret, filepath.Join(w.Path, s))
	}
	return ret
}

type Severity string

const (
	SeverityError Severity = "error"
)

type Issue struct {
	Type        string   `json:"type" yaml:"type"`
	Description string   `json:"description" yaml:"description"`
	Severity    Severity `json:"severity" yaml:"severity"`
}

// HealthCheck reports one issue per missing required subfolder. A missing
// root is reported as well.
func (w *Workspace) HealthCheck() ([]Issue, error) {
	issues := []Issue{}
	exists, err := afero.DirExists(w.fs, w.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", w.Path, err)
	}
	if !exists {
		issues = append(issues, Issue{
			Type:        "path_not_exists",
			Description: fmt.Sprintf("Workspace '%s' does not exist", w.Path),
			Severity:    SeverityError,
		})
	}
	for _, name := range RequiredSubfolders {
		ok, err := afero.DirExists(w.fs, filepath.Join(w.Path, name))
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}
		if !ok {
			issues = append(issues, Issue{
				Type:        "missing_" + name + "_folder",
				Description: fmt.Sprintf("Required folder '%s' is missing", name),
				Severity:    SeverityError,
			})
		}
	}
	return issues, nil
}

// Repair creates missing required subfolders and returns their names.
func (w *Workspace) Repair() ([]string, error) {
	repaired := []string{}
	for _, name := range RequiredSubfolders {
		dir := filepath.Join(w.Path, name)
		ok, err := afero.DirExists(w.fs, dir)
		if err != nil {
			return repaired, fmt.Errorf("failed to stat %s: %w", dir, err)
		}
		if ok {
			continue
		}
		if err := w.fs.MkdirAll(dir, 0755); err != nil {
			return repaired, fmt.Errorf("failed to create %s: %w", dir, err)
		}
		repaired = append(repaired, name)
	}
	if len(repaired) > 0 {
		log.Info().Str("workspace", w.Path).Strs("repaired", repaired).Msg("workspace repaired")
	}
	return repaired, nil
}
