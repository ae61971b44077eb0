package workspacelayer

import (
	"fmt"
	"path/filepath"

	glzcms "github.com/go-go-golems/glazed/pkg/cmds"
	glzlayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
)

const WorkspaceLayerSlug = "workspace"

type WorkspaceSettings struct {
	Workspace  string `glazed.parameter:"workspace"`
	PresetsDir string `glazed.parameter:"presets-dir"`
	Encoding   string `glazed.parameter:"encoding"`
}

// ResolvedPresetsDir returns PresetsDir, or folder below the workspace when
// it is empty. An empty folder means "presets". Relative directories are
// kept relative.
func (s *WorkspaceSettings) ResolvedPresetsDir(folder string) string {
	if s.PresetsDir != "" {
		return s.PresetsDir
	}
	if folder == "" {
		folder = "presets"
	}
	return filepath.Join(s.Workspace, folder)
}

// NewWorkspaceLayer defines a reusable parameter layer for workspace location.
func NewWorkspaceLayer() (glzlayers.ParameterLayer, error) {
	return glzlayers.NewParameterLayer(
		WorkspaceLayerSlug,
		"Workspace settings",
		glzlayers.WithParameterDefinitions(
			parameters.NewParameterDefinition(
				"workspace",
				parameters.ParameterTypeString,
				parameters.WithHelp("Workspace root holding rename_batches, filter_batches and display"),
				parameters.WithDefault("."),
			),
			parameters.NewParameterDefinition(
				"presets-dir",
				parameters.ParameterTypeString,
				parameters.WithHelp("Preset directory (default <workspace>/presets)"),
				parameters.WithDefault(""),
			),
			parameters.NewParameterDefinition(
				"encoding",
				parameters.ParameterTypeChoice,
				parameters.WithHelp("Encoding of generated scripts"),
				parameters.WithDefault("shift_jis"),
				parameters.WithChoices("shift_jis", "utf-8"),
			),
		),
	)
}

// AddWorkspaceLayerToCommand attaches the layer to a Glazed command description.
func AddWorkspaceLayerToCommand(c glzcms.Command) (glzcms.Command, error) {
	l, err := NewWorkspaceLayer()
	if err != nil {
		return nil, err
	}
	c.Description().Layers.Set(WorkspaceLayerSlug, l)
	return c, nil
}

// GetWorkspaceSettings returns parsed workspace settings from the ParsedLayers.
func GetWorkspaceSettings(parsed *glzlayers.ParsedLayers) (*WorkspaceSettings, error) {
	var s WorkspaceSettings
	if err := parsed.InitializeStruct(WorkspaceLayerSlug, &s); err != nil {
		return nil, fmt.Errorf("failed to parse workspace settings: %w", err)
	}
	return &s, nil
}
