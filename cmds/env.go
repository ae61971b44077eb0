package cmds

import (
	"fmt"

	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/go-go-golems/tadakan/pkg/preset"
	"github.com/go-go-golems/tadakan/pkg/rename"
	"github.com/go-go-golems/tadakan/pkg/script"
	"github.com/go-go-golems/tadakan/pkg/settings"
	"github.com/go-go-golems/tadakan/pkg/workspace"
	"github.com/go-go-golems/tadakan/pkg/workspacelayer"
)

// appEnv bundles what every command builds from the workspace layer.
type appEnv struct {
	fs        afero.Fs
	settings  *settings.Settings
	layer     *workspacelayer.WorkspaceSettings
	workspace *workspace.Workspace
	store     *preset.Store
	encoding  script.Encoding
}

func newAppEnv(parsed *glayers.ParsedLayers) (*appEnv, error) {
	ws, err := workspacelayer.GetWorkspaceSettings(parsed)
	if err != nil {
		return nil, err
	}
	st, err := settings.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	enc := st.Encoding
	if ws.Encoding != "" {
		enc, err = script.LookupEncoding(ws.Encoding)
		if err != nil {
			return nil, err
		}
	}
	fs := afero.NewOsFs()
	return &appEnv{
		fs:        fs,
		settings:  st,
		layer:     ws,
		workspace: workspace.New(fs, ws.Workspace),
		store:     preset.NewStore(fs, ws.ResolvedPresetsDir(st.DefaultPresetDir)),
		encoding:  enc,
	}, nil
}

func (e *appEnv) synthesizer(opts ...rename.Option) *rename.Synthesizer {
	opts = append([]rename.Option{rename.WithAutoNumberLimit(e.settings.AutoNumberingLimit)}, opts...)
	return rename.NewSynthesizer(e.fs, opts...)
}

func (e *appEnv) generator() *script.Generator {
	return script.NewGenerator(e.fs, script.WithEncoding(e.encoding))
}

// lookupPreset accepts a preset name or id.
func (e *appEnv) lookupPreset(ref string) (*preset.Preset, error) {
	p, err := e.store.Get(ref)
	if err == nil {
		return p, nil
	}
	if byID, idErr := e.store.FindByID(ref); idErr == nil {
		return byID, nil
	}
	return nil, fmt.Errorf("preset '%s': %w", ref, err)
}

// ngWords combines explicit words with the configured defaults when asked.
func (e *appEnv) ngWords(explicit []string, useDefaults bool) []string {
	ret := append([]string(nil), explicit...)
	if useDefaults {
		ret = append(ret, e.settings.NgWords...)
	}
	return ret
}
