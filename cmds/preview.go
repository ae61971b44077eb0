package cmds

import (
	"context"
	"fmt"
	"os"

	glzcli "github.com/go-go-golems/glazed/pkg/cli"
	gcmds "github.com/go-go-golems/glazed/pkg/cmds"
	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"

	"github.com/go-go-golems/tadakan/pkg/cmdutil"
	"github.com/go-go-golems/tadakan/pkg/fileitem"
	"github.com/go-go-golems/tadakan/pkg/listing"
	"github.com/go-go-golems/tadakan/pkg/output"
	"github.com/go-go-golems/tadakan/pkg/preset"
	"github.com/go-go-golems/tadakan/pkg/rename"
	"github.com/go-go-golems/tadakan/pkg/workspacelayer"
)

type PreviewCommand struct{ *gcmds.CommandDescription }

type PreviewSettings struct {
	Preset         string   `glazed.parameter:"preset"`
	Values         []string `glazed.parameter:"value"`
	Files          []string `glazed.parameter:"files"`
	Depth          int      `glazed.parameter:"depth"`
	AutoNumber     bool     `glazed.parameter:"auto-number"`
	Target         string   `glazed.parameter:"target"`
	NgWords        []string `glazed.parameter:"ng-word"`
	DefaultNgWords bool     `glazed.parameter:"default-ng-words"`
	AllFiles       bool     `glazed.parameter:"all-files"`
}

// previewFlags are shared by preview and script rename.
func previewFlags() []*parameters.ParameterDefinition {
	return []*parameters.ParameterDefinition{
		parameters.NewParameterDefinition("preset", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithShortFlag("p"), parameters.WithHelp("Preset name or id")),
		parameters.NewParameterDefinition("value", parameters.ParameterTypeStringList, parameters.WithShortFlag("v"), parameters.WithHelp("Field values as field=value")),
		parameters.NewParameterDefinition("files", parameters.ParameterTypeStringList, parameters.WithRequired(true), parameters.WithShortFlag("f"), parameters.WithHelp("Files or directories to rename")),
		parameters.NewParameterDefinition("depth", parameters.ParameterTypeInteger, parameters.WithDefault(1), parameters.WithHelp("Directory depth to collect (0 = unlimited)")),
		parameters.NewParameterDefinition("auto-number", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Number 番号 by the first free slot in --target instead of by position")),
		parameters.NewParameterDefinition("target", parameters.ParameterTypeString, parameters.WithShortFlag("t"), parameters.WithHelp("Target directory")),
		parameters.NewParameterDefinition("ng-word", parameters.ParameterTypeStringList, parameters.WithHelp("Forbidden substrings (case-sensitive)")),
		parameters.NewParameterDefinition("default-ng-words", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Also forbid the configured NG words (DOS device names)")),
		parameters.NewParameterDefinition("all-files", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Ignore the preset's target extensions")),
	}
}

func NewPreviewCommand() (*PreviewCommand, error) {
	glazedLayers, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, err
	}
	commandLayer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"preview",
		gcmds.WithShort("Show the new name each file would get"),
		gcmds.WithFlags(previewFlags()...),
		gcmds.WithLayersList(glazedLayers, commandLayer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &PreviewCommand{cd}, nil
}

func (c *PreviewCommand) RunIntoGlazeProcessor(ctx context.Context, parsed *glayers.ParsedLayers, gp middlewares.Processor) error {
	s := &PreviewSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	items, itemErrs, err := buildRenameItems(env, s)
	if err != nil {
		return err
	}
	for i, it := range items {
		row := types.NewRow(
			types.MRP("original", it.OriginalName),
			types.MRP("new", previewName(it)),
			types.MRP("type", string(it.FileType)),
			types.MRP("path", it.OriginalPath),
		)
		if e, ok := itemErrs[i]; ok {
			row.Set("error", e.Error())
		}
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

var _ gcmds.GlazeCommand = &PreviewCommand{}

// previewName is the name a file ends up with: files that failed to name
// keep their original one.
func previewName(it *fileitem.Item) string {
	if it.NewName == "" {
		return it.OriginalName
	}
	return it.NewName
}

// buildRenameItems names every collected file. Per-file failures keep the
// original name and are returned by index; an empty NewName marks them.
func buildRenameItems(env *appEnv, s *PreviewSettings) ([]*fileitem.Item, map[int]error, error) {
	p, err := env.lookupPreset(s.Preset)
	if err != nil {
		return nil, nil, err
	}
	values, err := cmdutil.ParseKeyValues(s.Values)
	if err != nil {
		return nil, nil, err
	}
	entries, walkErrs := listing.Collect(env.fs, s.Files, s.Depth)
	for _, e := range walkErrs {
		fmt.Fprintln(os.Stderr, output.Warnf("%s", e))
	}
	paths := listing.Paths(entries)
	if !s.AllFiles {
		paths = p.FilterTargetFiles(paths)
	}
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no files matching %v", p.TargetExtensions)
	}

	synth := env.synthesizer(rename.WithReservations())
	ng := env.ngWords(s.NgWords, s.DefaultNgWords)
	errs := map[int]error{}
	items := make([]*fileitem.Item, 0, len(paths))
	for i, path := range paths {
		item, err := fileitem.FromPath(env.fs, path)
		if err != nil {
			return nil, nil, err
		}
		v := map[string]string{}
		for k, val := range values {
			v[k] = val
		}
		var name string
		if s.AutoNumber {
			name, err = synth.GenerateFilenameWithAutoNumber(p, v, item.Extension(false), s.Target, preset.NumberField)
		} else {
			if p.HasField(preset.NumberField) {
				v[preset.NumberField] = fmt.Sprintf("%03d", i+1)
			}
			name, err = synth.GenerateFilename(p, v, item.Extension(false), nil)
		}
		if err == nil {
			err = rename.CheckNgWords(name, ng)
		}
		if err == nil && s.AutoNumber {
			err = synth.Reserve(s.Target, name)
		}
		if err != nil {
			errs[i] = err
		} else {
			item.NewName = name
		}
		items = append(items, item)
	}
	return items, errs, nil
}
