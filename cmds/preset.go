package cmds

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	glzcli "github.com/go-go-golems/glazed/pkg/cli"
	gcmds "github.com/go-go-golems/glazed/pkg/cmds"
	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/tadakan/pkg/cmdutil"
	"github.com/go-go-golems/tadakan/pkg/output"
	"github.com/go-go-golems/tadakan/pkg/preset"
	appsettings "github.com/go-go-golems/tadakan/pkg/settings"
	"github.com/go-go-golems/tadakan/pkg/workspacelayer"
)

type PresetCreateCommand struct{ *gcmds.CommandDescription }

type PresetCreateSettings struct {
	Name             string   `glazed.parameter:"name"`
	Fields           []string `glazed.parameter:"fields"`
	Pattern          string   `glazed.parameter:"pattern"`
	Defaults         []string `glazed.parameter:"default"`
	TargetExtensions []string `glazed.parameter:"ext"`
	Force            bool     `glazed.parameter:"force"`
}

func NewPresetCreateCommand() (*PresetCreateCommand, error) {
	layer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"create",
		gcmds.WithShort("Create a preset and save it to the presets directory"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("name", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithShortFlag("n"), parameters.WithHelp("Preset name (also the file name)")),
			parameters.NewParameterDefinition("fields", parameters.ParameterTypeStringList, parameters.WithRequired(true), parameters.WithHelp("Ordered field names")),
			parameters.NewParameterDefinition("pattern", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithShortFlag("p"), parameters.WithHelp("Naming pattern with {field} placeholders")),
			parameters.NewParameterDefinition("default", parameters.ParameterTypeStringList, parameters.WithHelp("Default values as field=value")),
			parameters.NewParameterDefinition("ext", parameters.ParameterTypeStringList, parameters.WithHelp("Target extensions, or '*' for all (default .jpg,.png,.gif,.mp3,.txt)")),
			parameters.NewParameterDefinition("force", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Overwrite an existing preset with the same name")),
		),
		gcmds.WithLayersList(layer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &PresetCreateCommand{cd}, nil
}

func (c *PresetCreateCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &PresetCreateSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	defaults, err := cmdutil.ParseKeyValues(s.Defaults)
	if err != nil {
		return err
	}
	existing, err := env.store.Get(s.Name)
	if err == nil && !s.Force {
		return fmt.Errorf("preset '%s' already exists (use --force to overwrite)", s.Name)
	}
	exts := appsettings.TargetExtensionsOrDefault(s.TargetExtensions)
	for _, ext := range exts {
		if ext != preset.WildcardExtension && !slices.Contains(env.settings.SupportedExtensions, strings.ToLower(ext)) {
			fmt.Fprintln(os.Stderr, output.Warnf("extension %s is not in file_processing.supported_extensions", ext))
		}
	}
	var p *preset.Preset
	if existing != nil && existing.ID != "" {
		p, err = env.store.Replace(existing, s.Fields, s.Pattern, defaults, exts)
	} else {
		p, err = env.store.Create(s.Name, s.Fields, s.Pattern, defaults, exts)
	}
	if err != nil {
		return err
	}
	path, err := env.store.Save(p)
	if err != nil {
		return err
	}
	fmt.Println(output.SectionHeader(p.Name, path))
	fmt.Println(output.Notef("id %s", p.ID))
	return nil
}

var _ gcmds.BareCommand = &PresetCreateCommand{}

type PresetListCommand struct{ *gcmds.CommandDescription }

type PresetListSettings struct {
	Names []string `glazed.parameter:"names"`
}

func NewPresetListCommand() (*PresetListCommand, error) {
	glazedLayers, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, err
	}
	commandLayer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"list",
		gcmds.WithShort("List presets"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("names", parameters.ParameterTypeStringList, parameters.WithHelp("Only list presets with these names or ids")),
		),
		gcmds.WithLayersList(glazedLayers, commandLayer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &PresetListCommand{cd}, nil
}

func (c *PresetListCommand) RunIntoGlazeProcessor(ctx context.Context, parsed *glayers.ParsedLayers, gp middlewares.Processor) error {
	s := &PresetListSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	presets, listErr := env.store.List()
	presets = cmdutil.FilterItems(presets, s.Names,
		func(p *preset.Preset) string { return p.Name },
		func(p *preset.Preset) string { return p.ID },
	)
	for _, p := range presets {
		row := types.NewRow(
			types.MRP("name", p.Name),
			types.MRP("id", p.ID),
			types.MRP("fields", p.Fields),
			types.MRP("naming_pattern", p.NamingPattern),
			types.MRP("target_extensions", p.TargetExtensions),
			types.MRP("created_at", p.CreatedAt.String()),
			types.MRP("valid", p.ValidateNamingPattern()),
		)
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}
	if listErr != nil {
		fmt.Fprintln(os.Stderr, output.Warnf("some presets could not be loaded: %s", output.ShortError(listErr)))
	}
	return nil
}

var _ gcmds.GlazeCommand = &PresetListCommand{}

type PresetShowCommand struct{ *gcmds.CommandDescription }

type PresetShowSettings struct {
	Preset string `glazed.parameter:"preset"`
	Format string `glazed.parameter:"format"`
}

func NewPresetShowCommand() (*PresetShowCommand, error) {
	layer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"show",
		gcmds.WithShort("Print a preset as JSON or YAML"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("preset", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithShortFlag("p"), parameters.WithHelp("Preset name or id")),
			parameters.NewParameterDefinition("format", parameters.ParameterTypeChoice, parameters.WithChoices("json", "yaml"), parameters.WithDefault("json"), parameters.WithHelp("Output format")),
		),
		gcmds.WithLayersList(layer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &PresetShowCommand{cd}, nil
}

func (c *PresetShowCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &PresetShowSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	p, err := env.lookupPreset(s.Preset)
	if err != nil {
		return err
	}
	var b []byte
	if s.Format == "yaml" {
		b, err = yaml.Marshal(p)
	} else {
		b, err = preset.Marshal(p)
	}
	if err != nil {
		return err
	}
	fmt.Print(string(b))
	return nil
}

var _ gcmds.BareCommand = &PresetShowCommand{}

type PresetDeleteCommand struct{ *gcmds.CommandDescription }

type PresetDeleteSettings struct {
	Name string `glazed.parameter:"name"`
}

func NewPresetDeleteCommand() (*PresetDeleteCommand, error) {
	layer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"delete",
		gcmds.WithShort("Delete a preset by name"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("name", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithShortFlag("n"), parameters.WithHelp("Preset name")),
		),
		gcmds.WithLayersList(layer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &PresetDeleteCommand{cd}, nil
}

func (c *PresetDeleteCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &PresetDeleteSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	ok, err := env.store.Delete(s.Name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("preset '%s': %w", s.Name, preset.ErrNotFound)
	}
	fmt.Printf("Deleted preset '%s'\n", s.Name)
	return nil
}

var _ gcmds.BareCommand = &PresetDeleteCommand{}

type PresetExportCommand struct{ *gcmds.CommandDescription }

type PresetExportSettings struct {
	Preset string `glazed.parameter:"preset"`
	Output string `glazed.parameter:"output"`
}

func NewPresetExportCommand() (*PresetExportCommand, error) {
	layer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"export",
		gcmds.WithShort("Export a preset to a JSON file"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("preset", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithShortFlag("p"), parameters.WithHelp("Preset name or id")),
			parameters.NewParameterDefinition("output", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithShortFlag("o"), parameters.WithHelp("Destination file")),
		),
		gcmds.WithLayersList(layer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &PresetExportCommand{cd}, nil
}

func (c *PresetExportCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &PresetExportSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	p, err := env.lookupPreset(s.Preset)
	if err != nil {
		return err
	}
	if err := env.store.Export(p, s.Output); err != nil {
		return err
	}
	fmt.Printf("Exported '%s' to %s\n", p.Name, s.Output)
	return nil
}

var _ gcmds.BareCommand = &PresetExportCommand{}

type PresetImportCommand struct{ *gcmds.CommandDescription }

type PresetImportSettings struct {
	Input string `glazed.parameter:"input"`
}

func NewPresetImportCommand() (*PresetImportCommand, error) {
	layer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"import",
		gcmds.WithShort("Import a preset JSON file into the presets directory"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("input", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithShortFlag("i"), parameters.WithHelp("Preset JSON file")),
		),
		gcmds.WithLayersList(layer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &PresetImportCommand{cd}, nil
}

func (c *PresetImportCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &PresetImportSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	p, err := env.store.Import(s.Input)
	if err != nil {
		return err
	}
	fmt.Printf("Imported '%s' (id %s)\n", p.Name, p.ID)
	return nil
}

var _ gcmds.BareCommand = &PresetImportCommand{}
