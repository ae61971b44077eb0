package cmds

import (
	"context"
	"fmt"

	glzcli "github.com/go-go-golems/glazed/pkg/cli"
	gcmds "github.com/go-go-golems/glazed/pkg/cmds"
	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"

	"github.com/go-go-golems/tadakan/pkg/output"
	"github.com/go-go-golems/tadakan/pkg/preset"
	"github.com/go-go-golems/tadakan/pkg/seed"
	"github.com/go-go-golems/tadakan/pkg/workspacelayer"
)

type SeedCommand struct{ *gcmds.CommandDescription }

type SeedSettings struct {
	Config  string `glazed.parameter:"config"`
	DryRun  bool   `glazed.parameter:"dry-run"`
	Replace bool   `glazed.parameter:"replace"`
}

func NewSeedCommand() (*SeedCommand, error) {
	layer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}

	cd := gcmds.NewCommandDescription(
		"seed",
		gcmds.WithShort("Create presets from a YAML bundle (defaults from env/files)"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("config", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithHelp("Seed YAML file"), parameters.WithShortFlag("c")),
			parameters.NewParameterDefinition("dry-run", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Preview without writing presets")),
			parameters.NewParameterDefinition("replace", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Overwrite presets that already exist")),
		),
		gcmds.WithLayersList(layer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &SeedCommand{cd}, nil
}

func (c *SeedCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &SeedSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}

	spec, err := seed.LoadSpec(env.fs, s.Config)
	if err != nil {
		return err
	}
	store := preset.NewStore(env.fs, spec.ResolvePresetsDir(env.store.Dir()))

	written, err := seed.Run(env.fs, store, spec, seed.Options{DryRun: s.DryRun, Replace: s.Replace})
	for _, p := range written {
		fmt.Println(output.SectionHeader(p.Name, p.NamingPattern))
		fmt.Println(output.Notef("  id %s", p.ID))
	}
	if s.DryRun {
		fmt.Println(output.Notef("dry run: %d preset(s) not written", len(written)))
	}
	return err
}

var _ gcmds.BareCommand = &SeedCommand{}
