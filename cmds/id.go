package cmds

import (
	"context"

	glzcli "github.com/go-go-golems/glazed/pkg/cli"
	gcmds "github.com/go-go-golems/glazed/pkg/cmds"
	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"

	"github.com/go-go-golems/tadakan/pkg/presetid"
	"github.com/go-go-golems/tadakan/pkg/workspacelayer"
)

type IDGenerateCommand struct{ *gcmds.CommandDescription }

type IDGenerateSettings struct {
	Count int `glazed.parameter:"count"`
}

func NewIDGenerateCommand() (*IDGenerateCommand, error) {
	glazedLayers, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, err
	}
	commandLayer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"generate",
		gcmds.WithShort("Generate preset ids not used by any stored preset"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("count", parameters.ParameterTypeInteger, parameters.WithDefault(1), parameters.WithHelp("Number of ids")),
		),
		gcmds.WithLayersList(glazedLayers, commandLayer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &IDGenerateCommand{cd}, nil
}

func (c *IDGenerateCommand) RunIntoGlazeProcessor(ctx context.Context, parsed *glayers.ParsedLayers, gp middlewares.Processor) error {
	s := &IDGenerateSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	existing, err := env.store.ExistingIDs()
	if err != nil {
		return err
	}
	gen := presetid.NewGenerator(nil)
	for i := 0; i < s.Count; i++ {
		id, err := gen.GenerateUnique(existing)
		if err != nil {
			return err
		}
		existing[id] = struct{}{}
		if err := gp.AddRow(ctx, types.NewRow(types.MRP("id", id))); err != nil {
			return err
		}
	}
	return nil
}

var _ gcmds.GlazeCommand = &IDGenerateCommand{}

type IDValidateCommand struct{ *gcmds.CommandDescription }

type IDValidateSettings struct {
	IDs []string `glazed.parameter:"ids"`
}

func NewIDValidateCommand() (*IDValidateCommand, error) {
	glazedLayers, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, err
	}
	commandLayer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"validate",
		gcmds.WithShort("Check preset ids: 6 of A-Z0-9 with at least one letter and one digit"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("ids", parameters.ParameterTypeStringList, parameters.WithRequired(true), parameters.WithHelp("Ids to check")),
		),
		gcmds.WithLayersList(glazedLayers, commandLayer),
	)
	return &IDValidateCommand{cd}, nil
}

func (c *IDValidateCommand) RunIntoGlazeProcessor(ctx context.Context, parsed *glayers.ParsedLayers, gp middlewares.Processor) error {
	s := &IDValidateSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	for _, id := range s.IDs {
		row := types.NewRow(
			types.MRP("id", id),
			types.MRP("valid", presetid.Validate(id)),
		)
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

var _ gcmds.GlazeCommand = &IDValidateCommand{}
