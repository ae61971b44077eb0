package cmds

import (
	"context"
	"fmt"

	glzcli "github.com/go-go-golems/glazed/pkg/cli"
	gcmds "github.com/go-go-golems/glazed/pkg/cmds"
	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"

	"github.com/go-go-golems/tadakan/pkg/output"
	"github.com/go-go-golems/tadakan/pkg/workspacelayer"
)

type WorkspaceInitCommand struct{ *gcmds.CommandDescription }

func NewWorkspaceInitCommand() (*WorkspaceInitCommand, error) {
	layer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"init",
		gcmds.WithShort("Create the workspace folder and its rename_batches, filter_batches and display subfolders"),
		gcmds.WithLayersList(layer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &WorkspaceInitCommand{cd}, nil
}

func (c *WorkspaceInitCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	created, err := env.workspace.Initialize()
	if err != nil {
		return err
	}
	fmt.Println(output.SectionHeader("workspace", env.workspace.Path))
	if len(created) == 0 {
		fmt.Println(output.Notef("already initialized"))
		return nil
	}
	fmt.Print(output.ListNames(created))
	return nil
}

var _ gcmds.BareCommand = &WorkspaceInitCommand{}

type WorkspaceCheckCommand struct{ *gcmds.CommandDescription }

type WorkspaceCheckSettings struct {
	Repair bool `glazed.parameter:"repair"`
}

func NewWorkspaceCheckCommand() (*WorkspaceCheckCommand, error) {
	glazedLayers, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, err
	}
	commandLayer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"check",
		gcmds.WithShort("Report missing workspace folders"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("repair", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Create missing subfolders after reporting")),
		),
		gcmds.WithLayersList(glazedLayers, commandLayer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &WorkspaceCheckCommand{cd}, nil
}

func (c *WorkspaceCheckCommand) RunIntoGlazeProcessor(ctx context.Context, parsed *glayers.ParsedLayers, gp middlewares.Processor) error {
	s := &WorkspaceCheckSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	issues, err := env.workspace.HealthCheck()
	if err != nil {
		return err
	}
	repaired := map[string]bool{}
	if s.Repair && len(issues) > 0 {
		names, err := env.workspace.Repair()
		if err != nil {
			return err
		}
		for _, n := range names {
			repaired["missing_"+n+"_folder"] = true
		}
	}
	for _, is := range issues {
		row := types.NewRow(
			types.MRP("type", is.Type),
			types.MRP("description", is.Description),
			types.MRP("severity", string(is.Severity)),
			types.MRP("repaired", repaired[is.Type]),
		)
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

var _ gcmds.GlazeCommand = &WorkspaceCheckCommand{}
