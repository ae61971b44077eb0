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

	"github.com/go-go-golems/tadakan/pkg/plan"
	"github.com/go-go-golems/tadakan/pkg/preset"
	"github.com/go-go-golems/tadakan/pkg/presetid"
	"github.com/go-go-golems/tadakan/pkg/workspacelayer"
)

type ValidateCommand struct{ *gcmds.CommandDescription }

type ValidateSettings struct {
	PlanConfig string `glazed.parameter:"plan-config"`
}

func NewValidateCommand() (*ValidateCommand, error) {
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
		gcmds.WithShort("Check stored presets and cross-check a rename plan against them"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("plan-config", parameters.ParameterTypeString, parameters.WithShortFlag("c"), parameters.WithHelp("Path to plan YAML config (optional)")),
		),
		gcmds.WithLayersList(glazedLayers, commandLayer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &ValidateCommand{cd}, nil
}

// RunIntoGlazeProcessor emits one row per problem found.
func (c *ValidateCommand) RunIntoGlazeProcessor(ctx context.Context, parsed *glayers.ParsedLayers, gp middlewares.Processor) error {
	s := &ValidateSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}

	presets, listErr := env.store.List()
	if listErr != nil {
		row := types.NewRow(
			types.MRP("type", "preset_unreadable"),
			types.MRP("error", listErr.Error()),
		)
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}

	byID := map[string]string{}
	byName := map[string]*preset.Preset{}
	for _, p := range presets {
		byName[p.Name] = p
		if undeclared := p.UndeclaredPlaceholders(); len(undeclared) > 0 {
			row := types.NewRow(
				types.MRP("type", "pattern_undeclared_field"),
				types.MRP("preset", p.Name),
				types.MRP("fields", undeclared),
			)
			if err := gp.AddRow(ctx, row); err != nil {
				return err
			}
		}
		if !presetid.Validate(p.ID) {
			row := types.NewRow(
				types.MRP("type", "invalid_id"),
				types.MRP("preset", p.Name),
				types.MRP("id", p.ID),
			)
			if err := gp.AddRow(ctx, row); err != nil {
				return err
			}
		}
		if other, dup := byID[p.ID]; dup {
			row := types.NewRow(
				types.MRP("type", "duplicate_id"),
				types.MRP("preset", p.Name),
				types.MRP("id", p.ID),
				types.MRP("other", other),
			)
			if err := gp.AddRow(ctx, row); err != nil {
				return err
			}
		}
		byID[p.ID] = p.Name
	}

	if s.PlanConfig == "" {
		return nil
	}
	cfg, err := plan.LoadConfig(env.fs, s.PlanConfig)
	if err != nil {
		return err
	}
	for _, job := range cfg.Jobs {
		if job.Kind != "" && job.Kind != plan.KindRename {
			continue
		}
		p, ok := byName[job.Preset]
		if !ok {
			if name, okID := byID[job.Preset]; okID {
				p, ok = byName[name], true
			}
		}
		if !ok {
			row := types.NewRow(
				types.MRP("type", "plan_missing_preset"),
				types.MRP("job", job.Name),
				types.MRP("preset", job.Preset),
			)
			if err := gp.AddRow(ctx, row); err != nil {
				return err
			}
			continue
		}
		for _, f := range p.Fields {
			if f == preset.NumberField {
				continue
			}
			if !p.FieldValue(f, job.Values).IsPresent() {
				row := types.NewRow(
					types.MRP("type", "plan_missing_value"),
					types.MRP("job", job.Name),
					types.MRP("preset", p.Name),
					types.MRP("field", f),
				)
				if err := gp.AddRow(ctx, row); err != nil {
					return err
				}
			}
		}
		if job.Target == "" {
			row := types.NewRow(
				types.MRP("type", "plan_missing_target"),
				types.MRP("job", job.Name),
				types.MRP("detail", fmt.Sprintf("job '%s' has no target directory", job.Name)),
			)
			if err := gp.AddRow(ctx, row); err != nil {
				return err
			}
		}
	}
	return nil
}

var _ gcmds.GlazeCommand = &ValidateCommand{}
