package cmds

import (
	"context"
	"os"

	glzcli "github.com/go-go-golems/glazed/pkg/cli"
	gcmds "github.com/go-go-golems/glazed/pkg/cmds"
	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"

	"github.com/go-go-golems/tadakan/pkg/cmdutil"
	"github.com/go-go-golems/tadakan/pkg/plan"
	"github.com/go-go-golems/tadakan/pkg/preset"
	"github.com/go-go-golems/tadakan/pkg/workspace"
	"github.com/go-go-golems/tadakan/pkg/workspacelayer"
)

type PlanCommand struct{ *gcmds.CommandDescription }

type PlanSettings struct {
	Config          string   `glazed.parameter:"config"`
	OutputOverride  string   `glazed.parameter:"output"`
	ContinueOnError bool     `glazed.parameter:"continue-on-error"`
	DryRun          bool     `glazed.parameter:"dry-run"`
	Jobs            []string `glazed.parameter:"jobs"`
}

func NewPlanCommand() (*PlanCommand, error) {
	layer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}

	cd := gcmds.NewCommandDescription(
		"plan",
		gcmds.WithShort("Generate several rename, filter and undo scripts from a YAML plan"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("config", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithHelp("Plan YAML file"), parameters.WithShortFlag("c")),
			parameters.NewParameterDefinition("output", parameters.ParameterTypeString, parameters.WithHelp("Override the output directory for all jobs")),
			parameters.NewParameterDefinition("continue-on-error", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Continue processing on errors")),
			parameters.NewParameterDefinition("dry-run", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Print scripts instead of writing files")),
			parameters.NewParameterDefinition("jobs", parameters.ParameterTypeStringList, parameters.WithHelp("Only process jobs with these names; default all")),
		),
		gcmds.WithLayersList(layer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &PlanCommand{cd}, nil
}

func (c *PlanCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &PlanSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}

	cfg, err := plan.LoadConfig(env.fs, s.Config)
	if err != nil {
		return err
	}
	cfg.Jobs = cmdutil.FilterItems(cfg.Jobs, s.Jobs, func(j plan.Job) string { return j.Name })

	store := env.store
	if cfg.PresetsDir != "" {
		store = preset.NewStore(env.fs, cfg.PresetsDir)
	}
	if cfg.OutputDir == "" {
		ws := env.workspace
		if cfg.Workspace != "" {
			ws = workspace.New(env.fs, cfg.Workspace)
		}
		cfg.OutputDir = ws.RenameBatches()
	}

	proc := plan.Processor{Fs: env.fs, Store: store, Generator: env.generator(), Out: os.Stdout}
	_, err = proc.Process(cfg, plan.ProcessorOptions{
		OutputOverride:       s.OutputOverride,
		ContinueOnError:      s.ContinueOnError,
		DryRun:               s.DryRun,
		DefaultErrorHandling: env.settings.IncludeErrorHandling,
		AutoNumberLimit:      env.settings.AutoNumberingLimit,
		NgWords:              env.settings.NgWords,
	})
	return err
}

var _ gcmds.BareCommand = &PlanCommand{}
