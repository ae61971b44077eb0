package cmds

import (
	"context"
	"fmt"
	"os"
	"strings"

	glzcli "github.com/go-go-golems/glazed/pkg/cli"
	gcmds "github.com/go-go-golems/glazed/pkg/cmds"
	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/middlewares"
	"github.com/go-go-golems/glazed/pkg/settings"
	"github.com/go-go-golems/glazed/pkg/types"

	"github.com/go-go-golems/tadakan/pkg/batchfile"
	"github.com/go-go-golems/tadakan/pkg/cmdutil"
	"github.com/go-go-golems/tadakan/pkg/listing"
	"github.com/go-go-golems/tadakan/pkg/output"
	"github.com/go-go-golems/tadakan/pkg/workspacelayer"
)

func (e *appEnv) batchManager() *batchfile.Manager {
	return batchfile.NewManager(e.workspace, batchfile.WithEncoding(e.encoding))
}

// loadBatchFiles reports unreadable files on stderr and keeps going.
func loadBatchFiles(m *batchfile.Manager) []*batchfile.BatchFile {
	bfs, err := m.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, output.Warnf("%s", output.ShortError(err)))
	}
	return bfs
}

type BatchCreateCommand struct{ *gcmds.CommandDescription }

type BatchCreateSettings struct {
	Preset string   `glazed.parameter:"preset"`
	Values []string `glazed.parameter:"value"`
}

func NewBatchCreateCommand() (*BatchCreateCommand, error) {
	layer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"create",
		gcmds.WithShort("Save a preset-bound batch file into the workspace"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("preset", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithShortFlag("p"), parameters.WithHelp("Preset name or id")),
			parameters.NewParameterDefinition("value", parameters.ParameterTypeStringList, parameters.WithShortFlag("v"), parameters.WithHelp("Field values as field=value (陣営 and キャラ名 name the file)")),
		),
		gcmds.WithLayersList(layer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &BatchCreateCommand{cd}, nil
}

func (c *BatchCreateCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &BatchCreateSettings{}
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
	values, err := cmdutil.ParseKeyValues(s.Values)
	if err != nil {
		return err
	}
	m := env.batchManager()
	path, err := m.Save(m.Create(p, values))
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", path)
	return nil
}

var _ gcmds.BareCommand = &BatchCreateCommand{}

type BatchListCommand struct{ *gcmds.CommandDescription }

type BatchListSettings struct {
	Criteria []string `glazed.parameter:"where"`
}

func NewBatchListCommand() (*BatchListCommand, error) {
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
		gcmds.WithShort("List batch files in the workspace"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("where", parameters.ParameterTypeStringList, parameters.WithShortFlag("w"), parameters.WithHelp("Filter as field=substring, e.g. 陣営=blue (case-insensitive)")),
		),
		gcmds.WithLayersList(glazedLayers, commandLayer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &BatchListCommand{cd}, nil
}

func (c *BatchListCommand) RunIntoGlazeProcessor(ctx context.Context, parsed *glayers.ParsedLayers, gp middlewares.Processor) error {
	s := &BatchListSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	criteria, err := cmdutil.ParseKeyValues(s.Criteria)
	if err != nil {
		return err
	}
	m := env.batchManager()
	bfs := loadBatchFiles(m)
	if len(criteria) > 0 {
		bfs = m.Search(criteria)
	}
	for _, bf := range bfs {
		row := types.NewRow(
			types.MRP("filename", bf.Filename()),
			types.MRP("preset_id", bf.PresetID),
			types.MRP("preset_name", bf.PresetName),
			types.MRP("field_values", bf.FieldValues),
			types.MRP("target_extensions", strings.Join(bf.TargetExtensions, ",")),
		)
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

var _ gcmds.GlazeCommand = &BatchListCommand{}

type BatchDeleteCommand struct{ *gcmds.CommandDescription }

type BatchDeleteSettings struct {
	Filenames []string `glazed.parameter:"filenames"`
}

func NewBatchDeleteCommand() (*BatchDeleteCommand, error) {
	layer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"delete",
		gcmds.WithShort("Delete batch files from the workspace"),
		gcmds.WithArguments(
			parameters.NewParameterDefinition("filenames", parameters.ParameterTypeStringList, parameters.WithRequired(true), parameters.WithHelp("Batch filenames (as shown by batch list)")),
		),
		gcmds.WithLayersList(layer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &BatchDeleteCommand{cd}, nil
}

func (c *BatchDeleteCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &BatchDeleteSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	m := env.batchManager()
	for _, name := range s.Filenames {
		ok, err := m.Delete(name)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println(output.Warnf("%s not found", name))
			continue
		}
		fmt.Printf("Deleted %s\n", name)
	}
	return nil
}

var _ gcmds.BareCommand = &BatchDeleteCommand{}

type BatchTallyCommand struct{ *gcmds.CommandDescription }

type BatchTallySettings struct {
	Filenames []string `glazed.parameter:"batch"`
	Files     []string `glazed.parameter:"files"`
	Depth     int      `glazed.parameter:"depth"`
	Days      int      `glazed.parameter:"days"`
}

func NewBatchTallyCommand() (*BatchTallyCommand, error) {
	glazedLayers, err := settings.NewGlazedParameterLayers()
	if err != nil {
		return nil, err
	}
	commandLayer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"tally",
		gcmds.WithShort("Count the files each batch file would process, then report usage"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("batch", parameters.ParameterTypeStringList, parameters.WithShortFlag("b"), parameters.WithHelp("Batch filenames to tally; default all")),
			parameters.NewParameterDefinition("files", parameters.ParameterTypeStringList, parameters.WithRequired(true), parameters.WithShortFlag("f"), parameters.WithHelp("Files or directories to count")),
			parameters.NewParameterDefinition("depth", parameters.ParameterTypeInteger, parameters.WithDefault(1), parameters.WithHelp("Directory depth to collect (0 = unlimited)")),
			parameters.NewParameterDefinition("days", parameters.ParameterTypeInteger, parameters.WithDefault(30), parameters.WithHelp("Report window in days (0 = all)")),
		),
		gcmds.WithLayersList(glazedLayers, commandLayer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &BatchTallyCommand{cd}, nil
}

// RunIntoGlazeProcessor emits one row per tallied batch file followed by a
// summary row.
func (c *BatchTallyCommand) RunIntoGlazeProcessor(ctx context.Context, parsed *glayers.ParsedLayers, gp middlewares.Processor) error {
	s := &BatchTallySettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	entries, walkErrs := listing.Collect(env.fs, s.Files, s.Depth)
	for _, e := range walkErrs {
		fmt.Fprintln(os.Stderr, output.Warnf("%s", e))
	}
	files := listing.Paths(entries)

	m := env.batchManager()
	bfs := cmdutil.FilterItems(loadBatchFiles(m), s.Filenames, func(bf *batchfile.BatchFile) string { return bf.Filename() })
	for _, bf := range bfs {
		r := m.Tally(bf, files)
		m.Record(r)
		row := types.NewRow(
			types.MRP("batch", r.BatchFilename),
			types.MRP("processed", r.ProcessedFilesCount),
			types.MRP("success", r.SuccessCount),
			types.MRP("errors", r.ErrorCount),
			types.MRP("success_rate", r.SuccessRate()),
			types.MRP("duration", r.Duration().String()),
			types.MRP("runs", len(m.History(r.BatchFilename))),
		)
		if err := gp.AddRow(ctx, row); err != nil {
			return err
		}
	}

	report := m.Report(s.Days)
	stats := m.UsageStatistics()
	most := make([]string, 0, len(report.MostUsedBatches))
	for _, u := range report.MostUsedBatches {
		most = append(most, u.BatchFilename)
	}
	popular := make([]string, 0, len(stats.MostPopularPresets))
	for _, u := range stats.MostPopularPresets {
		popular = append(popular, fmt.Sprintf("%s(%d)", u.PresetID, u.BatchFiles))
	}
	summary := types.NewRow(
		types.MRP("batch", "TOTAL"),
		types.MRP("executions", report.TotalExecutions),
		types.MRP("success_rate", report.SuccessRate),
		types.MRP("batch_files", stats.TotalBatchFiles),
		types.MRP("avg_files", stats.AverageFilesPerExecution),
		types.MRP("most_used", strings.Join(most, ",")),
		types.MRP("popular_presets", strings.Join(popular, ",")),
	)
	return gp.AddRow(ctx, summary)
}

var _ gcmds.GlazeCommand = &BatchTallyCommand{}
