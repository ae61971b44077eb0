package cmds

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	glzcli "github.com/go-go-golems/glazed/pkg/cli"
	gcmds "github.com/go-go-golems/glazed/pkg/cmds"
	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/tadakan/pkg/fileitem"
	"github.com/go-go-golems/tadakan/pkg/output"
	"github.com/go-go-golems/tadakan/pkg/rename"
	"github.com/go-go-golems/tadakan/pkg/script"
	"github.com/go-go-golems/tadakan/pkg/workspacelayer"
)

// scriptOutput is shared by every script subcommand.
type scriptOutput struct {
	OutputDir string `glazed.parameter:"output-dir"`
	Name      string `glazed.parameter:"name"`
}

func scriptOutputFlags() []*parameters.ParameterDefinition {
	return []*parameters.ParameterDefinition{
		parameters.NewParameterDefinition("output-dir", parameters.ParameterTypeString, parameters.WithShortFlag("o"), parameters.WithHelp("Directory for the .bat file; '-' prints to stdout")),
		parameters.NewParameterDefinition("name", parameters.ParameterTypeString, parameters.WithHelp("Script file name (.bat is appended)")),
	}
}

func newScriptDescription(name, short string, flags ...*parameters.ParameterDefinition) (*gcmds.CommandDescription, error) {
	layer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		name,
		gcmds.WithShort(short),
		gcmds.WithFlags(append(flags, scriptOutputFlags()...)...),
		gcmds.WithLayersList(layer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return cd, nil
}

// initSettings fills several settings structs from the default layer.
func initSettings(parsed *glayers.ParsedLayers, targets ...interface{}) error {
	for _, t := range targets {
		if err := parsed.InitializeStruct(glayers.DefaultSlug, t); err != nil {
			return err
		}
	}
	return nil
}

// emit saves content or prints it when the output directory is "-". Without
// an explicit directory an initialized workspace folder wins over
// app.default_output_dir. The returned path is empty when printing.
func emit(env *appEnv, o *scriptOutput, content, fallbackDir, fallbackName string) (string, error) {
	dir := o.OutputDir
	if dir == "" {
		dir = env.settings.DefaultOutputDir
		if ok, _ := afero.DirExists(env.fs, fallbackDir); ok || dir == "" {
			dir = fallbackDir
		}
	}
	if dir == "-" {
		fmt.Println(content)
		return "", nil
	}
	name := o.Name
	if name == "" {
		name = fallbackName
	}
	path, err := env.generator().Save(content, dir, name)
	if err != nil {
		return "", err
	}
	fmt.Printf("Wrote %s (%s)\n", path, env.encoding.Name)
	return path, nil
}

type ScriptRenameCommand struct{ *gcmds.CommandDescription }

type ScriptRenameSettings struct {
	NoErrorHandling bool   `glazed.parameter:"no-error-handling"`
	LogFile         string `glazed.parameter:"log-file"`
	WithUndo        bool   `glazed.parameter:"with-undo"`
	WithMetadata    bool   `glazed.parameter:"with-metadata"`
}

func NewScriptRenameCommand() (*ScriptRenameCommand, error) {
	flags := append(previewFlags(),
		parameters.NewParameterDefinition("no-error-handling", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Omit the errorlevel checks after each command")),
		parameters.NewParameterDefinition("log-file", parameters.ParameterTypeString, parameters.WithHelp("Append start/finish timestamps to this file")),
		parameters.NewParameterDefinition("with-undo", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Also write an undo script next to the rename script")),
		parameters.NewParameterDefinition("with-metadata", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Also write a YAML metadata file next to the rename script")),
	)
	cd, err := newScriptDescription("rename", "Generate a batch script that renames files and moves them into the target", flags...)
	if err != nil {
		return nil, err
	}
	return &ScriptRenameCommand{cd}, nil
}

func (c *ScriptRenameCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &ScriptRenameSettings{}
	ps := &PreviewSettings{}
	o := &scriptOutput{}
	if err := initSettings(parsed, s, ps, o); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	items, itemErrs, err := buildRenameItems(env, ps)
	if err != nil {
		return err
	}
	for i, e := range itemErrs {
		fmt.Fprintln(os.Stderr, output.Warnf("%s: %s", items[i].OriginalName, output.ShortError(e)))
	}

	logFile := s.LogFile
	if logFile == "" && env.settings.IncludeLogging {
		logFile = filepath.Join(env.settings.LogDirectory, "tadakan_rename.log")
	}
	content, err := env.generator().RenameBatch(items, ps.Target, script.RenameOptions{
		ErrorHandling: env.settings.IncludeErrorHandling && !s.NoErrorHandling,
		LogFile:       logFile,
	})
	if err != nil {
		return err
	}

	renamed := 0
	for _, it := range items {
		if it.NewName != "" {
			renamed++
			fmt.Fprintln(os.Stderr, output.RenamePair(it.OriginalName, it.NewName))
		}
	}
	fmt.Fprintln(os.Stderr, output.FileCount(renamed))
	name := o.Name
	if name == "" {
		name = "rename_" + sanitizedStem(ps.Preset)
	}
	path, err := emit(env, o, content, env.workspace.RenameBatches(), name)
	if err != nil {
		return err
	}
	if s.WithMetadata {
		if err := emitMetadata(env, ps, renamed, path); err != nil {
			return err
		}
	}
	if !s.WithUndo {
		return nil
	}
	undo := &scriptOutput{OutputDir: o.OutputDir, Name: "undo_" + strings.TrimSuffix(name, script.Extension)}
	_, err = emit(env, undo, env.generator().UndoBatch(undoFromItems(items, ps.Target)), env.workspace.RenameBatches(), undo.Name)
	return err
}

var _ gcmds.BareCommand = &ScriptRenameCommand{}

type ScriptFilterCommand struct{ *gcmds.CommandDescription }

type ScriptFilterSettings struct {
	Conditions []string `glazed.parameter:"condition"`
	Source     string   `glazed.parameter:"source"`
	Temp       string   `glazed.parameter:"temp"`
}

func NewScriptFilterCommand() (*ScriptFilterCommand, error) {
	cd, err := newScriptDescription("filter", "Generate a batch script that moves matching files into a temp folder",
		parameters.NewParameterDefinition("condition", parameters.ParameterTypeStringList, parameters.WithRequired(true), parameters.WithShortFlag("c"), parameters.WithHelp("Conditions as field=substring, applied in order")),
		parameters.NewParameterDefinition("source", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithHelp("Directory to filter")),
		parameters.NewParameterDefinition("temp", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithHelp("Directory receiving the matched files")),
	)
	if err != nil {
		return nil, err
	}
	return &ScriptFilterCommand{cd}, nil
}

func (c *ScriptFilterCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &ScriptFilterSettings{}
	o := &scriptOutput{}
	if err := initSettings(parsed, s, o); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	conds := make([]script.FilterCondition, 0, len(s.Conditions))
	for _, raw := range s.Conditions {
		field, cond, ok := strings.Cut(raw, "=")
		if !ok {
			field, cond = "", raw
		}
		conds = append(conds, script.FilterCondition{Field: strings.TrimSpace(field), Condition: cond})
	}
	content := env.generator().FilterBatch(conds, s.Source, s.Temp)
	_, err = emit(env, o, content, env.workspace.FilterBatches(), "filter")
	return err
}

var _ gcmds.BareCommand = &ScriptFilterCommand{}

type ScriptRestoreCommand struct{ *gcmds.CommandDescription }

type ScriptRestoreSettings struct {
	Files    []string `glazed.parameter:"files"`
	Temp     string   `glazed.parameter:"temp"`
	Original string   `glazed.parameter:"original"`
}

func NewScriptRestoreCommand() (*ScriptRestoreCommand, error) {
	cd, err := newScriptDescription("restore", "Generate a batch script that moves filtered files back",
		parameters.NewParameterDefinition("files", parameters.ParameterTypeStringList, parameters.WithRequired(true), parameters.WithShortFlag("f"), parameters.WithHelp("File names to move back")),
		parameters.NewParameterDefinition("temp", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithHelp("Directory holding the filtered files")),
		parameters.NewParameterDefinition("original", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithHelp("Directory the files came from")),
	)
	if err != nil {
		return nil, err
	}
	return &ScriptRestoreCommand{cd}, nil
}

func (c *ScriptRestoreCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &ScriptRestoreSettings{}
	o := &scriptOutput{}
	if err := initSettings(parsed, s, o); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(s.Files))
	for _, f := range s.Files {
		names = append(names, filepath.Base(f))
	}
	content := env.generator().RestoreBatch(names, s.Temp, s.Original)
	_, err = emit(env, o, content, env.workspace.FilterBatches(), "restore")
	return err
}

var _ gcmds.BareCommand = &ScriptRestoreCommand{}

type ScriptUndoCommand struct{ *gcmds.CommandDescription }

type ScriptUndoSettings struct {
	Renames   []string `glazed.parameter:"rename"`
	Directory string   `glazed.parameter:"dir"`
}

func NewScriptUndoCommand() (*ScriptUndoCommand, error) {
	cd, err := newScriptDescription("undo", "Generate a batch script that reverses renames",
		parameters.NewParameterDefinition("rename", parameters.ParameterTypeStringList, parameters.WithRequired(true), parameters.WithShortFlag("r"), parameters.WithHelp("Renames to reverse as current=original")),
		parameters.NewParameterDefinition("dir", parameters.ParameterTypeString, parameters.WithRequired(true), parameters.WithShortFlag("d"), parameters.WithHelp("Directory containing the renamed files")),
	)
	if err != nil {
		return nil, err
	}
	return &ScriptUndoCommand{cd}, nil
}

func (c *ScriptUndoCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &ScriptUndoSettings{}
	o := &scriptOutput{}
	if err := initSettings(parsed, s, o); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	ops, err := parseUndoOperations(s.Renames, s.Directory)
	if err != nil {
		return err
	}
	content := env.generator().UndoBatch(ops)
	_, err = emit(env, o, content, env.workspace.RenameBatches(), "undo")
	return err
}

var _ gcmds.BareCommand = &ScriptUndoCommand{}

// parseUndoOperations keeps the given order; pairs may not repeat a current name.
func parseUndoOperations(pairs []string, dir string) ([]script.UndoOperation, error) {
	ops := make([]script.UndoOperation, 0, len(pairs))
	for _, p := range pairs {
		current, original, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(current) == "" || strings.TrimSpace(original) == "" {
			return nil, fmt.Errorf("invalid rename %q, expected current=original", p)
		}
		ops = append(ops, script.UndoOperation{
			CurrentName:  strings.TrimSpace(current),
			OriginalName: strings.TrimSpace(original),
			Directory:    dir,
		})
	}
	return ops, nil
}

// undoFromItems reverses a rename preview, skipping items that kept their name.
func undoFromItems(items []*fileitem.Item, dir string) []script.UndoOperation {
	var ops []script.UndoOperation
	for _, it := range items {
		if it.NewName == "" || it.NewName == it.OriginalName {
			continue
		}
		ops = append(ops, script.UndoOperation{CurrentName: it.NewName, OriginalName: it.OriginalName, Directory: dir})
	}
	return ops
}

// emitMetadata writes the rename metadata next to scriptPath, or prints it
// when the script went to stdout.
func emitMetadata(env *appEnv, ps *PreviewSettings, renamed int, scriptPath string) error {
	p, err := env.lookupPreset(ps.Preset)
	if err != nil {
		return err
	}
	m := env.generator().Metadata(p.Name, "rename", renamed, ps.Target)
	if scriptPath == "" {
		b, err := yaml.Marshal(m)
		if err != nil {
			return err
		}
		fmt.Print(string(b))
		return nil
	}
	path, err := env.generator().SaveMetadata(m, scriptPath)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func sanitizedStem(ref string) string {
	stem := strings.ReplaceAll(rename.SanitizeFilename(ref, "_"), " ", "_")
	if stem == "" {
		return "preset"
	}
	return stem
}
