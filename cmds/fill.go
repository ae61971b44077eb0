package cmds

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	glzcli "github.com/go-go-golems/glazed/pkg/cli"
	gcmds "github.com/go-go-golems/glazed/pkg/cmds"
	glayers "github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"

	"github.com/go-go-golems/tadakan/pkg/batchfile"
	"github.com/go-go-golems/tadakan/pkg/output"
	"github.com/go-go-golems/tadakan/pkg/rename"
	"github.com/go-go-golems/tadakan/pkg/workspacelayer"
)

type FillCommand struct{ *gcmds.CommandDescription }

type FillSettings struct {
	Preset         string `glazed.parameter:"preset"`
	Extension      string `glazed.parameter:"ext"`
	DefaultNgWords bool   `glazed.parameter:"default-ng-words"`
}

func NewFillCommand() (*FillCommand, error) {
	layer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"fill",
		gcmds.WithShort("Fill in preset fields interactively and print the resulting name"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("preset", parameters.ParameterTypeString, parameters.WithShortFlag("p"), parameters.WithHelp("Preset name or id (prompt if empty)")),
			parameters.NewParameterDefinition("ext", parameters.ParameterTypeString, parameters.WithHelp("Extension to append, e.g. .png")),
			parameters.NewParameterDefinition("default-ng-words", parameters.ParameterTypeBool, parameters.WithDefault(false), parameters.WithHelp("Forbid the configured NG words (DOS device names)")),
		),
		gcmds.WithLayersList(layer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &FillCommand{cd}, nil
}

func (c *FillCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &FillSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	if strings.TrimSpace(s.Preset) == "" {
		presets, _ := env.store.List()
		fmt.Printf("Found %d presets:\n", len(presets))
		for _, p := range presets {
			fmt.Printf("  - %s (%s) %s\n", p.Name, p.ID, p.NamingPattern)
		}
		fmt.Print("Preset: ")
		ps, _ := reader.ReadString('\n')
		s.Preset = strings.TrimSpace(ps)
	}
	if s.Preset == "" {
		return fmt.Errorf("preset is required")
	}
	p, err := env.lookupPreset(s.Preset)
	if err != nil {
		return err
	}

	fmt.Println(output.SectionHeader(p.Name, p.NamingPattern))
	values := map[string]string{}
	for _, f := range p.Fields {
		if d, ok := p.DefaultValues[f]; ok {
			fmt.Printf("%s [%s]: ", f, d)
		} else {
			fmt.Printf("%s: ", f)
		}
		v, _ := reader.ReadString('\n')
		if v = strings.TrimSpace(v); v != "" {
			values[f] = v
		}
	}
	if s.Extension == "" {
		fmt.Print("Extension (empty=none): ")
		e, _ := reader.ReadString('\n')
		s.Extension = strings.TrimSpace(e)
	}

	if s.Extension != "" && !strings.HasPrefix(s.Extension, ".") {
		s.Extension = "." + s.Extension
	}
	name, err := env.synthesizer().GenerateFilename(p, values, s.Extension, env.ngWords(nil, s.DefaultNgWords))
	if err != nil {
		var ic *rename.InvalidCharacterError
		if errors.As(err, &ic) {
			fmt.Println(output.Notef("suggestion: %s", rename.SanitizeFilename(ic.Name, "_")))
		}
		return err
	}

	fmt.Println("\n=== Result ===")
	fmt.Println(name)
	resolved := map[string]string{}
	for _, f := range p.Fields {
		if v, ok := p.FieldValue(f, values).Get(); ok {
			resolved[f] = v
		}
	}
	bf := batchfile.FromPreset(p, resolved, env.workspace.Path)
	fmt.Println(output.Notef("batch file: %s", bf.Filename()))
	fmt.Println(output.Notef("sequence name: %s", p.FilenameWithSequence(resolved, bf.NextSequence(), strings.ToLower(s.Extension))))

	fmt.Print("Save batch file to the workspace? (y/N): ")
	yn, _ := reader.ReadString('\n')
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(yn)), "y") {
		return nil
	}
	path, err := env.batchManager().Save(bf)
	if err != nil {
		return err
	}
	fmt.Printf("Saved %s\n", path)
	return nil
}

var _ gcmds.BareCommand = &FillCommand{}
