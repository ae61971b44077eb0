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
	"gopkg.in/yaml.v3"

	"github.com/go-go-golems/tadakan/pkg/listing"
	"github.com/go-go-golems/tadakan/pkg/output"
	"github.com/go-go-golems/tadakan/pkg/preset"
	"github.com/go-go-golems/tadakan/pkg/workspacelayer"
)

type TreeCommand struct{ *gcmds.CommandDescription }

type TreeSettings struct {
	Path   string `glazed.parameter:"path"`
	Depth  int    `glazed.parameter:"depth"`
	Preset string `glazed.parameter:"preset"`
}

func NewTreeCommand() (*TreeCommand, error) {
	layer, err := glzcli.NewCommandSettingsLayer()
	if err != nil {
		return nil, err
	}
	cd := gcmds.NewCommandDescription(
		"tree",
		gcmds.WithShort("Print a directory as a YAML tree, marking the files a preset targets"),
		gcmds.WithFlags(
			parameters.NewParameterDefinition("path", parameters.ParameterTypeString, parameters.WithShortFlag("p"), parameters.WithHelp("Root directory (default: the workspace)")),
			parameters.NewParameterDefinition("depth", parameters.ParameterTypeInteger, parameters.WithDefault(0), parameters.WithHelp("Max depth (0 = unlimited)")),
			parameters.NewParameterDefinition("preset", parameters.ParameterTypeString, parameters.WithHelp("Mark files as target/skip for this preset")),
		),
		gcmds.WithLayersList(layer),
	)
	if _, err := workspacelayer.AddWorkspaceLayerToCommand(cd); err != nil {
		return nil, err
	}
	return &TreeCommand{cd}, nil
}

func (c *TreeCommand) Run(ctx context.Context, parsed *glayers.ParsedLayers) error {
	s := &TreeSettings{}
	if err := parsed.InitializeStruct(glayers.DefaultSlug, s); err != nil {
		return err
	}
	env, err := newAppEnv(parsed)
	if err != nil {
		return err
	}
	root := s.Path
	if root == "" {
		root = env.workspace.Path
	}

	var exts []string
	if s.Preset != "" {
		p, err := env.lookupPreset(s.Preset)
		if err != nil {
			return err
		}
		exts = p.TargetExtensions
	}

	entries, errs := listing.Walk(env.fs, root, s.Depth)
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, output.Warnf("%s", e))
	}

	tree := map[string]interface{}{}
	for _, e := range entries {
		rel, err := filepath.Rel(root, e.Path)
		if err != nil || rel == "." {
			rel = e.Name
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		node := tree
		for _, dir := range parts[:len(parts)-1] {
			child, ok := node[dir].(map[string]interface{})
			if !ok {
				child = map[string]interface{}{}
				node[dir] = child
			}
			node = child
		}
		node[e.Name] = leafFor(e, exts)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return err
	}
	_ = enc.Close()
	return nil
}

// leafFor is the file size, or target/skip when a preset is given.
func leafFor(e listing.Entry, exts []string) interface{} {
	if exts == nil {
		return e.Size
	}
	if len(preset.FilterByExtensions(exts, []string{e.Path})) == 1 {
		return "target"
	}
	return "skip"
}

var _ gcmds.BareCommand = &TreeCommand{}
