package main

import (
	"github.com/go-go-golems/glazed/pkg/cli"
	gcmds "github.com/go-go-golems/glazed/pkg/cmds"
	"github.com/go-go-golems/glazed/pkg/cmds/layers"
	"github.com/go-go-golems/glazed/pkg/cmds/logging"
	"github.com/go-go-golems/glazed/pkg/cmds/middlewares"
	"github.com/go-go-golems/glazed/pkg/cmds/parameters"
	"github.com/go-go-golems/glazed/pkg/help"
	help_cmd "github.com/go-go-golems/glazed/pkg/help/cmd"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	clay "github.com/go-go-golems/clay/pkg"

	appcmds "github.com/go-go-golems/tadakan/cmds"
	appdoc "github.com/go-go-golems/tadakan/pkg/doc"
	"github.com/go-go-golems/tadakan/pkg/output"
	"github.com/go-go-golems/tadakan/pkg/settings"
)

var version = "dev"

func getMiddlewares(parsedLayers *layers.ParsedLayers, cmd *cobra.Command, args []string) ([]middlewares.Middleware, error) {
	commandSettings := &cli.CommandSettings{}
	err := parsedLayers.InitializeStruct(cli.CommandSettingsSlug, commandSettings)
	if err != nil {
		return nil, err
	}

	mw_ := []middlewares.Middleware{
		middlewares.ParseFromCobraCommand(cmd,
			parameters.WithParseStepSource("cobra"),
		),
		middlewares.GatherArguments(args,
			parameters.WithParseStepSource("arguments"),
		),
	}

	mw_ = append(mw_,
		middlewares.GatherFlagsFromViper(parameters.WithParseStepSource("viper")),
		middlewares.SetFromDefaults(parameters.WithParseStepSource("defaults")),
	)

	return mw_, nil
}

// register builds a cobra command from c and adds it to parent.
func register[T gcmds.Command](parent *cobra.Command, ctor func() (T, error), opts ...cli.CobraOption) {
	c, err := ctor()
	cobra.CheckErr(err)
	cmd, err := cli.BuildCobraCommand(c, opts...)
	cobra.CheckErr(err)
	parent.AddCommand(cmd)
}

func group(root *cobra.Command, use, short string) *cobra.Command {
	g := &cobra.Command{Use: use, Short: short}
	root.AddCommand(g)
	return g
}

func main() {
	rootCmd := &cobra.Command{
		Use:     "tadakan",
		Short:   "Build file names from presets and generate Windows batch scripts that apply them",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			err := logging.InitLoggerFromViper()
			cobra.CheckErr(err)
			output.InitConsole(viper.GetBool("no-color"))
		},
	}
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored console output")

	clay.InitViper("tadakan", rootCmd)
	cobra.CheckErr(viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color")))
	settings.SetDefaults(viper.GetViper())

	// Help system
	hs := help.NewHelpSystem()
	_ = appdoc.AddDocToHelpSystem(hs)
	help_cmd.SetupCobraRootCommand(hs, rootCmd)

	opts := []cli.CobraOption{
		cli.WithParserConfig(cli.CobraParserConfig{
			MiddlewaresFunc: getMiddlewares,
		}),
	}

	presetCmd := group(rootCmd, "preset", "Create, inspect and move naming presets")
	register(presetCmd, appcmds.NewPresetCreateCommand, opts...)
	register(presetCmd, appcmds.NewPresetListCommand, opts...)
	register(presetCmd, appcmds.NewPresetShowCommand, opts...)
	register(presetCmd, appcmds.NewPresetDeleteCommand, opts...)
	register(presetCmd, appcmds.NewPresetExportCommand, opts...)
	register(presetCmd, appcmds.NewPresetImportCommand, opts...)
	register(presetCmd, appcmds.NewSeedCommand, opts...)
	register(presetCmd, appcmds.NewValidateCommand, opts...)

	idCmd := group(rootCmd, "id", "Generate and validate preset ids")
	register(idCmd, appcmds.NewIDGenerateCommand, opts...)
	register(idCmd, appcmds.NewIDValidateCommand, opts...)

	scriptCmd := group(rootCmd, "script", "Generate rename, filter, restore and undo batch scripts")
	register(scriptCmd, appcmds.NewScriptRenameCommand, opts...)
	register(scriptCmd, appcmds.NewScriptFilterCommand, opts...)
	register(scriptCmd, appcmds.NewScriptRestoreCommand, opts...)
	register(scriptCmd, appcmds.NewScriptUndoCommand, opts...)

	batchCmd := group(rootCmd, "batch", "Manage preset-bound batch files in the workspace")
	register(batchCmd, appcmds.NewBatchCreateCommand, opts...)
	register(batchCmd, appcmds.NewBatchListCommand, opts...)
	register(batchCmd, appcmds.NewBatchDeleteCommand, opts...)
	register(batchCmd, appcmds.NewBatchTallyCommand, opts...)

	workspaceCmd := group(rootCmd, "workspace", "Initialize and check the workspace folders")
	register(workspaceCmd, appcmds.NewWorkspaceInitCommand, opts...)
	register(workspaceCmd, appcmds.NewWorkspaceCheckCommand, opts...)

	register(rootCmd, appcmds.NewPreviewCommand, opts...)
	register(rootCmd, appcmds.NewFillCommand, opts...)
	register(rootCmd, appcmds.NewPlanCommand, opts...)
	register(rootCmd, appcmds.NewTreeCommand, opts...)

	cobra.CheckErr(rootCmd.Execute())
}
