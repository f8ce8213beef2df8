package cli

import (
	"fmt"

	"github.com/openslx/slotctl/internal/version"
	"github.com/openslx/slotctl/pkg/commands"
	"github.com/openslx/slotctl/pkg/config"
	"github.com/openslx/slotctl/pkg/filesystem"
	"github.com/openslx/slotctl/pkg/logging"
	"github.com/openslx/slotctl/pkg/metrics"
	"github.com/openslx/slotctl/pkg/ui"
	"github.com/spf13/cobra"
)

// runSlotCommand dispatches cmdType and renders its report. A partial
// report is rendered before the error is returned.
func (a *app) runSlotCommand(cmd *cobra.Command, cmdType commands.CommandType, dryRun bool) error {
	logger := logging.GetLogger("cli")

	cfg, err := a.loadConfig(true)
	if err != nil {
		return err
	}

	renderer, err := ui.NewRenderer(a.format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	var rec *metrics.Recorder
	if a.metricsFile != "" {
		rec = metrics.NewRecorder()
	}

	fsys := a.opts.FileSystem
	if fsys == nil && a.rootDir != "" {
		fsys = filesystem.NewOSAt(a.rootDir)
	}

	result, err := commands.Dispatch(cmd.Context(), cmdType, commands.DispatchOptions{
		Config:     cfg,
		Image:      a.image,
		DryRun:     dryRun,
		FileSystem: fsys,
		Runner:     a.opts.Runner,
		Metrics:    rec,
	})
	if result != nil {
		if rerr := renderer.RenderResult(result); rerr != nil {
			logger.Warn().Err(rerr).Msg("Failed to render result")
		}
	}

	if rec != nil {
		if werr := rec.WriteTextfile(a.metricsFile); werr != nil {
			logger.Warn().Err(werr).Str("path", a.metricsFile).Msg("Failed to write metrics")
		}
	}
	return err
}

func (a *app) slotCommand(use, short, long string, cmdType commands.CommandType, withDryRun bool) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Long:    long,
		GroupID: "slots",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSlotCommand(cmd, cmdType, dryRun)
		},
	}
	if withDryRun {
		cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, MsgFlagDryRun)
	}
	return cmd
}

func (a *app) newDeployCmd() *cobra.Command {
	return a.slotCommand("deploy", MsgDeployShort, "", commands.CommandDeploy, true)
}

func (a *app) newPromoteCmd() *cobra.Command {
	return a.slotCommand("promote", MsgPromoteShort, MsgPromoteLong, commands.CommandPromote, true)
}

func (a *app) newCleanupCmd() *cobra.Command {
	return a.slotCommand("cleanup", MsgCleanupShort, MsgCleanupLong, commands.CommandCleanup, true)
}

func (a *app) newStatusCmd() *cobra.Command {
	return a.slotCommand("status", MsgStatusShort, "", commands.CommandStatus, false)
}

func (a *app) newReloadCmd() *cobra.Command {
	return a.slotCommand("reload", MsgReloadShort, "", commands.CommandReload, true)
}

func (a *app) newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
	}

	var as string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: MsgConfigDumpShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := config.ParseDumpFormat(as)
			if err != nil {
				return err
			}
			cfg, err := a.loadConfig(false)
			if err != nil {
				return err
			}
			out, err := config.Dump(cfg, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	dumpCmd.Flags().StringVar(&as, "as", "yaml", MsgFlagDumpAs)

	showDefaultCmd := &cobra.Command{
		Use:   "show-default",
		Short: MsgConfigDefShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(false)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cfg.General.DefaultImage)
			return err
		},
	}

	builtinCmd := &cobra.Command{
		Use:   "show-builtin",
		Short: MsgConfigBuiltinShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write([]byte(config.DefaultContent()))
			return err
		},
	}

	configCmd.AddCommand(dumpCmd, showDefaultCmd, builtinCmd)
	return configCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = cmd.OutOrStdout().Write([]byte(version.String()))
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
