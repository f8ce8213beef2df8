// Package cli builds the slotctl command tree
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/openslx/slotctl/internal/version"
	"github.com/openslx/slotctl/pkg/config"
	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/logging"
	"github.com/openslx/slotctl/pkg/reload"
	"github.com/openslx/slotctl/pkg/types"
	"github.com/openslx/slotctl/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Options injects the collaborators of the command tree. Zero values use
// the real filesystem and run commands on the host.
type Options struct {
	FileSystem types.FS
	Runner     reload.Runner
	// SkipEnv ignores SLOTCTL_* environment overrides
	SkipEnv bool
	// SkipLogSetup leaves the global logger alone
	SkipLogSetup bool
}

// app holds the global flags and collaborators shared by all commands
type app struct {
	opts Options

	verbosity   int
	quiet       bool
	configPath  string
	image       string
	format      ui.Format
	metricsFile string
	rootDir     string
	overrides   []string
}

// NewRootCmd creates the command tree used by the slotctl binary
func NewRootCmd() *cobra.Command {
	return New(Options{})
}

// New creates the command tree with the given collaborators
func New(opts Options) *cobra.Command {
	initTemplateFormatting()

	a := &app{opts: opts}

	rootCmd := &cobra.Command{
		Use:     "slotctl",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !a.opts.SkipLogSetup {
				logging.SetupLogger(a.verbosity, a.quiet)
			}
			log.Debug().Str("command", cmd.CommandPath()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	flags.BoolVarP(&a.quiet, "quiet", "q", false, MsgFlagQuiet)
	flags.StringVarP(&a.configPath, "config", "c", "", MsgFlagConfig)
	flags.StringVarP(&a.image, "image", "i", "", MsgFlagImage)
	flags.VarP(&a.format, "format", "f", MsgFlagFormat)
	flags.StringVar(&a.metricsFile, "metrics-file", "", MsgFlagMetricsFile)
	flags.StringVar(&a.rootDir, "root", "", MsgFlagRoot)
	flags.StringArrayVar(&a.overrides, "set", nil, MsgFlagSet)

	rootCmd.AddGroup(
		&cobra.Group{ID: "slots", Title: "SLOT COMMANDS:"},
		&cobra.Group{ID: "misc", Title: "MISC:"},
	)
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(
		a.newDeployCmd(),
		a.newPromoteCmd(),
		a.newCleanupCmd(),
		a.newStatusCmd(),
		a.newReloadCmd(),
		a.newConfigCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)

	if err := installTopics(rootCmd); err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

// loadConfig reads and, when validate is set, checks the configuration
func (a *app) loadConfig(validate bool) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		Path:    a.configPath,
		SkipEnv: a.opts.SkipEnv,
		Set:     a.overrides,
	})
	if err != nil {
		return nil, err
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Execute runs the command tree and renders a failure to stderr. It
// returns the process exit code.
func Execute(ctx context.Context, rootCmd *cobra.Command, stderr io.Writer) int {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}
	if cmd == nil {
		cmd = rootCmd
	}

	format := ui.FormatAuto
	if f := cmd.Flags().Lookup("format"); f != nil {
		if parsed, perr := ui.ParseFormat(f.Value.String()); perr == nil {
			format = parsed
		}
	}
	if format == ui.FormatAuto {
		format = ui.DetectFormat(os.Stderr)
	}
	renderer, rerr := ui.NewRenderer(format, stderr)
	if rerr != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	_ = renderer.RenderError(err)
	return 1
}
