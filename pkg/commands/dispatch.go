package commands

import (
	"context"
	"time"

	"github.com/openslx/slotctl/pkg/config"
	"github.com/openslx/slotctl/pkg/deploy"
	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/filesystem"
	"github.com/openslx/slotctl/pkg/layout"
	"github.com/openslx/slotctl/pkg/linkstore"
	"github.com/openslx/slotctl/pkg/logging"
	"github.com/openslx/slotctl/pkg/metrics"
	"github.com/openslx/slotctl/pkg/promotion"
	"github.com/openslx/slotctl/pkg/reload"
	"github.com/openslx/slotctl/pkg/retention"
	"github.com/openslx/slotctl/pkg/status"
	"github.com/openslx/slotctl/pkg/types"
)

// CommandType names a command that operates on an image's slots
type CommandType string

const (
	CommandDeploy  CommandType = "deploy"
	CommandPromote CommandType = "promote"
	CommandCleanup CommandType = "cleanup"
	CommandStatus  CommandType = "status"
	CommandReload  CommandType = "reload"
)

// AllCommands lists every dispatchable command
var AllCommands = []CommandType{CommandDeploy, CommandPromote, CommandCleanup, CommandStatus, CommandReload}

// DispatchOptions contains all possible options for slot commands.
// Each command uses only the fields it needs.
type DispatchOptions struct {
	Config *config.Config
	// Image is the key under images; empty selects the default image
	Image  string
	DryRun bool

	// FileSystem defaults to the real filesystem
	FileSystem types.FS
	// Runner executes reload commands; defaults to an ExecRunner using the
	// configured command timeout
	Runner reload.Runner
	// Metrics, when set, records the outcome of the run
	Metrics *metrics.Recorder
}

// Dispatch runs cmdType and returns its report. A command failing part way
// returns the partial report alongside the error; result is nil only when
// nothing ran.
func Dispatch(ctx context.Context, cmdType CommandType, opts DispatchOptions) (interface{}, error) {
	logger := logging.GetLogger("commands.dispatch")

	if opts.Config == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no configuration loaded")
	}
	img, err := opts.Config.Image(opts.Image)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("command", string(cmdType)).
		Str("image", img.Name).
		Bool("dryRun", opts.DryRun).
		Msg("Dispatching command")
	defer logging.LogOperationStart(logger, string(cmdType))()

	fsys := opts.FileSystem
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	store := linkstore.New(fsys)
	lay := layout.New(opts.Config.General, img)
	rec := opts.Metrics
	started := time.Now()

	var result interface{}
	switch cmdType {
	case CommandDeploy:
		report, derr := deploy.New(store, opts.Config.General, img, deploy.Options{DryRun: opts.DryRun}).Testing(ctx)
		if report != nil {
			result = report
			if rec != nil {
				rec.ObserveDeploy(report)
			}
		}
		err = derr

	case CommandPromote:
		report, perr := promotion.New(store, lay, promotion.Options{DryRun: opts.DryRun}).Promote(ctx)
		if report != nil {
			result = report
			if rec != nil {
				rec.ObservePromotion(report)
			}
		}
		err = perr

	case CommandCleanup:
		report, cerr := retention.New(store, lay, img, retention.Options{DryRun: opts.DryRun}).Collect(ctx)
		if report != nil {
			result = report
			if rec != nil {
				rec.ObserveCleanup(report)
			}
		}
		err = cerr

	case CommandStatus:
		report, serr := status.NewChecker(store, lay).Check(ctx)
		if report != nil {
			result = report
			if rec != nil {
				rec.ObserveStatus(report)
			}
		}
		err = serr

	case CommandReload:
		runner := opts.Runner
		if runner == nil {
			runner = reload.ExecRunner{Timeout: opts.Config.General.CommandTimeout}
		}
		report, rerr := reload.New(runner, opts.Config.General.DNBD3Servers, reload.Options{DryRun: opts.DryRun}).Reload(ctx)
		if report != nil {
			result = report
			if rec != nil {
				rec.ObserveReload(report)
			}
		}
		err = rerr

	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown command type: %s", cmdType).
			WithDetail("command", string(cmdType))
	}

	if rec != nil {
		rec.ObserveRun(string(cmdType), img.Name, started, err)
	}

	if err != nil {
		logger.Error().
			Str("command", string(cmdType)).
			Err(err).
			Msg("Command execution failed")
		return result, err
	}

	logger.Info().
		Str("command", string(cmdType)).
		Str("image", img.Name).
		Dur("duration", time.Since(started)).
		Msg("Command completed successfully")
	return result, nil
}
