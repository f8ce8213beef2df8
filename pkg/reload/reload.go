// Package reload tells dnbd3 servers to rescan their images after a
// promotion. The local server is signalled directly, remote ones over ssh.
package reload

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/logging"
	"github.com/openslx/slotctl/pkg/types"
	"github.com/rs/zerolog"
)

// signalCommand asks a running dnbd3-server to reload its image list
var signalCommand = []string{"killall", "-USR1", "dnbd3-server"}

// Options controls a reload run
type Options struct {
	DryRun bool
	// SSHUser is the account used on remote servers, root by default
	SSHUser string
}

// Reloader signals the local and the configured remote dnbd3 servers
type Reloader struct {
	runner  Runner
	servers []string
	opts    Options
	logger  zerolog.Logger
}

// New creates a Reloader for the given remote hosts
func New(runner Runner, servers []string, opts Options) *Reloader {
	if opts.SSHUser == "" {
		opts.SSHUser = "root"
	}
	return &Reloader{
		runner:  runner,
		servers: servers,
		opts:    opts,
		logger:  logging.GetLogger("reload"),
	}
}

// Reload signals every server. A failing host does not stop the others;
// all failures are returned together.
func (r *Reloader) Reload(ctx context.Context) (*types.ReloadReport, error) {
	report := &types.ReloadReport{
		DryRun:    r.opts.DryRun,
		Actions:   []types.Action{},
		Timestamp: time.Now(),
	}

	commands := [][]string{signalCommand}
	for _, host := range r.servers {
		cmd := append([]string{"ssh", r.opts.SSHUser + "@" + host}, signalCommand...)
		commands = append(commands, cmd)
	}

	var result *multierror.Error
	for _, cmd := range commands {
		if err := ctx.Err(); err != nil {
			return report, errors.Wrap(err, errors.ErrCanceled, "reload canceled")
		}

		line := strings.Join(cmd, " ")
		action := types.Action{Kind: types.ActionRunCommand, Path: line}
		r.logger.Info().Str("command", line).Bool("dry_run", r.opts.DryRun).Msg("Running command")

		if !r.opts.DryRun {
			out, err := r.runner.Run(ctx, cmd[0], cmd[1:]...)
			if out != "" {
				r.logger.Debug().Str("command", line).Str("output", out).Msg("Command output")
			}
			if err != nil {
				r.logger.Error().Err(err).Str("command", line).Msg("Command failed")
				action.Error = err.Error()
				result = multierror.Append(result, err)
			}
		}
		report.Actions = append(report.Actions, action)
	}

	if result != nil {
		return report, errors.Wrap(result.ErrorOrNil(), errors.ErrCommandExec, "reload finished with errors").
			WithDetail("failures", len(result.Errors))
	}
	return report, nil
}
