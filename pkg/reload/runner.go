package reload

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/openslx/slotctl/pkg/errors"
)

// Runner executes an external command and returns its combined output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	// Timeout bounds every command; zero means no limit beyond ctx
	Timeout time.Duration
}

// Run implements Runner
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return out.String(), errors.Wrapf(err, errors.ErrCommandExec, "%s %s failed", name, strings.Join(args, " ")).
			WithDetail("output", strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}
