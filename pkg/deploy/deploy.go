// Package deploy stages freshly built boot and web files into a new
// numbered revision and points the testing slot at it.
package deploy

import (
	"context"
	"path/filepath"
	"time"

	"github.com/openslx/slotctl/pkg/config"
	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/layout"
	"github.com/openslx/slotctl/pkg/linkstore"
	"github.com/openslx/slotctl/pkg/logging"
	"github.com/openslx/slotctl/pkg/revision"
	"github.com/openslx/slotctl/pkg/types"
	"github.com/rs/zerolog"
)

// stage32Link is the fixed name clients fetch the stage32 image by
const stage32Link = "stage32.sqfs"

// runtimeConfig is the name of the copied runtime config
const runtimeConfig = "config"

// Options controls a deploy run
type Options struct {
	DryRun bool
}

// step is one planned mutation
type step struct {
	action types.Action
	fn     func() error
}

// Deployer stages testing revisions of one image
type Deployer struct {
	store   *linkstore.Store
	namer   *revision.Namer
	layout  *layout.Layout
	general config.General
	image   config.Image
	opts    Options
	logger  zerolog.Logger
}

// New creates a Deployer for img
func New(store *linkstore.Store, general config.General, img config.Image, opts Options) *Deployer {
	return &Deployer{
		store:   store,
		namer:   revision.NewNamer(store),
		layout:  layout.New(general, img),
		general: general,
		image:   img,
		opts:    opts,
		logger:  logging.GetLogger("deploy").With().Str("image", img.Name).Logger(),
	}
}

// Testing creates the next boot and web revisions from the build output
// and relinks testing in both areas. A missing source file fails the area
// before anything is created in it.
func (d *Deployer) Testing(ctx context.Context) (*types.DeployReport, error) {
	report := &types.DeployReport{
		Image:     d.image.Name,
		DryRun:    d.opts.DryRun,
		Timestamp: time.Now(),
	}

	for _, area := range []types.AreaKind{types.AreaBoot, types.AreaWeb} {
		result, err := d.deployArea(ctx, area)
		report.Areas = append(report.Areas, result)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

// sources lists the build outputs copied into a revision of area, each
// under its base name
func (d *Deployer) sources(area types.AreaKind) []string {
	boot := d.layout.BootSource()
	if area == types.AreaBoot {
		return []string{
			filepath.Join(boot, "kernel", "kernel"),
			filepath.Join(boot, "initramfs-stage31"),
		}
	}
	return []string{
		filepath.Join(boot, d.image.Stage32Name+".sqfs"),
		filepath.Join(boot, "configs", d.image.Config, "config.tgz"),
	}
}

func (d *Deployer) deployArea(ctx context.Context, area types.AreaKind) (types.AreaDeploy, error) {
	result := types.AreaDeploy{Area: area, Actions: []types.Action{}}
	base, _ := d.layout.SlotBase(area)

	files := d.sources(area)
	configSrc := filepath.Join(d.general.ConfigDir, d.image.Config+".config")
	for _, src := range files {
		if !d.store.Exists(src) {
			return result, errors.Newf(errors.ErrNotFound, "build output %s is missing", src).
				WithDetail("area", string(area)).
				WithDetail("path", src)
		}
	}
	if area == types.AreaWeb && !d.store.Exists(configSrc) {
		return result, errors.Newf(errors.ErrNotFound, "runtime config %s is missing", configSrc).
			WithDetail("area", string(area)).
			WithDetail("path", configSrc)
	}

	rev, err := d.namer.Next(base)
	if err != nil {
		return result, err
	}
	result.Revision = rev

	steps := []step{
		{types.Action{Kind: types.ActionCreateDir, Path: rev}, func() error { return d.store.Mkdir(rev) }},
	}
	for _, src := range files {
		dst := filepath.Join(rev, filepath.Base(src))
		steps = append(steps, step{
			types.Action{Kind: types.ActionCopyFile, Path: dst, Target: src},
			func() error { return d.store.CopyFile(src, dst) },
		})
	}
	if area == types.AreaWeb {
		link := filepath.Join(rev, stage32Link)
		target := d.image.Stage32Name + ".sqfs"
		cfgDst := filepath.Join(rev, runtimeConfig)
		steps = append(steps,
			step{
				types.Action{Kind: types.ActionCreateLink, Path: link, Target: target},
				func() error { return d.store.CreateLink(target, link, false) },
			},
			step{
				types.Action{Kind: types.ActionCopyFile, Path: cfgDst, Target: configSrc},
				func() error { return d.store.CopyFile(configSrc, cfgDst) },
			},
		)
	}
	testing := types.SlotTesting.Path(base)
	target := filepath.Base(rev)
	steps = append(steps, step{
		types.Action{Kind: types.ActionCreateLink, Path: testing, Target: target},
		func() error { return d.store.CreateLink(target, testing, true) },
	})

	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			return result, errors.Wrap(err, errors.ErrCanceled, "deploy canceled")
		}
		d.logger.Info().
			Str("area", string(area)).
			Str("action", string(st.action.Kind)).
			Str("path", st.action.Path).
			Str("target", st.action.Target).
			Bool("dry_run", d.opts.DryRun).
			Msgf("Deploy %s", st.action.Kind)
		if !d.opts.DryRun {
			if err := st.fn(); err != nil {
				st.action.Error = err.Error()
				result.Actions = append(result.Actions, st.action)
				return result, err
			}
		}
		result.Actions = append(result.Actions, st.action)
	}

	return result, nil
}
