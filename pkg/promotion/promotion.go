package promotion

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/layout"
	"github.com/openslx/slotctl/pkg/linkstore"
	"github.com/openslx/slotctl/pkg/logging"
	"github.com/openslx/slotctl/pkg/revision"
	"github.com/openslx/slotctl/pkg/types"
	"github.com/rs/zerolog"
)

// configFile is the runtime config inside a web revision directory
const configFile = "config"

// Options controls a promotion run
type Options struct {
	// DryRun logs and reports every action without touching the filesystem
	DryRun bool
}

// Engine promotes one image
type Engine struct {
	store  *linkstore.Store
	namer  *revision.Namer
	layout *layout.Layout
	opts   Options
	logger zerolog.Logger
}

// New creates an Engine for the image described by lay
func New(store *linkstore.Store, lay *layout.Layout, opts Options) *Engine {
	return &Engine{
		store:  store,
		namer:  revision.NewNamer(store),
		layout: lay,
		opts:   opts,
		logger: logging.GetLogger("promotion").With().Str("image", lay.Name()).Logger(),
	}
}

// Promote runs the promotion over the boot, web and image areas in that
// order. A failure stops the run; the report gathered so far is returned
// with the error.
func (e *Engine) Promote(ctx context.Context) (*types.PromotionReport, error) {
	report := &types.PromotionReport{
		Image:     e.layout.Name(),
		DryRun:    e.opts.DryRun,
		Timestamp: time.Now(),
	}

	for _, area := range []types.AreaKind{types.AreaBoot, types.AreaWeb} {
		result, err := e.promoteSlots(ctx, area)
		report.Areas = append(report.Areas, result)
		if err != nil {
			return report, areaError(area, err)
		}
	}

	result, err := e.promoteImage(ctx)
	report.Areas = append(report.Areas, result)
	if err != nil {
		return report, areaError(types.AreaImage, err)
	}

	return report, nil
}

func (e *Engine) promoteSlots(ctx context.Context, area types.AreaKind) (types.AreaPromotion, error) {
	result := types.AreaPromotion{Area: area, Actions: []types.Action{}}
	logger := e.logger.With().Str("area", string(area)).Logger()

	base, _ := e.layout.SlotBase(area)
	testing := types.SlotTesting.Path(base)
	stable := types.SlotStable.Path(base)
	oldstable := types.SlotOldStable.Path(base)

	if !e.store.Exists(testing) {
		result.Skipped = true
		result.Reason = fmt.Sprintf("%s does not exist", testing)
		logger.Info().Str("path", testing).Msg("Nothing to promote, testing link missing")
		return result, nil
	}
	if !e.store.IsLink(testing) {
		return result, errors.Newf(errors.ErrNotALink, "%s is not a symbolic link", testing).
			WithDetail("path", testing)
	}

	promoted, err := e.store.Resolve(testing)
	if err != nil {
		return result, err
	}

	// previous holds what oldstable will point at once the shift is done
	var previous *linkstore.Resolution

	if e.store.Exists(stable) {
		res, err := e.store.Resolve(stable)
		if err != nil {
			return result, err
		}
		previous = &res

		if e.store.Exists(oldstable) {
			numbered, err := e.namer.Next(oldstable)
			if err != nil {
				return result, err
			}
			err = e.apply(ctx, &result, types.Action{Kind: types.ActionRename, Path: oldstable, Target: numbered},
				func() error { return e.store.Rename(oldstable, numbered) })
			if err != nil {
				return result, err
			}
		}

		err = e.apply(ctx, &result, types.Action{Kind: types.ActionRename, Path: stable, Target: oldstable},
			func() error { return e.store.Rename(stable, oldstable) })
		if err != nil {
			return result, err
		}
	} else if e.store.Exists(oldstable) {
		res, err := e.store.Resolve(oldstable)
		if err != nil {
			return result, err
		}
		previous = &res
	}

	err = e.apply(ctx, &result, types.Action{Kind: types.ActionCopyLink, Path: testing, Target: stable},
		func() error { return e.store.CopyLink(testing, stable, false) })
	if err != nil {
		return result, err
	}

	if area != types.AreaWeb {
		return result, nil
	}

	name := e.layout.Name()
	stableImage := layout.ImageFileName(name, types.SlotStable)

	stableConfig := filepath.Join(promoted.Final, configFile)
	err = e.rewrite(ctx, &result, stableConfig, layout.ImageFileName(name, types.SlotTesting), stableImage)
	if err != nil {
		return result, err
	}

	switch {
	case previous == nil:
		e.skip(&result, oldstable, "no oldstable revision yet")
	case previous.Final == promoted.Final:
		e.skip(&result, oldstable, "oldstable points to the same revision as stable")
	default:
		oldConfig := filepath.Join(previous.Final, configFile)
		err = e.rewrite(ctx, &result, oldConfig, stableImage, layout.ImageFileName(name, types.SlotOldStable))
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

func (e *Engine) promoteImage(ctx context.Context) (types.AreaPromotion, error) {
	result := types.AreaPromotion{Area: types.AreaImage, Actions: []types.Action{}}
	logger := e.logger.With().Str("area", string(types.AreaImage)).Logger()

	testingFamily := e.layout.ImageFamily(types.SlotTesting)
	stableFamily := e.layout.ImageFamily(types.SlotStable)
	oldstableFamily := e.layout.ImageFamily(types.SlotOldStable)

	testing, err := e.namer.LatestPath(testingFamily)
	if err != nil {
		return result, err
	}
	if !e.store.Exists(testing) {
		logger.Warn().Str("path", testing).Msg("No testing image found, stable will point at a missing file")
	}

	latestStable, err := e.namer.Latest(stableFamily)
	if err != nil {
		return result, err
	}
	if current := revision.Path(stableFamily, latestStable); latestStable > 0 && e.store.IsLink(current) {
		numbered, err := e.namer.Next(oldstableFamily)
		if err != nil {
			return result, err
		}
		err = e.apply(ctx, &result, types.Action{Kind: types.ActionCopyLink, Path: current, Target: numbered},
			func() error { return e.store.CopyLink(current, numbered, false) })
		if err != nil {
			return result, err
		}
	}

	nextStable, err := e.namer.Next(stableFamily)
	if err != nil {
		return result, err
	}
	target := filepath.Base(testing)
	err = e.apply(ctx, &result, types.Action{Kind: types.ActionCreateLink, Path: nextStable, Target: target},
		func() error { return e.store.CreateLink(target, nextStable, false) })
	if err != nil {
		return result, err
	}

	return result, nil
}

func (e *Engine) rewrite(ctx context.Context, result *types.AreaPromotion, path, from, to string) error {
	action := types.Action{
		Kind: types.ActionRewrite,
		Path: path,
		Note: fmt.Sprintf("%s -> %s", from, to),
	}
	return e.apply(ctx, result, action, func() error {
		return RewriteConfig(e.store, path, from, to)
	})
}

func (e *Engine) skip(result *types.AreaPromotion, path, reason string) {
	e.logger.Info().
		Str("area", string(result.Area)).
		Str("path", path).
		Msgf("Skipping oldstable config rewrite: %s", reason)
	result.Actions = append(result.Actions, types.Action{Kind: types.ActionSkip, Path: path, Note: reason})
}

// apply logs action, performs it unless this is a dry run, and records it
func (e *Engine) apply(ctx context.Context, result *types.AreaPromotion, action types.Action, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCanceled, "promotion canceled")
	}

	e.logger.Info().
		Str("area", string(result.Area)).
		Str("action", string(action.Kind)).
		Str("path", action.Path).
		Str("target", action.Target).
		Bool("dry_run", e.opts.DryRun).
		Msg(describe(action))

	if !e.opts.DryRun {
		if err := fn(); err != nil {
			action.Error = err.Error()
			result.Actions = append(result.Actions, action)
			return err
		}
	}

	result.Actions = append(result.Actions, action)
	return nil
}

func describe(action types.Action) string {
	switch action.Kind {
	case types.ActionRename:
		return "Moving link"
	case types.ActionCopyLink:
		return "Copying link"
	case types.ActionCreateLink:
		return "Creating link"
	case types.ActionRewrite:
		return "Rewriting runtime config"
	default:
		return string(action.Kind)
	}
}

// areaError tags err with the area it happened in
func areaError(area types.AreaKind, err error) error {
	var slotErr *errors.SlotError
	if errors.As(err, &slotErr) {
		return slotErr.WithDetail("area", string(area))
	}
	return errors.Wrapf(err, errors.ErrPromotion, "promotion of %s area failed", area).
		WithDetail("area", string(area))
}
