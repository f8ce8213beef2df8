package retention

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/layout"
	"github.com/openslx/slotctl/pkg/linkstore"
	"github.com/openslx/slotctl/pkg/logging"
	"github.com/openslx/slotctl/pkg/revision"
	"github.com/openslx/slotctl/pkg/types"
	"github.com/rs/zerolog"
)

// PolicySource supplies the retention policy of each area
type PolicySource interface {
	RetentionFor(area types.AreaKind) types.RetentionPolicy
}

// Uniform applies one policy to every area
type Uniform types.RetentionPolicy

// RetentionFor implements PolicySource
func (u Uniform) RetentionFor(types.AreaKind) types.RetentionPolicy {
	return types.RetentionPolicy(u)
}

// Options controls a collection run
type Options struct {
	// DryRun computes and reports candidates without removing anything
	DryRun bool
}

// Collector removes revisions of one image that fell out of retention
type Collector struct {
	store    *linkstore.Store
	namer    *revision.Namer
	layout   *layout.Layout
	policies PolicySource
	opts     Options
	logger   zerolog.Logger
}

// New creates a Collector for the image described by lay
func New(store *linkstore.Store, lay *layout.Layout, policies PolicySource, opts Options) *Collector {
	return &Collector{
		store:    store,
		namer:    revision.NewNamer(store),
		layout:   lay,
		policies: policies,
		opts:     opts,
		logger:   logging.GetLogger("retention").With().Str("image", lay.Name()).Logger(),
	}
}

// Plan is what collection decided for one area
type Plan struct {
	// Links are history links to unlink
	Links []string
	// Content are revision directories or image files to remove
	Content []string
	// Live are the paths reachable from surviving links
	Live LiveSet
}

// Collect prunes the boot, web and image areas. Every area is attempted;
// failures are aggregated into one CLEANUP error returned with the report.
func (c *Collector) Collect(ctx context.Context) (*types.CleanupReport, error) {
	report := &types.CleanupReport{
		Image:     c.layout.Name(),
		DryRun:    c.opts.DryRun,
		Timestamp: time.Now(),
	}

	var result *multierror.Error
	for _, area := range types.AllAreas {
		if err := ctx.Err(); err != nil {
			return report, errors.Wrap(err, errors.ErrCanceled, "cleanup canceled")
		}

		areaReport, err := c.collectArea(ctx, area)
		report.Areas = append(report.Areas, areaReport)
		if err != nil {
			result = multierror.Append(result, err)
		}
	}

	if result != nil {
		return report, errors.Wrap(result.ErrorOrNil(), errors.ErrCleanup, "cleanup finished with errors").
			WithDetail("failures", len(result.Errors))
	}
	return report, nil
}

// Plan computes the candidates of one area without acting on them
func (c *Collector) Plan(area types.AreaKind) (Plan, error) {
	return c.plan(area, c.policies.RetentionFor(area))
}

func (c *Collector) collectArea(ctx context.Context, area types.AreaKind) (types.AreaCleanup, error) {
	policy := c.policies.RetentionFor(area)
	areaReport := types.AreaCleanup{
		Area:           area,
		Policy:         policy,
		LiveSet:        []string{},
		DeletedLinks:   []string{},
		DeletedContent: []string{},
		Kept:           []string{},
	}
	logger := c.logger.With().Str("area", string(area)).Bool("dry_run", c.opts.DryRun).Logger()

	p, err := c.plan(area, policy)
	if err != nil {
		areaReport.Errors = append(areaReport.Errors, err.Error())
		logger.Error().Err(err).Msg("Cannot plan cleanup, area left untouched")
		return areaReport, err
	}
	areaReport.LiveSet = p.Live.Sorted()

	var result *multierror.Error
	deleted := make(map[string]bool)

	for _, link := range p.Links {
		if err := ctx.Err(); err != nil {
			return areaReport, errors.Wrap(err, errors.ErrCanceled, "cleanup canceled")
		}
		logger.Info().Str("path", link).Msg("Removing link")
		if !c.opts.DryRun {
			if err := c.store.DeleteLink(link); err != nil {
				areaReport.Errors = append(areaReport.Errors, err.Error())
				result = multierror.Append(result, err)
				continue
			}
		}
		deleted[link] = true
		areaReport.DeletedLinks = append(areaReport.DeletedLinks, link)
	}

	for _, path := range p.Content {
		if err := ctx.Err(); err != nil {
			return areaReport, errors.Wrap(err, errors.ErrCanceled, "cleanup canceled")
		}
		if area == types.AreaImage {
			logger.Info().Str("path", path).Msg("Removing image")
		} else {
			logger.Info().Str("path", path).Msg("Removing revision")
		}
		if !c.opts.DryRun {
			var err error
			if area == types.AreaImage {
				err = c.store.DeleteFile(path)
			} else {
				err = c.store.DeleteTree(path)
			}
			if err != nil {
				areaReport.Errors = append(areaReport.Errors, err.Error())
				result = multierror.Append(result, err)
				continue
			}
		}
		deleted[path] = true
		areaReport.DeletedContent = append(areaReport.DeletedContent, path)
	}

	members, err := c.members(area)
	if err != nil {
		result = multierror.Append(result, err)
	}
	for _, m := range members {
		if deleted[m] {
			continue
		}
		logger.Debug().Str("path", m).Msg("Keeping")
		areaReport.Kept = append(areaReport.Kept, m)
	}

	if result != nil {
		return areaReport, result.ErrorOrNil()
	}
	return areaReport, nil
}

func (c *Collector) plan(area types.AreaKind, policy types.RetentionPolicy) (Plan, error) {
	if area == types.AreaImage {
		return c.planImage(policy)
	}
	base, _ := c.layout.SlotBase(area)
	return c.planSlots(base, policy)
}

func (c *Collector) planSlots(base string, policy types.RetentionPolicy) (Plan, error) {
	var p Plan
	oldstable := types.SlotOldStable.Path(base)

	history, err := c.namer.Revisions(oldstable)
	if err != nil {
		return p, err
	}
	// the unnumbered oldstable link takes one of the kept places
	keep := policy.KeepOldStable - 1
	if keep < 0 {
		keep = 0
	}
	survivors := []string{
		types.SlotTesting.Path(base),
		types.SlotStable.Path(base),
		oldstable,
	}
	p.Links, survivors = split(history, keep, survivors)

	p.Live, err = ComputeLiveSet(c.store, survivors)
	if err != nil {
		return p, err
	}

	revisions, err := c.namer.Revisions(base)
	if err != nil {
		return p, err
	}
	p.Content = c.prune(revisions, policy.KeepTesting, p.Live)
	return p, nil
}

func (c *Collector) planImage(policy types.RetentionPolicy) (Plan, error) {
	var p Plan

	oldHistory, err := c.namer.Revisions(c.layout.ImageFamily(types.SlotOldStable))
	if err != nil {
		return p, err
	}
	stableHistory, err := c.namer.Revisions(c.layout.ImageFamily(types.SlotStable))
	if err != nil {
		return p, err
	}

	var survivors, dropped []string
	dropped, survivors = split(oldHistory, policy.KeepOldStable, survivors)
	p.Links = append(p.Links, dropped...)
	dropped, survivors = split(stableHistory, policy.KeepStable, survivors)
	p.Links = append(p.Links, dropped...)

	p.Live, err = ComputeLiveSet(c.store, survivors)
	if err != nil {
		return p, err
	}

	images, err := c.namer.Revisions(c.layout.ImageFamily(types.SlotTesting))
	if err != nil {
		return p, err
	}
	p.Content = c.prune(images, policy.KeepTesting, p.Live)
	return p, nil
}

// split cuts entries, sorted most recent first, after keep: the tail is
// returned as candidates and the head appended to survivors
func split(entries []revision.Entry, keep int, survivors []string) ([]string, []string) {
	var candidates []string
	for i, e := range entries {
		if i >= keep {
			candidates = append(candidates, e.Path)
		} else {
			survivors = append(survivors, e.Path)
		}
	}
	return candidates, survivors
}

func (c *Collector) prune(entries []revision.Entry, keep int, live LiveSet) []string {
	var candidates []string
	for i, e := range entries {
		if i < keep {
			continue
		}
		if live.Contains(e.Path) {
			c.logger.Debug().Str("path", e.Path).Msg("Outside keep window but still linked")
			continue
		}
		candidates = append(candidates, e.Path)
	}
	return candidates
}

// members lists everything belonging to the families of an area, sorted
func (c *Collector) members(area types.AreaKind) ([]string, error) {
	var bases []string
	if base, ok := c.layout.SlotBase(area); ok {
		bases = []string{base}
	} else {
		for _, slot := range types.AllSlots {
			bases = append(bases, c.layout.ImageFamily(slot))
		}
	}

	var out []string
	for _, base := range bases {
		if c.store.Exists(base) {
			out = append(out, base)
		}
		pattern := filepath.Join(filepath.Dir(base), glob.QuoteMeta(filepath.Base(base))+".*")
		matches, err := c.store.Glob(pattern)
		if err != nil {
			return out, err
		}
		out = append(out, matches...)
	}
	sort.Strings(out)
	return out, nil
}
