package status

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/layout"
	"github.com/openslx/slotctl/pkg/linkstore"
	"github.com/openslx/slotctl/pkg/logging"
	"github.com/openslx/slotctl/pkg/revision"
	"github.com/openslx/slotctl/pkg/retention"
	"github.com/openslx/slotctl/pkg/types"
	"github.com/rs/zerolog"
)

// Checker reports the slots and revisions of one image
type Checker struct {
	store  *linkstore.Store
	namer  *revision.Namer
	layout *layout.Layout
	logger zerolog.Logger
}

// NewChecker creates a Checker for the image described by lay
func NewChecker(store *linkstore.Store, lay *layout.Layout) *Checker {
	return &Checker{
		store:  store,
		namer:  revision.NewNamer(store),
		layout: lay,
		logger: logging.GetLogger("status").With().Str("image", lay.Name()).Logger(),
	}
}

// Check inspects every area. It never modifies anything. Broken state in
// one area is recorded on that area and the remaining areas are still
// inspected; the report is returned alongside an error summarising them.
func (c *Checker) Check(ctx context.Context) (*types.StatusReport, error) {
	report := &types.StatusReport{
		Image:     c.layout.Name(),
		Timestamp: time.Now(),
	}

	var result *multierror.Error
	for _, area := range types.AllAreas {
		if err := ctx.Err(); err != nil {
			return report, errors.Wrap(err, errors.ErrCanceled, "status canceled")
		}
		areaStatus := types.AreaStatus{Area: area}
		var errs []error
		if area == types.AreaImage {
			errs = c.checkImage(&areaStatus)
		} else {
			errs = c.checkSlots(&areaStatus)
		}
		for _, err := range errs {
			c.logger.Warn().Err(err).Str("area", string(area)).Msg("Area state is incomplete")
			areaStatus.Errors = append(areaStatus.Errors, err.Error())
			result = multierror.Append(result, err)
		}
		report.Areas = append(report.Areas, areaStatus)
	}

	if result != nil {
		return report, errors.Wrap(result.ErrorOrNil(), errors.GetErrorCode(result.Errors[0]), "status is incomplete").
			WithDetail("failures", len(result.Errors))
	}
	return report, nil
}

func (c *Checker) checkSlots(status *types.AreaStatus) []error {
	base, _ := c.layout.SlotBase(status.Area)
	status.Base = base
	var errs []error

	var links []string
	for _, slot := range types.AllSlots {
		path := slot.Path(base)
		status.Slots = append(status.Slots, c.checkLink(slot, path))
		links = append(links, path)
	}

	history, err := c.namer.Revisions(types.SlotOldStable.Path(base))
	if err != nil {
		errs = append(errs, err)
	}
	for _, entry := range history {
		status.Slots = append(status.Slots, c.checkLink(types.SlotOldStable, entry.Path))
		links = append(links, entry.Path)
	}

	return append(errs, c.withRevisions(status, base, links)...)
}

func (c *Checker) checkImage(status *types.AreaStatus) []error {
	status.Base = c.layout.ImageDir()

	var (
		links []string
		errs  []error
	)
	for _, slot := range []types.Slot{types.SlotStable, types.SlotOldStable} {
		history, err := c.namer.Revisions(c.layout.ImageFamily(slot))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, entry := range history {
			status.Slots = append(status.Slots, c.checkLink(slot, entry.Path))
			links = append(links, entry.Path)
		}
	}

	return append(errs, c.withRevisions(status, c.layout.ImageFamily(types.SlotTesting), links)...)
}

// withRevisions lists the revisions of base. When the live set cannot be
// computed the revisions are still listed, none marked live.
func (c *Checker) withRevisions(status *types.AreaStatus, base string, links []string) []error {
	var errs []error
	live, err := retention.ComputeLiveSet(c.store, links)
	if err != nil {
		errs = append(errs, err)
	}
	revisions, err := c.namer.Revisions(base)
	if err != nil {
		return append(errs, err)
	}
	for _, entry := range revisions {
		status.Revisions = append(status.Revisions, types.RevisionState{
			Path:     entry.Path,
			Revision: entry.Revision,
			Live:     live.Contains(entry.Path),
		})
	}
	return errs
}

// checkLink describes one slot link without failing on broken state
func (c *Checker) checkLink(slot types.Slot, path string) types.SlotState {
	state := types.SlotState{Slot: slot, Path: path}
	if !c.store.Exists(path) {
		return state
	}
	state.Exists = true

	target, err := c.store.ReadLink(path)
	if err != nil {
		// present but not a link
		state.Resolved = path
		return state
	}
	state.Target = target

	res, err := c.store.Resolve(path)
	if err != nil {
		state.Dangling = true
		return state
	}
	state.Resolved = res.Final
	state.Dangling = !c.store.Exists(res.Final)
	return state
}
