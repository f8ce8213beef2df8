// Package display converts command reports into a format-neutral View of
// headed sections and status rows.
package display

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/openslx/slotctl/pkg/types"
)

// Status classifies a row for styling
type Status string

const (
	StatusOK      Status = "ok"
	StatusPlanned Status = "planned"
	StatusSkipped Status = "skipped"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusInfo    Status = "info"
)

// Row is one line of a section
type Row struct {
	Status Status
	Label  string
	Detail string
}

// Section groups the rows of one area or host list
type Section struct {
	Heading string
	Note    string
	Rows    []Row
}

// View is a rendered-ready report
type View struct {
	Title     string
	DryRun    bool
	Sections  []Section
	Timestamp time.Time
}

// FromResult builds a View for the known report types. ok is false for
// anything else.
func FromResult(result interface{}) (view *View, ok bool) {
	switch r := result.(type) {
	case *types.PromotionReport:
		return fromPromotion(r), true
	case *types.CleanupReport:
		return fromCleanup(r), true
	case *types.StatusReport:
		return fromStatus(r), true
	case *types.DeployReport:
		return fromDeploy(r), true
	case *types.ReloadReport:
		return fromReload(r), true
	default:
		return nil, false
	}
}

func fromPromotion(r *types.PromotionReport) *View {
	v := &View{Title: "promote " + r.Image, DryRun: r.DryRun, Timestamp: r.Timestamp}
	for _, area := range r.Areas {
		section := Section{Heading: string(area.Area)}
		if area.Skipped {
			section.Note = "skipped: " + area.Reason
		}
		section.Rows = actionRows(area.Actions, r.DryRun)
		v.Sections = append(v.Sections, section)
	}
	return v
}

func fromDeploy(r *types.DeployReport) *View {
	v := &View{Title: "deploy " + r.Image, DryRun: r.DryRun, Timestamp: r.Timestamp}
	for _, area := range r.Areas {
		v.Sections = append(v.Sections, Section{
			Heading: string(area.Area),
			Note:    "testing -> " + filepath.Base(area.Revision),
			Rows:    actionRows(area.Actions, r.DryRun),
		})
	}
	return v
}

func fromReload(r *types.ReloadReport) *View {
	return &View{
		Title:     "reload",
		DryRun:    r.DryRun,
		Timestamp: r.Timestamp,
		Sections: []Section{{
			Heading: "dnbd3 servers",
			Rows:    actionRows(r.Actions, r.DryRun),
		}},
	}
}

func fromCleanup(r *types.CleanupReport) *View {
	v := &View{Title: "cleanup " + r.Image, DryRun: r.DryRun, Timestamp: r.Timestamp}
	done := StatusOK
	if r.DryRun {
		done = StatusPlanned
	}
	for _, area := range r.Areas {
		section := Section{
			Heading: string(area.Area),
			Note: fmt.Sprintf("keep testing=%d stable=%d oldstable=%d, %d live",
				area.Policy.KeepTesting, area.Policy.KeepStable, area.Policy.KeepOldStable, len(area.LiveSet)),
		}
		for _, p := range area.DeletedLinks {
			section.Rows = append(section.Rows, Row{Status: done, Label: "unlink", Detail: p})
		}
		for _, p := range area.DeletedContent {
			section.Rows = append(section.Rows, Row{Status: done, Label: "remove", Detail: p})
		}
		for _, e := range area.Errors {
			section.Rows = append(section.Rows, Row{Status: StatusError, Label: "failed", Detail: e})
		}
		if len(section.Rows) == 0 {
			section.Rows = append(section.Rows, Row{Status: StatusInfo, Label: "nothing to remove"})
		}
		v.Sections = append(v.Sections, section)
	}
	return v
}

func fromStatus(r *types.StatusReport) *View {
	v := &View{Title: "status " + r.Image, Timestamp: r.Timestamp}
	for _, area := range r.Areas {
		section := Section{Heading: string(area.Area), Note: area.Base}
		for _, slot := range area.Slots {
			row := Row{Label: string(slot.Slot)}
			switch {
			case !slot.Exists:
				row.Status = StatusSkipped
				row.Detail = "not set"
			case slot.Dangling:
				row.Status = StatusWarning
				row.Detail = slot.Target + " (dangling)"
			default:
				row.Status = StatusOK
				row.Detail = slot.Target
			}
			section.Rows = append(section.Rows, row)
		}
		for _, rev := range area.Revisions {
			row := Row{Status: StatusInfo, Label: fmt.Sprintf("r%02d", rev.Revision), Detail: filepath.Base(rev.Path)}
			if rev.Live {
				row.Status = StatusOK
				row.Detail += " (live)"
			}
			section.Rows = append(section.Rows, row)
		}
		for _, e := range area.Errors {
			section.Rows = append(section.Rows, Row{Status: StatusError, Label: "error", Detail: e})
		}
		v.Sections = append(v.Sections, section)
	}
	return v
}

func actionRows(actions []types.Action, dryRun bool) []Row {
	rows := make([]Row, 0, len(actions))
	for _, a := range actions {
		row := Row{Label: string(a.Kind), Detail: a.Path}
		if a.Target != "" {
			row.Detail += " -> " + a.Target
		}
		switch {
		case a.Error != "":
			row.Status = StatusError
			row.Detail += ": " + a.Error
		case a.Kind == types.ActionSkip:
			row.Status = StatusSkipped
			if a.Note != "" {
				row.Detail += " (" + a.Note + ")"
			}
		case dryRun:
			row.Status = StatusPlanned
		default:
			row.Status = StatusOK
		}
		rows = append(rows, row)
	}
	return rows
}
