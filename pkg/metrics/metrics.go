// Package metrics exposes the outcome of slotctl runs as Prometheus gauges.
// slotctl runs from cron, so there is no scrape endpoint; the registry is
// written to a node-exporter textfile collector file instead.
package metrics

import (
	"time"

	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder collects gauges for one slotctl invocation
type Recorder struct {
	registry *prometheus.Registry

	lastRun         *prometheus.GaugeVec
	lastSuccess     *prometheus.GaugeVec
	runDuration     *prometheus.GaugeVec
	actions         *prometheus.GaugeVec
	deleted         *prometheus.GaugeVec
	kept            *prometheus.GaugeVec
	live            *prometheus.GaugeVec
	revisions       *prometheus.GaugeVec
	latestRevision  *prometheus.GaugeVec
	danglingSlots   *prometheus.GaugeVec
	commandFailures *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with its own registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		lastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "slotctl_last_run_timestamp_seconds",
				Help: "Unix time the command last ran",
			},
			[]string{"command", "image"},
		),
		lastSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "slotctl_last_run_success",
				Help: "1 if the last run of the command succeeded, 0 otherwise",
			},
			[]string{"command", "image"},
		),
		runDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "slotctl_run_duration_seconds",
				Help: "Duration of the last run of the command",
			},
			[]string{"command", "image"},
		),
		actions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "slotctl_actions",
				Help: "Actions performed (or planned on dry runs) by the last run",
			},
			[]string{"command", "image", "area", "kind", "dry_run"},
		),
		deleted: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "slotctl_cleanup_deleted",
				Help: "Paths removed by the last cleanup",
			},
			[]string{"image", "area", "type", "dry_run"},
		),
		kept: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "slotctl_cleanup_kept",
				Help: "Family members left after the last cleanup",
			},
			[]string{"image", "area"},
		),
		live: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "slotctl_live_paths",
				Help: "Paths reachable from slot links",
			},
			[]string{"image", "area"},
		),
		revisions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "slotctl_revisions",
				Help: "Numbered revisions present per area",
			},
			[]string{"image", "area"},
		),
		latestRevision: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "slotctl_latest_revision",
				Help: "Highest numbered revision per area",
			},
			[]string{"image", "area"},
		),
		danglingSlots: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "slotctl_dangling_slots",
				Help: "Slot links whose target does not exist",
			},
			[]string{"image", "area"},
		),
		commandFailures: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "slotctl_reload_failures",
				Help: "Servers that could not be signalled by the last reload",
			},
			[]string{},
		),
	}

	r.registry.MustRegister(
		r.lastRun,
		r.lastSuccess,
		r.runDuration,
		r.actions,
		r.deleted,
		r.kept,
		r.live,
		r.revisions,
		r.latestRevision,
		r.danglingSlots,
		r.commandFailures,
	)
	return r
}

// Registry returns the registry holding every gauge
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun records when a command ran, how long it took and whether it
// succeeded
func (r *Recorder) ObserveRun(command, image string, started time.Time, err error) {
	r.lastRun.WithLabelValues(command, image).Set(float64(started.Unix()))
	r.runDuration.WithLabelValues(command, image).Set(time.Since(started).Seconds())
	success := 1.0
	if err != nil {
		success = 0
	}
	r.lastSuccess.WithLabelValues(command, image).Set(success)
}

// ObservePromotion records the actions of a promotion
func (r *Recorder) ObservePromotion(report *types.PromotionReport) {
	for _, area := range report.Areas {
		r.countActions("promote", report.Image, area.Area, report.DryRun, area.Actions)
	}
}

// ObserveDeploy records the actions of a deploy
func (r *Recorder) ObserveDeploy(report *types.DeployReport) {
	for _, area := range report.Areas {
		r.countActions("deploy", report.Image, area.Area, report.DryRun, area.Actions)
	}
}

// ObserveCleanup records what a cleanup removed and kept
func (r *Recorder) ObserveCleanup(report *types.CleanupReport) {
	dry := boolLabel(report.DryRun)
	for _, area := range report.Areas {
		a := string(area.Area)
		r.deleted.WithLabelValues(report.Image, a, "link", dry).Set(float64(len(area.DeletedLinks)))
		r.deleted.WithLabelValues(report.Image, a, "content", dry).Set(float64(len(area.DeletedContent)))
		r.kept.WithLabelValues(report.Image, a).Set(float64(len(area.Kept)))
		r.live.WithLabelValues(report.Image, a).Set(float64(len(area.LiveSet)))
	}
}

// ObserveStatus records revision counts and broken slot links
func (r *Recorder) ObserveStatus(report *types.StatusReport) {
	for _, area := range report.Areas {
		a := string(area.Area)
		r.revisions.WithLabelValues(report.Image, a).Set(float64(len(area.Revisions)))

		latest := 0
		live := 0
		for _, rev := range area.Revisions {
			if int(rev.Revision) > latest {
				latest = int(rev.Revision)
			}
			if rev.Live {
				live++
			}
		}
		r.latestRevision.WithLabelValues(report.Image, a).Set(float64(latest))
		r.live.WithLabelValues(report.Image, a).Set(float64(live))

		dangling := 0
		for _, slot := range area.Slots {
			if slot.Dangling {
				dangling++
			}
		}
		r.danglingSlots.WithLabelValues(report.Image, a).Set(float64(dangling))
	}
}

// ObserveReload records failed server signals
func (r *Recorder) ObserveReload(report *types.ReloadReport) {
	failed := 0
	for _, action := range report.Actions {
		if action.Error != "" {
			failed++
		}
	}
	r.commandFailures.WithLabelValues().Set(float64(failed))
	r.countActions("reload", "", "", report.DryRun, report.Actions)
}

func (r *Recorder) countActions(command, image string, area types.AreaKind, dryRun bool, actions []types.Action) {
	counts := make(map[types.ActionKind]int)
	for _, action := range actions {
		counts[action.Kind]++
	}
	for kind, n := range counts {
		r.actions.WithLabelValues(command, image, string(area), string(kind), boolLabel(dryRun)).Set(float64(n))
	}
}

// WriteTextfile writes every gauge to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write metrics to %s", path).
			WithDetail("path", path)
	}
	return nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
