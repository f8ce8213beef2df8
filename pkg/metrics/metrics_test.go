package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/openslx/slotctl/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCleanup(t *testing.T) {
	r := NewRecorder()
	r.ObserveCleanup(&types.CleanupReport{
		Image: "bwlp",
		Areas: []types.AreaCleanup{{
			Area:           types.AreaBoot,
			LiveSet:        []string{"/srv/tftp/bwlp.r05"},
			DeletedLinks:   []string{"/srv/tftp/bwlp.oldstable.r01"},
			DeletedContent: []string{"/srv/tftp/bwlp.r01", "/srv/tftp/bwlp.r02"},
			Kept:           []string{"/srv/tftp/bwlp.r05", "/srv/tftp/bwlp.testing"},
		}},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.deleted.WithLabelValues("bwlp", "boot", "content", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.deleted.WithLabelValues("bwlp", "boot", "link", "false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.kept.WithLabelValues("bwlp", "boot")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.live.WithLabelValues("bwlp", "boot")))
}

func TestObservePromotion(t *testing.T) {
	r := NewRecorder()
	r.ObservePromotion(&types.PromotionReport{
		Image:  "bwlp",
		DryRun: true,
		Areas: []types.AreaPromotion{{
			Area: types.AreaWeb,
			Actions: []types.Action{
				{Kind: types.ActionRename},
				{Kind: types.ActionRename},
				{Kind: types.ActionRewrite},
			},
		}},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.actions.WithLabelValues("promote", "bwlp", "web", "rename", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.actions.WithLabelValues("promote", "bwlp", "web", "rewrite-config", "true")))
}

func TestObserveStatus(t *testing.T) {
	r := NewRecorder()
	r.ObserveStatus(&types.StatusReport{
		Image: "bwlp",
		Areas: []types.AreaStatus{{
			Area:  types.AreaImage,
			Slots: []types.SlotState{{Dangling: true}, {}},
			Revisions: []types.RevisionState{
				{Revision: 7, Live: true},
				{Revision: 3},
			},
		}},
	})

	assert.Equal(t, 7.0, testutil.ToFloat64(r.latestRevision.WithLabelValues("bwlp", "image")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.revisions.WithLabelValues("bwlp", "image")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.danglingSlots.WithLabelValues("bwlp", "image")))
}

func TestObserveRunAndWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveRun("cleanup", "bwlp", time.Now(), nil)
	r.ObserveRun("promote", "bwlp", time.Now(), errors.New("boom"))
	r.ObserveReload(&types.ReloadReport{Actions: []types.Action{{Kind: types.ActionRunCommand, Error: "exit 1"}}})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.lastSuccess.WithLabelValues("cleanup", "bwlp")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.lastSuccess.WithLabelValues("promote", "bwlp")))

	path := filepath.Join(t.TempDir(), "slotctl.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.Contains(content, `slotctl_last_run_success{command="cleanup",image="bwlp"} 1`))
	assert.Contains(t, content, "slotctl_reload_failures 1")
}
