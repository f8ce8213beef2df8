package promotion_test

import (
	"context"
	"testing"

	"github.com/openslx/slotctl/pkg/config"
	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/layout"
	"github.com/openslx/slotctl/pkg/linkstore"
	"github.com/openslx/slotctl/pkg/promotion"
	"github.com/openslx/slotctl/pkg/testutil"
	"github.com/openslx/slotctl/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tftp   = "/srv/tftp"
	www    = "/srv/www"
	images = "/srv/images/sqfs"
)

func newLayout() *layout.Layout {
	return layout.New(config.General{
		TftpdPath: tftp,
		WWWPath:   www,
		ImagePath: "/srv/images",
	}, config.Image{Name: "bwlp"})
}

// deployed builds the state a fresh deploy of revision rev leaves behind
func deployed(t *testing.T, store *linkstore.Store, rev string) {
	t.Helper()
	fs := store.FS()
	testutil.CreateFileT(t, fs, tftp+"/bwlp."+rev+"/kernel", "vmlinuz-"+rev)
	testutil.CreateFileT(t, fs, www+"/bwlp."+rev+"/config", "SLX_DNBD3_IMAGE=bwlp.sqfs\nSLX_REV="+rev+"\n")
	testutil.CreateFileT(t, fs, images+"/bwlp.sqfs."+rev, "sqfs-"+rev)
	require.NoError(t, store.CreateLink("bwlp."+rev, tftp+"/bwlp.testing", true))
	require.NoError(t, store.CreateLink("bwlp."+rev, www+"/bwlp.testing", true))
}

func promote(t *testing.T, store *linkstore.Store, dryRun bool) *types.PromotionReport {
	t.Helper()
	engine := promotion.New(store, newLayout(), promotion.Options{DryRun: dryRun})
	report, err := engine.Promote(context.Background())
	require.NoError(t, err)
	return report
}

func TestPromote_FirstPromotion(t *testing.T) {
	store := linkstore.New(testutil.NewTestFS())
	fs := store.FS()
	deployed(t, store, "r01")

	report := promote(t, store, false)
	require.Len(t, report.Areas, 3)
	for _, area := range report.Areas {
		assert.False(t, area.Skipped, "area %s", area.Area)
	}

	for _, root := range []string{tftp, www} {
		testutil.AssertSymlink(t, fs, root+"/bwlp.stable", "bwlp.r01")
		testutil.AssertSymlink(t, fs, root+"/bwlp.testing", "bwlp.r01")
		testutil.AssertNoFile(t, fs, root+"/bwlp.oldstable")
	}

	testutil.AssertFileContent(t, fs, www+"/bwlp.r01/config", "SLX_DNBD3_IMAGE=bwlp-stable.sqfs\nSLX_REV=r01\n")
	testutil.AssertNoFile(t, fs, www+"/bwlp.r01/config.tmp")

	testutil.AssertSymlink(t, fs, images+"/bwlp-stable.sqfs.r01", "bwlp.sqfs.r01")
	testutil.AssertNoFile(t, fs, images+"/bwlp-oldstable.sqfs.r01")

	web := report.Areas[1]
	assert.Equal(t, types.AreaWeb, web.Area)
	kinds := make([]types.ActionKind, 0, len(web.Actions))
	for _, a := range web.Actions {
		kinds = append(kinds, a.Kind)
	}
	assert.Equal(t, []types.ActionKind{types.ActionCopyLink, types.ActionRewrite, types.ActionSkip}, kinds)
}

func TestPromote_SecondPromotion(t *testing.T) {
	store := linkstore.New(testutil.NewTestFS())
	fs := store.FS()
	deployed(t, store, "r01")
	promote(t, store, false)

	deployed(t, store, "r02")
	promote(t, store, false)

	for _, root := range []string{tftp, www} {
		testutil.AssertSymlink(t, fs, root+"/bwlp.stable", "bwlp.r02")
		testutil.AssertSymlink(t, fs, root+"/bwlp.oldstable", "bwlp.r01")
		testutil.AssertNoFile(t, fs, root+"/bwlp.oldstable.r01")
	}

	testutil.AssertFileContent(t, fs, www+"/bwlp.r02/config", "SLX_DNBD3_IMAGE=bwlp-stable.sqfs\nSLX_REV=r02\n")
	testutil.AssertFileContent(t, fs, www+"/bwlp.r01/config", "SLX_DNBD3_IMAGE=bwlp-oldstable.sqfs\nSLX_REV=r01\n")

	testutil.AssertSymlink(t, fs, images+"/bwlp-stable.sqfs.r02", "bwlp.sqfs.r02")
	testutil.AssertSymlink(t, fs, images+"/bwlp-oldstable.sqfs.r01", "bwlp.sqfs.r01")
}

func TestPromote_RepromoteShiftsHistory(t *testing.T) {
	store := linkstore.New(testutil.NewTestFS())
	fs := store.FS()
	deployed(t, store, "r01")
	promote(t, store, false)
	deployed(t, store, "r02")
	promote(t, store, false)

	// no new build: stable and oldstable end up on the same revision
	report := promote(t, store, false)

	for _, root := range []string{tftp, www} {
		testutil.AssertSymlink(t, fs, root+"/bwlp.oldstable.r01", "bwlp.r01")
		testutil.AssertSymlink(t, fs, root+"/bwlp.oldstable", "bwlp.r02")
		testutil.AssertSymlink(t, fs, root+"/bwlp.stable", "bwlp.r02")
	}

	// the shared config keeps the stable reference
	testutil.AssertFileContent(t, fs, www+"/bwlp.r02/config", "SLX_DNBD3_IMAGE=bwlp-stable.sqfs\nSLX_REV=r02\n")

	web := report.Areas[1]
	last := web.Actions[len(web.Actions)-1]
	assert.Equal(t, types.ActionSkip, last.Kind)
	assert.Equal(t, www+"/bwlp.oldstable", last.Path)

	testutil.AssertSymlink(t, fs, images+"/bwlp-stable.sqfs.r03", "bwlp.sqfs.r02")
	testutil.AssertSymlink(t, fs, images+"/bwlp-oldstable.sqfs.r02", "bwlp.sqfs.r02")
}

func TestPromote_RecoversInterruptedShift(t *testing.T) {
	store := linkstore.New(testutil.NewTestFS())
	fs := store.FS()
	deployed(t, store, "r01")
	promote(t, store, false)
	deployed(t, store, "r02")

	// an earlier run moved stable to oldstable and stopped there
	for _, root := range []string{tftp, www} {
		require.NoError(t, store.Rename(root+"/bwlp.stable", root+"/bwlp.oldstable"))
	}

	report := promote(t, store, false)

	for _, root := range []string{tftp, www} {
		testutil.AssertSymlink(t, fs, root+"/bwlp.stable", "bwlp.r02")
		testutil.AssertSymlink(t, fs, root+"/bwlp.oldstable", "bwlp.r01")
		testutil.AssertNoFile(t, fs, root+"/bwlp.oldstable.r01")
	}
	testutil.AssertFileContent(t, fs, www+"/bwlp.r02/config", "SLX_DNBD3_IMAGE=bwlp-stable.sqfs\nSLX_REV=r02\n")
	testutil.AssertFileContent(t, fs, www+"/bwlp.r01/config", "SLX_DNBD3_IMAGE=bwlp-oldstable.sqfs\nSLX_REV=r01\n")

	boot := report.Areas[0]
	require.Len(t, boot.Actions, 1)
	assert.Equal(t, types.ActionCopyLink, boot.Actions[0].Kind)

	web := report.Areas[1]
	kinds := make([]types.ActionKind, 0, len(web.Actions))
	for _, a := range web.Actions {
		kinds = append(kinds, a.Kind)
	}
	assert.Equal(t, []types.ActionKind{types.ActionCopyLink, types.ActionRewrite, types.ActionRewrite}, kinds)
	assert.Equal(t, www+"/bwlp.r01/config", web.Actions[2].Path)
}

func TestPromote_TestingNotALink(t *testing.T) {
	store := linkstore.New(testutil.NewTestFS())
	fs := store.FS()
	deployed(t, store, "r01")
	promote(t, store, false)
	deployed(t, store, "r02")

	require.NoError(t, fs.Remove(tftp+"/bwlp.testing"))
	testutil.CreateDirT(t, fs, tftp+"/bwlp.testing")

	before := testutil.Snapshot(t, fs, "/srv")
	engine := promotion.New(store, newLayout(), promotion.Options{})
	report, err := engine.Promote(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotALink))
	assert.Equal(t, "boot", errors.GetErrorDetails(err)["area"])
	require.Len(t, report.Areas, 1)
	assert.Empty(t, report.Areas[0].Actions)

	assert.Equal(t, before, testutil.Snapshot(t, fs, "/srv"))
	testutil.AssertSymlink(t, fs, tftp+"/bwlp.stable", "bwlp.r01")
}

func TestPromote_NoTesting(t *testing.T) {
	store := linkstore.New(testutil.NewTestFS())
	fs := store.FS()
	testutil.CreateDirT(t, fs, tftp)
	testutil.CreateDirT(t, fs, www)
	testutil.CreateDirT(t, fs, images)

	report := promote(t, store, false)
	require.Len(t, report.Areas, 3)

	assert.True(t, report.Areas[0].Skipped)
	assert.True(t, report.Areas[1].Skipped)
	assert.Empty(t, report.Areas[0].Actions)
	testutil.AssertNoFile(t, fs, tftp+"/bwlp.stable")
	testutil.AssertNoFile(t, fs, www+"/bwlp.stable")

	// the image area promotes unconditionally
	assert.False(t, report.Areas[2].Skipped)
	testutil.AssertSymlink(t, fs, images+"/bwlp-stable.sqfs.r01", "bwlp.sqfs.r00")
}

func TestPromote_DryRun(t *testing.T) {
	dry := linkstore.New(testutil.NewTestFS())
	real := linkstore.New(testutil.NewTestFS())
	for _, store := range []*linkstore.Store{dry, real} {
		deployed(t, store, "r01")
		promote(t, store, false)
		deployed(t, store, "r02")
		promote(t, store, false)
		deployed(t, store, "r03")
	}

	before := testutil.Snapshot(t, dry.FS(), "/srv")
	dryReport := promote(t, dry, true)
	after := testutil.Snapshot(t, dry.FS(), "/srv")
	assert.Equal(t, before, after)
	assert.True(t, dryReport.DryRun)

	realReport := promote(t, real, false)
	require.Len(t, dryReport.Areas, len(realReport.Areas))
	for i := range realReport.Areas {
		assert.Equal(t, realReport.Areas[i], dryReport.Areas[i])
	}
}

func TestPromote_RewriteFailureStopsRun(t *testing.T) {
	store := linkstore.New(testutil.NewTestFS())
	fs := store.FS()
	testutil.CreateDirT(t, fs, tftp+"/bwlp.r01")
	testutil.CreateDirT(t, fs, www+"/bwlp.r01")
	testutil.CreateSymlinkT(t, fs, "bwlp.r01", tftp+"/bwlp.testing")
	testutil.CreateSymlinkT(t, fs, "bwlp.r01", www+"/bwlp.testing")

	engine := promotion.New(store, newLayout(), promotion.Options{})
	report, err := engine.Promote(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRewriteIO))
	assert.Equal(t, "web", errors.GetErrorDetails(err)["area"])

	require.NotNil(t, report)
	require.Len(t, report.Areas, 2)
	web := report.Areas[1]
	failed := web.Actions[len(web.Actions)-1]
	assert.Equal(t, types.ActionRewrite, failed.Kind)
	assert.NotEmpty(t, failed.Error)

	// the link shift already happened and is left for inspection
	testutil.AssertSymlink(t, fs, www+"/bwlp.stable", "bwlp.r01")
	testutil.AssertNoFile(t, fs, images+"/bwlp-stable.sqfs.r01")
}

func TestPromote_Canceled(t *testing.T) {
	store := linkstore.New(testutil.NewTestFS())
	deployed(t, store, "r01")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := promotion.New(store, newLayout(), promotion.Options{})
	_, err := engine.Promote(ctx)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCanceled))
	testutil.AssertNoFile(t, store.FS(), tftp+"/bwlp.stable")
}

func TestRewriteConfig(t *testing.T) {
	store := linkstore.New(testutil.NewTestFS())
	fs := store.FS()
	testutil.CreateFileT(t, fs, "/cfg/config", "a=bwlp.sqfs\nb=bwlp.sqfs\nc=other.sqfs\n")

	require.NoError(t, promotion.RewriteConfig(store, "/cfg/config", "bwlp.sqfs", "bwlp-stable.sqfs"))
	testutil.AssertFileContent(t, fs, "/cfg/config", "a=bwlp-stable.sqfs\nb=bwlp-stable.sqfs\nc=other.sqfs\n")
	testutil.AssertNoFile(t, fs, "/cfg/config.tmp")

	err := promotion.RewriteConfig(store, "/cfg/missing", "a", "b")
	assert.True(t, errors.IsErrorCode(err, errors.ErrRewriteIO))
}
