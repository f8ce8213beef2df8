package ui_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/types"
	"github.com/openslx/slotctl/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cleanupReport() *types.CleanupReport {
	return &types.CleanupReport{
		Image:     "bwlp",
		DryRun:    true,
		Timestamp: time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC),
		Areas: []types.AreaCleanup{{
			Area:           types.AreaBoot,
			Policy:         types.RetentionPolicy{KeepTesting: 3, KeepStable: 2, KeepOldStable: 1},
			LiveSet:        []string{"/srv/tftp/bwlp.r04"},
			DeletedLinks:   []string{"/srv/tftp/bwlp.stable.r01"},
			DeletedContent: []string{"/srv/tftp/bwlp.r01"},
		}},
	}
}

func TestNewRenderer(t *testing.T) {
	tests := []struct {
		name        string
		format      ui.Format
		expectError bool
	}{
		{"terminal", ui.FormatTerminal, false},
		{"text", ui.FormatText, false},
		{"json", ui.FormatJSON, false},
		{"auto with buffer", ui.FormatAuto, false},
		{"invalid", ui.Format(999), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer, err := ui.NewRenderer(tt.format, &bytes.Buffer{})
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, renderer)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, renderer)
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  ui.Format
		err   bool
	}{
		{"", ui.FormatAuto, false},
		{"AUTO", ui.FormatAuto, false},
		{"terminal", ui.FormatTerminal, false},
		{"term", ui.FormatTerminal, false},
		{"plain", ui.FormatText, false},
		{"json", ui.FormatJSON, false},
		{"xml", ui.FormatAuto, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ui.ParseFormat(tt.input)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, mustRoundTrip(t, got.String()))
		})
	}
}

func mustRoundTrip(t *testing.T, s string) ui.Format {
	var f ui.Format
	require.NoError(t, f.Set(s))
	return f
}

func TestFormatFlagValue(t *testing.T) {
	var f ui.Format
	assert.Equal(t, "format", f.Type())
	assert.Error(t, f.Set("yaml"))
	assert.Equal(t, ui.FormatAuto, f)
}

func TestTextRendererCleanup(t *testing.T) {
	buf := &bytes.Buffer{}
	r, err := ui.NewRenderer(ui.FormatText, buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(cleanupReport()))

	out := buf.String()
	assert.Contains(t, out, "cleanup bwlp (dry run)")
	assert.Contains(t, out, "keep testing=3 stable=2 oldstable=1, 1 live")
	assert.Contains(t, out, "unlink")
	assert.Contains(t, out, "/srv/tftp/bwlp.stable.r01")
	assert.Contains(t, out, "[planned]")
}

func TestTextRendererStatus(t *testing.T) {
	buf := &bytes.Buffer{}
	r, err := ui.NewRenderer(ui.FormatText, buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(&types.StatusReport{
		Image: "bwlp",
		Areas: []types.AreaStatus{{
			Area: types.AreaWeb,
			Base: "/srv/www/bwlp",
			Slots: []types.SlotState{
				{Slot: types.SlotTesting, Exists: true, Target: "bwlp.r03"},
				{Slot: types.SlotStable, Exists: true, Target: "bwlp.r09", Dangling: true},
				{Slot: types.SlotOldStable},
			},
			Revisions: []types.RevisionState{{Path: "/srv/www/bwlp.r03", Revision: 3, Live: true}},
		}},
	}))

	out := buf.String()
	assert.Contains(t, out, "web: /srv/www/bwlp")
	assert.Contains(t, out, "bwlp.r09 (dangling)")
	assert.Contains(t, out, "not set")
	assert.Contains(t, out, "bwlp.r03 (live)")
}

func TestTerminalRendererPromotion(t *testing.T) {
	buf := &bytes.Buffer{}
	r, err := ui.NewRenderer(ui.FormatTerminal, buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(&types.PromotionReport{
		Image: "bwlp",
		Areas: []types.AreaPromotion{
			{Area: types.AreaBoot, Actions: []types.Action{{Kind: types.ActionRename, Path: "/t/bwlp.stable.r01", Target: "/t/bwlp.stable"}}},
			{Area: types.AreaWeb, Skipped: true, Reason: "/w/bwlp.testing does not exist"},
		},
	}))

	out := buf.String()
	assert.Contains(t, out, "promote bwlp")
	assert.Contains(t, out, "/t/bwlp.stable.r01 -> /t/bwlp.stable")
	assert.Contains(t, out, "skipped: /w/bwlp.testing does not exist")
}

func TestJSONRenderer(t *testing.T) {
	buf := &bytes.Buffer{}
	r, err := ui.NewRenderer(ui.FormatJSON, buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderResult(cleanupReport()))

	var decoded types.CleanupReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, cleanupReport(), &decoded)
}

func TestJSONRendererError(t *testing.T) {
	buf := &bytes.Buffer{}
	r, err := ui.NewRenderer(ui.FormatJSON, buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderError(errors.New(errors.ErrNotALink, "not a link").WithDetail("path", "/srv/x")))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "NOT_A_LINK", decoded["code"])
	assert.Equal(t, "/srv/x", decoded["details"].(map[string]interface{})["path"])
}

func TestRenderMessage(t *testing.T) {
	for _, format := range []ui.Format{ui.FormatTerminal, ui.FormatText, ui.FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			buf := &bytes.Buffer{}
			r, err := ui.NewRenderer(format, buf)
			require.NoError(t, err)
			require.NoError(t, r.RenderMessage("nothing to do"))
			assert.Contains(t, buf.String(), "nothing to do")
		})
	}
}
