package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		quiet     bool
		wantLevel zerolog.Level
	}{
		{"default info level", 0, false, zerolog.InfoLevel},
		{"debug level", 1, false, zerolog.DebugLevel},
		{"trace level", 2, false, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, false, zerolog.TraceLevel},
		{"quiet wins over verbosity", 2, true, zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv("XDG_STATE_HOME", tempDir)

			SetupLogger(tt.verbosity, tt.quiet)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			logPath := filepath.Join(tempDir, "slotctl", "slotctl.log")
			_, err := os.Stat(logPath)
			assert.NoError(t, err, "log file should be created at %s", logPath)
		})
	}
}

func TestGetLogFilePath(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/custom/state")

	got := getLogFilePath()
	assert.True(t, filepath.IsAbs(got))
	assert.True(t, strings.HasSuffix(filepath.ToSlash(got), "/custom/state/slotctl/slotctl.log"))
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, 0)

	logger := GetLogger("retention")
	logger.Info().Str("path", "/srv/www/bwlp.r01").Msg("remove folder")

	out := buf.String()
	assert.Contains(t, out, `"component":"retention"`)
	assert.Contains(t, out, `"path":"/srv/www/bwlp.r01"`)
	assert.Contains(t, out, "remove folder")
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, 1)

	done := LogOperationStart(GetLogger("test"), "promote")
	done()

	assert.Contains(t, buf.String(), "Operation started")
	assert.Contains(t, buf.String(), "Operation completed")
}
