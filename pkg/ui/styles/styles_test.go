package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDefinesRowStatuses(t *testing.T) {
	reg := Default()
	for _, name := range []string{"Title", "Heading", "Note", "ok", "planned", "skipped", "warning", "error", "info"} {
		_, ok := reg[name]
		assert.True(t, ok, "style %s missing", name)
	}
}

func TestLoad(t *testing.T) {
	reg, err := Load([]byte(`
colors:
  red: {light: "#ff0000", dark: "#aa0000"}
styles:
  error: {bold: true, foreground: red}
`))
	require.NoError(t, err)
	assert.True(t, reg.Get("error").GetBold())
	assert.False(t, reg.Get("missing").GetBold())
}

func TestLoadBrokenYAML(t *testing.T) {
	_, err := Load([]byte("colors: [unterminated"))
	assert.Error(t, err)
}
