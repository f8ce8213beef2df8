package topics

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"help/slots.md":             {Data: []byte("# Slots\n\ntesting, stable and oldstable")},
		"help/option-dry-run.txt":   {Data: []byte("Dry runs log every action without performing it")},
		"help/retention.txxt":       {Data: []byte("Retention Guide")},
		"help/ignore.json":          {Data: []byte("{}")},
		"help/nested/layout.md":     {Data: []byte("# Layout")},
		"elsewhere/not-a-topic.txt": {Data: []byte("outside")},
	}
}

func TestLoad(t *testing.T) {
	m, err := Load(testFS(), "help", Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"layout", "option-dry-run", "slots"}, m.ListTopics())

	topic, ok := m.GetTopic("slots")
	require.True(t, ok)
	assert.Equal(t, "help/slots.md", topic.Path)

	_, ok = m.GetTopic("retention")
	assert.False(t, ok, ".txxt is not a default extension")
}

func TestLoadCustomExtensions(t *testing.T) {
	m, err := Load(testFS(), "help", Options{Extensions: []string{".txxt"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"retention"}, m.ListTopics())
}

func TestLoadMissingRoot(t *testing.T) {
	_, err := Load(testFS(), "missing", Options{})
	assert.Error(t, err)
}

func TestGetTopicFlagStyle(t *testing.T) {
	m, err := Load(testFS(), "help", Options{})
	require.NoError(t, err)

	for _, name := range []string{"--dry-run", "-dry-run", "dry-run", "option-dry-run"} {
		topic, ok := m.GetTopic(name)
		require.True(t, ok, name)
		assert.Equal(t, "option-dry-run", topic.Name)
	}
}

func newRoot(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	root := &cobra.Command{Use: "slotctl"}
	root.AddCommand(&cobra.Command{Use: "promote", Short: "Promote testing to stable", Run: func(*cobra.Command, []string) {}})

	m, err := Load(testFS(), "help", Options{})
	require.NoError(t, err)
	m.Install(root)

	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	return root, out
}

func TestHelpTopicsList(t *testing.T) {
	root, out := newRoot(t)
	root.SetArgs([]string{"help", "topics"})
	require.NoError(t, root.Execute())

	assert.Contains(t, out.String(), "General topics:")
	assert.Contains(t, out.String(), "  slots")
	assert.Contains(t, out.String(), "  --dry-run")
	assert.Contains(t, out.String(), "slotctl help <topic>")
}

func TestHelpTopic(t *testing.T) {
	root, out := newRoot(t)
	root.SetArgs([]string{"help", "option-dry-run"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "Dry runs log every action without performing it", out.String())
}

func TestHelpFallsBackToCommandHelp(t *testing.T) {
	root, out := newRoot(t)
	root.SetArgs([]string{"help", "promote"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Promote testing to stable")
}

func TestGlamourRenderer(t *testing.T) {
	r := &GlamourRenderer{Style: "notty", Width: 40}

	plain := r.Render("plain text", ".txt")
	assert.Equal(t, "plain text", plain)

	source := "# Slots\n\nsome **bold** text"
	rendered := r.Render(source, ".md")
	assert.NotEqual(t, source, rendered)
	assert.True(t, strings.Contains(rendered, "Slots"))
	assert.Contains(t, rendered, "bold")

	// glamour indents the document body
	for _, line := range strings.Split(rendered, "\n") {
		if strings.Contains(line, "bold") {
			assert.True(t, strings.HasPrefix(line, " "), "line %q is not indented", line)
		}
	}
}
