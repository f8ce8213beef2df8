package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/openslx/slotctl/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseFS runs the operations the link store depends on against a backend
func exerciseFS(t *testing.T, fsys types.FS, root string) {
	t.Helper()

	revDir := filepath.Join(root, "bwlp.r01")
	require.NoError(t, fsys.MkdirAll(revDir, 0755))

	cfg := filepath.Join(revDir, "config")
	require.NoError(t, fsys.WriteFile(cfg, []byte("SLX_DNBD3=bwlp.sqfs\n"), 0644))

	content, err := fsys.ReadFile(cfg)
	require.NoError(t, err)
	assert.Equal(t, "SLX_DNBD3=bwlp.sqfs\n", string(content))

	_, err = fsys.ReadFile(revDir)
	assert.Error(t, err, "reading a directory should fail")

	// Relative symlink resolves against the link's directory
	testingLink := filepath.Join(root, "bwlp.testing")
	require.NoError(t, fsys.Symlink("bwlp.r01", testingLink))

	target, err := fsys.Readlink(testingLink)
	require.NoError(t, err)
	assert.Equal(t, "bwlp.r01", target)

	linfo, err := fsys.Lstat(testingLink)
	require.NoError(t, err)
	assert.NotZero(t, linfo.Mode()&fs.ModeSymlink, "Lstat should report a symlink")

	info, err := fsys.Stat(testingLink)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "Stat should follow the link")

	// Rename keeps the link target
	stable := filepath.Join(root, "bwlp.stable")
	require.NoError(t, fsys.Rename(testingLink, stable))
	target, err = fsys.Readlink(stable)
	require.NoError(t, err)
	assert.Equal(t, "bwlp.r01", target)
	_, err = fsys.Lstat(testingLink)
	assert.True(t, os.IsNotExist(err))

	entries, err := fsys.ReadDir(root)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"bwlp.r01", "bwlp.stable"}, names)

	// Dangling links are visible to Lstat only
	dangling := filepath.Join(root, "bwlp.oldstable")
	require.NoError(t, fsys.Symlink("bwlp.r99", dangling))
	_, err = fsys.Stat(dangling)
	assert.True(t, os.IsNotExist(err))
	_, err = fsys.Lstat(dangling)
	assert.NoError(t, err)

	require.NoError(t, fsys.Remove(dangling))
	require.NoError(t, fsys.RemoveAll(revDir))
	_, err = fsys.Stat(revDir)
	assert.True(t, os.IsNotExist(err))
}

func TestOSFilesystem(t *testing.T) {
	exerciseFS(t, NewOS(), t.TempDir())
}

func TestRootedOSFilesystem(t *testing.T) {
	root := t.TempDir()
	fsys := NewOSAt(root)
	exerciseFS(t, fsys, "/srv/www")

	require.NoError(t, fsys.WriteFile("/srv/www/marker", []byte("x"), 0644))
	_, err := os.Stat(filepath.Join(root, "srv", "www", "marker"))
	assert.NoError(t, err, "paths are placed below the root")

	require.NoError(t, fsys.WriteFile("/../escape", []byte("x"), 0644))
	_, err = os.Stat(filepath.Join(root, "escape"))
	assert.NoError(t, err, "parent references cannot leave the root")
}

func TestMemoryFilesystem(t *testing.T) {
	exerciseFS(t, NewMemory(), "/srv/www")
}
