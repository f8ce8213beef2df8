package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/openslx/slotctl/pkg/types"
)

// CreateFileT writes content to path, creating parents as needed
func CreateFileT(t *testing.T, fsys types.FS, path, content string) {
	t.Helper()
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create parent of %s: %v", path, err)
	}
	if err := fsys.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

// CreateDirT creates a directory and its parents
func CreateDirT(t *testing.T, fsys types.FS, path string) {
	t.Helper()
	if err := fsys.MkdirAll(path, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", path, err)
	}
}

// CreateSymlinkT creates link pointing at target
func CreateSymlinkT(t *testing.T, fsys types.FS, target, link string) {
	t.Helper()
	if err := fsys.Symlink(target, link); err != nil {
		t.Fatalf("Failed to create symlink %s -> %s: %v", link, target, err)
	}
}

// AssertSymlink checks that link is a symlink with the expected raw target
func AssertSymlink(t *testing.T, fsys types.FS, link, expectedTarget string) {
	t.Helper()
	info, err := fsys.Lstat(link)
	if err != nil {
		t.Errorf("Expected symlink at %s: %v", link, err)
		return
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		t.Errorf("Expected %s to be a symlink, mode is %v", link, info.Mode())
		return
	}
	target, err := fsys.Readlink(link)
	if err != nil {
		t.Errorf("Failed to read symlink %s: %v", link, err)
		return
	}
	if target != expectedTarget {
		t.Errorf("Symlink %s points to %q, expected %q", link, target, expectedTarget)
	}
}

// AssertExists checks that something, possibly a dangling link, is at path
func AssertExists(t *testing.T, fsys types.FS, path string) {
	t.Helper()
	if _, err := fsys.Lstat(path); err != nil {
		t.Errorf("Expected %s to exist: %v", path, err)
	}
}

// AssertNoFile checks that nothing is at path
func AssertNoFile(t *testing.T, fsys types.FS, path string) {
	t.Helper()
	_, err := fsys.Lstat(path)
	if err == nil {
		t.Errorf("Expected %s to not exist", path)
		return
	}
	if !os.IsNotExist(err) {
		t.Errorf("Unexpected error checking %s: %v", path, err)
	}
}

// AssertFileContent checks the content of path
func AssertFileContent(t *testing.T, fsys types.FS, path, expected string) {
	t.Helper()
	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Errorf("Failed to read %s: %v", path, err)
		return
	}
	if string(data) != expected {
		t.Errorf("Content of %s is %q, expected %q", path, string(data), expected)
	}
}

// Snapshot describes every entry below root without following links.
// Keys are absolute paths, values are "dir", "file:<content>" or
// "link:<target>".
func Snapshot(t *testing.T, fsys types.FS, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	snapshotDir(t, fsys, root, out)
	return out
}

func snapshotDir(t *testing.T, fsys types.FS, dir string, out map[string]string) {
	t.Helper()
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to list %s: %v", dir, err)
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := fsys.Lstat(path)
		if err != nil {
			t.Fatalf("Failed to stat %s: %v", path, err)
		}
		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			target, err := fsys.Readlink(path)
			if err != nil {
				t.Fatalf("Failed to read link %s: %v", path, err)
			}
			out[path] = "link:" + target
		case info.IsDir():
			out[path] = "dir"
			snapshotDir(t, fsys, path, out)
		default:
			data, err := fsys.ReadFile(path)
			if err != nil {
				t.Fatalf("Failed to read %s: %v", path, err)
			}
			out[path] = "file:" + string(data)
		}
	}
}

// Names returns the base names of paths, sorted
func Names(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, filepath.Base(p))
	}
	sort.Strings(out)
	return out
}
