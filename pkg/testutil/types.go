package testutil

import (
	"path/filepath"
	"sort"
	"testing"

	"github.com/openslx/slotctl/pkg/types"
)

// FileTree represents a nested file structure for declarative test setup.
// Values are file contents (string), sub trees (FileTree) or links (Link).
type FileTree map[string]interface{}

// Link is a symbolic link entry of a FileTree
type Link string

// CreateTree writes tree below basePath. Directories and files are created
// before links so links may point at siblings declared in the same tree.
func CreateTree(t *testing.T, fs types.FS, basePath string, tree FileTree) {
	t.Helper()

	if err := fs.MkdirAll(basePath, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", basePath, err)
	}

	names := make([]string, 0, len(tree))
	for name := range tree {
		names = append(names, name)
	}
	sort.Strings(names)

	var links []string
	for _, name := range names {
		fullPath := filepath.Join(basePath, name)

		switch v := tree[name].(type) {
		case string:
			if err := fs.WriteFile(fullPath, []byte(v), 0644); err != nil {
				t.Fatalf("Failed to write file %s: %v", fullPath, err)
			}
		case FileTree:
			CreateTree(t, fs, fullPath, v)
		case Link:
			links = append(links, name)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, v)
		}
	}

	for _, name := range links {
		fullPath := filepath.Join(basePath, name)
		if err := fs.Symlink(string(tree[name].(Link)), fullPath); err != nil {
			t.Fatalf("Failed to create symlink %s: %v", fullPath, err)
		}
	}
}
