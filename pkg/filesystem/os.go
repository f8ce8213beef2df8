package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/openslx/slotctl/pkg/types"
)

// osFS implements types.FS on the host filesystem. Every path is taken
// relative to root; link targets are stored as given, so only relative
// targets stay inside root.
type osFS struct {
	root string
}

// NewOS returns the host filesystem
func NewOS() types.FS {
	return &osFS{root: "/"}
}

// NewOSAt returns the host filesystem below root, so /srv/www names
// <root>/srv/www. Used to operate on a staged copy of a server tree.
func NewOSAt(root string) types.FS {
	return &osFS{root: filepath.Clean(root)}
}

func (o *osFS) path(name string) string {
	if o.root == "/" {
		return name
	}
	return filepath.Join(o.root, filepath.Clean("/"+name))
}

func (o *osFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(o.path(name))
}

func (o *osFS) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(o.path(name))
}

func (o *osFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(o.path(name))
}

// WriteFile writes and syncs data before closing, so a following rename
// never publishes a file whose content is still in the page cache only
func (o *osFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	f, err := os.OpenFile(o.path(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (o *osFS) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(o.path(path), perm)
}

func (o *osFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(o.path(name))
}

func (o *osFS) Symlink(oldname, newname string) error {
	return os.Symlink(oldname, o.path(newname))
}

func (o *osFS) Readlink(name string) (string, error) {
	return os.Readlink(o.path(name))
}

func (o *osFS) Remove(name string) error {
	return os.Remove(o.path(name))
}

func (o *osFS) RemoveAll(path string) error {
	return os.RemoveAll(o.path(path))
}

// Rename replaces newpath atomically when both paths are on one filesystem
func (o *osFS) Rename(oldpath, newpath string) error {
	return os.Rename(o.path(oldpath), o.path(newpath))
}
