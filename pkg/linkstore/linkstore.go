package linkstore

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/revision"
	"github.com/openslx/slotctl/pkg/types"
)

// maxHops bounds link chain resolution
const maxHops = 16

// Store provides link and file primitives over a types.FS
type Store struct {
	fs types.FS
}

// New creates a Store backed by fsys
func New(fsys types.FS) *Store {
	return &Store{fs: fsys}
}

// FS returns the underlying filesystem
func (s *Store) FS() types.FS {
	return s.fs
}

// Exists reports whether anything, including a dangling link, is at path
func (s *Store) Exists(path string) bool {
	_, err := s.fs.Lstat(path)
	return err == nil
}

// IsLink reports whether path is a symbolic link
func (s *Store) IsLink(path string) bool {
	info, err := s.fs.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&fs.ModeSymlink != 0
}

// IsDir reports whether path, after following links, is a directory
func (s *Store) IsDir(path string) bool {
	info, err := s.fs.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ReadLink returns the raw target of the link at path
func (s *Store) ReadLink(path string) (string, error) {
	info, err := s.fs.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(err, errors.ErrNotFound, "link %s does not exist", path)
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path)
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return "", errors.Newf(errors.ErrNotALink, "%s is not a symbolic link", path).
			WithDetail("path", path)
	}
	target, err := s.fs.Readlink(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read link %s", path)
	}
	return target, nil
}

// Resolution is the outcome of following a link chain
type Resolution struct {
	// Hops holds every path the chain passes through after the start,
	// in order. The last hop is Final.
	Hops  []string
	Final string
}

// Resolve follows the link chain starting at path. Relative targets are
// interpreted against the directory of the link holding them. A path that
// is not a link resolves to itself with no hops.
func (s *Store) Resolve(path string) (Resolution, error) {
	var res Resolution
	current := filepath.Clean(path)

	for i := 0; i < maxHops; i++ {
		if !s.IsLink(current) {
			res.Final = current
			return res, nil
		}
		target, err := s.ReadLink(current)
		if err != nil {
			return res, err
		}
		current = absTarget(current, target)
		res.Hops = append(res.Hops, current)
	}

	return res, errors.Newf(errors.ErrLinkLoop, "too many links resolving %s", path).
		WithDetail("path", path)
}

// ResolveTarget returns the absolute path the link at path points at,
// following a single hop
func (s *Store) ResolveTarget(path string) (string, error) {
	target, err := s.ReadLink(path)
	if err != nil {
		return "", err
	}
	return absTarget(path, target), nil
}

// Canonical returns path with every symbolic link along it replaced by its
// target, so two spellings of one location compare equal. Components that
// do not exist are kept as written.
func (s *Store) Canonical(path string) (string, error) {
	pending := splitPath(filepath.Clean(path))
	resolved := "/"
	if !filepath.IsAbs(path) {
		resolved = "."
	}

	hops := 0
	for len(pending) > 0 {
		comp := pending[0]
		pending = pending[1:]
		if comp == ".." {
			resolved = filepath.Dir(resolved)
			continue
		}

		next := filepath.Join(resolved, comp)
		info, err := s.fs.Lstat(next)
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.Join(append([]string{next}, pending...)...), nil
			}
			return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", next)
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			resolved = next
			continue
		}

		hops++
		if hops > maxHops {
			return "", errors.Newf(errors.ErrLinkLoop, "too many links resolving %s", path).
				WithDetail("path", path)
		}
		target, err := s.fs.Readlink(next)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read link %s", next)
		}
		if filepath.IsAbs(target) {
			resolved = "/"
		}
		pending = append(splitPath(filepath.Clean(target)), pending...)
	}
	return resolved, nil
}

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, string(filepath.Separator)) {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}
	return parts
}

func absTarget(link, target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(filepath.Dir(link), target)
}

// CreateLink creates link pointing at target. An existing path at link is
// an error unless overwrite is set, in which case it is removed first.
func (s *Store) CreateLink(target, link string, overwrite bool) error {
	if s.Exists(link) {
		if !overwrite {
			return errors.Newf(errors.ErrAlreadyExists, "%s already exists", link).
				WithDetail("path", link)
		}
		if err := s.fs.Remove(link); err != nil {
			return errors.Wrapf(err, errors.ErrLinkCreate, "cannot replace %s", link)
		}
	}
	if err := s.fs.Symlink(target, link); err != nil {
		return errors.Wrapf(err, errors.ErrLinkCreate, "cannot link %s to %s", link, target)
	}
	return nil
}

// CopyLink creates dst pointing at the raw target of the link src
func (s *Store) CopyLink(src, dst string, overwrite bool) error {
	target, err := s.ReadLink(src)
	if err != nil {
		return err
	}
	return s.CreateLink(target, dst, overwrite)
}

// Rename moves a link, file or directory
func (s *Store) Rename(src, dst string) error {
	if err := s.fs.Rename(src, dst); err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot move %s to %s", src, dst)
	}
	return nil
}

// DeleteLink removes the link at path, never its target
func (s *Store) DeleteLink(path string) error {
	if !s.IsLink(path) {
		return errors.Newf(errors.ErrNotALink, "refusing to unlink %s: not a symbolic link", path).
			WithDetail("path", path)
	}
	if err := s.fs.Remove(path); err != nil {
		return errors.Wrapf(err, errors.ErrFileDelete, "cannot remove link %s", path)
	}
	return nil
}

// DeleteFile removes a single file or link
func (s *Store) DeleteFile(path string) error {
	info, err := s.fs.Lstat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrNotFound, "cannot remove %s", path)
	}
	if info.IsDir() {
		return errors.Newf(errors.ErrInvalidInput, "refusing to remove directory %s as a file", path)
	}
	if err := s.fs.Remove(path); err != nil {
		return errors.Wrapf(err, errors.ErrFileDelete, "cannot remove %s", path)
	}
	return nil
}

// DeleteTree removes path and everything below it
func (s *Store) DeleteTree(path string) error {
	if err := s.fs.RemoveAll(path); err != nil {
		return errors.Wrapf(err, errors.ErrFileDelete, "cannot remove tree %s", path)
	}
	return nil
}

// Glob returns the paths whose last element matches the last element of
// pattern. The directory part is taken literally. Results are ordered most
// recent first by their trailing .rNN revision; names without one follow,
// in descending lexical order.
func (s *Store) Glob(pattern string) ([]string, error) {
	dir, namePattern := filepath.Split(pattern)
	dir = filepath.Clean(dir)

	g, err := glob.Compile(namePattern)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid pattern %q", pattern)
	}

	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot list %s", dir)
	}

	var matches []string
	for _, entry := range entries {
		if g.Match(entry.Name()) {
			matches = append(matches, filepath.Join(dir, entry.Name()))
		}
	}

	sortRecentFirst(matches)
	return matches, nil
}

func sortRecentFirst(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		ri, iok := revision.ParseSuffix(paths[i])
		rj, jok := revision.ParseSuffix(paths[j])
		switch {
		case iok && jok && ri != rj:
			return ri > rj
		case iok != jok:
			return iok
		default:
			return paths[i] > paths[j]
		}
	})
}

// ReadFile reads a regular file, following links
func (s *Store) ReadFile(path string) ([]byte, error) {
	return s.fs.ReadFile(path)
}

// WriteFile writes data to path
func (s *Store) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return s.fs.WriteFile(path, data, perm)
}

// Mkdir creates a directory and any missing parents
func (s *Store) Mkdir(path string) error {
	if err := s.fs.MkdirAll(path, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", path)
	}
	return nil
}

// CopyFile copies the content of src into dst, keeping src's permissions
func (s *Store) CopyFile(src, dst string) error {
	info, err := s.fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrNotFound, "cannot copy %s", src)
	}
	data, err := s.fs.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", src)
	}
	if err := s.fs.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", dst)
	}
	return nil
}
