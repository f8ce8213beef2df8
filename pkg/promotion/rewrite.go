package promotion

import (
	"strings"

	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/linkstore"
)

// tmpSuffix names the staging file written next to a config being rewritten
const tmpSuffix = ".tmp"

// RewriteConfig replaces every occurrence of from with to in the file at
// path. The new content is written to path.tmp and renamed over the
// original.
func RewriteConfig(store *linkstore.Store, path, from, to string) error {
	info, err := store.FS().Stat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrRewriteIO, "cannot stat config %s", path).
			WithDetail("path", path)
	}
	data, err := store.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrRewriteIO, "cannot read config %s", path).
			WithDetail("path", path)
	}

	tmp := path + tmpSuffix
	content := strings.ReplaceAll(string(data), from, to)
	if err := store.WriteFile(tmp, []byte(content), info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrRewriteIO, "cannot write %s", tmp).
			WithDetail("path", tmp)
	}
	if err := store.Rename(tmp, path); err != nil {
		_ = store.FS().Remove(tmp)
		return errors.Wrapf(err, errors.ErrRewriteIO, "cannot replace config %s", path).
			WithDetail("path", path)
	}
	return nil
}
