package revision

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gobwas/glob"
	"github.com/openslx/slotctl/pkg/errors"
	"github.com/openslx/slotctl/pkg/logging"
	"github.com/openslx/slotctl/pkg/types"
)

const suffixPrefix = ".r"

// Entry is one well-formed member of a family
type Entry struct {
	Path     string
	Revision types.Revision
}

// Namer allocates and parses revision names over a lister
type Namer struct {
	lister types.Lister
}

// NewNamer creates a Namer that scans families through lister
func NewNamer(lister types.Lister) *Namer {
	return &Namer{lister: lister}
}

// Format renders a revision label, zero padded to at least two digits
func Format(rev int) string {
	return fmt.Sprintf("r%02d", rev)
}

// Path attaches the revision label to base
func Path(base string, rev int) string {
	return base + "." + Format(rev)
}

// Pattern returns the glob pattern matching every candidate member of the
// family. Only the last path element is a pattern; the base name is quoted.
func Pattern(base string) string {
	return filepath.Join(filepath.Dir(base), glob.QuoteMeta(filepath.Base(base))+suffixPrefix+"*")
}

// Parse extracts the revision of path when it is exactly base.rNN
func Parse(base, path string) (int, bool) {
	rest, ok := strings.CutPrefix(path, base+suffixPrefix)
	if !ok {
		return 0, false
	}
	return parseDigits(rest)
}

// ParseSuffix extracts the trailing .rNN revision of any name
func ParseSuffix(name string) (int, bool) {
	idx := strings.LastIndex(name, suffixPrefix)
	if idx < 0 {
		return 0, false
	}
	return parseDigits(name[idx+len(suffixPrefix):])
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Revisions returns every well-formed member of the family, most recent first
func (n *Namer) Revisions(base string) ([]Entry, error) {
	logger := logging.GetLogger("revision")

	paths, err := n.lister.Glob(Pattern(base))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to list revisions of %s", base)
	}

	entries := make([]Entry, 0, len(paths))
	for _, p := range paths {
		rev, ok := Parse(base, p)
		if !ok {
			logger.Trace().Str("path", p).Msg("Ignoring malformed revision sibling")
			continue
		}
		entries = append(entries, Entry{Path: p, Revision: types.Revision(rev)})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Revision > entries[j].Revision
	})
	return entries, nil
}

// Latest returns the highest revision of the family, or 0 when it is empty
func (n *Namer) Latest(base string) (int, error) {
	entries, err := n.Revisions(base)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	return int(entries[0].Revision), nil
}

// LatestPath returns base.rNN for the highest revision. An empty family
// yields base.r00, which does not exist.
func (n *Namer) LatestPath(base string) (string, error) {
	rev, err := n.Latest(base)
	if err != nil {
		return "", err
	}
	return Path(base, rev), nil
}

// Next returns the name the next revision of the family would get
func (n *Namer) Next(base string) (string, error) {
	rev, err := n.Latest(base)
	if err != nil {
		return "", err
	}
	next := Path(base, rev+1)
	logger := logging.GetLogger("revision")
	logger.Debug().
		Str("base", base).
		Str("next", next).
		Msg("Calculated new revision")
	return next, nil
}
