package retention

import (
	"sort"

	"github.com/openslx/slotctl/pkg/linkstore"
)

// LiveSet holds every path reachable from a set of links. Membership is
// decided on canonical paths, so a revision reached through a symlinked
// area root is still recognised.
type LiveSet struct {
	store     *linkstore.Store
	hops      map[string]bool
	canonical map[string]bool
}

// ComputeLiveSet resolves each link and collects every hop of its chain.
// Links that do not exist contribute nothing. A chain that cannot be
// resolved is an error: without a complete live set nothing may be removed.
func ComputeLiveSet(store *linkstore.Store, links []string) (LiveSet, error) {
	live := LiveSet{
		store:     store,
		hops:      make(map[string]bool),
		canonical: make(map[string]bool),
	}
	for _, link := range links {
		if !store.Exists(link) {
			continue
		}
		res, err := store.Resolve(link)
		if err != nil {
			return LiveSet{}, err
		}
		for _, hop := range res.Hops {
			canonical, err := store.Canonical(hop)
			if err != nil {
				return LiveSet{}, err
			}
			live.hops[hop] = true
			live.canonical[canonical] = true
		}
	}
	return live, nil
}

// Contains reports whether path is live. A path whose location cannot be
// determined counts as live.
func (l LiveSet) Contains(path string) bool {
	if l.hops[path] {
		return true
	}
	if l.store == nil {
		return false
	}
	canonical, err := l.store.Canonical(path)
	if err != nil {
		return true
	}
	return l.canonical[canonical]
}

// Sorted returns the live paths, as the links spell them, in lexical order
func (l LiveSet) Sorted() []string {
	out := make([]string, 0, len(l.hops))
	for p := range l.hops {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
