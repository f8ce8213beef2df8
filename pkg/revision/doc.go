// Package revision computes and parses the numbered revision suffixes of a
// path family.
//
// A family is every sibling sharing a base path: base.r01, base.r02, ...
// The filesystem listing is the only source of truth. There is no counter,
// so Next is a pure function of what is on disk and two calls made before
// the first result is materialised return the same name. Callers that
// allocate must create the path before asking again.
//
// Ordering is always numeric on the parsed suffix, never lexical, so r100
// sorts after r99.
package revision
