// Package testutil provides utilities for testing slotctl components.
//
// Key components:
//   - NewTestFS: in-memory filesystem with real symlink semantics
//   - FileTree / Link: declarative layout of revision directories and slot links
//   - Snapshot: a flat description of a tree, for before/after comparisons
//   - Assert helpers for links, files and absence
//
// Most tests should use the in-memory filesystem. Tests that need to prove
// OS behaviour use t.TempDir() with filesystem.NewOS().
package testutil
