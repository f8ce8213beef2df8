// Package filesystem provides filesystem implementations for slotctl.
//
// This package contains implementations of the types.FS interface: the
// standard OS filesystem used in production and a go-billy backed
// filesystem whose in-memory variant gives tests real symlink semantics
// without touching the disk.
package filesystem
