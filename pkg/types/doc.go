// Package types defines the core types and interfaces shared by the
// revision, promotion and retention engines.
//
// This includes the FS interface every filesystem backend implements, the
// slot and area vocabulary (Slot, AreaKind, Revision), the retention policy
// and the report structures returned by each command.
package types
