// Package linkstore is the thin layer between the engines and the
// filesystem: reading, creating, copying, renaming and deleting symbolic
// links, plus the few file primitives the config rewrite and deploy steps
// need.
//
// Every mutation goes through a types.FS so the same code runs against the
// OS and against an in-memory go-billy filesystem in tests. Deletions are
// irreversible; callers must have checked the path against their live set.
package linkstore
