// Package promotion advances an image's slot chain one step.
//
// In the boot and web areas the named links shift
//
//	oldstable -> oldstable.rNN, stable -> oldstable, testing -> stable (copy)
//
// and the web area's runtime configs are rewritten so the stable and
// oldstable revisions reference name-stable.sqfs and name-oldstable.sqfs.
// A slot area without a testing link is skipped.
//
// The image area has no named slots. Every promotion copies the newest
// name-stable.sqfs.rNN link to a fresh name-oldstable.sqfs.rNN and creates
// a fresh name-stable.sqfs.rNN pointing at the newest name.sqfs.rNN. This
// happens even when no testing image exists.
package promotion
