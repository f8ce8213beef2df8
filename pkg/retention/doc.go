// Package retention prunes old revisions of an image.
//
// Each area is processed in two phases. First, numbered history links
// beyond their keep count are unlinked. Second, numbered revisions beyond
// keep-testing are removed unless they are reachable from a link that
// survives the first phase. Paths reachable from a surviving link form the
// live set and are never removed, whatever the keep counts say.
//
// Slot areas (boot, web) keep keep-oldstable-1 numbered oldstable links,
// the unnumbered oldstable link taking the remaining place. The image area
// keeps keep-stable numbered stable links and keep-oldstable numbered
// oldstable links.
package retention
