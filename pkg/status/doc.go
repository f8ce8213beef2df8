// Package status reports where each slot of an image points and which
// numbered revisions are still referenced.
package status
