package types

import "fmt"

// Slot is an operator-facing name bound via symlink to a numbered revision
type Slot string

const (
	SlotTesting   Slot = "testing"
	SlotStable    Slot = "stable"
	SlotOldStable Slot = "oldstable"
)

// AllSlots lists the slots in promotion order
var AllSlots = []Slot{SlotTesting, SlotStable, SlotOldStable}

// Path returns the slot link path for a family base, e.g. base.stable
func (s Slot) Path(base string) string {
	return fmt.Sprintf("%s.%s", base, s)
}

// Revision identifies one build output within a family
type Revision int

// AreaKind names a storage area holding a copy of an image's history
type AreaKind string

const (
	// AreaBoot is the tftpd share holding kernel and initramfs directories
	AreaBoot AreaKind = "boot"
	// AreaWeb is the www share holding stage32 and runtime config directories
	AreaWeb AreaKind = "web"
	// AreaImage is the block-image store holding numbered sqfs files
	AreaImage AreaKind = "image"
)

// AllAreas lists the areas in the order commands walk them
var AllAreas = []AreaKind{AreaBoot, AreaWeb, AreaImage}

// ParseAreaKind converts a config key into an AreaKind
func ParseAreaKind(s string) (AreaKind, error) {
	switch AreaKind(s) {
	case AreaBoot, AreaWeb, AreaImage:
		return AreaKind(s), nil
	default:
		return "", fmt.Errorf("unknown area: %q", s)
	}
}

// RetentionPolicy caps the number of historical revisions kept per category
type RetentionPolicy struct {
	KeepTesting   int `json:"keepTesting" koanf:"keep-testing"`
	KeepStable    int `json:"keepStable" koanf:"keep-stable"`
	KeepOldStable int `json:"keepOldStable" koanf:"keep-oldstable"`
}
