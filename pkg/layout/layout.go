// Package layout computes where an image's revisions and slot links live
// in each storage area.
package layout

import (
	"fmt"
	"path/filepath"

	"github.com/openslx/slotctl/pkg/config"
	"github.com/openslx/slotctl/pkg/types"
)

// Layout holds the resolved paths of one image
type Layout struct {
	name      string
	tftpdPath string
	wwwPath   string
	imagePath string
	bootDir   string
}

// New builds the layout of img under the configured area roots
func New(general config.General, img config.Image) *Layout {
	return &Layout{
		name:      img.Name,
		tftpdPath: filepath.Clean(general.TftpdPath),
		wwwPath:   filepath.Clean(general.WWWPath),
		imagePath: filepath.Clean(general.ImagePath),
		bootDir:   filepath.Join(general.OpenSLXBase, "var", "boot", img.Remote),
	}
}

// Name returns the image name
func (l *Layout) Name() string {
	return l.name
}

// BootSource is the build output directory deploy copies files from
func (l *Layout) BootSource() string {
	return l.bootDir
}

// SlotBase returns the family base of a slot area: <root>/<name>.
// The image area has no named slots and returns false.
func (l *Layout) SlotBase(area types.AreaKind) (string, bool) {
	switch area {
	case types.AreaBoot:
		return filepath.Join(l.tftpdPath, l.name), true
	case types.AreaWeb:
		return filepath.Join(l.wwwPath, l.name), true
	default:
		return "", false
	}
}

// ImageDir is the directory holding numbered sqfs files and links
func (l *Layout) ImageDir() string {
	return filepath.Join(l.imagePath, "sqfs")
}

// ImageFile returns the image file name a slot serves, e.g. bwlp.sqfs for
// testing and bwlp-stable.sqfs for stable
func (l *Layout) ImageFile(slot types.Slot) string {
	return ImageFileName(l.name, slot)
}

// ImageFamily returns the family base of the numbered image files or links
// serving slot
func (l *Layout) ImageFamily(slot types.Slot) string {
	return filepath.Join(l.ImageDir(), l.ImageFile(slot))
}

// ImageFileName is the dnbd3 image name referenced by runtime configs
func ImageFileName(name string, slot types.Slot) string {
	if slot == types.SlotTesting {
		return name + ".sqfs"
	}
	return fmt.Sprintf("%s-%s.sqfs", name, slot)
}
