package testutil

import (
	"github.com/openslx/slotctl/pkg/filesystem"
	"github.com/openslx/slotctl/pkg/types"
)

// NewTestFS creates a new in-memory filesystem for testing.
func NewTestFS() types.FS {
	return filesystem.NewMemory()
}
