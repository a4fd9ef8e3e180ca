package image

import (
	"github.com/altairemu/dcdd"
)

// Zero is a blank diskette: every sector reads as all zeros. Useful as a
// scratch target in tests, where all content comes from the patch pool.
type Zero struct{}

// Size reports a full 77-track image.
func (Zero) Size() uint32 {
	return dcdd.TotalDiskSize
}

// ReadSector implements [dcdd.ImageSource]; the buffer always comes back
// zero-filled.
func (Zero) ReadSector(offset uint32, buffer []byte) error {
	zeroFill(buffer)
	return nil
}
