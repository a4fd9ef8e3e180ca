package image

import (
	"github.com/xaionaro-go/bytesextra"
)

// NewMemory wraps a byte slice as a disk image. The slice is not copied; the
// caller must not mutate it while the image is mounted. This is the backend
// for images baked into the binary and for tests.
func NewMemory(data []byte) *Stream {
	return NewStream(bytesextra.NewReadWriteSeeker(data), uint32(len(data)))
}
