// Package image provides the read-only disk image backends the controller
// mounts: an in-memory byte slice, a file on the host file system, any
// io.ReadSeeker, and an all-zeros diskette. All of them implement
// [dcdd.ImageSource].
//
// Short images are legal. A read that runs past the end of the backing data
// yields the remaining bytes zero-filled and reports success; only a failure
// of the backing storage itself is an error.
package image

import (
	"io"

	"github.com/altairemu/dcdd"
	"github.com/altairemu/dcdd/errors"
)

// Stream adapts any io.ReadSeeker into a [dcdd.ImageSource] of a stated size.
// The stream position is owned by the Stream between calls; callers must not
// seek it independently.
type Stream struct {
	stream io.ReadSeeker
	size   uint32
}

// NewStream wraps `stream`, which holds `size` bytes of image data starting
// at offset 0.
func NewStream(stream io.ReadSeeker, size uint32) *Stream {
	return &Stream{stream: stream, size: size}
}

// Size returns the length of the image in bytes.
func (img *Stream) Size() uint32 {
	return img.size
}

// ReadSector implements [dcdd.ImageSource].
func (img *Stream) ReadSector(offset uint32, buffer []byte) error {
	zeroFill(buffer)
	if offset >= img.size {
		return nil
	}

	available := img.size - offset
	if available > dcdd.SectorSize {
		available = dcdd.SectorSize
	}

	_, err := img.stream.Seek(int64(offset), io.SeekStart)
	if err != nil {
		return errors.ErrIOFailed.WrapError(err)
	}

	_, err = io.ReadFull(img.stream, buffer[:available])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return errors.ErrIOFailed.WrapError(err)
	}
	return nil
}

func zeroFill(buffer []byte) {
	if len(buffer) > dcdd.SectorSize {
		buffer = buffer[:dcdd.SectorSize]
	}
	for i := range buffer {
		buffer[i] = 0
	}
}
