package image

import (
	"os"

	"github.com/altairemu/dcdd/errors"
)

// File is a disk image backed by a file on the host file system. The file is
// opened read-only; writes stay in the controller's patch pool, so a mounted
// image file is never modified.
type File struct {
	*Stream
	file *os.File
}

// Open opens the image at `path`. Failures surface here, before the
// controller commits to the image.
func Open(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.ErrNoDevice.WrapError(err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.ErrIOFailed.WrapError(err)
	}

	return &File{
		Stream: NewStream(file, uint32(info.Size())),
		file:   file,
	}, nil
}

// Close releases the underlying file. The image must not be used afterwards.
func (img *File) Close() error {
	return img.file.Close()
}
