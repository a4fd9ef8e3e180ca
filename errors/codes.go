// Base error values for everything that can go wrong on the host side of the
// disk subsystem. These are sentinel errors. WithMessage adds context while
// keeping errors.Is working against the base value; WrapError chains to the
// wrapped error instead, so errors.Is matches that error, not the base value.

package errors

import (
	"fmt"
)

type DcddError string

const ErrArgumentOutOfRange = DcddError("Numerical argument out of domain")
const ErrInvalidArgument = DcddError("Invalid argument")
const ErrIOFailed = DcddError("Input/output error")
const ErrNoDevice = DcddError("No such device")
const ErrNoImage = DcddError("No image attached to drive")
const ErrNotSupported = DcddError("Operation not supported")
const ErrPoolExhausted = DcddError("Sector patch pool exhausted")
const ErrShortImage = DcddError("Image smaller than expected")
const ErrUnexpectedEOF = DcddError("Unexpected end of file or stream")

func (e DcddError) Error() string {
	return string(e)
}

func (e DcddError) WithMessage(message string) DriveError {
	return customDriveError{
		message:       fmt.Sprintf("%s: %s", e.Error(), message),
		originalError: e,
	}
}

func (e DcddError) WrapError(err error) DriveError {
	return customDriveError{
		message:       fmt.Sprintf("%s %s", e.Error(), err.Error()),
		originalError: err,
	}
}
