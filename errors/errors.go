package errors

import "fmt"

// DriveError is the error surface of the host-facing layers: image sources,
// load-time validation, and tooling. The emulated CPU never sees one of these;
// the 8080 has no channel for them and the port surface degrades silently
// instead (status register only).
type DriveError interface {
	error
	WithMessage(message string) DriveError
	WrapError(err error) DriveError
}

// -----------------------------------------------------------------------------

type customDriveError struct {
	message       string
	originalError error
}

// Error implements the `error` object interface. When called, it returns a
// string describing the error.
func (e customDriveError) Error() string {
	return e.message
}

func (e customDriveError) WithMessage(message string) DriveError {
	return customDriveError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customDriveError) WrapError(err error) DriveError {
	return customDriveError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: err,
	}
}

func (e customDriveError) Unwrap() error {
	return e.originalError
}
