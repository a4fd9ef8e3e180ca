package errors_test

import (
	goerrors "errors"
	"testing"

	"github.com/altairemu/dcdd/errors"
	"github.com/stretchr/testify/assert"
)

func TestDcddErrorWithMessage(t *testing.T) {
	newErr := errors.ErrPoolExhausted.WithMessage("asdfqwerty")
	assert.Equal(
		t,
		"Sector patch pool exhausted: asdfqwerty",
		newErr.Error(),
		"error message is wrong")
	assert.ErrorIs(t, newErr, errors.ErrPoolExhausted)
}

func TestDcddErrorWrap(t *testing.T) {
	originalErr := goerrors.New("original error")
	newErr := errors.ErrIOFailed.WrapError(originalErr)
	expectedMessage := "Input/output error original error"

	assert.EqualValues(t, expectedMessage, newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, originalErr, "original error not set as parent")
}
