package inodefs_test

import (
	"errors"
	"testing"

	"github.com/dargueta/inodefs"
	errnos "github.com/dargueta/inodefs/errors"
	"github.com/stretchr/testify/assert"
)

func TestDriverErrorWithMessage(t *testing.T) {
	newErr := inodefs.ErrPathNotFound.WithMessage("/a/b")
	assert.Equal(t, "Path not found: /a/b", newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, inodefs.ErrPathNotFound)
	assert.NotErrorIs(t, newErr, inodefs.ErrAlreadyExists)
	assert.Equal(t, errnos.ENOENT, newErr.Errno())
}

func TestDriverErrorWithMessageChained(t *testing.T) {
	newErr := inodefs.ErrNoFreeBlocks.WithMessage("growing inode 3").WithMessage("mkdir /x")
	assert.Equal(
		t,
		"No free blocks left on device: growing inode 3: mkdir /x",
		newErr.Error(),
	)
	assert.ErrorIs(t, newErr, inodefs.ErrNoFreeBlocks)
}

func TestDriverErrorWrap(t *testing.T) {
	originalErr := errors.New("original error")
	newErr := inodefs.ErrIOFailed.Wrap(originalErr)

	assert.EqualValues(t, "Input/output error: original error", newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, originalErr, "original error not set as parent")
	assert.ErrorIs(t, newErr, inodefs.ErrIOFailed, "driver error not set as parent")
	assert.Equal(t, errnos.EIO, newErr.Errno())
}

func TestCastToDriverError(t *testing.T) {
	assert.Nil(t, inodefs.CastToDriverError(nil))

	same := inodefs.ErrOutOfBounds.WithMessage("x")
	assert.Equal(t, same, inodefs.CastToDriverError(same))

	plain := errors.New("disk on fire")
	cast := inodefs.CastToDriverError(plain)
	assert.ErrorIs(t, cast, inodefs.ErrIOFailed)
	assert.ErrorIs(t, cast, plain)
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	kinds := []inodefs.DriverError{
		inodefs.ErrPathNotFound,
		inodefs.ErrAlreadyExists,
		inodefs.ErrNameTooLong,
		inodefs.ErrDirectoryNotEmpty,
		inodefs.ErrOutOfBounds,
		inodefs.ErrOutOfCapacity,
		inodefs.ErrNoFreeBlocks,
		inodefs.ErrNoFreeDescriptors,
		inodefs.ErrMaxSymlinkDepthExceeded,
		inodefs.ErrInvalidArgument,
	}
	for i, left := range kinds {
		for j, right := range kinds {
			if i == j {
				continue
			}
			assert.NotErrorIsf(t, left.WithMessage("x"), right, "%q matched %q", left, right)
		}
	}
}
