package inodefs

import (
	"fmt"

	"github.com/dargueta/inodefs/errors"
	"github.com/hashicorp/go-multierror"
)

// DriverError is the error type returned by every operation in inodefs. Each
// one carries the errno code describing its kind, and can be specialized with
// extra context without losing its identity:
//
//	err := ErrPathNotFound.WithMessage("/a/b")
//	errors.Is(err, ErrPathNotFound) // true
type DriverError interface {
	error
	Errno() errors.Errno
	WithMessage(message string) DriverError
	Wrap(err error) DriverError
}

type driverError struct {
	errno         errors.Errno
	message       string
	originalError error
}

func newKind(errno errors.Errno, message string) DriverError {
	return driverError{errno: errno, message: message}
}

var ErrPathNotFound = newKind(errors.ENOENT, "Path not found")
var ErrAlreadyExists = newKind(errors.EEXIST, "Already exists")
var ErrNameTooLong = newKind(errors.ENAMETOOLONG, "File name too long")
var ErrDirectoryNotEmpty = newKind(errors.ENOTEMPTY, "Directory not empty")
var ErrOutOfBounds = newKind(errors.ERANGE, "Access out of file bounds")
var ErrOutOfCapacity = newKind(errors.EFBIG, "Inode block capacity exhausted")
var ErrNoFreeBlocks = newKind(errors.ENOSPC, "No free blocks left on device")
var ErrNoFreeDescriptors = newKind(errors.ENFILE, "No free descriptors left")
var ErrMaxSymlinkDepthExceeded = newKind(errors.ELOOP, "Maximum symlink depth exceeded")
var ErrInvalidArgument = newKind(errors.EINVAL, "Invalid argument")
var ErrNotADirectory = newKind(errors.ENOTDIR, "Not a directory")
var ErrIsADirectory = newKind(errors.EISDIR, "Is a directory")
var ErrInvalidFileDescriptor = newKind(errors.EBADF, "Bad file descriptor")
var ErrIOFailed = newKind(errors.EIO, "Input/output error")
var ErrFileSystemCorrupted = newKind(errors.EUCLEAN, "Structure needs cleaning")

// Error implements the `error` object interface. When called, it returns a string
// describing the error.
func (e driverError) Error() string {
	return e.message
}

func (e driverError) Errno() errors.Errno {
	return e.errno
}

func (e driverError) WithMessage(message string) DriverError {
	return driverError{
		errno:         e.errno,
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e driverError) Wrap(err error) DriverError {
	return driverError{
		errno:         e.errno,
		message:       fmt.Sprintf("%s: %s", e.message, err.Error()),
		originalError: multierror.Append(e, err),
	}
}

func (e driverError) Unwrap() error {
	return e.originalError
}

// CastToDriverError returns `err` unchanged if it's already a [DriverError],
// and wraps it with [ErrIOFailed] otherwise. nil stays nil.
func CastToDriverError(err error) DriverError {
	if err == nil {
		return nil
	}
	driverErr, ok := err.(DriverError)
	if ok {
		return driverErr
	}
	return ErrIOFailed.Wrap(err)
}
