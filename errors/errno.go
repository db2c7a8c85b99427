// Package errors maps the POSIX errno codes used by inodefs to their canonical
// messages. The syscall package doesn't define all of these on every platform
// (EUCLEAN in particular), so the values are fixed here.
package errors

import (
	"fmt"
)

type Errno int

// The numeric values follow Linux so that the CLI can hand them back as exit
// statuses that mean something to a shell user.
const (
	EOK          Errno = 0
	ENOENT       Errno = 2
	EIO          Errno = 5
	EBADF        Errno = 9
	EEXIST       Errno = 17
	ENOTDIR      Errno = 20
	EISDIR       Errno = 21
	EINVAL       Errno = 22
	ENFILE       Errno = 23
	EFBIG        Errno = 27
	ENOSPC       Errno = 28
	ERANGE       Errno = 34
	ENAMETOOLONG Errno = 36
	ENOTEMPTY    Errno = 39
	ELOOP        Errno = 40
	EUCLEAN      Errno = 117
)

var errorMessagesByCode = map[Errno]string{
	EOK:          "Success",
	ENOENT:       "No such file or directory",
	EIO:          "Input/output error",
	EBADF:        "Bad file descriptor",
	EEXIST:       "File exists",
	ENOTDIR:      "Not a directory",
	EISDIR:       "Is a directory",
	EINVAL:       "Invalid argument",
	ENFILE:       "Too many open files in system",
	EFBIG:        "File too large",
	ENOSPC:       "No space left on device",
	ERANGE:       "Numerical result out of range",
	ENAMETOOLONG: "File name too long",
	ENOTEMPTY:    "Directory not empty",
	ELOOP:        "Too many levels of symbolic links",
	EUCLEAN:      "Structure needs cleaning",
}

// StrError returns the standard message for an errno code.
func StrError(code Errno) string {
	message, ok := errorMessagesByCode[code]
	if ok {
		return message
	}
	return fmt.Sprintf("error %d not recognized.", int(code))
}

func (code Errno) String() string {
	return StrError(code)
}
