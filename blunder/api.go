// Copyright (c) 2015-2021, NVIDIA CORPORATION.
// SPDX-License-Identifier: Apache-2.0

// Package blunder provides error-handling wrappers
//
// These wrappers allow callers to provide additional information in Go errors
// while still conforming to the Go error interface.
//
// This package provides APIs to add an errno-style TreeError code to regular Go errors.
//
// This package is currently implemented on top of the ansel1/merry package:
//   https://github.com/ansel1/merry
//
//   merry comes with built-in support for adding information to errors:
//    - stacktraces
//    - overriding the error message
//    - your own additional information
//
//   From merry godoc:
//     You can add any context information to an error with `e = merry.WithValue(e, "code", 12345)`
//     You can retrieve that value with `v, _ := merry.Value(e, "code").(int)`
//
package blunder

import (
	"fmt"

	"github.com/ansel1/merry"
	"golang.org/x/sys/unix"

	"github.com/NVIDIA/btreeindex/logger"
)

// TreeError values returned by the index packages.
//
// There are two groups of constants:
//  - constants that correspond to linux/POSIX errnos as defined in errno.h
//  - index-specific constants for errors not covered in the errno space
//
// Key misses are not errors. Search, Contains and Delete report them with a bool.
//
type TreeError int

const (
	NotFoundError       TreeError = TreeError(int(unix.ENOENT)) // No such index kind
	InvalidArgError     TreeError = TreeError(int(unix.EINVAL)) // Invalid argument
	NotImplementedError TreeError = TreeError(int(unix.ENOSYS)) // Function not implemented
)

// Errors that map to constants already defined above
const (
	InvalidDegreeError TreeError = InvalidArgError
	InvalidOrderError  TreeError = InvalidArgError
)

// Success error
const SuccessError TreeError = 0

const ( // reset iota to 0
	// Errors that are internal/specific to the index packages
	KeyTypeError TreeError = 1000 + iota
	InvariantViolationError
)

// Default errno values for success and failure
const successErrno = 0
const failureErrno = -1

const errnoKey = "errno"

// Value returns the int value for the specified TreeError constant
func (err TreeError) Value() int {
	return int(err)
}

func (err TreeError) String() string {
	switch err {
	case SuccessError:
		return "SuccessError"
	case NotFoundError:
		return "NotFoundError"
	case InvalidArgError:
		return "InvalidArgError"
	case NotImplementedError:
		return "NotImplementedError"
	case KeyTypeError:
		return "KeyTypeError"
	case InvariantViolationError:
		return "InvariantViolationError"
	default:
		return fmt.Sprintf("TreeError(%d)", int(err))
	}
}

// NewError creates a new merry/blunder.TreeError-annotated error using the given
// format string and arguments.
func NewError(errValue TreeError, format string, a ...interface{}) error {
	return merry.WrapSkipping(fmt.Errorf(format, a...), 1).WithValue(errnoKey, int(errValue))
}

// AddError is used to add TreeError detail to a Go error.
//
// NOTE: merry replaces an earlier value with the new one. That is
//       logged since it usually means an error was annotated twice.
//
func AddError(e error, errValue TreeError) error {
	if nil == e {
		return merry.New("regular error").WithValue(errnoKey, int(errValue))
	}

	prevValue := Errno(e)
	if (successErrno != prevValue) && (failureErrno != prevValue) && (int(errValue) != prevValue) {
		logger.Warnf("replacing error value %v with value %v for error %v", prevValue, int(errValue), e)
	}

	return merry.WrapSkipping(e, 1).WithValue(errnoKey, int(errValue))
}

func hasErrnoValue(e error) bool {
	return nil != merry.Value(e, errnoKey)
}

// Errno extracts errno from the error, if it was previously wrapped.
// Otherwise a default value is returned.
//
func Errno(e error) int {
	if nil == e {
		return successErrno
	}

	errno, ok := merry.Value(e, errnoKey).(int)
	if !ok {
		return failureErrno
	}

	return errno
}

// ErrorString returns e.Error() followed by the error value, if one was set.
func ErrorString(e error) string {
	if nil == e {
		return ""
	}

	if !hasErrnoValue(e) {
		return e.Error()
	}

	return fmt.Sprintf("%s. Error Value: %v", e.Error(), TreeError(Errno(e)))
}

// Is checks if an error matches a particular TreeError
//
// NOTE: Because the value of the underlying errno is used to do this check, one cannot
//       use this API to distinguish between TreeErrors that use the same errno value.
//       IOW, it can't tell the difference between InvalidDegreeError/InvalidArgError.
//
func Is(e error, theError TreeError) bool {
	return Errno(e) == theError.Value()
}

// IsNot checks if an error is NOT a particular TreeError
func IsNot(e error, theError TreeError) bool {
	return Errno(e) != theError.Value()
}

// IsSuccess checks if an error is the success TreeError
func IsSuccess(e error) bool {
	return Errno(e) == successErrno
}

// IsNotSuccess checks if an error is NOT the success TreeError
func IsNotSuccess(e error) bool {
	return Errno(e) != successErrno
}

// Location returns the file and line number of the code that generated the error.
// Returns zero values if e has no stacktrace.
func Location(e error) (file string, line int) {
	file, line = merry.Location(e)
	return
}

// SourceLine returns the string representation of Location's result
func SourceLine(e error) string {
	return merry.SourceLine(e)
}

// Details wraps merry.Details, which returns all error details including stacktrace in a string.
func Details(e error) string {
	return merry.Details(e)
}
