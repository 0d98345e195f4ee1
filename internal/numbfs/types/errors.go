package types

import (
	"errors"
	"fmt"
)

// Common errors that can occur when working with a numbfs volume
var (
	// General errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotSupported    = errors.New("operation not supported")
	ErrNotDirectory    = errors.New("not a directory")

	// Block device errors
	ErrIO               = errors.New("I/O error")
	ErrInvalidBlockAddr = errors.New("invalid block address")
	ErrInvalidBlockSize = errors.New("invalid block size")

	// Volume errors
	ErrInvalidMagic = errors.New("invalid magic number")
	ErrCorrupted    = errors.New("corrupted filesystem metadata")
	ErrNoSpace      = errors.New("no free space available")
	ErrTooBig       = errors.New("request exceeds the single-block limit")

	// Parsing errors
	ErrStructTooShort = errors.New("data too short for structure")
)

// FsError represents an error with additional numbfs-specific context
type FsError struct {
	Err       error  // The underlying error
	Operation string // The operation that caused the error
	Object    string // The object on which the operation was performed
	Detail    string // Additional details about the error
}

// Error implements the error interface
func (e *FsError) Error() string {
	if e.Object != "" && e.Detail != "" {
		return fmt.Sprintf("%s: %s [%s]: %v", e.Operation, e.Object, e.Detail, e.Err)
	} else if e.Object != "" {
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.Object, e.Err)
	} else if e.Detail != "" {
		return fmt.Sprintf("%s: %v [%s]", e.Operation, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error
func (e *FsError) Unwrap() error {
	return e.Err
}

// NewFsError creates a new FsError with the given details
func NewFsError(err error, operation string, object string, detail string) error {
	return &FsError{
		Err:       err,
		Operation: operation,
		Object:    object,
		Detail:    detail,
	}
}

// IsIOError returns true if the error is related to I/O against the
// backing store
func IsIOError(err error) bool {
	return errors.Is(err, ErrIO) || errors.Is(err, ErrInvalidBlockAddr)
}

// IsSpaceError returns true if the error indicates an exhausted bitmap
func IsSpaceError(err error) bool {
	return errors.Is(err, ErrNoSpace)
}

// IsInvalidData returns true if the error indicates on-disk corruption
func IsInvalidData(err error) bool {
	return errors.Is(err, ErrInvalidMagic) || errors.Is(err, ErrCorrupted) ||
		errors.Is(err, ErrStructTooShort)
}
