package message

import (
	"errors"
	"fmt"
)

// Errors returned when a part is used in a way its content does not allow.
var (
	// ErrNotMultipart is returned when a multipart operation is attempted on a
	// part holding single content.
	ErrNotMultipart = errors.New("part is not multipart")

	// ErrNotSingle is returned when a single part operation is attempted on a
	// multipart part.
	ErrNotSingle = errors.New("part is not a single part")

	// ErrIndexOutOfRange is returned when a sub-part index does not name a
	// sub-part.
	ErrIndexOutOfRange = errors.New("sub-part index out of range")

	// ErrNoSource is returned when an operation needs the source a part was
	// read from, but there is none.
	ErrNoSource = errors.New("part has no source")
)

// IOError is returned when reading or writing the bytes behind a message
// fails. Malformed messages never cause errors. Only failures of the
// underlying storage do.
type IOError struct {
	// Op names the operation that failed, such as "seek" or "read".
	Op string

	// Offset is the byte offset into the source where the failure happened,
	// or -1 if not known.
	Offset int64

	// Err is the cause.
	Err error
}

// Error returns the error message.
func (e *IOError) Error() string {
	if e.Offset < 0 {
		return fmt.Sprintf("message %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("message %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

// Unwrap returns the cause.
func (e *IOError) Unwrap() error {
	return e.Err
}
