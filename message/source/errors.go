package source

import (
	"errors"
	"io"

	"github.com/zostay/pantomime/message"
)

var (
	// ErrFreed is returned by any operation on a Stream after Free.
	ErrFreed = errors.New("source has been freed")

	// ErrReadOnly is returned by Save when the source cannot be written.
	ErrReadOnly = errors.New("source is read-only")
)

// ioError builds a *message.IOError unless err already is one. io.EOF is
// returned as-is.
func ioError(op string, offset int64, err error) error {
	if err == nil || err == io.EOF {
		return err
	}

	var ioe *message.IOError
	if errors.As(err, &ioe) {
		return err
	}

	return &message.IOError{Op: op, Offset: offset, Err: err}
}
