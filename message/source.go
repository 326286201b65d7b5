package message

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/zostay/pantomime/mimepath"
)

// Source is where the bytes of a message live. A Source answers questions
// about the parts of the message by path, reading only what it must to
// answer. Parts read from a Source keep a reference to it and go back to it
// for anything they have not been asked to change.
//
// Failures reading the bytes are returned as *IOError. A malformed message is
// never an error.
type Source interface {
	// Load returns the message at the root of the source.
	Load() (*Message, error)

	// SubPartCount returns the number of parts within the multipart at the
	// given path, or 0 if it is not multipart.
	SubPartCount(p mimepath.Path) (int, error)

	// Part returns the part at the given path.
	Part(p mimepath.Path) (*Part, error)

	// Preamble returns the text between the header and first boundary of the
	// multipart at the given path.
	Preamble(p mimepath.Path) (string, error)

	// Epilogue returns the text after the final boundary of the multipart at
	// the given path.
	Epilogue(p mimepath.Path) (string, error)

	// Body returns a new reader over the transfer-encoded body of the part at
	// the given path.
	Body(p mimepath.Path) (io.ReadCloser, error)

	// TransferEncodedBodySize returns the length of the transfer-encoded body
	// of the part at the given path. It is never negative except for -1 when
	// the length is unknown.
	TransferEncodedBodySize(p mimepath.Path) (int64, error)

	// TransferEncodedSize returns the length of the part at the given path,
	// header included, or -1 when the length is unknown.
	TransferEncodedSize(p mimepath.Path) (int64, error)

	// Free releases any resources held. It is safe to call more than once.
	Free() error

	// Save replaces the bytes of the source with the bytes read from r.
	Save(r io.Reader) error
}

// Opener returns a fresh reader over the same content each time it is
// called.
type Opener func() (io.ReadCloser, error)

// OpenString returns an Opener for the bytes of s.
func OpenString(s string) Opener {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(s)), nil
	}
}

// OpenBytes returns an Opener for b. The slice must not be modified
// afterward.
func OpenBytes(b []byte) Opener {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(b)), nil
	}
}

// OpenFile returns an Opener that opens the named file.
func OpenFile(path string) Opener {
	return func() (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, &IOError{Op: "open", Offset: -1, Err: err}
		}
		return f, nil
	}
}

// OpenProducer returns an Opener whose content is written by produce, which
// is run again for each reader opened. See Produce.
func OpenProducer(ctx context.Context, produce func(w io.Writer) error) Opener {
	return func() (io.ReadCloser, error) {
		return Produce(ctx, produce), nil
	}
}

// rfc822Loader opens the message held by a message/rfc822 part. It is set by
// RegisterRFC822Loader.
var rfc822Loader func(p *Part) (*Message, error)

// RegisterRFC822Loader sets the function used by Single.AsMessage to read
// the message held in a message/rfc822 part. The source package registers
// itself here when imported.
func RegisterRFC822Loader(load func(p *Part) (*Message, error)) {
	rfc822Loader = load
}
