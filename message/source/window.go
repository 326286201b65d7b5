package source

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/zostay/pantomime/message"
)

// window is a ByteSource over a stream that can only be read forward but can
// be opened again from the start. It keeps a window of the stream in memory.
// Reading before the window opens the stream again. Reading after it skips
// forward.
type window struct {
	open   message.Opener
	size   int
	logger *slog.Logger

	rc  io.ReadCloser
	pos int64 // bytes consumed from rc

	start int64 // offset of buf in the stream
	buf   []byte

	length int64
}

// NewWindow returns a Stream over the message read from open, which must
// return the same bytes each time it is called. The stream is opened again
// whenever the index must go back further than the window it keeps in
// memory.
//
// Save returns ErrReadOnly unless WithSaveFunc is given.
func NewWindow(open message.Opener, opts ...Option) *Stream {
	o := applyOptions(opts)
	return New(&window{
		open:   open,
		size:   o.windowSize,
		logger: o.logger,
		length: -1,
	}, opts...)
}

// reopen starts reading the stream from the beginning.
func (w *window) reopen() error {
	if w.rc != nil {
		_ = w.rc.Close()
		w.rc = nil
	}

	rc, err := w.open()
	if err != nil {
		return errors.Wrap(err, "unable to open stream")
	}

	w.logger.Debug("opened stream")

	w.rc = rc
	w.pos = 0
	return nil
}

// fill loads the window starting at off.
func (w *window) fill(off int64) error {
	if w.rc == nil || off < w.pos {
		if err := w.reopen(); err != nil {
			return err
		}
	}

	if skip := off - w.pos; skip > 0 {
		n, err := io.CopyN(io.Discard, w.rc, skip)
		w.pos += n
		if err != nil && err != io.EOF {
			return errors.Wrapf(err, "unable to skip to offset %d", off)
		}
	}

	if cap(w.buf) < w.size {
		w.buf = make([]byte, w.size)
	}
	w.buf = w.buf[:w.size]

	n, err := io.ReadFull(w.rc, w.buf)
	w.buf = w.buf[:n]
	w.start = w.pos
	w.pos += int64(n)

	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return errors.Wrapf(err, "unable to read window at offset %d", w.start)
	}

	return nil
}

func (w *window) inWindow(off int64) bool {
	return off >= w.start && off < w.start+int64(len(w.buf))
}

func (w *window) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.Errorf("negative offset %d", off)
	}

	var n int
	for n < len(p) {
		at := off + int64(n)
		if !w.inWindow(at) {
			if err := w.fill(at); err != nil {
				return n, err
			}
			if !w.inWindow(at) {
				return n, io.EOF
			}
		}

		n += copy(p[n:], w.buf[at-w.start:])
	}

	return n, nil
}

// Size counts the bytes by reading a fresh copy of the stream to the end. It
// is only counted once.
func (w *window) Size() (int64, error) {
	if w.length >= 0 {
		return w.length, nil
	}

	rc, err := w.open()
	if err != nil {
		return 0, errors.Wrap(err, "unable to open stream")
	}
	defer func() { _ = rc.Close() }()

	n, err := io.Copy(io.Discard, rc)
	if err != nil {
		return 0, errors.Wrap(err, "unable to count stream length")
	}

	w.length = n
	return n, nil
}

// reset drops the window, the open stream and the length, so the stream is
// read fresh the next time it is needed.
func (w *window) reset() {
	if w.rc != nil {
		_ = w.rc.Close()
		w.rc = nil
	}
	w.pos = 0
	w.start = 0
	w.buf = w.buf[:0]
	w.length = -1
}

func (w *window) Close() error {
	w.buf = nil
	if w.rc == nil {
		return nil
	}
	err := w.rc.Close()
	w.rc = nil
	return err
}
