package source

import (
	"bytes"
	"io"
	"sync"
)

// ByteSource is the storage a Stream indexes. ReadAt follows the io.ReaderAt
// contract. A ByteSource may also provide a Save(io.Reader) error method to
// replace its bytes, in which case Stream.Save uses it.
type ByteSource interface {
	io.ReaderAt

	// Size returns the total number of bytes.
	Size() (int64, error)

	// Close releases the storage.
	Close() error
}

// saver is implemented by a ByteSource that can be written.
type saver interface {
	Save(r io.Reader) error
}

// memory is a ByteSource over a byte slice.
type memory struct {
	mu sync.RWMutex
	b  []byte
}

func (m *memory) ReadAt(p []byte, off int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return bytes.NewReader(m.b).ReadAt(p, off)
}

func (m *memory) Size() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.b)), nil
}

func (m *memory) Close() error {
	return nil
}

// Save reads all of r before replacing the bytes, since r is most likely
// reading from them.
func (m *memory) Save(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.b = b
	m.mu.Unlock()

	return nil
}

// NewBytes returns a Stream over a message held in memory. The slice must
// not be modified afterward. Save replaces the bytes held.
func NewBytes(b []byte, opts ...Option) *Stream {
	return New(&memory{b: b}, opts...)
}

// NewString returns a Stream over a message held in a string.
func NewString(s string, opts ...Option) *Stream {
	return NewBytes([]byte(s), opts...)
}

// lockedReaderAt serializes reads so that a ByteSource that is not safe for
// concurrent use can serve several open body readers at once.
type lockedReaderAt struct {
	mu *sync.Mutex
	r  io.ReaderAt
}

func (l lockedReaderAt) ReadAt(p []byte, off int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.r.ReadAt(p, off)
	return n, ioError("read", off+int64(n), err)
}
