package transfer

import "io"

// upstream holds the reader a codec pulls from and closes it at most once.
type upstream struct {
	r      io.Reader
	closed bool
}

// Close will close the nested reader if it is an io.Closer and has not been
// closed already.
func (u *upstream) Close() error {
	if u.closed {
		return nil
	}
	u.closed = true

	if c, isCloser := u.r.(io.Closer); isCloser {
		return c.Close()
	}
	return nil
}

// asIs is the pass through codec.
type asIs struct {
	upstream
}

func (a *asIs) Read(p []byte) (int, error) {
	return a.r.Read(p)
}

// NewAsIsEncoder returns an io.ReadCloser that reads bytes as-is.
func NewAsIsEncoder(r io.Reader) io.ReadCloser {
	return &asIs{upstream{r: r}}
}

// NewAsIsDecoder returns an io.ReadCloser that reads bytes as-is.
func NewAsIsDecoder(r io.Reader) io.ReadCloser {
	return &asIs{upstream{r: r}}
}
