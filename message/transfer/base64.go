package transfer

import "io"

const (
	base64Alphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	base64Pad        = '='
	base64LineLength = 76
	invalidSymbol    = 0xFF
	chunkSize        = 3 * 256
)

// base64Values maps each byte to its 6-bit value or invalidSymbol.
var base64Values = func() [256]byte {
	var v [256]byte
	for i := range v {
		v[i] = invalidSymbol
	}
	for i := 0; i < len(base64Alphabet); i++ {
		v[base64Alphabet[i]] = byte(i)
	}
	return v
}()

type base64Decoder struct {
	upstream
	in      [chunkSize]byte
	unread  []byte
	group   [4]byte
	n       int
	out     [3]byte
	pending []byte
	done    bool
	err     error
}

// NewBase64Decoder returns an io.ReadCloser that decodes the base64 read from
// r. Anything outside the base64 alphabet is skipped. The first "=" ends the
// content, even if more data follows. A trailing group that is short of four
// symbols is treated as if it had been padded.
func NewBase64Decoder(r io.Reader) io.ReadCloser {
	return &base64Decoder{upstream: upstream{r: r}}
}

// flush decodes the first k symbols of the current group.
func (d *base64Decoder) flush(k int) {
	var val uint32
	for i := 0; i < 4; i++ {
		val <<= 6
		if i < k {
			val |= uint32(d.group[i])
		}
	}

	d.out[0] = byte(val >> 16)
	d.out[1] = byte(val >> 8)
	d.out[2] = byte(val)
	d.pending = d.out[:k*6/8]
	d.n = 0
}

// next returns the next raw byte from upstream. The boolean is false once
// upstream is exhausted or failed.
func (d *base64Decoder) next() (byte, bool) {
	for len(d.unread) == 0 {
		if d.err != nil {
			return 0, false
		}

		n, err := d.r.Read(d.in[:])
		d.unread = d.in[:n]
		if err != nil {
			d.err = err
		}
	}

	c := d.unread[0]
	d.unread = d.unread[1:]
	return c, true
}

func (d *base64Decoder) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(d.pending) > 0 {
			c := copy(p[n:], d.pending)
			d.pending = d.pending[c:]
			n += c
			continue
		}

		if d.done {
			break
		}

		c, ok := d.next()
		if !ok {
			d.done = true
			d.flush(d.n)
			continue
		}

		if c == base64Pad {
			d.done = true
			d.flush(d.n)
			continue
		}

		v := base64Values[c]
		if v == invalidSymbol {
			continue
		}

		d.group[d.n] = v
		d.n++
		if d.n == 4 {
			d.flush(4)
		}
	}

	if n == 0 && d.done && len(d.pending) == 0 {
		if d.err != nil && d.err != io.EOF {
			return 0, d.err
		}
		return 0, io.EOF
	}

	return n, nil
}

type base64Encoder struct {
	upstream
	in      [chunkSize]byte
	have    int
	col     int
	pending []byte
	eof     bool
}

// NewBase64Encoder returns an io.ReadCloser that reads binary data from r and
// returns it base64 encoded, with a CRLF line break after every 76 characters
// of output.
func NewBase64Encoder(r io.Reader) io.ReadCloser {
	return &base64Encoder{upstream: upstream{r: r}}
}

func (e *base64Encoder) emit(c byte) {
	if e.col == base64LineLength {
		e.pending = append(e.pending, '\r', '\n')
		e.col = 0
	}
	e.pending = append(e.pending, c)
	e.col++
}

func (e *base64Encoder) encode(b []byte) {
	for len(b) > 0 {
		var g [3]byte
		k := copy(g[:], b)
		b = b[k:]

		val := uint32(g[0])<<16 | uint32(g[1])<<8 | uint32(g[2])
		for i := 0; i < 4; i++ {
			if i <= k {
				e.emit(base64Alphabet[(val>>(18-6*uint(i)))&0x3F])
			} else {
				e.emit(base64Pad)
			}
		}
	}
}

func (e *base64Encoder) fill() error {
	n, err := e.r.Read(e.in[e.have:])
	e.have += n

	full := e.have - e.have%3
	e.encode(e.in[:full])
	e.have = copy(e.in[:], e.in[full:e.have])

	if err == io.EOF {
		e.encode(e.in[:e.have])
		e.have = 0
		e.eof = true
		return nil
	}

	return err
}

func (e *base64Encoder) Read(p []byte) (int, error) {
	for len(e.pending) == 0 {
		if e.eof {
			return 0, io.EOF
		}

		e.pending = e.pending[:0]
		if err := e.fill(); err != nil {
			return 0, err
		}
	}

	n := copy(p, e.pending)
	e.pending = e.pending[n:]
	return n, nil
}
