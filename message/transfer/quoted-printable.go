package transfer

import (
	"bufio"
	"io"
)

const (
	qpLineLength       = 76
	qpHeaderLineLength = 73
	hexDigits          = "0123456789ABCDEF"
)

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

type qpDecoder struct {
	upstream
	br     *bufio.Reader
	header bool
}

// NewQuotedPrintableDecoder returns an io.ReadCloser that decodes the
// quoted-printable read from r. Soft line breaks are removed and "=XX"
// escapes are decoded. An "=" that starts neither is kept as a literal.
func NewQuotedPrintableDecoder(r io.Reader) io.ReadCloser {
	return &qpDecoder{upstream: upstream{r: r}, br: bufio.NewReader(r)}
}

// NewHeaderQuotedPrintableDecoder works like NewQuotedPrintableDecoder, but
// also turns "_" into a space as required inside a Q encoded-word.
func NewHeaderQuotedPrintableDecoder(r io.Reader) io.ReadCloser {
	return &qpDecoder{upstream: upstream{r: r}, br: bufio.NewReader(r), header: true}
}

func (d *qpDecoder) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		c, err := d.br.ReadByte()
		if err != nil {
			if n > 0 && err == io.EOF {
				return n, nil
			}
			return n, err
		}

		switch {
		case c == '=':
			ahead, _ := d.br.Peek(2)
			switch {
			case len(ahead) > 0 && ahead[0] == '\n':
				_, _ = d.br.Discard(1)
				continue
			case len(ahead) > 0 && ahead[0] == '\r':
				if len(ahead) > 1 && ahead[1] == '\n' {
					_, _ = d.br.Discard(2)
				} else {
					_, _ = d.br.Discard(1)
				}
				continue
			case len(ahead) == 2:
				hi, okHi := unhex(ahead[0])
				lo, okLo := unhex(ahead[1])
				if okHi && okLo {
					_, _ = d.br.Discard(2)
					c = hi<<4 | lo
				}
			}
		case c == '_' && d.header:
			c = ' '
		}

		p[n] = c
		n++
	}

	return n, nil
}

type qpEncoder struct {
	upstream
	in      [chunkSize]byte
	col     int
	pending []byte
	header  bool
	limit   int
	eof     bool
}

// NewQuotedPrintableEncoder returns an io.ReadCloser that reads bytes from r
// and returns them quoted-printable encoded. Printable ASCII (other than "=")
// and tab pass through, everything else is escaped as "=XX". A soft line
// break is inserted before any line would exceed 76 characters.
func NewQuotedPrintableEncoder(r io.Reader) io.ReadCloser {
	return &qpEncoder{upstream: upstream{r: r}, limit: qpLineLength}
}

// NewHeaderQuotedPrintableEncoder works like NewQuotedPrintableEncoder, but
// produces the variant used in Q encoded-words: space becomes "_", while tab,
// "_", and "?" are escaped. Lines are held to 73 characters.
func NewHeaderQuotedPrintableEncoder(r io.Reader) io.ReadCloser {
	return &qpEncoder{upstream: upstream{r: r}, limit: qpHeaderLineLength, header: true}
}

func (e *qpEncoder) literal(c byte) bool {
	if e.header {
		return c > ' ' && c <= '~' && c != '=' && c != '_' && c != '?'
	}
	return (c >= ' ' && c <= '~' && c != '=') || c == '\t'
}

func (e *qpEncoder) softBreak(need int) {
	if e.col+need > e.limit-1 {
		e.pending = append(e.pending, '=', '\r', '\n')
		e.col = 0
	}
}

func (e *qpEncoder) encode(b []byte) {
	for _, c := range b {
		switch {
		case e.header && c == ' ':
			e.softBreak(1)
			e.pending = append(e.pending, '_')
			e.col++
		case e.literal(c):
			e.softBreak(1)
			e.pending = append(e.pending, c)
			e.col++
		default:
			e.softBreak(3)
			e.pending = append(e.pending, '=', hexDigits[c>>4], hexDigits[c&0x0F])
			e.col += 3
		}
	}
}

func (e *qpEncoder) Read(p []byte) (int, error) {
	for len(e.pending) == 0 {
		if e.eof {
			return 0, io.EOF
		}

		e.pending = e.pending[:0]
		n, err := e.r.Read(e.in[:])
		e.encode(e.in[:n])
		if err == io.EOF {
			e.eof = true
		} else if err != nil {
			return 0, err
		}
	}

	n := copy(p, e.pending)
	e.pending = e.pending[n:]
	return n, nil
}
