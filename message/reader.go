package message

import (
	"io"
	"strings"
)

// segment produces the next piece of serialized output. It may return a
// reader to drain, further segments to run before any that were already
// queued, or both.
type segment func() (io.ReadCloser, []segment, error)

// Reader serializes a part tree in a single forward pass. Nothing is read
// from a source or from new content until the reader reaches it.
type Reader struct {
	cur   io.ReadCloser
	queue []segment
	err   error
}

// NewReader returns a reader over p in transport form: the header, then the
// transfer-encoded body or, for a multipart, the sub-parts between
// boundaries.
func NewReader(p *Part) *Reader {
	return &Reader{queue: partSegments(p)}
}

// Read implements io.Reader.
func (r *Reader) Read(b []byte) (int, error) {
	for {
		if r.err != nil {
			return 0, r.err
		}

		if r.cur != nil {
			n, err := r.cur.Read(b)
			if err == io.EOF {
				_ = r.cur.Close()
				r.cur = nil
				if n > 0 {
					return n, nil
				}
				continue
			}
			if err != nil {
				r.err = err
			}
			return n, err
		}

		if len(r.queue) == 0 {
			return 0, io.EOF
		}

		next := r.queue[0]
		r.queue = r.queue[1:]

		rc, more, err := next()
		if err != nil {
			r.err = err
			return 0, err
		}

		if len(more) > 0 {
			r.queue = append(more, r.queue...)
		}
		r.cur = rc
	}
}

// Close releases the reader being drained, if any.
func (r *Reader) Close() error {
	r.queue = nil
	if r.cur == nil {
		return nil
	}
	err := r.cur.Close()
	r.cur = nil
	return err
}

// literal is a segment that emits s.
func literal(s string) segment {
	return func() (io.ReadCloser, []segment, error) {
		return io.NopCloser(strings.NewReader(s)), nil, nil
	}
}

// partSegments returns the segments that serialize p.
func partSegments(p *Part) []segment {
	segs := []segment{literal(p.header.String())}

	if p.single != nil {
		segs = append(segs, func() (io.ReadCloser, []segment, error) {
			rc, err := p.single.TransferEncodedBody()
			return rc, nil, err
		})
		return segs
	}

	return append(segs, func() (io.ReadCloser, []segment, error) {
		return multiSegments(p)
	})
}

// multiSegments lays out the sub-parts of p between its boundaries.
func multiSegments(p *Part) (io.ReadCloser, []segment, error) {
	m := p.multi

	subs, err := m.SubParts()
	if err != nil {
		return nil, nil, err
	}

	if len(subs) == 0 {
		// a multipart that never had parts keeps whatever body it had
		if p.src != nil && !p.modified {
			rc, err := p.src.Body(p.srcPath)
			return rc, nil, err
		}
		return nil, nil, nil
	}

	pre, err := m.Preamble()
	if err != nil {
		return nil, nil, err
	}

	epi, err := m.Epilogue()
	if err != nil {
		return nil, nil, err
	}

	var segs []segment
	if pre != "" {
		segs = append(segs, literal(pre+"\r\n\r\n"))
	}

	for _, sub := range subs {
		segs = append(segs, literal("--"+m.boundary+"\r\n"))
		segs = append(segs, partSegments(sub)...)
		segs = append(segs, literal("\r\n\r\n"))
	}

	segs = append(segs, literal("--"+m.boundary+"--"))

	if epi != "" {
		segs = append(segs, literal("\r\n\r\n"+epi+"\r\n"))
	}

	return nil, segs, nil
}
