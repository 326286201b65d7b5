package message

import (
	"io"
	"log/slog"
	"strings"

	"github.com/zostay/pantomime/message/header"
	"github.com/zostay/pantomime/mimepath"
)

// Part is a node in the tree of a message. It has a header and either single
// content or a list of sub-parts, never both.
//
// A part read from a Source only records what is changed. Anything not
// changed is read from the source when asked for. The source itself is never
// written to, except by Save.
type Part struct {
	header *header.Header

	// path is the location of this part in the tree as it is now. srcPath is
	// where its bytes are found in src, which may differ once parts have been
	// inserted, removed or moved.
	path    mimepath.Path
	srcPath mimepath.Path
	src     Source

	modified bool
	logger   *slog.Logger

	single *Single
	multi  *Multi
}

// NewPart returns an empty part at the root path with single content and no
// source.
func NewPart(opts ...Option) *Part {
	o := applyOptions(opts)
	p := &Part{
		header: &header.Header{},
		path:   mimepath.Root(),
		logger: o.logger,
	}
	p.single = &Single{part: p}
	return p
}

// NewSourcedPart returns a part read from the given source at the given path.
// It is multipart when the header declared a boundary, even an empty one.
// Sources use this to build the parts they return.
func NewSourcedPart(
	src Source,
	path mimepath.Path,
	h *header.Header,
	boundary string,
	multipart bool,
	opts ...Option,
) *Part {
	o := applyOptions(opts)
	p := &Part{
		header:  h,
		path:    path,
		srcPath: path,
		src:     src,
		logger:  o.logger,
	}

	if multipart {
		p.multi = &Multi{part: p, boundary: boundary}
	} else {
		p.single = &Single{part: p}
	}

	return p
}

// newChild returns an empty part with single content that is not yet attached
// to any parent.
func (p *Part) newChild() *Part {
	c := &Part{
		header:   &header.Header{},
		logger:   p.logger,
		modified: true,
	}
	c.single = &Single{part: c}
	return c
}

// Path returns the location of this part in its tree.
func (p *Part) Path() mimepath.Path {
	return p.path
}

// Source returns the source this part was read from or nil.
func (p *Part) Source() Source {
	return p.src
}

// IsModified returns true if the part has been changed since it was read or
// if it was created new. Once true, it stays true.
func (p *Part) IsModified() bool {
	return p.modified
}

func (p *Part) markModified() {
	p.modified = true
}

// IsMultipart returns true if the part holds sub-parts.
func (p *Part) IsMultipart() bool {
	return p.multi != nil
}

// Single returns the single content of the part or nil if it is multipart.
func (p *Part) Single() *Single {
	return p.single
}

// Multi returns the sub-parts of the part or nil if it holds single content.
func (p *Part) Multi() *Multi {
	return p.multi
}

// SpecializeAsSingle switches the part to hold single content, dropping any
// sub-parts. It does nothing if the part already holds single content.
func (p *Part) SpecializeAsSingle() *Single {
	if p.single == nil {
		p.multi = nil
		p.single = &Single{part: p}
		p.markModified()
	}
	return p.single
}

// SpecializeAsMulti switches the part to hold sub-parts, dropping any single
// content. A new boundary is chosen if the part did not have one. It does
// nothing if the part is already multipart.
func (p *Part) SpecializeAsMulti() *Multi {
	if p.multi == nil {
		p.single = nil
		p.multi = &Multi{part: p, loaded: true}
		p.multi.setMultipartType("mixed")
		p.markModified()
	}
	return p.multi
}

// Header returns the header of the part. Changes made directly to the header
// are not tracked. Use the header methods of Part to change it.
func (p *Part) Header() *header.Header {
	return p.header
}

// AddHeader appends a header field.
func (p *Part) AddHeader(name, value string) {
	p.header.Add(name, value)
	p.markModified()
}

// SetHeader replaces all header fields with the given name with one field.
func (p *Part) SetHeader(name, value string) {
	p.header.Set(name, value)
	p.markModified()
}

// RemoveHeader deletes all header fields with the given name.
func (p *Part) RemoveHeader(name string) {
	_ = p.header.Remove(name)
	p.markModified()
}

// GetFirstHeader returns the value of the first header field with the given
// name. The name is matched case-insensitively.
func (p *Part) GetFirstHeader(name string) (string, error) {
	return p.header.Get(name)
}

// ContentType returns the lower cased media type or an empty string if
// there is none.
func (p *Part) ContentType() string {
	mt, _ := p.header.GetMediaType()
	return mt
}

// Charset returns the charset parameter of the Content-Type header.
func (p *Part) Charset() string {
	cs, _ := p.header.GetCharset()
	return cs
}

// IsAttachment returns true if the part has an attachment disposition.
func (p *Part) IsAttachment() bool {
	return p.header.IsAttachment()
}

// ContentID returns the Content-ID of the part without angle brackets.
func (p *Part) ContentID() string {
	id, _ := p.header.GetContentID()
	return id
}

// Filialize moves the content of this part into a new first sub-part and
// turns this part into a multipart/mixed with a new boundary. This is how an
// attachment is added to a message that did not have any. It does nothing if
// the part is already multipart/mixed.
//
// The Content-* header fields move down with the content. The new sub-part
// keeps reading from the source for anything that was not changed.
func (p *Part) Filialize() error {
	if p.multi != nil && p.ContentType() == "multipart/mixed" {
		return nil
	}

	c := &Part{
		header:   &header.Header{},
		src:      p.src,
		srcPath:  p.srcPath,
		logger:   p.logger,
		modified: true,
	}

	for _, f := range p.header.Fields() {
		if strings.HasPrefix(strings.ToLower(f.Name()), "content-") {
			c.header.AddField(f.Clone())
		}
	}
	for _, name := range c.header.Names() {
		_ = p.header.Remove(name)
	}

	if p.multi != nil {
		c.multi = p.multi
		c.multi.part = c
	} else {
		c.single = p.single
		c.single.part = c
	}

	p.single = nil
	p.multi = &Multi{
		part:     p,
		loaded:   true,
		subParts: []*Part{c},
	}
	p.multi.preamble = new(string)
	p.multi.epilogue = new(string)
	p.multi.setMultipartType("mixed")
	p.markModified()

	c.relocate(p.path.Child(0))

	return nil
}

// relocate moves this part, and every sub-part loaded so far, to a new path.
func (p *Part) relocate(path mimepath.Path) {
	p.path = path
	if p.multi == nil {
		return
	}
	for i, c := range p.multi.subParts {
		c.relocate(path.Child(i))
	}
}

// TransferEncodedSize returns the length in bytes of the part as it will be
// written, header included. For a part that has not been modified, this is
// answered by the source. Otherwise, the part is serialized and counted.
func (p *Part) TransferEncodedSize() (int64, error) {
	if p.src != nil && !p.treeModified() {
		return p.src.TransferEncodedSize(p.srcPath)
	}

	r := NewReader(p)
	defer func() { _ = r.Close() }()

	return io.Copy(io.Discard, r)
}

// treeModified returns true if this part or any loaded sub-part has been
// modified.
func (p *Part) treeModified() bool {
	if p.modified {
		return true
	}
	if p.multi == nil {
		return false
	}
	for _, c := range p.multi.subParts {
		if c.treeModified() {
			return true
		}
	}
	return false
}

// WriteTo writes the part to w in transport form.
func (p *Part) WriteTo(w io.Writer) (int64, error) {
	r := NewReader(p)
	defer func() { _ = r.Close() }()

	return io.Copy(w, r)
}

// Reader returns a reader over the part in transport form.
func (p *Part) Reader() io.ReadCloser {
	return NewReader(p)
}

// searchForInlinePart finds the first part within this one that has the
// given media type and is not an attachment. A part with no Content-Type
// matches any media type. A multipart with no sub-parts is returned as-is.
func (p *Part) searchForInlinePart(mediaType string) (*Part, error) {
	if p.multi != nil || strings.HasPrefix(p.ContentType(), "multipart/") {
		if p.multi == nil {
			return p, nil
		}

		subs, err := p.multi.SubParts()
		if err != nil {
			return nil, err
		}

		if len(subs) == 0 {
			return p, nil
		}

		for _, sub := range subs {
			found, err := sub.searchForInlinePart(mediaType)
			if err != nil {
				return nil, err
			}
			if found != nil {
				return found, nil
			}
		}

		return nil, nil
	}

	if p.IsAttachment() {
		return nil, nil
	}

	if ct := p.ContentType(); ct == "" || ct == mediaType {
		return p, nil
	}

	return nil, nil
}

// setContentType writes a Content-Type with the given media type and, if not
// empty, a quoted charset.
func (p *Part) setContentType(mediaType, charset string) {
	v := mediaType
	if charset != "" {
		v += `; charset="` + charset + `"`
	}
	p.header.Set(header.ContentType, v)
}
