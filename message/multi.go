package message

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/zostay/pantomime"
	"github.com/zostay/pantomime/message/header"
)

// boundaryCounter keeps boundaries made in the same millisecond distinct.
var boundaryCounter atomic.Uint64

// NewBoundary returns a boundary string that is unique within this process
// and very unlikely to appear in any content.
func NewBoundary() string {
	return fmt.Sprintf("Pantomime-%s-%d-%d",
		pantomime.Version,
		time.Now().UnixMilli(),
		boundaryCounter.Add(1))
}

// Multi is the content of a multipart part: a list of sub-parts with an
// optional preamble before the first and epilogue after the last.
//
// Sub-parts read from a source are only read when first asked for.
type Multi struct {
	part     *Part
	boundary string

	// preamble and epilogue are nil until set, in which case they are read
	// from the source.
	preamble *string
	epilogue *string

	loaded   bool
	subParts []*Part
}

// Boundary returns the boundary string separating sub-parts.
func (m *Multi) Boundary() string {
	return m.boundary
}

// setMultipartType chooses a new boundary and sets the Content-Type to the
// given multipart subtype.
func (m *Multi) setMultipartType(subtype string) {
	m.boundary = NewBoundary()
	m.part.header.Set(header.ContentType,
		fmt.Sprintf(`multipart/%s; boundary="%s"`, subtype, m.boundary))
}

// reset replaces the content with an empty multipart of the given subtype.
func (m *Multi) reset(subtype string) {
	m.setMultipartType(subtype)
	m.loaded = true
	m.subParts = nil
	m.preamble = new(string)
	m.epilogue = new(string)
	m.part.markModified()
}

// load reads the sub-parts from the source if that has not happened yet.
func (m *Multi) load() error {
	if m.loaded {
		return nil
	}

	p := m.part
	if p.src == nil {
		m.loaded = true
		return nil
	}

	n, err := p.src.SubPartCount(p.srcPath)
	if err != nil {
		return err
	}

	subs := make([]*Part, 0, n)
	for i := 0; i < n; i++ {
		sub, err := p.src.Part(p.srcPath.Child(i))
		if err != nil {
			return err
		}
		sub.logger = p.logger
		sub.relocate(p.path.Child(i))
		subs = append(subs, sub)
	}

	m.subParts = subs
	m.loaded = true

	return nil
}

// SubParts returns the sub-parts in order.
func (m *Multi) SubParts() ([]*Part, error) {
	if err := m.load(); err != nil {
		return nil, err
	}

	subs := make([]*Part, len(m.subParts))
	copy(subs, m.subParts)
	return subs, nil
}

// SubPartCount returns the number of sub-parts. This does not read the
// sub-parts from the source if they have not been read yet.
func (m *Multi) SubPartCount() (int, error) {
	if m.loaded || m.part.src == nil {
		return len(m.subParts), nil
	}
	return m.part.src.SubPartCount(m.part.srcPath)
}

// SubPart returns the sub-part at index i.
func (m *Multi) SubPart(i int) (*Part, error) {
	if err := m.load(); err != nil {
		return nil, err
	}

	if i < 0 || i >= len(m.subParts) {
		return nil, ErrIndexOutOfRange
	}

	return m.subParts[i], nil
}

// AddSubPart appends a new, empty sub-part and returns it.
func (m *Multi) AddSubPart() (*Part, error) {
	if err := m.load(); err != nil {
		return nil, err
	}

	c := m.part.newChild()
	c.relocate(m.part.path.Child(len(m.subParts)))
	m.subParts = append(m.subParts, c)
	m.part.markModified()

	return c, nil
}

// InsertSubPart inserts a new, empty sub-part at index i and returns it. The
// sub-parts from i on move up by one.
func (m *Multi) InsertSubPart(i int) (*Part, error) {
	if err := m.load(); err != nil {
		return nil, err
	}

	if i < 0 || i > len(m.subParts) {
		return nil, ErrIndexOutOfRange
	}

	c := m.part.newChild()
	m.subParts = append(m.subParts, nil)
	copy(m.subParts[i+1:], m.subParts[i:])
	m.subParts[i] = c
	m.renumber(i)
	m.part.markModified()

	return c, nil
}

// RemoveSubPart removes the sub-part at index i. The sub-parts after it move
// down by one.
func (m *Multi) RemoveSubPart(i int) error {
	if err := m.load(); err != nil {
		return err
	}

	if i < 0 || i >= len(m.subParts) {
		return ErrIndexOutOfRange
	}

	copy(m.subParts[i:], m.subParts[i+1:])
	m.subParts[len(m.subParts)-1] = nil
	m.subParts = m.subParts[:len(m.subParts)-1]
	m.renumber(i)
	m.part.markModified()

	return nil
}

// renumber fixes the paths of the sub-parts from index i on.
func (m *Multi) renumber(i int) {
	for ; i < len(m.subParts); i++ {
		m.subParts[i].relocate(m.part.path.Child(i))
	}
}

// Preamble returns the text before the first boundary. It is always empty
// when there are no sub-parts.
func (m *Multi) Preamble() (string, error) {
	if n, err := m.SubPartCount(); err != nil || n == 0 {
		return "", err
	}

	if m.preamble != nil {
		return *m.preamble, nil
	}

	if m.part.src == nil {
		return "", nil
	}

	return m.part.src.Preamble(m.part.srcPath)
}

// SetPreamble replaces the preamble.
func (m *Multi) SetPreamble(s string) {
	m.preamble = &s
	m.part.markModified()
}

// Epilogue returns the text after the final boundary. It is always empty
// when there are no sub-parts.
func (m *Multi) Epilogue() (string, error) {
	if n, err := m.SubPartCount(); err != nil || n == 0 {
		return "", err
	}

	if m.epilogue != nil {
		return *m.epilogue, nil
	}

	if m.part.src == nil {
		return "", nil
	}

	return m.part.src.Epilogue(m.part.srcPath)
}

// SetEpilogue replaces the epilogue.
func (m *Multi) SetEpilogue(s string) {
	m.epilogue = &s
	m.part.markModified()
}

func (m *Multi) isType(subtype string) bool {
	return m.part.ContentType() == "multipart/"+subtype
}

// IsAlternative returns true for multipart/alternative.
func (m *Multi) IsAlternative() bool { return m.isType("alternative") }

// IsMixed returns true for multipart/mixed.
func (m *Multi) IsMixed() bool { return m.isType("mixed") }

// IsRelated returns true for multipart/related.
func (m *Multi) IsRelated() bool { return m.isType("related") }

// IsDigest returns true for multipart/digest.
func (m *Multi) IsDigest() bool { return m.isType("digest") }

// IsReport returns true for multipart/report.
func (m *Multi) IsReport() bool { return m.isType("report") }

// IsSigned returns true for multipart/signed.
func (m *Multi) IsSigned() bool { return m.isType("signed") }

// IsEncrypted returns true for multipart/encrypted.
func (m *Multi) IsEncrypted() bool { return m.isType("encrypted") }

// Attachments returns every part below this one, at any depth, with an
// attachment disposition.
func (m *Multi) Attachments() ([]*Part, error) {
	var atts []*Part
	err := m.each(func(p *Part) error {
		if p.IsAttachment() {
			atts = append(atts, p)
		}
		return nil
	})
	return atts, err
}

// each calls fn for every part below this one, depth first.
func (m *Multi) each(fn func(*Part) error) error {
	subs, err := m.SubParts()
	if err != nil {
		return err
	}

	for _, sub := range subs {
		if err := fn(sub); err != nil {
			return err
		}
		if sub.multi != nil {
			if err := sub.multi.each(fn); err != nil {
				return err
			}
		}
	}

	return nil
}

// SubPartByContentID returns the direct sub-part with the given Content-ID or
// nil if there is none. Angle brackets and case are ignored.
func (m *Multi) SubPartByContentID(id string) (*Part, error) {
	id = strings.Trim(strings.TrimSpace(id), "<>")
	if id == "" {
		return nil, nil
	}

	subs, err := m.SubParts()
	if err != nil {
		return nil, err
	}

	for _, sub := range subs {
		if strings.EqualFold(sub.ContentID(), id) {
			return sub, nil
		}
	}

	return nil, nil
}
