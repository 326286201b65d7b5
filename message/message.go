package message

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/pantomime"
	"github.com/zostay/pantomime/message/header"
	"github.com/zostay/pantomime/mimepath"
)

// Message is the root part of a message tree.
type Message struct {
	*Part
}

// New returns an empty message with MIME-Version, X-Mailer and Date set.
func New(opts ...Option) *Message {
	m := &Message{Part: NewPart(opts...)}
	m.header.Set(header.MIMEVersion, "1.0")
	m.header.Set(header.XMailer, pantomime.Mailer())
	m.header.SetDate(time.Now())
	m.markModified()
	return m
}

// Load returns the message held by src.
func Load(src Source) (*Message, error) {
	return src.Load()
}

// Subject returns the decoded Subject header field.
func (m *Message) Subject() (string, error) {
	return m.header.GetSubject()
}

// Date returns the Date header field as a time.
func (m *Message) Date() (time.Time, error) {
	return m.header.GetDate()
}

// From returns the addresses in the From header field.
func (m *Message) From() (addr.AddressList, error) {
	return m.header.GetFrom()
}

// To returns the addresses in the To header field.
func (m *Message) To() (addr.AddressList, error) {
	return m.header.GetTo()
}

// Cc returns the addresses in the Cc header field.
func (m *Message) Cc() (addr.AddressList, error) {
	return m.header.GetCc()
}

// PlainBody returns the first text/plain part that is not an attachment, or
// nil if there is none.
func (m *Message) PlainBody() (*Part, error) {
	return m.searchForInlinePart("text/plain")
}

// HTMLBody returns the first text/html part that is not an attachment, or nil
// if there is none.
func (m *Message) HTMLBody() (*Part, error) {
	return m.searchForInlinePart("text/html")
}

// SetPlainBody replaces the text of the plain body, adding one if there is
// none.
func (m *Message) SetPlainBody(text, charset string) error {
	return m.setBody("text/plain", text, charset)
}

// SetHTMLBody replaces the text of the HTML body, adding one if there is
// none.
func (m *Message) SetHTMLBody(text, charset string) error {
	return m.setBody("text/html", text, charset)
}

func (m *Message) setBody(mediaType, text, charset string) error {
	if charset == "" {
		charset = "utf-8"
	}

	p, err := m.searchForInlinePart(mediaType)
	if err != nil {
		return err
	}

	if p == nil {
		if m.multi == nil {
			p = m.Part
		} else if p, err = m.multi.AddSubPart(); err != nil {
			return err
		}
	}

	return p.SpecializeAsSingle().SetString(text, mediaType, charset)
}

// PartAt returns the part found at the given path.
func (m *Message) PartAt(path mimepath.Path) (*Part, error) {
	if path.IsZero() || path.At(0) != 0 {
		return nil, ErrIndexOutOfRange
	}

	p := m.Part
	for _, i := range path.Elems()[1:] {
		if p.multi == nil {
			return nil, ErrNotMultipart
		}

		sub, err := p.multi.SubPart(i)
		if err != nil {
			return nil, err
		}
		p = sub
	}

	return p, nil
}

// AllAttachments returns every attachment in the message, at any depth.
func (m *Message) AllAttachments() ([]*Part, error) {
	if m.multi != nil {
		return m.multi.Attachments()
	}

	if m.IsAttachment() {
		return []*Part{m.Part}, nil
	}

	return nil, nil
}

// DumpTree writes an outline of the part tree to w, one part per line,
// giving the path, the media type and the size of each.
func (m *Message) DumpTree(w io.Writer) error {
	return dumpTree(w, m.Part)
}

func dumpTree(w io.Writer, p *Part) error {
	size, err := p.TransferEncodedSize()
	if err != nil {
		return err
	}

	ct := p.ContentType()
	if ct == "" {
		ct = "(none)"
	}

	flags := ""
	if p.IsAttachment() {
		flags = " attachment"
	}

	indent := strings.Repeat("  ", p.path.Len()-1)
	if _, err := fmt.Fprintf(w, "%s%s %s %d%s\n", indent, p.path, ct, size, flags); err != nil {
		return err
	}

	if p.multi == nil {
		return nil
	}

	subs, err := p.multi.SubParts()
	if err != nil {
		return err
	}

	for _, sub := range subs {
		if err := dumpTree(w, sub); err != nil {
			return err
		}
	}

	return nil
}

// Free releases the source behind the message, if any. The message must not
// be used after.
func (m *Message) Free() error {
	if m.src == nil {
		return nil
	}
	return m.src.Free()
}

// Save writes the message back over its source. Load the message from the
// source again to continue working with it.
func (m *Message) Save() error {
	if m.src == nil {
		return ErrNoSource
	}

	r := NewReader(m.Part)
	defer func() { _ = r.Close() }()

	return m.src.Save(r)
}

// opener returns an Opener serializing the message each time it is opened.
func (m *Message) opener(ctx context.Context) Opener {
	return OpenProducer(ctx, func(w io.Writer) error {
		_, err := m.WriteTo(w)
		return err
	})
}
