package message

import (
	"context"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/zostay/pantomime/message/header"
)

// Content is a piece of text in a charset. An empty charset means UTF-8.
type Content struct {
	Text    string
	Charset string
}

// InlineImage is an image shown within an HTML body, referred to from the
// HTML by its Content-ID.
type InlineImage struct {
	ContentID string
	MediaType string

	// Filename defaults to the Content-ID when empty.
	Filename string

	// Open provides the image bytes.
	Open Opener

	// Size is counted from Open when not positive.
	Size int64
}

func (img InlineImage) filename() string {
	if img.Filename != "" {
		return filepath.Base(img.Filename)
	}
	return img.ContentID
}

func (img InlineImage) size() (int64, error) {
	if img.Size > 0 {
		return img.Size, nil
	}

	r, err := img.Open()
	if err != nil {
		return 0, err
	}
	defer func() { _ = r.Close() }()

	return io.Copy(io.Discard, r)
}

// addText appends a sub-part holding the given text.
func (m *Multi) addText(c Content, mediaType string) (*Part, error) {
	sub, err := m.AddSubPart()
	if err != nil {
		return nil, err
	}

	cs := c.Charset
	if cs == "" {
		cs = "utf-8"
	}

	return sub, sub.single.SetString(c.Text, mediaType, cs)
}

// SetAlternative replaces the content with a multipart/alternative of a
// text/plain and a text/html sub-part.
func (m *Multi) SetAlternative(plain, html Content) error {
	m.reset("alternative")

	if _, err := m.addText(plain, "text/plain"); err != nil {
		return err
	}

	_, err := m.addText(html, "text/html")
	return err
}

// SetRelated replaces the content with a multipart/related holding a
// multipart/alternative of the plain and HTML text followed by one inline
// sub-part per image.
func (m *Multi) SetRelated(plain, html Content, images ...InlineImage) error {
	m.reset("related")

	alt, err := m.AddSubPart()
	if err != nil {
		return err
	}

	if err := alt.SpecializeAsMulti().SetAlternative(plain, html); err != nil {
		return err
	}

	for _, img := range images {
		sub, err := m.AddSubPart()
		if err != nil {
			return err
		}

		size, err := img.size()
		if err != nil {
			return err
		}

		if err := sub.single.SetOpener(img.Open, img.MediaType, ""); err != nil {
			return err
		}

		sub.single.SetDisposition("inline", img.filename(), size)
		sub.single.SetContentID(img.ContentID)
	}

	return nil
}

// SetSigned replaces the content with a multipart/signed of the text and a
// signature of the given signature type, such as
// "application/pgp-signature".
func (m *Multi) SetSigned(content Content, signature, signatureType string) error {
	m.reset("signed")

	if _, err := m.addText(content, "text/plain"); err != nil {
		return err
	}

	sig, err := m.AddSubPart()
	if err != nil {
		return err
	}

	return sig.single.SetString(signature, signatureType, "")
}

// SetEncrypted replaces the content with a multipart/encrypted of a control
// part of the given encryption type, such as "application/pgp-encrypted",
// and the encrypted data.
func (m *Multi) SetEncrypted(control, encryptionType string, encrypted Content) error {
	m.reset("encrypted")

	ctl, err := m.AddSubPart()
	if err != nil {
		return err
	}

	if err := ctl.single.SetString(control, encryptionType, ""); err != nil {
		return err
	}

	data, err := m.AddSubPart()
	if err != nil {
		return err
	}

	return data.single.SetString(encrypted.Text, "application/octet-stream", encrypted.Charset)
}

// SetDigest replaces the content with a multipart/digest holding one
// message/rfc822 sub-part per message. The messages are serialized each time
// the digest is read.
func (m *Multi) SetDigest(ctx context.Context, msgs ...*Message) error {
	m.reset("digest")

	for _, msg := range msgs {
		sub, err := m.AddSubPart()
		if err != nil {
			return err
		}

		if err := sub.single.SetOpener(msg.opener(ctx), "message/rfc822", ""); err != nil {
			return err
		}
	}

	return nil
}

// SetReport replaces the content with a multipart/report made of a human
// readable notice, a message/delivery-status and the original message as an
// attachment.
func (m *Multi) SetReport(ctx context.Context, notice Content, status string, original *Message) error {
	m.reset("report")
	m.part.header.Set(header.ContentType,
		`multipart/report; report-type="delivery-status"; boundary="`+m.boundary+`"`)

	if _, err := m.addText(notice, "text/plain"); err != nil {
		return err
	}

	st, err := m.AddSubPart()
	if err != nil {
		return err
	}

	if err := st.single.SetString(status, "message/delivery-status", ""); err != nil {
		return err
	}

	orig, err := m.AddSubPart()
	if err != nil {
		return err
	}

	if err := orig.single.SetOpener(original.opener(ctx), "message/rfc822", ""); err != nil {
		return err
	}

	orig.single.SetDisposition("attachment", "", -1)

	return nil
}

// guessMediaType picks a media type from the extension of a filename.
func guessMediaType(filename string) string {
	if mt := mime.TypeByExtension(filepath.Ext(filename)); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

// AddAttachmentOpener adds an attachment read from open. The part is
// filialized first, so the attachment always lands in a multipart/mixed
// after the existing content. An empty media type is guessed from the
// filename.
func (p *Part) AddAttachmentOpener(open Opener, filename, mediaType string) (*Part, error) {
	if err := p.Filialize(); err != nil {
		return nil, err
	}

	sub, err := p.multi.AddSubPart()
	if err != nil {
		return nil, err
	}

	size := int64(-1)
	if r, err := open(); err == nil {
		size, _ = io.Copy(io.Discard, r)
		_ = r.Close()
	}

	return sub, sub.single.setAttachment(open, filename, mediaType, size)
}

// AddAttachmentString adds an attachment holding the given text.
func (p *Part) AddAttachmentString(content, filename, mediaType string) (*Part, error) {
	return p.AddAttachmentOpener(OpenString(content), filename, mediaType)
}

// AddAttachmentFile adds the named file as an attachment.
func (p *Part) AddAttachmentFile(path, mediaType string) (*Part, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &IOError{Op: "stat", Offset: -1, Err: err}
	}
	return p.AddAttachmentOpener(OpenFile(path), path, mediaType)
}
