package message

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/zostay/pantomime/message/header"
	"github.com/zostay/pantomime/message/header/encoding"
	"github.com/zostay/pantomime/message/header/param"
	"github.com/zostay/pantomime/message/transfer"
)

// Single is the content of a part that is not multipart. Content set here
// replaces whatever the part held in its source.
type Single struct {
	part *Part

	// content is the new content, not transfer-encoded. When nil, the content
	// comes from the source.
	content Opener
}

// SetString sets the content to s converted into charset. The Content-Type
// and Content-Transfer-Encoding are set to match.
func (s *Single) SetString(content, mediaType, charset string) error {
	b, err := encoding.Encode(charset, content)
	if err != nil {
		return fmt.Errorf("unable to encode content as %s: %w", charset, err)
	}
	return s.SetBytes(b, mediaType, charset)
}

// SetBytes sets the content to b, which must already be in the given charset.
// See SetOpener.
func (s *Single) SetBytes(content []byte, mediaType, charset string) error {
	return s.SetOpener(OpenBytes(content), mediaType, charset)
}

// SetFile sets the content to that of the named file, which will be read
// when the part is written. See SetOpener.
func (s *Single) SetFile(path, mediaType, charset string) error {
	return s.SetOpener(OpenFile(path), mediaType, charset)
}

// SetOpener sets the content to whatever is read from open. The content is
// read once now to choose the Content-Transfer-Encoding and again each time it
// is needed after. The Content-Type is set to the media type with the charset
// parameter, if given.
func (s *Single) SetOpener(open Opener, mediaType, charset string) error {
	r, err := open()
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	cte, err := transfer.ChooseTransferEncoding(r, charset)
	if err != nil {
		return &IOError{Op: "scan", Offset: -1, Err: err}
	}

	s.content = open
	s.part.setContentType(mediaType, charset)
	s.part.header.SetTransferEncoding(cte)
	s.part.markModified()

	return nil
}

// HasNewContent returns true if content has been set on this part.
func (s *Single) HasNewContent() bool {
	return s.content != nil
}

// transferEncoding returns the Content-Transfer-Encoding in effect.
func (s *Single) transferEncoding() string {
	cte, _ := s.part.header.GetTransferEncoding()
	return cte
}

// Body returns a reader over the content with the transfer encoding
// removed.
func (s *Single) Body() (io.ReadCloser, error) {
	if s.content != nil {
		return s.content()
	}

	if s.part.src == nil {
		return io.NopCloser(strings.NewReader("")), nil
	}

	r, err := s.part.src.Body(s.part.srcPath)
	if err != nil {
		return nil, err
	}

	return transfer.ApplyTransferDecoding(s.transferEncoding(), r), nil
}

// BodyString returns the whole content as a string, converted from the
// declared charset. If the charset is not known, the bytes are used as-is.
func (s *Single) BodyString() (string, error) {
	r, err := s.Body()
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Close() }()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return "", err
	}

	cs := s.part.Charset()
	str, err := encoding.Decode(cs, buf.Bytes())
	if err != nil {
		s.part.logger.Debug("unable to decode body",
			"path", s.part.path.String(),
			"charset", cs,
			"error", err)
		return buf.String(), nil
	}

	return str, nil
}

// TransferEncodedBody returns a reader over the content as it is written,
// with transfer encoding applied. Content from the source is returned
// exactly as it is found there.
func (s *Single) TransferEncodedBody() (io.ReadCloser, error) {
	if s.content != nil {
		r, err := s.content()
		if err != nil {
			return nil, err
		}
		return transfer.ApplyTransferEncoding(s.transferEncoding(), r), nil
	}

	if s.part.src == nil {
		return io.NopCloser(strings.NewReader("")), nil
	}

	return s.part.src.Body(s.part.srcPath)
}

// TransferEncodedBodySize returns the length of TransferEncodedBody. New
// content has to be encoded to be counted.
func (s *Single) TransferEncodedBodySize() (int64, error) {
	if s.content == nil {
		if s.part.src == nil {
			return 0, nil
		}
		return s.part.src.TransferEncodedBodySize(s.part.srcPath)
	}

	r, err := s.TransferEncodedBody()
	if err != nil {
		return 0, err
	}
	defer func() { _ = r.Close() }()

	return io.Copy(io.Discard, r)
}

// SetContentID sets the Content-ID of the part.
func (s *Single) SetContentID(id string) {
	s.part.header.SetContentID(id)
	s.part.markModified()
}

// SetDisposition sets the Content-Disposition to the given kind, usually
// "inline" or "attachment", with a filename and size. The filename is left
// off if empty and the size if negative.
func (s *Single) SetDisposition(kind, filename string, size int64) {
	v := kind
	if filename != "" {
		v += fmt.Sprintf(`; %s="%s"`, param.Filename, strings.ReplaceAll(filename, `"`, `\"`))
	}
	if size >= 0 {
		v += fmt.Sprintf(`; %s="%d"`, param.Size, size)
	}

	s.part.header.Set(header.ContentDisposition, v)
	s.part.markModified()
}

// AsMessage reads the content of a message/rfc822 part as a message of its
// own.
func (s *Single) AsMessage() (*Message, error) {
	if rfc822Loader == nil {
		return nil, ErrNoSource
	}
	return rfc822Loader(s.part)
}

// setAttachment sets the content from open with an attachment disposition
// naming the file. The media type is guessed from the filename if empty.
func (s *Single) setAttachment(open Opener, filename, mediaType string, size int64) error {
	if mediaType == "" {
		mediaType = guessMediaType(filename)
	}

	if err := s.SetOpener(open, mediaType, ""); err != nil {
		return err
	}

	if filename != "" {
		filename = filepath.Base(filename)
	}
	s.SetDisposition("attachment", filename, size)
	return nil
}
