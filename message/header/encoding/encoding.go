// Package encoding looks up the character sets named in email headers and
// converts between them and UTF-8. It loads all the encodings provided with:
//
// * golang.org/x/text/encoding/ianaindex
//
// This will make the size of your compiled binaries considerably larger. But it
// will also give your code the ability to encode and decode pretty much any
// character set it might encounter in the wild wild world of email.
package encoding

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	_ "golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// ErrUnknownCharset is returned when a charset name cannot be matched to any
// known encoding.
var ErrUnknownCharset = errors.New("unknown charset")

// IsUTF8 reports whether the charset name means the bytes can be used as Go
// strings without conversion. An empty name counts, as does US-ASCII, which
// is a subset.
func IsUTF8(charset string) bool {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(charset), `"'`)) {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return true
	}
	return false
}

// Lookup finds the encoding for a charset name. Quotes and surrounding space
// are ignored.
func Lookup(charset string) (encoding.Encoding, error) {
	name := strings.Trim(strings.TrimSpace(charset), `"'`)
	if IsUTF8(name) {
		return unicode.UTF8, nil
	}

	e, err := ianaindex.MIME.Encoding(name)
	if err != nil || e == nil {
		e, err = ianaindex.IANA.Encoding(name)
	}

	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnknownCharset, charset, err)
	}

	if e == nil {
		return nil, fmt.Errorf("%w %q: no encoding available", ErrUnknownCharset, charset)
	}

	return e, nil
}

// Encode converts a UTF-8 string into the bytes of the named charset.
func Encode(charset, s string) ([]byte, error) {
	if IsUTF8(charset) {
		return []byte(s), nil
	}

	e, err := Lookup(charset)
	if err != nil {
		return nil, err
	}

	es, err := e.NewEncoder().String(s)
	if err != nil {
		return nil, err
	}

	return []byte(es), nil
}

// Decode converts bytes in the named charset into a UTF-8 string.
func Decode(charset string, b []byte) (string, error) {
	if IsUTF8(charset) {
		return string(b), nil
	}

	e, err := Lookup(charset)
	if err != nil {
		return "", err
	}

	eb, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}

	return string(eb), nil
}
