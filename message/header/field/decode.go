package field

import (
	"bytes"
	"io"
	"strings"

	"github.com/zostay/pantomime/message/header/encoding"
	"github.com/zostay/pantomime/message/transfer"
)

// Decode replaces every RFC 2047 encoded-word in s with its text. Two
// encoded-words separated by a single space are joined first, since the
// space was put there to fold a long run of encoded text.
//
// Decode never fails. A malformed encoded-word is left as-is. If the charset
// is unknown, the raw decoded bytes are used. Text without encoded-words is
// returned unchanged, so decoding an already decoded value does nothing.
func Decode(s string) string {
	if !strings.Contains(s, "=?") {
		return s
	}

	s = strings.ReplaceAll(s, "?= =?", "?==?")

	var out strings.Builder
	for {
		start := strings.Index(s, "=?")
		if start < 0 {
			break
		}

		end := wordEnd(s, start)
		if end < 0 {
			out.WriteString(s[:start+2])
			s = s[start+2:]
			continue
		}

		out.WriteString(s[:start])
		out.WriteString(decodeWord(s[start:end]))
		s = s[end:]
	}
	out.WriteString(s)

	return out.String()
}

// wordEnd returns the offset just past the "?=" closing the encoded-word that
// starts at start, or -1 if the text there is not shaped like one.
func wordEnd(s string, start int) int {
	mark := start
	for i := 0; i < 4; i++ {
		ix := strings.IndexByte(s[mark+1:], '?')
		if ix < 0 {
			return -1
		}
		mark += ix + 1
	}

	if mark+1 >= len(s) || s[mark+1] != '=' {
		return -1
	}

	return mark + 2
}

// decodeWord decodes a single "=?charset?enc?text?=" word.
func decodeWord(word string) string {
	fields := strings.Split(word, "?")
	if len(fields) != 5 {
		return word
	}

	charset := fields[1]
	if star := strings.IndexByte(charset, '*'); star >= 0 {
		charset = charset[:star] // RFC 2231 language tag
	}

	var dec io.ReadCloser
	switch strings.ToUpper(strings.TrimSpace(fields[2])) {
	case "Q":
		dec = transfer.NewHeaderQuotedPrintableDecoder(strings.NewReader(fields[3]))
	case "B":
		dec = transfer.NewBase64Decoder(strings.NewReader(fields[3]))
	default:
		return word
	}
	defer func() { _ = dec.Close() }()

	var raw bytes.Buffer
	if _, err := raw.ReadFrom(dec); err != nil {
		return word
	}

	text, err := encoding.Decode(charset, raw.Bytes())
	if err != nil {
		return raw.String()
	}

	return text
}
