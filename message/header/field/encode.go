package field

import (
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zostay/pantomime/message/transfer"
)

const (
	// wordCharset is the charset used for all encoded-words written.
	wordCharset = "utf-8"

	// wordOverhead is the length of "=?utf-8?Q?" plus "?=".
	wordOverhead = len("=?") + len(wordCharset) + len("?Q?") + len("?=")

	// lineLimit is the longest header line written, counting the name.
	lineLimit = 76
)

// Encode returns the body with every word that holds non-ASCII text turned
// into RFC 2047 encoded-words. Runs of such words, and the space between
// them, become a single stretch of encoded text. A stretch longer than will
// fit on a line is cut into adjacent encoded-words with no space between
// them.
//
// Q encoding is used unless the stretch holds a code point above U+03D0, in
// which case B encoding is used. The name is only used to size the words so
// that the first one fits on the line with it.
func Encode(name, body string) string {
	if isASCII(body) {
		return body
	}

	maxWord := lineLimit - (len(name) + wordOverhead + 2)

	var (
		out     strings.Builder
		pending strings.Builder // non-ASCII stretch not yet written
		space   string          // whitespace seen since the last word
	)

	flush := func() {
		if pending.Len() > 0 {
			out.WriteString(encodeStretch(pending.String(), maxWord))
			pending.Reset()
		}
		out.WriteString(space)
		space = ""
	}

	for _, tok := range splitWords(body) {
		if strings.TrimFunc(tok, unicode.IsSpace) == "" {
			space += tok
			continue
		}

		if isASCII(tok) {
			flush()
			out.WriteString(tok)
			continue
		}

		if pending.Len() > 0 {
			pending.WriteString(space)
		} else {
			out.WriteString(space)
		}
		space = ""
		pending.WriteString(tok)
	}
	flush()

	return out.String()
}

// splitWords cuts s into alternating runs of whitespace and non-whitespace.
func splitWords(s string) []string {
	var (
		toks  []string
		start int
		inWS  bool
	)
	for i, r := range s {
		ws := unicode.IsSpace(r)
		if i > 0 && ws != inWS {
			toks = append(toks, s[start:i])
			start = i
		}
		inWS = ws
	}
	if start < len(s) {
		toks = append(toks, s[start:])
	}
	return toks
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// encodeStretch turns s into one or more adjacent encoded-words, none with
// more than maxWord bytes of encoded text.
func encodeStretch(s string, maxWord int) string {
	enc := "Q"
	size := func(n int) int { return n * 3 }
	for _, r := range s {
		if r > transfer.Base64Threshold {
			enc = "B"
			size = func(n int) int { return (n + 2) / 3 * 4 }
			break
		}
	}

	var out strings.Builder
	for len(s) > 0 {
		cut := 0
		for i, r := range s {
			end := i + utf8.RuneLen(r)
			if cut > 0 && size(end) > maxWord {
				break
			}
			cut = end
		}

		out.WriteString("=?" + wordCharset + "?" + enc + "?")
		out.WriteString(encodeText(enc, s[:cut]))
		out.WriteString("?=")
		s = s[cut:]
	}

	return out.String()
}

func encodeText(enc, s string) string {
	var r io.ReadCloser
	if enc == "B" {
		r = transfer.NewBase64Encoder(strings.NewReader(s))
	} else {
		r = transfer.NewHeaderQuotedPrintableEncoder(strings.NewReader(s))
	}
	defer func() { _ = r.Close() }()

	b, _ := io.ReadAll(r)
	return strings.NewReplacer("=\r\n", "", "\r\n", "").Replace(string(b))
}
