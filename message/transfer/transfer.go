package transfer

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/text/transform"

	"github.com/zostay/pantomime/message/header/encoding"
)

const (
	None            = ""                 // bytes will be left as-is
	Bit7            = "7bit"             // bytes will be left as-is
	Bit8            = "8bit"             // bytes will be left as-is
	Binary          = "binary"           // bytes will be left as-is
	QuotedPrintable = "quoted-printable" // bytes will be transformed between quoted-printable and binary data
	Base64          = "base64"           // bytes will be transformed between base64 and binary data
)

// Code point thresholds used by ChooseTransferEncoding. Above
// QuotedPrintableThreshold the content needs quoted-printable. Above
// Base64Threshold, which is about where common mail clients give up on
// quoted-printable, it needs base64.
const (
	QuotedPrintableThreshold = 127
	Base64Threshold          = 976
)

// Transcoding is a pair of functions that can be used to transform to and from
// a transfer encoding.
type Transcoding struct {
	// Encoder returns an io.ReadCloser, which reads binary data from the given
	// io.Reader and returns the encoded form.
	Encoder func(io.Reader) io.ReadCloser

	// Decoder returns an io.ReadCloser, which reads the encoded form from the
	// given io.Reader and returns the binary data.
	Decoder func(io.Reader) io.ReadCloser
}

// AsIsTranscoder is just a shortcut to a no-op encoder/decoder.
var AsIsTranscoder = Transcoding{NewAsIsEncoder, NewAsIsDecoder}

// Transcodings defines the supported Content-Transfer-Encodings and how to
// handle them. Keys are lower case. It can be modified to change the global
// handling of transfer encodings.
var Transcodings = map[string]Transcoding{
	None:            AsIsTranscoder,
	Bit7:            AsIsTranscoder,
	Bit8:            AsIsTranscoder,
	Binary:          AsIsTranscoder,
	QuotedPrintable: {NewQuotedPrintableEncoder, NewQuotedPrintableDecoder},
	Base64:          {NewBase64Encoder, NewBase64Decoder},
}

// Normalize returns the registry key for a Content-Transfer-Encoding value.
func Normalize(cte string) string {
	return strings.ToLower(strings.TrimSpace(cte))
}

func lookup(cte string) Transcoding {
	if tc, hasCode := Transcodings[Normalize(cte)]; hasCode {
		return tc
	}
	return AsIsTranscoder
}

// ApplyTransferEncoding returns an io.ReadCloser that reads from r and encodes
// per the named Content-Transfer-Encoding. An unknown encoding passes the
// bytes through as-is.
func ApplyTransferEncoding(cte string, r io.Reader) io.ReadCloser {
	return lookup(cte).Encoder(r)
}

// ApplyTransferDecoding returns an io.ReadCloser that reads from r and
// decodes per the named Content-Transfer-Encoding. An unknown encoding passes
// the bytes through as-is.
func ApplyTransferDecoding(cte string, r io.Reader) io.ReadCloser {
	return lookup(cte).Decoder(r)
}

// ChooseTransferEncoding reads r to its end and picks the transfer encoding
// the content needs by looking at the highest code point in it. The charset
// names the encoding of the bytes; when empty or unknown they are read as
// UTF-8. Bytes that are not valid in the charset count as U+FFFD, so binary
// content ends up as base64.
//
// The scan stops at the first code point above Base64Threshold.
func ChooseTransferEncoding(r io.Reader, charset string) (string, error) {
	if enc, err := encoding.Lookup(charset); err == nil && !encoding.IsUTF8(charset) {
		r = transform.NewReader(r, enc.NewDecoder())
	}

	br := bufio.NewReader(r)
	cte := Bit7
	for {
		c, _, err := br.ReadRune()
		if err == io.EOF {
			return cte, nil
		} else if err != nil {
			return cte, err
		}

		if c > Base64Threshold {
			return Base64, nil
		}

		if c > QuotedPrintableThreshold {
			cte = QuotedPrintable
		}
	}
}

// ChooseTransferEncodingString is ChooseTransferEncoding for content already
// held as a Go string.
func ChooseTransferEncodingString(s string) string {
	cte := Bit7
	for _, c := range s {
		if c > Base64Threshold {
			return Base64
		}
		if c > QuotedPrintableThreshold {
			cte = QuotedPrintable
		}
	}
	return cte
}
