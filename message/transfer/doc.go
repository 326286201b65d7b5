// Package transfer contains the codecs behind the Content-Transfer-Encoding
// header. Only quoted-printable and base64 change the bytes. The binary,
// 7bit, and 8bit encodings (and any name we don't recognize) leave the bytes
// as-is.
//
// Every codec here is a pull-based io.ReadCloser wrapped around an upstream
// io.Reader. They read the upstream lazily in small chunks and only ever move
// forward. Closing a codec closes the upstream, if it is an io.Closer, exactly
// once.
//
// For the sake of this package, "decoded" means the content has been
// transformed from the named transfer encoding back to its charset encoded
// bytes. Meanwhile, "encoded" means the content has been transformed into the
// named transfer encoding, ready for transport.
//
// The decoders are liberal. Junk in a base64 body is skipped, a missing pad
// is assumed, and a stray "=" in quoted-printable is passed through. Email in
// the wild is rarely tidy and none of these conditions is ever an error.
package transfer
