// Package pantomime is a MIME email library built for very large messages.
// Rather than reading a message into memory, it builds a lazy index over the
// bytes where they sit, in a file, a re-openable stream or any other seekable
// source, and finds parts only as they are asked for. Malformed messages are
// the norm in the wild and are read as best they can be, never rejected.
//
// The packages are split according to part of message:
//
//   - mimepath addresses parts within the tree by index.
//   - message/transfer provides streaming Base64 and Quoted-Printable codecs.
//   - message/header and message/header/field read and write header fields,
//     including RFC 2047 encoded-words and folding.
//   - message/source indexes a message in a byte source.
//   - message holds the part tree. Parts read from a source are left
//     untouched there. Changes are kept in the tree and written out by
//     serializing it.
//
// A typical read looks like this:
//
//	src, err := source.OpenFile("message.eml")
//	if err != nil {
//	  panic(err)
//	}
//	defer src.Free()
//
//	msg, err := src.Load()
//	if err != nil {
//	  panic(err)
//	}
//
//	body, err := msg.PlainBody()
package pantomime
