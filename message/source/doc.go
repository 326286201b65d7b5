// Package source reads messages in place. A Stream indexes the parts of a
// message held in a ByteSource, such as a file or a re-openable stream,
// seeking out the headers, bodies and boundaries of each part only when
// asked. Nothing is held in memory but the positions found so far.
//
// Parts returned from a Stream are message.Part values bound to it. Reading
// the body of a part reads from the Stream. Changes to a part never touch the
// Stream until Save is called.
//
// Importing this package also lets message.Single.AsMessage read the nested
// message of a message/rfc822 part.
package source
