package header

// Break represents a line ending, both as found at the end of a line read
// from a message and as written when one is produced.
type Break string

// Line endings. Messages are always written with CRLF. The others are only
// ever found when reading.
const (
	Meh  Break = ""         // no ending, the last line of a stream
	CRLF Break = "\x0d\x0a" // \r\n - Network linebreak
	LF   Break = "\x0a"     // \n - Unix/Linux/BSD linebreak
	CR   Break = "\x0d"     // \r - Commodores/old Macs linebreak
)

// String returns the break as a string.
func (b Break) String() string {
	return string(b)
}

// Bytes returns the break as a slice of bytes.
func (b Break) Bytes() []byte {
	return []byte(b)
}

// IsBlankEnd reports whether a blank line with this ending can end a header.
func (b Break) IsBlankEnd() bool {
	return b == CRLF || b == LF
}
