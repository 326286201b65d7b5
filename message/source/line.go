package source

import (
	"bufio"
	"fmt"
	"io"

	"github.com/zostay/pantomime/internal/scanner"
)

// maxLine is the longest line read whole. Longer lines are read in pieces,
// which is harmless since no header or boundary line gets this long.
const maxLine = 64 * 1024

// Line is one line of a message and where it was found.
type Line struct {
	// Pos is the offset of the first byte of the line.
	Pos int64

	// Text is the line without its ending.
	Text string

	// Ending is "\r\n", "\n", "\r" or "" for the last line of a stream.
	Ending string
}

// EOL returns the offset just after the line ending.
func (l *Line) EOL() int64 {
	return l.Pos + int64(len(l.Text)) + int64(len(l.Ending))
}

// String returns a description of the line for logging.
func (l *Line) String() string {
	return fmt.Sprintf("%d:%q", l.Pos, l.Text+l.Ending)
}

// lineReader reads lines forward from a position.
type lineReader struct {
	sc  *bufio.Scanner
	pos int64
}

func newLineReader(r io.ReaderAt, pos, length int64) *lineReader {
	n := length - pos
	if n < 0 {
		n = 0
	}

	sc := bufio.NewScanner(io.NewSectionReader(r, pos, n))
	sc.Buffer(make([]byte, 0, 4096), maxLine)
	sc.Split(scanner.LimitLines(maxLine))

	return &lineReader{sc: sc, pos: pos}
}

// next returns the next line or nil at the end of the stream.
func (lr *lineReader) next() (*Line, error) {
	if !lr.sc.Scan() {
		return nil, ioError("read", lr.pos, lr.sc.Err())
	}

	text, ending := scanner.SplitEnding(lr.sc.Bytes())
	l := &Line{Pos: lr.pos, Text: text, Ending: ending}
	lr.pos = l.EOL()

	return l, nil
}
