// Package scanner holds bufio split functions for reading messages line by
// line without losing track of byte offsets.
package scanner

import "bytes"

// ScanLinesWithEndings is a bufio.SplitFunc that returns each line with its
// line ending still attached, so the lengths of the tokens add up to the
// bytes consumed. CRLF, a lone LF, and a lone CR each end a line. The final
// line may have no ending at all.
//
// A CR at the end of the buffer is held back until the next byte is known,
// since it may be the first half of a CRLF.
func ScanLinesWithEndings(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	i := bytes.IndexAny(data, "\r\n")
	switch {
	case i < 0 && atEOF:
		return len(data), data, nil
	case i < 0:
		return 0, nil, nil
	case data[i] == '\n':
		return i + 1, data[:i+1], nil
	case i+1 < len(data) && data[i+1] == '\n':
		return i + 2, data[:i+2], nil
	case i+1 < len(data) || atEOF:
		return i + 1, data[:i+1], nil
	}

	return 0, nil, nil
}

// SplitEnding separates a token returned by ScanLinesWithEndings into the
// text of the line and its ending.
func SplitEnding(token []byte) (text, ending string) {
	n := len(token)
	switch {
	case bytes.HasSuffix(token, []byte("\r\n")):
		return string(token[:n-2]), "\r\n"
	case n > 0 && (token[n-1] == '\n' || token[n-1] == '\r'):
		return string(token[:n-1]), string(token[n-1:])
	}
	return string(token), ""
}

// LimitLines returns a split function like ScanLinesWithEndings that gives up
// on finding a line ending once max bytes are buffered and returns those bytes
// as a line with no ending. Use it with a bufio.Scanner whose maximum token
// size is max so that long lines never fail the scan.
func LimitLines(max int) func([]byte, bool) (int, []byte, error) {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		adv, tok, err := ScanLinesWithEndings(data, atEOF)
		if adv == 0 && err == nil && len(data) >= max {
			return max, data[:max], nil
		}
		return adv, tok, err
	}
}
