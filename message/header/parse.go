package header

import (
	"strings"

	"github.com/zostay/pantomime/message/header/field"
)

// Parse builds a header from its lines as read from the wire, with the line
// endings given separately. The endings slice is matched to lines by index
// and may be shorter, in which case the missing endings are taken as CRLF.
//
// A line starting with a space or tab continues the field before it, as does
// any line after one ending in a bare CR. Any other line must hold a colon,
// which separates the field name from its body. Lines that do neither are
// kept as InvalidLines. Parsing stops at the first blank line.
func Parse(lines []string, endings []Break) *Header {
	h := &Header{fields: make([]*field.Field, 0, len(lines))}

	var (
		name    string
		raw     strings.Builder
		started bool
		prev    Break
	)

	flush := func() {
		if started {
			h.fields = append(h.fields, field.Parse(name, raw.String()))
		}
		started = false
		raw.Reset()
	}

	for i, line := range lines {
		ending := CRLF
		if i < len(endings) {
			ending = endings[i]
		}

		switch {
		case started && prev == CR:
			raw.WriteString(prev.String())
			raw.WriteString(line)

		case line == "":
			flush()
			return h

		case started && (line[0] == ' ' || line[0] == '\t'):
			raw.WriteString(prev.String())
			raw.WriteString(line)

		case strings.Contains(line, ":"):
			flush()
			n, body, _ := strings.Cut(line, ":")
			name = strings.TrimSpace(n)
			raw.WriteString(strings.TrimLeft(body, " \t"))
			started = true

		default:
			flush()
			h.invalid = append(h.invalid, line)
		}

		prev = ending
	}
	flush()

	return h
}
