package field

import (
	"strings"
	"unicode/utf8"
)

// Unfold removes the line breaks from a folded body, keeping the whitespace
// that started each continuation line.
func Unfold(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// Fold breaks a body into lines of no more than 76 characters where it can.
// It prefers to break after a ";", then at whitespace, then between two
// adjacent encoded-words. Failing all of those, it breaks wherever it must,
// though never inside a quoted string or an encoded-word if that can be
// helped. Line breaks already present start a new line.
func Fold(s string) string {
	return foldFrom(s, 0)
}

// foldFrom is Fold where the first line already has offset characters on it,
// usually the field name and ": ".
func foldFrom(s string, offset int) string {
	var out strings.Builder

	lead := offset
	for len(s) > 0 {
		line := s
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			line = s[:nl+1]
		}

		text := strings.TrimRight(line, "\r\n")
		if lead+len(text) <= lineLimit {
			out.WriteString(line)
			s = s[len(line):]
			lead = 0
			continue
		}

		cut, resume, prefix := breakPoint(text, lineLimit-lead)
		out.WriteString(s[:cut])
		out.WriteString("\r\n")
		s = prefix + s[resume:]
		lead = 0
	}

	return out.String()
}

// breakPoint picks where to break a line that may hold room characters.
// The line is emitted through cut, then continues with prefix followed by the
// text from resume.
func breakPoint(line string, room int) (cut, resume int, prefix string) {
	if room < 1 {
		room = 1
	}

	var (
		semi, space, border = -1, -1, -1
		guarded             []span
	)

	inQuote := -1
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuote >= 0:
			if c == '\\' {
				i++
			} else if c == '"' {
				guarded = append(guarded, span{inQuote, i + 1})
				inQuote = -1
			}

		case c == '"':
			inQuote = i

		case c == '=' && i+1 < len(line) && line[i+1] == '?':
			end := wordEnd(line, i)
			if end < 0 {
				continue
			}
			guarded = append(guarded, span{i, end})
			if end <= room && strings.HasPrefix(line[end:], "=?") {
				border = end
			}
			i = end - 1

		case c == ';' && i+1 <= room:
			semi = i

		case (c == ' ' || c == '\t') && i > 0 && i <= room:
			space = i
		}
	}
	if inQuote >= 0 {
		guarded = append(guarded, span{inQuote, len(line)})
	}

	switch {
	case semi > 0 && semi+1 < len(line):
		if next := line[semi+1]; next == ' ' || next == '\t' {
			return semi + 1, semi + 1, ""
		}
		return semi + 1, semi + 1, " "
	case space > 0:
		return space, space, ""
	case border > 0:
		return border, border, " "
	}

	cut = room
	for _, g := range guarded {
		if g.start < cut && cut < g.end && g.start > 1 {
			cut = g.start
			break
		}
	}
	for cut > 1 && !utf8.RuneStart(line[cut]) {
		cut--
	}

	return cut, cut, " "
}

type span struct {
	start, end int
}
