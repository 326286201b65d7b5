package field

import "strings"

// Tokenize splits a structured body into its subfields. The text before the
// first ";" is stored under MainParam. Each following "name=value" is stored
// under the lower cased name with surrounding quotes removed. A subfield with
// no "=" is skipped and, where a name repeats, the first one wins. Semicolons
// inside quotes do not split.
func Tokenize(body string) map[string]string {
	parts := splitUnquoted(body, ';')

	params := make(map[string]string, len(parts))
	params[MainParam] = strings.ToLower(strings.TrimSpace(parts[0]))

	for _, p := range parts[1:] {
		eq := strings.IndexByte(p, '=')
		if eq < 0 {
			continue
		}

		name := strings.ToLower(strings.TrimSpace(p[:eq]))
		if name == "" {
			continue
		}
		if _, seen := params[name]; seen {
			continue
		}

		params[name] = Unquote(strings.TrimSpace(p[eq+1:]))
	}

	return params
}

// Unquote strips one pair of matching double or single quotes from around s
// and removes backslash escapes within them. Anything else is returned as-is.
func Unquote(s string) string {
	if len(s) < 2 {
		return s
	}

	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return s
	}

	s = s[1 : len(s)-1]
	if q == '\'' || !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// splitUnquoted splits s on sep wherever sep is outside double or single
// quotes. A quote opens only where a value may begin: at the start, after
// "=" or after a space. Backslash escapes apply within double quotes.
func splitUnquoted(s string, sep byte) []string {
	var (
		parts []string
		start int
		quote byte
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case quote != 0:
			if c == '\\' && quote == '"' {
				i++
			} else if c == quote {
				quote = 0
			}
		case (c == '"' || c == '\'') && opensValue(s, i):
			quote = c
		case c == sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func opensValue(s string, i int) bool {
	if i == 0 {
		return true
	}
	switch s[i-1] {
	case '=', ' ', '\t', ';':
		return true
	}
	return false
}
