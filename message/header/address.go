package header

import (
	"strings"

	"github.com/zostay/go-addr/pkg/addr"
)

// ParseAddressList parses an address field body. It will attempt a strict
// parse first. If that fails, an extremely lenient parse is done instead, which
// might give results that can only be described as "weird" in the effort to
// give some kind of result. It returns something for any input.
func ParseAddressList(body string) addr.AddressList {
	if al, err := addr.ParseEmailAddressList(body); err == nil {
		return al
	}
	return parseLenientAddressList(body)
}

// parseLenientAddressList is the fallback for address parsing. The parser in
// github.com/zostay/go-addr is strict, which is what you want when validating
// data entry, but mail from the Internet needs strict out/liberal in.
//
// The body is split on commas. Comments are pulled out of each piece. The last
// remaining word is the address and any words before it are the display name.
// Groups are not recognized.
func parseLenientAddressList(body string) addr.AddressList {
	pieces := strings.Split(body, ",")
	al := make(addr.AddressList, 0, len(pieces))
	for _, orig := range pieces {
		clean, comment := splitComments(orig)

		words := strings.Fields(clean)
		if len(words) == 0 {
			continue
		}

		email := strings.Trim(words[len(words)-1], "<>")
		dn := strings.Trim(strings.Join(words[:len(words)-1], " "), `"`)

		local, domain, _ := strings.Cut(email, "@")
		spec := addr.NewAddrSpecParsed(local, domain, email)

		mb, err := addr.NewMailboxParsed(dn, spec, strings.TrimSpace(comment), orig)
		if err != nil {
			mb, _ = addr.NewMailboxParsed(dn, spec, "", orig)
		}

		al = append(al, mb)
	}

	return al
}

// splitComments separates the parenthesized comments in s from the rest.
// Comments may nest. Unbalanced closing parentheses are kept as text.
func splitComments(s string) (clean, comment string) {
	var cb, mb strings.Builder
	depth := 0
	for _, c := range s {
		switch {
		case c == '(':
			if depth > 0 {
				mb.WriteRune(c)
			}
			depth++
		case c == ')' && depth > 1:
			depth--
			mb.WriteRune(c)
		case c == ')' && depth == 1:
			depth--
		case depth > 0:
			mb.WriteRune(c)
		default:
			cb.WriteRune(c)
		}
	}
	return cb.String(), mb.String()
}
