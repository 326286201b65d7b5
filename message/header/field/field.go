// Package field is the header engine. It works on one header field at a time:
// decoding RFC 2047 encoded-words, encoding non-ASCII text back into them,
// folding and unfolding long lines, and splitting a body into its subfields.
//
// A Field always holds its body decoded and unfolded. The transport form is
// produced on demand by Encoded, which is what the serializer writes.
package field

import "strings"

// MainParam is the pseudo-parameter holding everything before the first ";"
// of a field body, lower cased. For "Content-Type: text/plain; charset=utf-8"
// it is "text/plain".
const MainParam = "main"

// Field is a single header field.
type Field struct {
	name   string
	body   string
	params map[string]string
}

// New returns a field with the given name and an already decoded body.
func New(name, body string) *Field {
	f := &Field{name: name}
	f.SetBody(body)
	return f
}

// Parse returns a field from a body as found on the wire. The body is
// unfolded, then any encoded-words are decoded.
func Parse(name, raw string) *Field {
	return New(name, Decode(Unfold(raw)))
}

// Name returns the field name as given.
func (f *Field) Name() string {
	return f.name
}

// SetName changes the name.
func (f *Field) SetName(name string) {
	f.name = name
}

// Body returns the decoded, unfolded body.
func (f *Field) Body() string {
	return f.body
}

// SetBody replaces the body with the given decoded, unfolded value and
// recomputes the subfields.
func (f *Field) SetBody(body string) {
	f.body = body
	f.params = Tokenize(body)
}

// Main returns the main subfield. See MainParam.
func (f *Field) Main() string {
	return f.params[MainParam]
}

// Param returns the named subfield. Names are matched case-insensitively.
func (f *Field) Param(name string) (string, bool) {
	v, ok := f.params[strings.ToLower(name)]
	return v, ok
}

// Params returns a copy of all the subfields, including MainParam.
func (f *Field) Params() map[string]string {
	ps := make(map[string]string, len(f.params))
	for k, v := range f.params {
		ps[k] = v
	}
	return ps
}

// Encoded returns the body in transport form: non-ASCII text turned into
// encoded-words and long lines folded, leaving room for the name on the first
// line.
func (f *Field) Encoded() string {
	return foldFrom(Encode(f.name, f.body), len(f.name)+2)
}

// String returns the field as "Name: body" using the decoded body.
func (f *Field) String() string {
	return f.name + ": " + f.body
}

// Bytes returns the field in transport form as it is serialized, without the
// trailing line break.
func (f *Field) Bytes() []byte {
	return []byte(f.name + ": " + f.Encoded())
}

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	return &Field{name: f.name, body: f.body, params: f.Params()}
}
