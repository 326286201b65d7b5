package param

import (
	"mime"
	"sort"
	"strings"

	"github.com/zostay/pantomime/message/header/field"
)

// Well-known parameter names.
const (
	Boundary = "boundary"
	Charset  = "charset"
	Filename = "filename"
	Name     = "name"
	Size     = "size"
)

// Value is a parameterized header value, such as the body of a Content-type or
// Content-disposition header. It is immutable. Use Modify to get an altered
// copy.
type Value struct {
	value  string
	params map[string]string
}

// New returns a value with the given main value and parameters. Parameter
// names are lower cased.
func New(v string, ps ...map[string]string) *Value {
	params := make(map[string]string)
	for _, p := range ps {
		for k, pv := range p {
			params[strings.ToLower(k)] = pv
		}
	}
	return &Value{value: v, params: params}
}

// Parse parses a parameterized value strictly, per RFC 2045 and RFC 2231.
func Parse(v string) (*Value, error) {
	mt, ps, err := mime.ParseMediaType(v)
	if err != nil {
		return nil, err
	}
	return &Value{value: mt, params: ps}, nil
}

// ParseLenient parses a value that Parse rejects using the much more
// forgiving subfield tokenizer. It always returns something.
func ParseLenient(v string) *Value {
	if pv, err := Parse(v); err == nil {
		return pv
	}

	ps := field.Tokenize(v)
	mt := ps[field.MainParam]
	delete(ps, field.MainParam)

	return &Value{value: mt, params: ps}
}

// Modifier describes a change to make to a Value.
type Modifier func(*Value)

// Modify returns a copy of v with the modifiers applied.
func Modify(v *Value, changes ...Modifier) *Value {
	nv := New(v.value, v.params)
	for _, change := range changes {
		change(nv)
	}
	return nv
}

// Change replaces the main value.
func Change(v string) Modifier {
	return func(pv *Value) { pv.value = v }
}

// Set sets a parameter.
func Set(k, v string) Modifier {
	return func(pv *Value) { pv.params[strings.ToLower(k)] = v }
}

// Delete removes a parameter.
func Delete(k string) Modifier {
	return func(pv *Value) { delete(pv.params, strings.ToLower(k)) }
}

// Value returns the main value.
func (pv *Value) Value() string {
	return pv.value
}

// MediaType is a synonym for Value, for use with Content-type.
func (pv *Value) MediaType() string {
	return pv.value
}

// Presentation is a synonym for Value, for use with Content-disposition.
func (pv *Value) Presentation() string {
	return pv.value
}

// Type returns the part of the media type before the slash, or an empty
// string if there is no slash.
func (pv *Value) Type() string {
	if t, _, ok := strings.Cut(pv.value, "/"); ok {
		return t
	}
	return ""
}

// Subtype returns the part of the media type after the slash, or an empty
// string if there is no slash.
func (pv *Value) Subtype() string {
	if _, s, ok := strings.Cut(pv.value, "/"); ok {
		return s
	}
	return ""
}

// Parameters returns a copy of the parameters.
func (pv *Value) Parameters() map[string]string {
	ps := make(map[string]string, len(pv.params))
	for k, v := range pv.params {
		ps[k] = v
	}
	return ps
}

// Parameter returns the named parameter or an empty string.
func (pv *Value) Parameter(k string) string {
	return pv.params[strings.ToLower(k)]
}

// Charset returns the charset parameter.
func (pv *Value) Charset() string {
	return pv.Parameter(Charset)
}

// Boundary returns the boundary parameter.
func (pv *Value) Boundary() string {
	return pv.Parameter(Boundary)
}

// Filename returns the filename parameter.
func (pv *Value) Filename() string {
	return pv.Parameter(Filename)
}

// String formats the value for use as a header body. Parameters are written in
// name order, quoted where needed.
func (pv *Value) String() string {
	if s := mime.FormatMediaType(pv.value, pv.params); s != "" {
		return s
	}

	names := make([]string, 0, len(pv.params))
	for k := range pv.params {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(pv.value)
	for _, k := range names {
		b.WriteString("; ")
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(strings.ReplaceAll(pv.params[k], `"`, `\"`))
		b.WriteString(`"`)
	}
	return b.String()
}

// Bytes is String as a byte slice.
func (pv *Value) Bytes() []byte {
	return []byte(pv.String())
}
