package header

import (
	"errors"
	"strings"

	"github.com/zostay/pantomime/message/header/field"
)

// Errors returned by various header methods and functions.
var (
	// ErrNoSuchField is returned by Header methods when the operation
	// being performed failed because the header named does not exist.
	ErrNoSuchField = errors.New("no such header field")

	// ErrNoSuchFieldParameter is returned by Header methods when the
	// operation being performed failed because the header exists, but a
	// sub-field of the header does not exist.
	ErrNoSuchFieldParameter = errors.New("no such header field parameter")

	// ErrWrongAddressType is returned by address setting methods that accept
	// either a string or an addr.Address when something other than those
	// types is provided.
	ErrWrongAddressType = errors.New("incorrect address type during write")
)

// These are the header field names this package has special handling for.
const (
	Bcc                     = "Bcc"
	Cc                      = "Cc"
	ContentDisposition      = "Content-Disposition"
	ContentID               = "Content-ID"
	ContentTransferEncoding = "Content-Transfer-Encoding"
	ContentType             = "Content-Type"
	Date                    = "Date"
	From                    = "From"
	InReplyTo               = "In-Reply-To"
	MessageID               = "Message-ID"
	MIMEVersion             = "MIME-Version"
	References              = "References"
	ReplyTo                 = "Reply-To"
	Sender                  = "Sender"
	Subject                 = "Subject"
	To                      = "To"
	XMailer                 = "X-Mailer"
)

// Header is an ordered collection of header fields. Names are matched
// case-insensitively, but the name is kept as given. A name may occur any
// number of times and the order fields were added is kept.
//
// Lines that could not be read as a field are kept separately and are not
// written back out.
//
// The getter methods of this object will return an error if the field being
// fetched has not been set on the header. The error returned will be
// ErrNoSuchField.
type Header struct {
	fields  []*field.Field
	invalid []string

	// valueCache holds parsed values of fields. It must only hold immutable
	// values and is cleared for a name whenever that name is changed.
	valueCache map[string]any
}

// Len returns the number of fields.
func (h *Header) Len() int {
	return len(h.fields)
}

// Fields returns the fields in order. The slice is a copy, but the fields are
// not.
func (h *Header) Fields() []*field.Field {
	fs := make([]*field.Field, len(h.fields))
	copy(fs, h.fields)
	return fs
}

// Names returns the name of every field in order, repeats included.
func (h *Header) Names() []string {
	ns := make([]string, len(h.fields))
	for i, f := range h.fields {
		ns[i] = f.Name()
	}
	return ns
}

// InvalidLines returns the lines that were not understood during Parse.
func (h *Header) InvalidLines() []string {
	return h.invalid
}

// Has returns true if at least one field with the name is present.
func (h *Header) Has(name string) bool {
	return h.GetFirst(name) != nil
}

// GetFirst returns the first field with the given name or nil.
func (h *Header) GetFirst(name string) *field.Field {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name(), name) {
			return f
		}
	}
	return nil
}

// Get returns the body of the first field with the given name. It returns
// ErrNoSuchField if there is none.
func (h *Header) Get(name string) (string, error) {
	f := h.GetFirst(name)
	if f == nil {
		return "", ErrNoSuchField
	}
	return f.Body(), nil
}

// GetAll returns the bodies of every field with the given name, in order. It
// returns nil with ErrNoSuchField if there are none.
func (h *Header) GetAll(name string) ([]string, error) {
	var bodies []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name(), name) {
			bodies = append(bodies, f.Body())
		}
	}

	if len(bodies) == 0 {
		return nil, ErrNoSuchField
	}

	return bodies, nil
}

// Add appends a new field with the given name and decoded body.
func (h *Header) Add(name, body string) {
	h.AddField(field.New(name, body))
}

// AddField appends the given field.
func (h *Header) AddField(f *field.Field) {
	h.forget(f.Name())
	h.fields = append(h.fields, f)
}

// Set replaces every field with the given name with a single field. The new
// field takes the place of the first one replaced. If there was none, it is
// appended.
func (h *Header) Set(name, body string) {
	h.forget(name)

	ix := -1
	fs := h.fields[:0]
	for _, f := range h.fields {
		if !strings.EqualFold(f.Name(), name) {
			fs = append(fs, f)
			continue
		}

		if ix < 0 {
			ix = len(fs)
			f.SetBody(body)
			fs = append(fs, f)
		}
	}
	h.fields = fs

	if ix < 0 {
		h.fields = append(h.fields, field.New(name, body))
	}
}

// Remove deletes every field with the given name. It returns ErrNoSuchField
// if there were none.
func (h *Header) Remove(name string) error {
	h.forget(name)

	before := len(h.fields)
	fs := h.fields[:0]
	for _, f := range h.fields {
		if !strings.EqualFold(f.Name(), name) {
			fs = append(fs, f)
		}
	}
	for i := len(fs); i < before; i++ {
		h.fields[i] = nil
	}
	h.fields = fs

	if len(fs) == before {
		return ErrNoSuchField
	}

	return nil
}

// Clone returns a deep copy of the header.
func (h *Header) Clone() *Header {
	fs := make([]*field.Field, len(h.fields))
	for i, f := range h.fields {
		fs[i] = f.Clone()
	}

	// cached values are immutable and may be shared
	vc := make(map[string]any, len(h.valueCache))
	for k, v := range h.valueCache {
		vc[k] = v
	}

	return &Header{
		fields:     fs,
		invalid:    append([]string(nil), h.invalid...),
		valueCache: vc,
	}
}

// String returns the header in transport form with CRLF line endings,
// including the blank line that ends it.
func (h *Header) String() string {
	var b strings.Builder
	for _, f := range h.fields {
		b.Write(f.Bytes())
		b.WriteString(CRLF.String())
	}
	b.WriteString(CRLF.String())
	return b.String()
}

// getValue retrieves the cached value. The second value reports whether a
// value was cached.
func (h *Header) getValue(name string) (any, bool) {
	v, found := h.valueCache[strings.ToLower(name)]
	return v, found
}

// setValue replaces the cached value for the given name.
func (h *Header) setValue(name string, value any) {
	if h.valueCache == nil {
		h.valueCache = make(map[string]any, len(h.fields))
	}
	h.valueCache[strings.ToLower(name)] = value
}

// forget drops the cached value for the given name.
func (h *Header) forget(name string) {
	delete(h.valueCache, strings.ToLower(name))
}
