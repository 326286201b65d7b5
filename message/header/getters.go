package header

import (
	"strings"
	"time"

	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/pantomime/message/header/param"
)

// getParamValue will parse a param.Value out of the given field, falling back
// to lenient parsing when the field is malformed.
func (h *Header) getParamValue(name string) (*param.Value, error) {
	body, err := h.Get(name)
	if err != nil {
		return nil, err
	}

	pv := param.ParseLenient(body)
	h.setValue(name, pv)

	return pv, nil
}

// GetParamValue will return a param.Value for the first header field matching
// the given name. Parsing never fails, but a badly malformed field may give
// a strange result.
//
// This will return ErrNoSuchField if no field with the given name is present.
func (h *Header) GetParamValue(name string) (*param.Value, error) {
	if v, found := h.getValue(name); found {
		if pv, ok := v.(*param.Value); ok {
			return pv, nil
		}
	}
	return h.getParamValue(name)
}

// SetParamValue will replace all existing header fields with the given name
// with a single param.Value header containing the given param.Value.
func (h *Header) SetParamValue(name string, pv *param.Value) {
	h.Set(name, pv.String())
	h.setValue(name, pv)
}

// getParamValueParam gets a parameter of the param.Value header or returns an
// error.
func (h *Header) getParamValueParam(name, p string) (string, error) {
	pv, err := h.GetParamValue(name)
	if err != nil {
		return "", err
	}

	if v := pv.Parameter(p); v != "" {
		return v, nil
	}

	return "", ErrNoSuchFieldParameter
}

// setParamValueParam sets a parameter of the param.Value header. The header
// must already exist before calling this method.
func (h *Header) setParamValueParam(name, p, v string) error {
	pv, err := h.GetParamValue(name)
	if err != nil {
		return err
	}

	h.SetParamValue(name, param.Modify(pv, param.Set(p, v)))

	return nil
}

// GetContentType returns the Content-Type header as a param.Value.
func (h *Header) GetContentType() (*param.Value, error) {
	return h.GetParamValue(ContentType)
}

// SetContentType replaces the Content-Type with the given param.Value.
func (h *Header) SetContentType(v *param.Value) {
	h.SetParamValue(ContentType, v)
}

// GetMediaType returns the lower cased MIME type set in the Content-Type
// header, without its parameters.
func (h *Header) GetMediaType() (string, error) {
	pv, err := h.GetContentType()
	if err != nil {
		return "", err
	}
	return strings.ToLower(pv.MediaType()), nil
}

// SetMediaType changes the MIME type of the Content-Type header, keeping any
// parameters already there.
func (h *Header) SetMediaType(mt string) {
	pv, err := h.GetContentType()
	if err != nil {
		h.SetContentType(param.New(mt))
		return
	}
	h.SetContentType(param.Modify(pv, param.Change(mt)))
}

// GetCharset returns the charset parameter of the Content-Type header.
func (h *Header) GetCharset() (string, error) {
	return h.getParamValueParam(ContentType, param.Charset)
}

// SetCharset sets the charset parameter of the Content-Type header, which must
// already be present.
func (h *Header) SetCharset(c string) error {
	return h.setParamValueParam(ContentType, param.Charset, c)
}

// GetBoundary returns the boundary parameter of the Content-Type header.
func (h *Header) GetBoundary() (string, error) {
	return h.getParamValueParam(ContentType, param.Boundary)
}

// SetBoundary sets the boundary parameter of the Content-Type header, which
// must already be present.
func (h *Header) SetBoundary(b string) error {
	return h.setParamValueParam(ContentType, param.Boundary, b)
}

// GetContentDisposition returns the Content-Disposition header as a
// param.Value.
func (h *Header) GetContentDisposition() (*param.Value, error) {
	return h.GetParamValue(ContentDisposition)
}

// SetContentDisposition replaces the Content-Disposition header.
func (h *Header) SetContentDisposition(v *param.Value) {
	h.SetParamValue(ContentDisposition, v)
}

// GetPresentation returns the lower cased disposition, such as "inline" or
// "attachment", from the Content-Disposition header.
func (h *Header) GetPresentation() (string, error) {
	pv, err := h.GetContentDisposition()
	if err != nil {
		return "", err
	}
	return strings.ToLower(pv.Presentation()), nil
}

// IsAttachment returns true if the Content-Disposition is "attachment".
func (h *Header) IsAttachment() bool {
	p, err := h.GetPresentation()
	return err == nil && p == "attachment"
}

// GetFilename returns the filename parameter of the Content-Disposition
// header, or the name parameter of the Content-Type header if that is
// missing.
func (h *Header) GetFilename() (string, error) {
	fn, err := h.getParamValueParam(ContentDisposition, param.Filename)
	if err == nil {
		return fn, nil
	}

	if n, nerr := h.getParamValueParam(ContentType, param.Name); nerr == nil {
		return n, nil
	}

	return "", err
}

// GetTransferEncoding returns the lower cased Content-Transfer-Encoding.
func (h *Header) GetTransferEncoding() (string, error) {
	cte, err := h.Get(ContentTransferEncoding)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(cte)), nil
}

// SetTransferEncoding replaces the Content-Transfer-Encoding.
func (h *Header) SetTransferEncoding(cte string) {
	h.Set(ContentTransferEncoding, cte)
}

// GetContentID returns the Content-ID without its angle brackets.
func (h *Header) GetContentID() (string, error) {
	id, err := h.Get(ContentID)
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(id), "<>"), nil
}

// SetContentID replaces the Content-ID. Angle brackets are added.
func (h *Header) SetContentID(id string) {
	h.Set(ContentID, "<"+strings.Trim(id, "<>")+">")
}

// GetSubject returns the value of the Subject header field.
func (h *Header) GetSubject() (string, error) {
	return h.Get(Subject)
}

// SetSubject replaces the Subject header field.
func (h *Header) SetSubject(s string) {
	h.Set(Subject, s)
}

// GetMessageID returns the Message-ID header field.
func (h *Header) GetMessageID() (string, error) {
	return h.Get(MessageID)
}

// SetMessageID replaces the Message-ID header field.
func (h *Header) SetMessageID(id string) {
	h.Set(MessageID, id)
}

// getTime parses the header body as a date and caches the result.
func (h *Header) getTime(name string) (time.Time, error) {
	body, err := h.Get(name)
	if err != nil {
		return time.Time{}, err
	}

	t, err := ParseTime(body)
	if err != nil {
		return t, err
	}

	h.setValue(name, t)

	return t, nil
}

// GetTime gets the given date header field as a time.Time. It will attempt to
// parse the date in many formats, not just the format specified by RFC 5322
// (though, it will try that first).
//
// It will return an error if it is unable to parse the time value from the date
// header. It will return the zero value and ErrNoSuchField if the header does
// not exist.
func (h *Header) GetTime(name string) (time.Time, error) {
	if v, found := h.getValue(name); found {
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
	}
	return h.getTime(name)
}

// SetTime replaces the named field with the time formatted per RFC 5322.
func (h *Header) SetTime(name string, t time.Time) {
	h.Set(name, t.Format(time.RFC1123Z))
	h.setValue(name, t)
}

// GetDate returns the Date header as a time.Time. See GetTime.
func (h *Header) GetDate() (time.Time, error) {
	return h.GetTime(Date)
}

// SetDate updates the Date header from the given time.Time value.
func (h *Header) SetDate(d time.Time) {
	h.SetTime(Date, d)
}

// getAddressList parses the first named field as an address list and caches
// the result.
func (h *Header) getAddressList(name string) (addr.AddressList, error) {
	body, err := h.Get(name)
	if err != nil {
		return nil, err
	}

	al := ParseAddressList(body)
	h.setValue(name, al)

	return al, nil
}

// GetAddressList will return an addr.AddressList for the named field. This
// method works hard to avoid parse errors and tries to accept anything. As such
// a badly formatted address field might return a weird address value.
//
// It will return nil and ErrNoSuchField if the field is not set on the header.
func (h *Header) GetAddressList(name string) (addr.AddressList, error) {
	if v, found := h.getValue(name); found {
		if al, ok := v.(addr.AddressList); ok {
			return al, nil
		}
	}
	return h.getAddressList(name)
}

// SetAddressList replaces the named field with the given addresses.
func (h *Header) SetAddressList(name string, as ...addr.Address) {
	al := addr.AddressList(as)
	h.Set(name, al.String())
	h.setValue(name, al)
}

// setAddress allows the setting of an address field either from strings or
// from addresses or fails with an error.
func (h *Header) setAddress(name string, as []any) error {
	al := make(addr.AddressList, 0, len(as))
	for _, a := range as {
		switch v := a.(type) {
		case string:
			add, err := addr.ParseEmailAddress(v)
			if err != nil {
				return err
			}
			al = append(al, add)
		case addr.Address:
			al = append(al, v)
		default:
			return ErrWrongAddressType
		}
	}
	h.SetAddressList(name, al...)
	return nil
}

// GetFrom returns the From field as an addr.AddressList.
func (h *Header) GetFrom() (addr.AddressList, error) {
	return h.GetAddressList(From)
}

// SetFrom sets the From field from strings or addr.Address values.
func (h *Header) SetFrom(a ...any) error {
	return h.setAddress(From, a)
}

// GetTo returns the To field as an addr.AddressList.
func (h *Header) GetTo() (addr.AddressList, error) {
	return h.GetAddressList(To)
}

// SetTo sets the To field from strings or addr.Address values.
func (h *Header) SetTo(a ...any) error {
	return h.setAddress(To, a)
}

// GetCc returns the Cc field as an addr.AddressList.
func (h *Header) GetCc() (addr.AddressList, error) {
	return h.GetAddressList(Cc)
}

// SetCc sets the Cc field from strings or addr.Address values.
func (h *Header) SetCc(a ...any) error {
	return h.setAddress(Cc, a)
}

// GetBcc returns the Bcc field as an addr.AddressList.
func (h *Header) GetBcc() (addr.AddressList, error) {
	return h.GetAddressList(Bcc)
}

// SetBcc sets the Bcc field from strings or addr.Address values.
func (h *Header) SetBcc(a ...any) error {
	return h.setAddress(Bcc, a)
}

// GetReplyTo returns the Reply-To field as an addr.AddressList.
func (h *Header) GetReplyTo() (addr.AddressList, error) {
	return h.GetAddressList(ReplyTo)
}

// SetReplyTo sets the Reply-To field from strings or addr.Address values.
func (h *Header) SetReplyTo(a ...any) error {
	return h.setAddress(ReplyTo, a)
}
