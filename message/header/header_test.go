package header_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/pantomime/message/header"
	"github.com/zostay/pantomime/message/header/param"
)

func parse(lines ...string) *header.Header {
	return header.Parse(lines, nil)
}

func TestParse(t *testing.T) {
	t.Parallel()

	h := header.Parse(
		[]string{
			"Subject: =?utf-8?Q?h=C3=A9llo?=",
			"  world",
			"From:   sterling@example.com",
			"this is junk",
			"X-Split: one",
			"two",
			"Content-Type: text/plain",
		},
		[]header.Break{
			header.LF, header.LF, header.LF, header.LF, header.CR, header.LF, header.LF,
		},
	)

	assert.Equal(t, []string{"Subject", "From", "X-Split", "Content-Type"}, h.Names())
	assert.Equal(t, []string{"this is junk"}, h.InvalidLines())

	s, err := h.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "héllo  world", s)

	from, err := h.Get("from")
	require.NoError(t, err)
	assert.Equal(t, "sterling@example.com", from)

	split, err := h.Get("X-Split")
	require.NoError(t, err)
	assert.Equal(t, "onetwo", split)
}

func TestParse_StopsAtBlank(t *testing.T) {
	t.Parallel()

	h := parse("A: 1", "", "B: 2")
	assert.Equal(t, 1, h.Len())
	assert.False(t, h.Has("B"))
}

func TestHeader_AddSetRemove(t *testing.T) {
	t.Parallel()

	h := parse("Received: one", "Subject: hi", "received: two")

	all, err := h.GetAll("RECEIVED")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, all)

	h.Add("Received", "three")
	all, _ = h.GetAll("Received")
	assert.Equal(t, []string{"one", "two", "three"}, all)

	h.Set("Received", "only")
	assert.Equal(t, []string{"Received", "Subject"}, h.Names())
	all, _ = h.GetAll("Received")
	assert.Equal(t, []string{"only"}, all)

	h.Set("X-New", "val")
	assert.Equal(t, []string{"Received", "Subject", "X-New"}, h.Names())

	require.NoError(t, h.Remove("received"))
	assert.Equal(t, []string{"Subject", "X-New"}, h.Names())
	assert.ErrorIs(t, h.Remove("received"), header.ErrNoSuchField)

	_, err = h.Get("Received")
	assert.ErrorIs(t, err, header.ErrNoSuchField)
	_, err = h.GetAll("Received")
	assert.ErrorIs(t, err, header.ErrNoSuchField)
	assert.Nil(t, h.GetFirst("Received"))
}

func TestHeader_Clone(t *testing.T) {
	t.Parallel()

	h := parse("Subject: hi", "Content-Type: text/plain")
	_, err := h.GetContentType()
	require.NoError(t, err)

	c := h.Clone()
	c.SetSubject("changed")
	c.SetMediaType("text/html")

	s, _ := h.GetSubject()
	assert.Equal(t, "hi", s)
	mt, _ := h.GetMediaType()
	assert.Equal(t, "text/plain", mt)
	mt, _ = c.GetMediaType()
	assert.Equal(t, "text/html", mt)
}

func TestHeader_String(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.Add("Subject", "héllo")
	h.Add("To", "a@example.com")

	assert.Equal(t,
		"Subject: =?utf-8?Q?h=C3=A9llo?=\r\nTo: a@example.com\r\n\r\n",
		h.String())
}

func TestHeader_ContentType(t *testing.T) {
	t.Parallel()

	h := parse(
		`Content-Type: Multipart/Alternative; boundary="abc 123"; charset=latin1`,
		"Content-Transfer-Encoding:  Base64 ",
	)

	mt, err := h.GetMediaType()
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mt)

	b, err := h.GetBoundary()
	require.NoError(t, err)
	assert.Equal(t, "abc 123", b)

	cs, err := h.GetCharset()
	require.NoError(t, err)
	assert.Equal(t, "latin1", cs)

	cte, err := h.GetTransferEncoding()
	require.NoError(t, err)
	assert.Equal(t, "base64", cte)

	require.NoError(t, h.SetBoundary("xyz"))
	b, _ = h.GetBoundary()
	assert.Equal(t, "xyz", b)

	raw, _ := h.Get(header.ContentType)
	assert.Equal(t, "multipart/alternative; boundary=xyz; charset=latin1", raw)

	_, err = h.GetFilename()
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	h = parse("Subject: none")
	_, err = h.GetBoundary()
	assert.ErrorIs(t, err, header.ErrNoSuchField)
	assert.ErrorIs(t, h.SetCharset("utf-8"), header.ErrNoSuchField)

	h = parse("Content-Type: text/plain")
	_, err = h.GetCharset()
	assert.ErrorIs(t, err, header.ErrNoSuchFieldParameter)
}

func TestHeader_Disposition(t *testing.T) {
	t.Parallel()

	h := parse(`Content-Disposition: Attachment; filename="report.pdf"`)
	assert.True(t, h.IsAttachment())

	p, err := h.GetPresentation()
	require.NoError(t, err)
	assert.Equal(t, "attachment", p)

	fn, err := h.GetFilename()
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", fn)

	h = parse(`Content-Type: image/png; name="cat.png"`)
	assert.False(t, h.IsAttachment())
	fn, err = h.GetFilename()
	require.NoError(t, err)
	assert.Equal(t, "cat.png", fn)

	h.SetContentDisposition(param.New("inline", map[string]string{param.Filename: "dog.png"}))
	fn, _ = h.GetFilename()
	assert.Equal(t, "dog.png", fn)
}

func TestHeader_ContentID(t *testing.T) {
	t.Parallel()

	h := &header.Header{}
	h.SetContentID("img1@example.com")

	raw, _ := h.Get(header.ContentID)
	assert.Equal(t, "<img1@example.com>", raw)

	id, err := h.GetContentID()
	require.NoError(t, err)
	assert.Equal(t, "img1@example.com", id)
}

func TestHeader_Date(t *testing.T) {
	t.Parallel()

	want := time.Date(2021, 2, 3, 4, 5, 6, 0, time.UTC)
	for _, d := range []string{
		"Wed, 03 Feb 2021 04:05:06 +0000",
		"Wed Feb 03 04:05:06 2021 UTC",
	} {
		h := parse("Date: " + d)
		got, err := h.GetDate()
		require.NoError(t, err, d)
		assert.True(t, want.Equal(got), d)
	}

	h := parse("Date: not a date at all")
	_, err := h.GetDate()
	assert.Error(t, err)

	h = &header.Header{}
	h.SetDate(want)
	raw, _ := h.Get(header.Date)
	assert.Equal(t, "Wed, 03 Feb 2021 04:05:06 +0000", raw)
}

func TestHeader_Addresses(t *testing.T) {
	t.Parallel()

	h := parse(
		`From: "Sterling Hanenkamp" <sterling@example.com>`,
		"To: a@example.com, b@example.com",
		"Cc: Weird Person weird (a comment), another@",
	)

	from, err := h.GetFrom()
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "sterling@example.com", from[0].Address())

	to, err := h.GetTo()
	require.NoError(t, err)
	assert.Len(t, to, 2)

	cc, err := h.GetCc()
	require.NoError(t, err)
	assert.Len(t, cc, 2)

	require.NoError(t, h.SetTo("c@example.com"))
	to, _ = h.GetTo()
	require.Len(t, to, 1)
	assert.Equal(t, "c@example.com", to[0].Address())

	assert.ErrorIs(t, h.SetCc(42), header.ErrWrongAddressType)

	_, err = h.GetBcc()
	assert.ErrorIs(t, err, header.ErrNoSuchField)
}
