package source_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/pantomime/message"
	"github.com/zostay/pantomime/message/source"
	"github.com/zostay/pantomime/mimepath"
)

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

var alternative = crlf(`From: sterling@example.com
To: steve@example.com
Subject: Hello
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="XYZ"

This is a preamble.
--XYZ
Content-Type: text/plain; charset=utf-8

Hello World!

--XYZ
Content-Type: text/html; charset=utf-8

<p>Hello World!</p>

--XYZ--
`)

func TestStream_Alternative(t *testing.T) {
	t.Parallel()

	s := source.NewString(alternative)
	root := mimepath.Root()

	n, err := s.SubPartCount(root)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	b, has, err := s.Boundary(root)
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, "XYZ", b)

	pre, err := s.Preamble(root)
	require.NoError(t, err)
	assert.Equal(t, "This is a preamble.", pre)

	epi, err := s.Epilogue(root)
	require.NoError(t, err)
	assert.Equal(t, "", epi)

	bodies := []string{"Hello World!", "<p>Hello World!</p>"}
	for i, want := range bodies {
		p := root.Child(i)

		r, err := s.Body(p)
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), p.String())

		size, err := s.TransferEncodedBodySize(p)
		require.NoError(t, err)
		assert.Equal(t, int64(len(want)), size)

		start, err := s.PartStart(p)
		require.NoError(t, err)
		end, err := s.BodyEnd(p)
		require.NoError(t, err)

		total, err := s.TransferEncodedSize(p)
		require.NoError(t, err)
		assert.Equal(t, end-start, total)
	}

	size, err := s.TransferEncodedSize(root)
	require.NoError(t, err)
	assert.Equal(t, int64(len(alternative)), size)

	m, err := s.Load()
	require.NoError(t, err)

	subj, err := m.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Hello", subj)

	require.True(t, m.IsMultipart())
	assert.True(t, m.Multi().IsAlternative())

	plain, err := m.PlainBody()
	require.NoError(t, err)
	require.NotNil(t, plain)
	str, err := plain.Single().BodyString()
	require.NoError(t, err)
	assert.Equal(t, "Hello World!", str)
	assert.Equal(t, "0.0", plain.Path().String())

	html, err := m.HTMLBody()
	require.NoError(t, err)
	require.NotNil(t, html)
	assert.Equal(t, "0.1", html.Path().String())
}

func TestStream_LFOnly(t *testing.T) {
	t.Parallel()

	s := source.NewString(strings.ReplaceAll(alternative, "\r\n", "\n"))

	n, err := s.SubPartCount(mimepath.Root())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	r, err := s.Body(mimepath.New(0, 1))
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello World!</p>", string(got))
}

func TestStream_ConsecutiveBoundaries(t *testing.T) {
	t.Parallel()

	msg := crlf(`Content-Type: multipart/mixed; boundary="B"

--B
--B
Content-Type: text/plain

one
--B
Content-Type: text/plain

two
--B--
`)

	s := source.NewString(msg)

	n, err := s.SubPartCount(mimepath.Root())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for i, want := range []string{"one", "two"} {
		r, err := s.Body(mimepath.New(0, i))
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestStream_Unterminated(t *testing.T) {
	t.Parallel()

	msg := crlf(`Content-Type: multipart/mixed; boundary="B"

--B
Content-Type: text/plain

one
--B
Content-Type: text/plain

two and on`)

	s := source.NewString(msg)

	n, err := s.SubPartCount(mimepath.Root())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	end, err := s.BodyEnd(mimepath.New(0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(len(msg)), end)

	r, err := s.Body(mimepath.New(0, 1))
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "two and on", string(got))
}

func TestStream_MissingBoundary(t *testing.T) {
	t.Parallel()

	msg := crlf(`Content-Type: multipart/mixed; boundary="Nope"

Just text.
`)

	s := source.NewString(msg)

	n, err := s.SubPartCount(mimepath.Root())
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	he, err := s.HeaderEnd(mimepath.Root())
	require.NoError(t, err)
	bs, err := s.BodyStart(mimepath.Root())
	require.NoError(t, err)
	assert.Equal(t, he, bs)
}

func TestStream_PrefixBoundary(t *testing.T) {
	t.Parallel()

	msg := crlf(`Content-Type: multipart/mixed; boundary="blah"

--blah
Content-Type: multipart/alternative; boundary="blahblah"

--blahblah
Content-Type: text/plain

inner one
--blahblah
Content-Type: text/html

inner two
--blahblah--
--blah
Content-Type: text/plain

outer two
--blah--
`)

	s := source.NewString(msg)

	n, err := s.SubPartCount(mimepath.Root())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.SubPartCount(mimepath.New(0, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tests := map[string]string{
		"0.0.0": "inner one",
		"0.0.1": "inner two",
		"0.1":   "outer two",
	}

	for path, want := range tests {
		r, err := s.Body(mimepath.MustParse(path))
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), path)
	}
}

func TestStream_Attachment(t *testing.T) {
	t.Parallel()

	msg := crlf(`Content-Type: multipart/mixed; boundary="B"

--B
Content-Type: text/plain

body
--B
Content-Type: application/octet-stream
Content-Disposition: attachment; filename="x.bin"
Content-Transfer-Encoding: base64

aGVsbG8=
--B--
`)

	s := source.NewString(msg)

	att, err := s.IsAttachment(mimepath.New(0, 1))
	require.NoError(t, err)
	assert.True(t, att)

	att, err = s.IsAttachment(mimepath.New(0, 0))
	require.NoError(t, err)
	assert.False(t, att)

	m, err := s.Load()
	require.NoError(t, err)

	atts, err := m.AllAttachments()
	require.NoError(t, err)
	require.Len(t, atts, 1)

	body, err := atts[0].Single().BodyString()
	require.NoError(t, err)
	assert.Equal(t, "hello", body)

	fn, err := atts[0].Header().GetFilename()
	require.NoError(t, err)
	assert.Equal(t, "x.bin", fn)
}

func TestStream_Epilogue(t *testing.T) {
	t.Parallel()

	msg := crlf(`Content-Type: multipart/mixed; boundary="B"

--B

one
--B--
The end.
`)

	s := source.NewString(msg)

	epi, err := s.Epilogue(mimepath.Root())
	require.NoError(t, err)
	assert.Equal(t, "The end.", epi)

	pre, err := s.Preamble(mimepath.Root())
	require.NoError(t, err)
	assert.Equal(t, "", pre)
}

func TestStream_ReusedBoundary(t *testing.T) {
	t.Parallel()

	msg := crlf(`Content-Type: multipart/mixed; boundary="A"

--A
Content-Type: multipart/alternative; boundary="A"

--A
Content-Type: text/plain

inner
--A--
--A
Content-Type: text/plain

outer
--A--
`)

	s := source.NewString(msg)
	root := mimepath.Root()
	nested := root.Child(0)

	n, err := s.SubPartCount(root)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = s.SubPartCount(nested)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	paths := []mimepath.Path{
		root.Child(0), root.Child(1), root.Child(2),
		nested.Child(0), nested.Child(1),
	}
	for _, p := range paths {
		size, err := s.TransferEncodedBodySize(p)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, size, int64(0), p.String())

		size, err = s.TransferEncodedSize(p)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, size, int64(0), p.String())
	}

	// the nested multipart ends where its own first boundary begins
	size, err := s.TransferEncodedBodySize(nested)
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)

	bodies := map[string]string{"0.1": "inner", "0.2": "outer", "0.0.0": "inner", "0.0.1": "outer"}
	for path, want := range bodies {
		r, err := s.Body(mimepath.MustParse(path))
		require.NoError(t, err)
		got, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), path)
	}
}

func TestStream_UncleClamp(t *testing.T) {
	t.Parallel()

	msg := crlf(`Content-Type: multipart/mixed; boundary="A"

--A
Content-Type: multipart/alternative; boundary="B"

--B
Content-Type: text/plain

inner
--A
Content-Type: text/plain

outer
--A--
`)

	s := source.NewString(msg)
	root := mimepath.Root()
	leaf := mimepath.New(0, 0, 0)

	n, err := s.SubPartCount(root)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.SubPartCount(root.Child(0))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// the inner multipart never closes, so its last part stops before the
	// next outer part
	end, err := s.BodyEnd(leaf)
	require.NoError(t, err)
	assert.Equal(t, int64(strings.Index(msg, "inner")+len("inner")), end)

	r, err := s.Body(leaf)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "inner", string(got))

	r, err = s.Body(root.Child(1))
	require.NoError(t, err)
	got, err = io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "outer", string(got))
}

func TestStream_EmptyBoundary(t *testing.T) {
	t.Parallel()

	msg := crlf(`Content-Type: multipart/mixed; boundary=""

--
Content-Type: text/plain

hello
----
`)

	s := source.NewString(msg)
	root := mimepath.Root()

	b, has, err := s.Boundary(root)
	require.NoError(t, err)
	assert.True(t, has)
	assert.Equal(t, "", b)

	n, err := s.SubPartCount(root)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	m, err := s.Load()
	require.NoError(t, err)
	require.True(t, m.IsMultipart())
	assert.Equal(t, "", m.Multi().Boundary())

	subs, err := m.Multi().SubParts()
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "text/plain", subs[0].ContentType())

	body, err := subs[0].Single().BodyString()
	require.NoError(t, err)
	assert.Equal(t, "hello", body)

	out := &bytes.Buffer{}
	_, err = m.WriteTo(out)
	require.NoError(t, err)

	again, err := source.NewBytes(out.Bytes()).Load()
	require.NoError(t, err)
	require.True(t, again.IsMultipart())

	subs, err = again.Multi().SubParts()
	require.NoError(t, err)
	require.Len(t, subs, 1)
	body, err = subs[0].Single().BodyString()
	require.NoError(t, err)
	assert.Equal(t, "hello", body)
}

func TestStream_FirstBoundaryWins(t *testing.T) {
	t.Parallel()

	msg := crlf(`Content-Type: multipart/mixed; boundary="A"
Content-Type: multipart/mixed; boundary="B"

--A
Content-Type: text/plain

one
--A--
`)

	s := source.NewString(msg)
	root := mimepath.Root()

	b, _, err := s.Boundary(root)
	require.NoError(t, err)
	assert.Equal(t, "A", b)

	headerEnd, err := s.HeaderEnd(root)
	require.NoError(t, err)

	m, err := s.Part(root)
	require.NoError(t, err)
	require.True(t, m.IsMultipart())
	assert.Equal(t, "A", m.Multi().Boundary())

	b, _, err = s.Boundary(root)
	require.NoError(t, err)
	assert.Equal(t, "A", b)

	again, err := s.HeaderEnd(root)
	require.NoError(t, err)
	assert.Equal(t, headerEnd, again)
}

func TestStream_MissingPartSize(t *testing.T) {
	t.Parallel()

	s := source.NewString(alternative)
	missing := mimepath.New(0, 7)

	size, err := s.TransferEncodedSize(missing)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), size)

	size, err = s.TransferEncodedBodySize(missing)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), size)
}

func TestStream_DashBoundary(t *testing.T) {
	t.Parallel()

	msg := crlf(`Content-Type: multipart/mixed; boundary="--"

----
Content-Type: text/plain

one
----
Content-Type: text/plain

two
------
`)

	s := source.NewString(msg)

	n, err := s.SubPartCount(mimepath.Root())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

type failingReaderAt struct {
	data  []byte
	after int64
}

func (f *failingReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= f.after {
		return 0, errors.New("disk on fire")
	}
	n := copy(p, f.data[off:])
	if int64(n)+off > f.after {
		n = int(f.after - off)
		return n, errors.New("disk on fire")
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *failingReaderAt) Size() (int64, error) { return int64(len(f.data)), nil }
func (f *failingReaderAt) Close() error         { return nil }

func TestStream_IOError(t *testing.T) {
	t.Parallel()

	s := source.New(&failingReaderAt{data: []byte(alternative), after: 20})

	_, err := s.SubPartCount(mimepath.Root())
	require.Error(t, err)

	var ioe *message.IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, "read", ioe.Op)
}

func TestStream_Free(t *testing.T) {
	t.Parallel()

	s := source.NewString(alternative)
	require.NoError(t, s.Free())
	require.NoError(t, s.Free())

	_, err := s.SubPartCount(mimepath.Root())
	assert.ErrorIs(t, err, source.ErrFreed)
}

func TestStream_PartOutOfRange(t *testing.T) {
	t.Parallel()

	s := source.NewString(alternative)

	_, err := s.Part(mimepath.New(0, 7))
	assert.ErrorIs(t, err, message.ErrIndexOutOfRange)
}
