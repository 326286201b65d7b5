package message_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/pantomime/message"
	"github.com/zostay/pantomime/message/header"
)

func subTypes(t *testing.T, m *message.Multi) []string {
	t.Helper()

	subs, err := m.SubParts()
	require.NoError(t, err)

	types := make([]string, len(subs))
	for i, sub := range subs {
		types[i] = sub.ContentType()
	}
	return types
}

func TestMulti_SetAlternative(t *testing.T) {
	t.Parallel()

	m := message.NewPart().SpecializeAsMulti()
	_, err := m.AddSubPart()
	require.NoError(t, err)

	require.NoError(t, m.SetAlternative(
		message.Content{Text: "plain"},
		message.Content{Text: "<i>html</i>", Charset: "iso-8859-1"},
	))

	assert.True(t, m.IsAlternative())
	assert.Equal(t, []string{"text/plain", "text/html"}, subTypes(t, m))

	html, err := m.SubPart(1)
	require.NoError(t, err)
	assert.Equal(t, "iso-8859-1", html.Charset())
	str, err := html.Single().BodyString()
	require.NoError(t, err)
	assert.Equal(t, "<i>html</i>", str)
}

func TestMulti_SetRelatedInline(t *testing.T) {
	t.Parallel()

	m := message.NewPart().SpecializeAsMulti()
	require.NoError(t, m.SetRelated(
		message.Content{Text: "plain"},
		message.Content{Text: "<img src=\"cid:a@b\">"},
		message.InlineImage{
			ContentID: "a@b",
			MediaType: "image/gif",
			Open:      message.OpenString("GIF89a"),
		},
	))

	assert.True(t, m.IsRelated())
	assert.Equal(t, []string{"multipart/alternative", "image/gif"}, subTypes(t, m))

	img, err := m.SubPart(1)
	require.NoError(t, err)
	assert.False(t, img.IsAttachment())
	assert.Equal(t, "a@b", img.ContentID())

	pres, err := img.Header().GetPresentation()
	require.NoError(t, err)
	assert.Equal(t, "inline", pres)

	fn, err := img.Header().GetFilename()
	require.NoError(t, err)
	assert.Equal(t, "a@b", fn)

	cd, err := img.Header().GetContentDisposition()
	require.NoError(t, err)
	assert.Equal(t, "6", cd.Parameter("size"))
}

func TestMulti_SetSignedEncrypted(t *testing.T) {
	t.Parallel()

	m := message.NewPart().SpecializeAsMulti()
	require.NoError(t, m.SetSigned(message.Content{Text: "signed text"},
		"-----BEGIN PGP SIGNATURE-----", "application/pgp-signature"))
	assert.True(t, m.IsSigned())
	assert.Equal(t, []string{"text/plain", "application/pgp-signature"}, subTypes(t, m))

	require.NoError(t, m.SetEncrypted("Version: 1", "application/pgp-encrypted",
		message.Content{Text: "-----BEGIN PGP MESSAGE-----"}))
	assert.True(t, m.IsEncrypted())
	assert.False(t, m.IsSigned())
	assert.Equal(t, []string{"application/pgp-encrypted", "application/octet-stream"}, subTypes(t, m))
}

func TestMulti_SetReport(t *testing.T) {
	t.Parallel()

	original := message.New()
	original.SetHeader(header.Subject, "Lost")
	require.NoError(t, original.SetPlainBody("never arrived", ""))

	p := message.NewPart()
	m := p.SpecializeAsMulti()
	require.NoError(t, m.SetReport(context.Background(),
		message.Content{Text: "Delivery failed."},
		"Reporting-MTA: dns; mx.example.com\r\n",
		original))

	assert.True(t, m.IsReport())
	assert.Equal(t,
		[]string{"text/plain", "message/delivery-status", "message/rfc822"},
		subTypes(t, m))

	rt, err := p.Header().GetContentType()
	require.NoError(t, err)
	assert.Equal(t, "delivery-status", rt.Parameter("report-type"))

	orig, err := m.SubPart(2)
	require.NoError(t, err)
	assert.True(t, orig.IsAttachment())

	raw, err := orig.Single().BodyString()
	require.NoError(t, err)
	assert.Contains(t, raw, "Subject: Lost\r\n")
	assert.Contains(t, raw, "never arrived")
}

func TestPart_AddAttachment(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.zzq")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o600))

	p := message.NewPart()
	require.NoError(t, p.SpecializeAsSingle().SetString("cover letter", "text/plain", ""))

	att, err := p.AddAttachmentFile(path, "")
	require.NoError(t, err)

	assert.Equal(t, "multipart/mixed", p.ContentType())
	assert.Equal(t, "0.1", att.Path().String())
	assert.True(t, att.IsAttachment())
	assert.Equal(t, "application/octet-stream", att.ContentType())

	fn, err := att.Header().GetFilename()
	require.NoError(t, err)
	assert.Equal(t, "data.zzq", fn)

	cd, err := att.Header().GetContentDisposition()
	require.NoError(t, err)
	assert.Equal(t, "10", cd.Parameter("size"))

	pdf, err := p.AddAttachmentString("%PDF-1.4", "report.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType())
	assert.Equal(t, "0.2", pdf.Path().String())

	_, err = p.AddAttachmentFile(filepath.Join(dir, "missing.pdf"), "")
	var ioe *message.IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, "stat", ioe.Op)
}
