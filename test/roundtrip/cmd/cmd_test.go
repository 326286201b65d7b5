package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/pantomime/message/source"
)

const plainMsg = "Subject: Hi\r\n" +
	"Content-Type: multipart/mixed; boundary=\"B\"\r\n" +
	"\r\n" +
	"--B\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"Hello.\r\n" +
	"--B\r\n" +
	"Content-Type: application/pdf\r\n" +
	"Content-Disposition: attachment; filename=\"a.pdf\"\r\n" +
	"\r\n" +
	"%PDF\r\n" +
	"--B--\r\n"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs(args)
	err := Execute()
	return out.String(), err
}

// These share the cobra command globals, so they do not run in parallel.
func TestCommands(t *testing.T) {
	raw := filepath.Join(t.TempDir(), "raw.eml")
	require.NoError(t, os.WriteFile(raw, []byte(plainMsg), 0o644))

	// the first pass normalizes the blank lines around boundaries
	out, err := run(t, "one", raw)
	require.NoError(t, err)
	assert.Contains(t, out, "@@")

	m, err := source.NewString(plainMsg).Load()
	require.NoError(t, err)
	canon := &bytes.Buffer{}
	_, err = m.WriteTo(canon)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "plain.eml")
	require.NoError(t, os.WriteFile(path, canon.Bytes(), 0o644))

	out, err = run(t, "one", path)
	require.NoError(t, err)
	assert.Contains(t, out, "identical")

	out, err = run(t, "all", "--jobs", "2", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 messages, 0 failed")

	out, err = run(t, "tree", path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)

	out, err = run(t, "tree", "--attachments", path)
	require.NoError(t, err)
	assert.Contains(t, out, "0.1 application/pdf a.pdf")
}
