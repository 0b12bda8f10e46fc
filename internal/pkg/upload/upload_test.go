package upload

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllowed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		filename string
		want     bool
	}{
		{"proof.pdf", true},
		{"photo.JPG", true},
		{"photo.jpeg", true},
		{"scan.png", true},
		{"receipt.doc", true},
		{"receipt.docx", true},
		{"evil.exe", false},
		{"script.sh", false},
		{"archive.pdf.zip", false},
		{"noextension", false},
		{"", false},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, Allowed(tc.filename), "Allowed(%q)", tc.filename)
	}
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"proof.pdf", "proof.pdf"},
		{"../../etc/passwd", "passwd"},
		{"..\\..\\boot.ini", "boot.ini"},
		{"my receipt (1).pdf", "my_receipt__1_.pdf"},
		{"résumé.pdf", "r_sum_.pdf"},
		{"...", "file"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, Sanitize(tc.in), "Sanitize(%q)", tc.in)
	}
}

func TestSaveContentIntact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := []byte("%PDF-1.4 fake body \x00\x01\x02")

	path, err := Save(dir, "proof.pdf", bytes.NewReader(content))
	require.NoError(t, err)
	require.Equal(t, dir, filepath.Dir(path))
	require.True(t, strings.HasSuffix(path, "_proof.pdf"))

	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, content, stored)
}

func TestSaveSameNameNoCollision(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	first, err := Save(dir, "proof.pdf", strings.NewReader("first"))
	require.NoError(t, err)
	second, err := Save(dir, "proof.pdf", strings.NewReader("second"))
	require.NoError(t, err)

	require.NotEqual(t, first, second)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, "first", string(a))
	require.Equal(t, "second", string(b))
}

func TestSaveMissingDir(t *testing.T) {
	t.Parallel()

	_, err := Save(filepath.Join(t.TempDir(), "does-not-exist"), "proof.pdf", strings.NewReader("x"))
	require.Error(t, err)
}
