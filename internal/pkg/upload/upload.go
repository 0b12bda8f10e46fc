package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedExtensions lists the accepted upload extensions (lowercase, no dot).
var allowedExtensions = map[string]bool{
	"pdf":  true,
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"doc":  true,
	"docx": true,
}

// Allowed reports whether the filename carries an accepted extension.
// The check is case-insensitive.
func Allowed(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return false
	}
	return allowedExtensions[ext]
}

// Sanitize strips any directory components from the original filename and
// replaces characters outside [A-Za-z0-9._-] with underscores, so an
// attacker-controlled name cannot traverse out of the upload directory.
func Sanitize(filename string) string {
	// Normalize both separators before taking the base name; the client
	// OS may not match the server OS.
	filename = strings.ReplaceAll(filename, "\\", "/")
	base := filepath.Base(filename)

	var b strings.Builder
	b.Grow(len(base))
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "" {
		cleaned = "file"
	}
	return cleaned
}

// Save writes the reader's content into dir under a sanitized name with a
// random unique prefix, so two uploads with the same original filename
// never collide. It returns the stored path.
func Save(dir, filename string, r io.Reader) (string, error) {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	stored := fmt.Sprintf("%s_%s", token, Sanitize(filename))
	path := filepath.Join(dir, stored)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close upload file: %w", err)
	}

	return path, nil
}
