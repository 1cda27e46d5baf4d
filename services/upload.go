package services

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var allowedImageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// ErrFileTooLarge rejects uploads above the configured size cap.
var ErrFileTooLarge error = &ValidationError{Message: "file too large"}

// UploadOverhead is the slack allowed on top of the file size cap for the
// multipart framing around the file.
const UploadOverhead = 64 << 10

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// ValidateImageFilename checks that a name is present and carries an allowed
// image extension (case-insensitive).
func ValidateImageFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return validationf("no selected file")
	}
	if !allowedImageExtensions[strings.ToLower(filepath.Ext(name))] {
		return validationf("file type not allowed, use png, jpg, jpeg or gif")
	}
	return nil
}

// SanitizeFilename reduces a client-supplied name to a safe base name:
// path separators and whitespace become underscores, everything outside
// [A-Za-z0-9_.-] is dropped, and leading/trailing dots are trimmed. The
// extension is kept and lowercased.
func SanitizeFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	base = strings.NewReplacer("/", " ", "\\", " ").Replace(base)
	base = strings.Join(strings.Fields(base), "_")
	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "image"
	}

	return base + strings.ToLower(unsafeFilenameChars.ReplaceAllString(ext, ""))
}

// StoredFilename prefixes the sanitized name with a random UUID so that
// concurrent uploads of the same file never collide.
func StoredFilename(name string) string {
	return uuid.New().String() + "_" + SanitizeFilename(name)
}
