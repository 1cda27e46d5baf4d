package storage

import (
	"path/filepath"
	"strings"
)

var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
}

// ContentType maps an image file name to its MIME type.
func ContentType(name string) string {
	if ct, ok := imageContentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}
