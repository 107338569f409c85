package constants

import "strings"

// AllowedExtensions holds the file extensions the pipeline expects for
// receipts and invoices. Unexpected extensions are not rejected, only logged,
// since the OCR service is the real arbiter of readability.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsExpectedExt reports whether a filename carries one of the expected
// receipt extensions.
func IsExpectedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
