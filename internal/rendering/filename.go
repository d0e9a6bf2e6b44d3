package rendering

import (
	"regexp"
	"strings"
)

var filenameUnsafe = regexp.MustCompile(`[^A-Za-z0-9]+`)

// ExportFilename derives a download filename from the document title. Runs of
// non-alphanumeric characters collapse to a single underscore so the result is
// safe for Content-Disposition headers and filesystems alike.
func ExportFilename(title, extension string) string {
	base := strings.Trim(filenameUnsafe.ReplaceAllString(title, "_"), "_")
	if base == "" {
		base = "autobiography"
	}
	return base + "." + extension
}
