package extract

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath converts a document reference to a local path.
// Handles file:// URIs, a leading ~/ and bare paths.
func ResolvePath(ref string) string {
	if strings.HasPrefix(ref, "file://") {
		if u, err := url.Parse(ref); err == nil && u.Path != "" {
			return u.Path
		}
		return strings.TrimPrefix(ref, "file://")
	}
	if strings.HasPrefix(ref, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ref[2:])
		}
	}
	// Bare paths pass through unchanged
	return ref
}
