package project

import (
	"net/url"
	"strings"
)

// URIToPath decodes a file:// URI to a filesystem path.
func URIToPath(uri string) string {
	trimmed := strings.TrimPrefix(uri, "file://")
	if decoded, err := url.PathUnescape(trimmed); err == nil {
		return decoded
	}
	return trimmed
}

// PathToURI percent-encodes a path into a file:// URI. Path separators
// are preserved; '#' must be escaped or clients truncate the fragment.
func PathToURI(path string) string {
	var b strings.Builder
	b.WriteString("file://")
	for _, segment := range strings.Split(path, "/") {
		escaped := url.PathEscape(segment)
		escaped = strings.ReplaceAll(escaped, "#", "%23")
		b.WriteString(escaped)
		b.WriteString("/")
	}
	return strings.TrimSuffix(b.String(), "/")
}
