package walrus

import (
	"net/url"
	"path"
	"strings"
)

// SitePath returns the file path, relative to the site root, that serves
// reqPath. The root path maps to the index file. Dot segments are resolved
// against the site root and never climb above it.
func SitePath(m Mapping, reqPath string) string {
	p := cleanPath(reqPath)
	if p == "" {
		index := m.Index
		if index == "" {
			index = DefaultIndex
		}
		return cleanPath(index)
	}
	return p
}

// cleanPath roots p, resolves dot segments and drops the leading slash.
// A trailing slash survives.
func cleanPath(p string) string {
	cleaned := strings.TrimPrefix(path.Clean("/"+p), "/")
	if cleaned != "" && strings.HasSuffix(p, "/") {
		cleaned += "/"
	}
	return cleaned
}

// BuildURL computes the aggregator URL serving reqPath of m under base.
// Blobs are single objects, so reqPath is ignored for them.
func BuildURL(m Mapping, reqPath, base string) string {
	base = strings.TrimRight(base, "/")

	if m.Kind == KindBlob {
		return base + "/blobs/" + url.PathEscape(m.ID)
	}
	return base + "/sites/" + url.PathEscape(m.ID) + "/" + escapePath(SitePath(m, reqPath))
}

func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
