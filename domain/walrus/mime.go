package walrus

import (
	"path"
	"strings"
)

const OctetStream = "application/octet-stream"

var mimeTypes = map[string]string{
	"html":  "text/html",
	"htm":   "text/html",
	"css":   "text/css",
	"js":    "application/javascript",
	"mjs":   "application/javascript",
	"json":  "application/json",
	"xml":   "application/xml",
	"txt":   "text/plain",
	"md":    "text/markdown",
	"png":   "image/png",
	"jpg":   "image/jpeg",
	"jpeg":  "image/jpeg",
	"gif":   "image/gif",
	"svg":   "image/svg+xml",
	"webp":  "image/webp",
	"ico":   "image/x-icon",
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"ttf":   "font/ttf",
	"otf":   "font/otf",
	"eot":   "application/vnd.ms-fontobject",
	"pdf":   "application/pdf",
	"zip":   "application/zip",
	"wasm":  "application/wasm",
	"mp4":   "video/mp4",
	"webm":  "video/webm",
	"mp3":   "audio/mpeg",
	"wav":   "audio/wav",
	"ogg":   "audio/ogg",
}

// lastSegment returns the part of p after its final slash.
func lastSegment(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// HasExtension reports whether the last segment of p contains a dot.
func HasExtension(p string) bool {
	return strings.Contains(lastSegment(p), ".")
}

// ContentTypeByPath maps the file extension of p to a MIME type. ok is false
// when the extension is missing or unknown, in which case OctetStream is returned.
func ContentTypeByPath(p string) (contentType string, ok bool) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(lastSegment(p)), "."))
	if t, found := mimeTypes[ext]; found {
		return t, true
	}
	return OctetStream, false
}
