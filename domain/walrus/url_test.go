package walrus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const base = "https://aggregator.walrus.space"

func TestBuildURL(t *testing.T) {
	site := Site("s1", "home.html", "")

	tests := []struct {
		desc    string
		mapping Mapping
		path    string
		base    string
		exp     string
	}{
		{"blob", Blob("abc123"), "/", base, base + "/blobs/abc123"},
		{"blob ignores path", Blob("abc123"), "/some/file.txt", base, base + "/blobs/abc123"},
		{"blob id is escaped", Blob("a/b c"), "", base, base + "/blobs/a%2Fb%20c"},
		{"site root", site, "/", base, base + "/sites/s1/home.html"},
		{"site empty path", site, "", base, base + "/sites/s1/home.html"},
		{"site file", site, "/assets/app.js", base, base + "/sites/s1/assets/app.js"},
		{"site repeated slashes collapse", site, "//x", base, base + "/sites/s1/x"},
		{"site trailing slash kept", site, "/docs/", base, base + "/sites/s1/docs/"},
		{"site dot segments resolved", site, "/a/./b/../c.js", base, base + "/sites/s1/a/c.js"},
		{"site parent cannot leave root", site, "/../../blobs/abc123", base, base + "/sites/s1/blobs/abc123"},
		{"site parent only is root", site, "/..", base, base + "/sites/s1/home.html"},
		{"site index dot segments", Site("s1", "../index.html", ""), "/", base, base + "/sites/s1/index.html"},
		{"site index leading slash", Site("s1", "/docs/index.html", ""), "/", base, base + "/sites/s1/docs/index.html"},
		{"site default index", Mapping{Kind: KindSite, ID: "s1"}, "/", base, base + "/sites/s1/index.html"},
		{"site segments escaped", site, "/my page/a?b.html", base, base + "/sites/s1/my%20page/a%3Fb.html"},
		{"trailing slash on base", site, "/", base + "/", base + "/sites/s1/home.html"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.exp, BuildURL(tt.mapping, tt.path, tt.base), tt.desc)
	}
}

func TestBuildURLRootIdempotent(t *testing.T) {
	m := Site("0xabc", "", "")
	assert.Equal(t, BuildURL(m, "/", base), BuildURL(m, "", base))
}

func TestHasExtension(t *testing.T) {
	assert.True(t, HasExtension("/app.js"))
	assert.True(t, HasExtension("/a/b/c.min.css"))
	assert.False(t, HasExtension("/dashboard"))
	assert.False(t, HasExtension("/v1.2/dashboard"))
	assert.False(t, HasExtension("/"))
	assert.False(t, HasExtension(""))
}

func TestContentTypeByPath(t *testing.T) {
	tests := []struct {
		path  string
		exp   string
		expOk bool
	}{
		{"/index.html", "text/html", true},
		{"style.CSS", "text/css", true},
		{"/app.js", "application/javascript", true},
		{"/data.json", "application/json", true},
		{"/img/logo.png", "image/png", true},
		{"/a.jpg", "image/jpeg", true},
		{"/a.jpeg", "image/jpeg", true},
		{"/a.gif", "image/gif", true},
		{"/a.svg", "image/svg+xml", true},
		{"/favicon.ico", "image/x-icon", true},
		{"/f.woff", "font/woff", true},
		{"/f.woff2", "font/woff2", true},
		{"/f.ttf", "font/ttf", true},
		{"/doc.pdf", "application/pdf", true},
		{"/archive.unknown", OctetStream, false},
		{"/v1.2/noext", OctetStream, false},
	}
	for _, tt := range tests {
		got, ok := ContentTypeByPath(tt.path)
		assert.Equal(t, tt.exp, got, tt.path)
		assert.Equal(t, tt.expOk, ok, tt.path)
	}
}
