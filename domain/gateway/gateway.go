package gateway

import (
	"net/http"
	"time"

	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/domain/walrus"
)

// CacheStatus is the value of the diagnostic x-cache header
type CacheStatus string

const (
	CacheHit         CacheStatus = "HIT"
	CacheMiss        CacheStatus = "MISS"
	CacheSpaFallback CacheStatus = "SPA-FALLBACK"
)

const (
	HeaderCache      = "x-cache"
	HeaderEnsName    = "X-ENS-Name"
	HeaderWalrusBlob = "X-Walrus-Blob-Id"
	HeaderWalrusSite = "X-Walrus-Site-Id"
)

// Request is an inbound request for path of an ENS name. Path always starts with "/".
type Request struct {
	EnsName string
	Path    string
}

// Response is what the gateway answers, cache status included
type Response struct {
	Status      int
	Header      http.Header
	Body        []byte
	CacheStatus CacheStatus
}

// Entry is a cached aggregator response, keyed by the upstream url it was
// fetched from
type Entry struct {
	Url          string    `json:"url"`
	Status       int       `json:"status"`
	ContentType  string    `json:"contentType"`
	CacheControl string    `json:"cacheControl"`
	Body         []byte    `json:"body"`
	StoredAt     time.Time `json:"storedAt"`
	// UpstreamContentType is the header the aggregator sent, empty when none
	UpstreamContentType string `json:"upstreamContentType,omitempty"`
}

// Resolution describes how a name maps onto walrus
type Resolution struct {
	EnsName     string         `json:"ensName"`
	RecordKey   string         `json:"recordKey"`
	Record      string         `json:"record"`
	Mapping     walrus.Mapping `json:"mapping"`
	UpstreamUrl string         `json:"upstreamUrl"`
	Owner       string         `json:"owner,omitempty"`
}

// ResponseCacheRepo is the shared cache of aggregator responses.
// Get returns domain.ErrNotFound on miss.
type ResponseCacheRepo interface {
	Get(c ctx.Ctx, url string) (*Entry, error)
	Store(c ctx.Ctx, kind walrus.Kind, entry *Entry) error
}

// Usecase serves content of ENS names from walrus. Serve never fails, every
// error is turned into a Response.
type Usecase interface {
	Serve(c ctx.Ctx, req Request) *Response
	Resolve(c ctx.Ctx, name string) (*Resolution, error)
}
