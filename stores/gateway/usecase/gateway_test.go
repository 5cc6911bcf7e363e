package usecase

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/domain"
	"github.com/walrens/gateway/domain/gateway"
	"github.com/walrens/gateway/domain/resolver"
	"github.com/walrens/gateway/domain/resolver/mocks"
	"github.com/walrens/gateway/domain/walrus"
	"github.com/walrens/gateway/service/aggregator"
	"github.com/walrens/gateway/service/cache/provider/primitive"
	"github.com/walrens/gateway/stores/gateway/repository"
)

var (
	mockCtx = ctx.Background()
)

type file struct {
	status int
	ctype  string
	body   string
}

// upstream is a fake aggregator counting hits per path
type upstream struct {
	mu    sync.Mutex
	hits  map[string]int
	files map[string]file
	block chan struct{}
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.hits[r.URL.Path]++
	f, ok := u.files[r.URL.Path]
	block := u.block
	u.mu.Unlock()

	if block != nil {
		<-block
	}
	if !ok {
		w.Header()["Content-Type"] = nil
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not found"))
		return
	}
	if f.ctype == "" {
		// suppress sniffing of net/http
		w.Header()["Content-Type"] = nil
	} else {
		w.Header().Set("Content-Type", f.ctype)
	}
	if f.status == 0 {
		f.status = http.StatusOK
	}
	w.WriteHeader(f.status)
	w.Write([]byte(f.body))
}

func (u *upstream) hitsOf(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[path]
}

type gatewaySuite struct {
	suite.Suite

	up       *upstream
	srv      *httptest.Server
	resolver *mocks.Usecase
	cache    gateway.ResponseCacheRepo
	cfg      *GatewayUseCaseCfg
	im       gateway.Usecase
}

func (s *gatewaySuite) SetupTest() {
	s.up = &upstream{
		hits: map[string]int{},
		files: map[string]file{
			"/sites/s1/index.html":     {ctype: "application/octet-stream", body: "<html>home</html>"},
			"/sites/s1/css/style.css":  {body: "body{}"},
			"/sites/s1/data.json":      {ctype: "application/json", body: "{}"},
			"/sites/s1/broken":         {status: http.StatusInternalServerError, body: "boom"},
			"/blobs/abc123":            {body: "\x89PNG\r\n\x1a\n"},
			"/testnet/blobs/abc123":    {body: "testnet"},
			"/sites/s2/app/index.html": {ctype: "text/html; charset=utf-8", body: "<html>app</html>"},
		},
	}
	s.srv = httptest.NewServer(s.up)

	s.resolver = mocks.NewUsecase(s.T())
	s.cache = repository.NewResponseCache(&repository.ResponseCacheCfg{
		Cache:   primitive.NewPrimitive("memory", 64),
		SiteTtl: time.Hour,
		BlobTtl: 10 * time.Minute,
	})
	s.cfg = &GatewayUseCaseCfg{
		Resolver:     s.resolver,
		Aggregator:   aggregator.NewClient(&aggregator.ClientCfg{Timeout: time.Second}),
		Cache:        s.cache,
		Base:         s.srv.URL,
		Networks:     map[string]string{"testnet": s.srv.URL + "/testnet"},
		FetchTimeout: 2 * time.Second,
	}
	s.im = NewGatewayUseCase(s.cfg)
}

func (s *gatewaySuite) TearDownTest() {
	s.srv.Close()
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(gatewaySuite))
}

func (s *gatewaySuite) record(name, value string) {
	s.resolver.On("Resolve", mock.Anything, name).Return(&resolver.Record{
		Name:     name,
		Key:      resolver.KeyWalrusSite,
		Value:    value,
		Strategy: resolver.StrategyText,
	}, nil)
}

func (s *gatewaySuite) waitCached(url string) {
	s.Eventually(func() bool {
		_, err := s.cache.Get(mockCtx, url)
		return err == nil
	}, time.Second, 10*time.Millisecond)
}

func (s *gatewaySuite) TestSiteRoot() {
	s.record("site.eth", `{"type":"site","id":"s1"}`)

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "site.eth", Path: "/"})
	s.Equal(http.StatusOK, resp.Status)
	s.Equal("<html>home</html>", string(resp.Body))
	s.Equal("text/html", resp.Header.Get("Content-Type"))
	s.Equal("public, max-age=3600", resp.Header.Get("Cache-Control"))
	s.Equal("MISS", resp.Header.Get(gateway.HeaderCache))
	s.Equal("site.eth", resp.Header.Get(gateway.HeaderEnsName))
	s.Equal("s1", resp.Header.Get(gateway.HeaderWalrusSite))
	s.Empty(resp.Header.Get(gateway.HeaderWalrusBlob))

	s.waitCached(s.srv.URL + "/sites/s1/index.html")

	resp = s.im.Serve(mockCtx, gateway.Request{EnsName: "site.eth", Path: "/"})
	s.Equal(http.StatusOK, resp.Status)
	s.Equal(gateway.CacheHit, resp.CacheStatus)
	s.Equal("HIT", resp.Header.Get(gateway.HeaderCache))
	s.Equal("<html>home</html>", string(resp.Body))
	s.Equal(1, s.up.hitsOf("/sites/s1/index.html"))
}

func (s *gatewaySuite) TestSiteRootAndIndexShareEntry() {
	s.record("site.eth", `{"type":"site","id":"s1"}`)

	s.im.Serve(mockCtx, gateway.Request{EnsName: "site.eth", Path: ""})
	s.waitCached(s.srv.URL + "/sites/s1/index.html")

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "site.eth", Path: "/index.html"})
	s.Equal(gateway.CacheHit, resp.CacheStatus)
	s.Equal(1, s.up.hitsOf("/sites/s1/index.html"))
}

func (s *gatewaySuite) TestSiteFileContentType() {
	s.record("site.eth", `{"type":"site","id":"s1"}`)

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "site.eth", Path: "/css/style.css"})
	s.Equal(http.StatusOK, resp.Status)
	s.Equal("text/css", resp.Header.Get("Content-Type"))
	s.Equal("body{}", string(resp.Body))

	resp = s.im.Serve(mockCtx, gateway.Request{EnsName: "site.eth", Path: "/data.json"})
	s.Equal("application/json", resp.Header.Get("Content-Type"))
}

func (s *gatewaySuite) TestSitePathStaysInSite() {
	s.record("site.eth", `{"type":"site","id":"s1"}`)

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "site.eth", Path: "/../../blobs/abc123"})
	s.Equal(1, s.up.hitsOf("/sites/s1/blobs/abc123"))
	s.Equal(0, s.up.hitsOf("/blobs/abc123"))
	s.NotEqual("\x89PNG\r\n\x1a\n", string(resp.Body))
}

func (s *gatewaySuite) TestCustomIndex() {
	s.record("app.eth", `{"type":"site","id":"s2","index":"app/index.html"}`)

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "app.eth", Path: "/"})
	s.Equal(http.StatusOK, resp.Status)
	s.Equal("text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	s.Equal("<html>app</html>", string(resp.Body))
}

func (s *gatewaySuite) TestBlobIgnoresPath() {
	s.record("blob.eth", "blob:abc123")

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "blob.eth", Path: "/anything/here"})
	s.Equal(http.StatusOK, resp.Status)
	s.Equal("\x89PNG\r\n\x1a\n", string(resp.Body))
	s.Equal(walrus.OctetStream, resp.Header.Get("Content-Type"))
	s.Equal("public, max-age=600", resp.Header.Get("Cache-Control"))
	s.Equal("abc123", resp.Header.Get(gateway.HeaderWalrusBlob))
	s.Empty(resp.Header.Get(gateway.HeaderWalrusSite))
	s.Equal(1, s.up.hitsOf("/blobs/abc123"))
}

func (s *gatewaySuite) TestBlobContentTypeByRequestPath() {
	s.record("blob.eth", "blob:abc123")

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "blob.eth", Path: "/logo.png"})
	s.Equal("image/png", resp.Header.Get("Content-Type"))
}

func (s *gatewaySuite) TestBlobContentTypeFollowsEachRequest() {
	s.record("blob.eth", "blob:abc123")
	s.record("other.eth", "blob:abc123")

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "blob.eth", Path: "/logo.png"})
	s.Equal(gateway.CacheMiss, resp.CacheStatus)
	s.Equal("image/png", resp.Header.Get("Content-Type"))
	s.waitCached(s.srv.URL + "/blobs/abc123")

	resp = s.im.Serve(mockCtx, gateway.Request{EnsName: "blob.eth", Path: "/report.pdf"})
	s.Equal(gateway.CacheHit, resp.CacheStatus)
	s.Equal("application/pdf", resp.Header.Get("Content-Type"))

	resp = s.im.Serve(mockCtx, gateway.Request{EnsName: "other.eth", Path: "/"})
	s.Equal(gateway.CacheHit, resp.CacheStatus)
	s.Equal(walrus.OctetStream, resp.Header.Get("Content-Type"))
	s.Equal(1, s.up.hitsOf("/blobs/abc123"))
}

func (s *gatewaySuite) TestBlobUpstreamTypeWins() {
	s.up.files["/blobs/typed"] = file{ctype: "image/webp", body: "webp"}
	s.record("typed.eth", "blob:typed")

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "typed.eth", Path: "/photo.png"})
	s.Equal("image/webp", resp.Header.Get("Content-Type"))
}

func (s *gatewaySuite) TestSniffContentType() {
	s.cfg.SniffContentType = true
	s.im = NewGatewayUseCase(s.cfg)
	s.record("blob.eth", "blob:abc123")

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "blob.eth", Path: "/"})
	s.Equal("image/png", resp.Header.Get("Content-Type"))
}

func (s *gatewaySuite) TestNetworkSelectsBase() {
	s.resolver.On("Resolve", mock.Anything, "test.eth").Return(&resolver.Record{
		Name:  "test.eth",
		Key:   resolver.KeyWalrusSite,
		Value: `{"type":"site","id":"s1","network":"testnet"}`,
	}, nil)
	s.up.files["/testnet/sites/s1/index.html"] = file{ctype: "text/html", body: "testnet home"}

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "test.eth", Path: "/"})
	s.Equal("testnet home", string(resp.Body))
	s.Equal(0, s.up.hitsOf("/sites/s1/index.html"))
}

func (s *gatewaySuite) TestDefaultNetwork() {
	s.cfg.DefaultNetwork = "testnet"
	s.im = NewGatewayUseCase(s.cfg)
	s.record("blob.eth", "blob:abc123")

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "blob.eth", Path: "/"})
	s.Equal("testnet", string(resp.Body))
}

func (s *gatewaySuite) TestCacheSharedAcrossNames() {
	s.record("one.eth", "blob:abc123")
	s.record("two.eth", "blob:abc123")

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "one.eth", Path: "/"})
	s.Equal(gateway.CacheMiss, resp.CacheStatus)
	s.waitCached(s.srv.URL + "/blobs/abc123")

	resp = s.im.Serve(mockCtx, gateway.Request{EnsName: "two.eth", Path: "/"})
	s.Equal(gateway.CacheHit, resp.CacheStatus)
	s.Equal("two.eth", resp.Header.Get(gateway.HeaderEnsName))
	s.Equal(1, s.up.hitsOf("/blobs/abc123"))
}

func (s *gatewaySuite) TestSpaFallback() {
	s.record("site.eth", `{"type":"site","id":"s1"}`)

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "site.eth", Path: "/about"})
	s.Equal(http.StatusOK, resp.Status)
	s.Equal(gateway.CacheSpaFallback, resp.CacheStatus)
	s.Equal("SPA-FALLBACK", resp.Header.Get(gateway.HeaderCache))
	s.Equal("text/html", resp.Header.Get("Content-Type"))
	s.Equal("<html>home</html>", string(resp.Body))
	s.Equal(1, s.up.hitsOf("/sites/s1/about"))
	s.Equal(1, s.up.hitsOf("/sites/s1/index.html"))

	s.waitCached(s.srv.URL + "/sites/s1/about")
	resp = s.im.Serve(mockCtx, gateway.Request{EnsName: "site.eth", Path: "/about"})
	s.Equal(gateway.CacheHit, resp.CacheStatus)
	s.Equal("<html>home</html>", string(resp.Body))
	s.Equal(1, s.up.hitsOf("/sites/s1/about"))
}

func (s *gatewaySuite) TestNoSpaFallbackWithExtension() {
	s.record("site.eth", `{"type":"site","id":"s1"}`)

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "site.eth", Path: "/missing.js"})
	s.Equal(http.StatusNotFound, resp.Status)
	s.Equal(gateway.CacheMiss, resp.CacheStatus)
	s.Equal("no-store", resp.Header.Get("Cache-Control"))
	s.Equal(0, s.up.hitsOf("/sites/s1/index.html"))
}

func (s *gatewaySuite) TestNoSpaFallbackForBlob() {
	s.record("blob.eth", "blob:missing")

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "blob.eth", Path: "/about"})
	s.Equal(http.StatusNotFound, resp.Status)
	s.Equal(1, s.up.hitsOf("/blobs/missing"))
}

func (s *gatewaySuite) TestSpaFallbackIndexMissing() {
	s.record("none.eth", `{"type":"site","id":"gone"}`)

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "none.eth", Path: "/about"})
	s.Equal(http.StatusNotFound, resp.Status)
	s.Equal(gateway.CacheMiss, resp.CacheStatus)
	s.Equal(1, s.up.hitsOf("/sites/gone/index.html"))
}

func (s *gatewaySuite) TestUpstreamErrorPropagated() {
	s.record("site.eth", `{"type":"site","id":"s1"}`)

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "site.eth", Path: "/broken"})
	s.Equal(http.StatusInternalServerError, resp.Status)
	s.Equal("no-store", resp.Header.Get("Cache-Control"))
	s.Equal(0, s.up.hitsOf("/sites/s1/index.html"))

	// errors are never cached
	s.im.Serve(mockCtx, gateway.Request{EnsName: "site.eth", Path: "/broken"})
	s.Equal(2, s.up.hitsOf("/sites/s1/broken"))
}

func (s *gatewaySuite) TestUpstreamUnreachable() {
	s.record("blob.eth", "blob:abc123")
	s.srv.Close()

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "blob.eth", Path: "/"})
	s.Equal(http.StatusBadGateway, resp.Status)
	s.Equal(gateway.CacheMiss, resp.CacheStatus)
	s.Equal("abc123", resp.Header.Get(gateway.HeaderWalrusBlob))
}

func (s *gatewaySuite) TestNoMapping() {
	s.resolver.On("Resolve", mock.Anything, "nothing.eth").Return(nil, domain.ErrRecordNotFound).Once()

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "nothing.eth", Path: "/"})
	s.Equal(http.StatusNotFound, resp.Status)
	s.Equal("no mapping found for this name", string(resp.Body))
	s.Equal("MISS", resp.Header.Get(gateway.HeaderCache))
	s.Equal("nothing.eth", resp.Header.Get(gateway.HeaderEnsName))
}

func (s *gatewaySuite) TestInvalidName() {
	s.resolver.On("Resolve", mock.Anything, "bad..eth").Return(nil, domain.ErrInvalidName).Once()

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "bad..eth", Path: "/"})
	s.Equal(http.StatusNotFound, resp.Status)
}

func (s *gatewaySuite) TestResolutionFailed() {
	err := errors.New("dial tcp: connection refused")
	s.resolver.On("Resolve", mock.Anything, "down.eth").Return(nil, err).Once()

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "down.eth", Path: "/"})
	s.Equal(http.StatusBadGateway, resp.Status)
	s.Equal("resolution failed", string(resp.Body))
}

func (s *gatewaySuite) TestInvalidMapping() {
	s.record("junk.eth", "{not json")

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "junk.eth", Path: "/"})
	s.Equal(http.StatusBadRequest, resp.Status)
	s.Equal("invalid mapping format", string(resp.Body))
	s.Empty(s.up.hits)
}

func (s *gatewaySuite) TestSizeGuard() {
	s.cfg.MaxCacheableBytes = 4
	s.im = NewGatewayUseCase(s.cfg)
	s.record("site.eth", `{"type":"site","id":"s1"}`)

	resp := s.im.Serve(mockCtx, gateway.Request{EnsName: "site.eth", Path: "/"})
	s.Equal(http.StatusOK, resp.Status)
	s.Equal("<html>home</html>", string(resp.Body))

	resp = s.im.Serve(mockCtx, gateway.Request{EnsName: "site.eth", Path: "/"})
	s.Equal(gateway.CacheMiss, resp.CacheStatus)
	s.Equal(2, s.up.hitsOf("/sites/s1/index.html"))
}

func (s *gatewaySuite) TestConcurrentMissesCoalesce() {
	s.record("blob.eth", "blob:abc123")
	block := make(chan struct{})
	s.up.mu.Lock()
	s.up.block = block
	s.up.mu.Unlock()

	const n = 8
	var wg sync.WaitGroup
	resps := make([]*gateway.Response, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resps[i] = s.im.Serve(mockCtx, gateway.Request{EnsName: "blob.eth", Path: "/"})
		}(i)
	}

	s.Eventually(func() bool { return s.up.hitsOf("/blobs/abc123") == 1 }, time.Second, 5*time.Millisecond)
	// let every request join the in-flight fetch
	time.Sleep(200 * time.Millisecond)
	close(block)
	wg.Wait()

	s.Equal(1, s.up.hitsOf("/blobs/abc123"))
	for _, resp := range resps {
		s.Equal(http.StatusOK, resp.Status)
		s.Equal("\x89PNG\r\n\x1a\n", string(resp.Body))
	}
}

func (s *gatewaySuite) TestCancelledRequest() {
	s.record("blob.eth", "blob:abc123")
	block := make(chan struct{})
	s.up.mu.Lock()
	s.up.block = block
	s.up.mu.Unlock()

	c, cancel := ctx.WithCancel(mockCtx)
	done := make(chan *gateway.Response, 1)
	go func() {
		done <- s.im.Serve(c, gateway.Request{EnsName: "blob.eth", Path: "/"})
	}()
	s.Eventually(func() bool { return s.up.hitsOf("/blobs/abc123") == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	resp := <-done
	s.Equal(http.StatusServiceUnavailable, resp.Status)

	// the detached fetch still fills the cache
	close(block)
	s.waitCached(s.srv.URL + "/blobs/abc123")
}

func (s *gatewaySuite) TestResolve() {
	s.record("site.eth", `{"type":"site","id":"s1"}`)
	s.resolver.On("Owner", mock.Anything, "site.eth").Return("0x00000000000000000000000000000000000000aa", nil).Once()

	res, err := s.im.Resolve(mockCtx, "site.eth")
	s.NoError(err)
	s.Equal(&gateway.Resolution{
		EnsName:     "site.eth",
		RecordKey:   resolver.KeyWalrusSite,
		Record:      `{"type":"site","id":"s1"}`,
		Mapping:     walrus.Site("s1", "", ""),
		UpstreamUrl: s.srv.URL + "/sites/s1/index.html",
		Owner:       "0x00000000000000000000000000000000000000aa",
	}, res)
}

func (s *gatewaySuite) TestResolveOwnerBestEffort() {
	s.record("blob.eth", "blob:abc123")
	s.resolver.On("Owner", mock.Anything, "blob.eth").Return("", errors.New("rpc down")).Once()

	res, err := s.im.Resolve(mockCtx, "blob.eth")
	s.NoError(err)
	s.Empty(res.Owner)
	s.Equal(s.srv.URL+"/blobs/abc123", res.UpstreamUrl)
}

func (s *gatewaySuite) TestResolveErrors() {
	s.resolver.On("Resolve", mock.Anything, "nothing.eth").Return(nil, domain.ErrRecordNotFound).Once()
	_, err := s.im.Resolve(mockCtx, "nothing.eth")
	s.ErrorIs(err, domain.ErrRecordNotFound)

	s.record("junk.eth", "walrus-site:")
	_, err = s.im.Resolve(mockCtx, "junk.eth")
	s.ErrorIs(err, domain.ErrInvalidMapping)
}
