package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/domain/keys"
	"github.com/walrens/gateway/service/cache/provider"
	"github.com/walrens/gateway/service/cache/provider/primitive"
)

var (
	testHttpCache = primitive.NewPrimitive("httpCache", 8)
)

type cacheMiddlewareSuite struct {
	suite.Suite

	cache provider.Provider
}

func (s *cacheMiddlewareSuite) SetupSuite() {
	SetupCache(testHttpCache)
	s.cache = testHttpCache
}

func TestCacheMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(cacheMiddlewareSuite))
}

func (s *cacheMiddlewareSuite) serve(target string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("ctx", ctx.Background())

	s.NoError(CacheHttp(30 * time.Second)(h)(c))
	return rec
}

func (s *cacheMiddlewareSuite) TestCacheMiddleware() {
	res := "Hello, World"
	rec := s.serve("/api/resolve?name=a.eth", func(c echo.Context) error {
		return c.String(http.StatusOK, res)
	})
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(res, rec.Body.String())

	rec2 := s.serve("/api/resolve?name=a.eth", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello, again")
	})
	s.Equal(http.StatusOK, rec2.Code)
	s.Equal(res, rec2.Body.String())
	s.Equal(echo.MIMETextPlainCharsetUTF8, rec2.Header().Get(echo.HeaderContentType))

	key := generateKey("/api/resolve?name=a.eth")
	_, _, err := s.cache.Get(ctx.Background(), keys.RedisKey(keys.PfxHttpCache, key))
	s.NoError(err)
}

func (s *cacheMiddlewareSuite) TestSortedParamsShareKey() {
	s.serve("/api/x?b=2&a=1", func(c echo.Context) error {
		return c.String(http.StatusOK, "first")
	})
	rec := s.serve("/api/x?a=1&b=2", func(c echo.Context) error {
		return c.String(http.StatusOK, "second")
	})
	s.Equal("first", rec.Body.String())
}

func (s *cacheMiddlewareSuite) TestErrorNotCached() {
	s.serve("/api/resolve?name=missing.eth", func(c echo.Context) error {
		return c.String(http.StatusNotFound, "Not found")
	})
	rec := s.serve("/api/resolve?name=missing.eth", func(c echo.Context) error {
		return c.String(http.StatusOK, "found")
	})
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("found", rec.Body.String())
}
