package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redigo "github.com/gomodule/redigo/redis"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/walrens/gateway/base/metrics"
	"github.com/walrens/gateway/middleware"
	"github.com/walrens/gateway/service/aggregator"
	"github.com/walrens/gateway/service/redis"
	"github.com/walrens/gateway/stores/healthcheck/repository"
	"github.com/walrens/gateway/stores/healthcheck/usecase"
)

type healthSuite struct {
	suite.Suite

	upstream *httptest.Server
}

func TestHealthSuite(t *testing.T) {
	suite.Run(t, new(healthSuite))
}

func (s *healthSuite) SetupTest() {
	s.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
}

func (s *healthSuite) TearDownTest() {
	s.upstream.Close()
}

func (s *healthSuite) newEcho(r redis.Service, base string) *echo.Echo {
	e := echo.New()
	e.Use(middleware.InitMiddleware("").AddContext())
	agg := aggregator.NewClient(&aggregator.ClientCfg{})
	New(e, usecase.New(repository.New(r, agg, base)))
	return e
}

func (s *healthSuite) get(e *echo.Echo) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	return rec
}

func (s *healthSuite) TestWithoutRedis() {
	rec := s.get(s.newEcho(nil, s.upstream.URL))
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"data":{"cache":"ok","upstream":"ok"},"status":"success"}`, rec.Body.String())
}

func (s *healthSuite) TestUpstreamDown() {
	e := s.newEcho(nil, s.upstream.URL)
	s.upstream.Close()

	rec := s.get(e)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"data":{"cache":"ok","upstream":"unreachable"},"status":"success"}`, rec.Body.String())
}

func (s *healthSuite) TestRedis() {
	m, err := miniredis.Run()
	s.Require().NoError(err)
	addr := m.Addr()
	pool := &redigo.Pool{
		Dial: func() (redigo.Conn, error) { return redigo.Dial("tcp", addr) },
	}
	e := s.newEcho(redis.New("cache", metrics.New("cache"), &redis.Pools{Src: pool}), "")

	rec := s.get(e)
	s.Equal(http.StatusOK, rec.Code)

	m.Close()
	rec = s.get(e)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.JSONEq(`{"data":{"cache":"unavailable","upstream":"ok"},"status":"fail"}`, rec.Body.String())
}
