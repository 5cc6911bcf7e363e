package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"
	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/base/database/redisclient"
	"github.com/walrens/gateway/base/metrics"
	"github.com/walrens/gateway/service/cache/provider"
	"github.com/walrens/gateway/service/redis"
)

var (
	mockCtx = ctx.Background()
)

type testsuite struct {
	suite.Suite
	mr *miniredis.Miniredis
	im provider.Provider
	zp provider.Provider
}

func (ts *testsuite) SetupTest() {
	ts.mr = miniredis.RunT(ts.T())
	pool, err := redisclient.ConnectRedis(ts.mr.Addr(), "")
	ts.Require().NoError(err)

	r := redis.New("cache", metrics.New("redis"), &redis.Pools{Src: pool})
	ts.im = NewRedis(r, false)
	ts.zp = NewRedis(r, true)
}

func Test(t *testing.T) {
	suite.Run(t, new(testsuite))
}

func (ts *testsuite) TestSetGet() {
	k := "key"
	v := []byte("value")

	ts.NoError(ts.im.Set(mockCtx, k, v, time.Minute))
	raw, err := ts.mr.Get(k)
	ts.NoError(err)
	ts.Equal(string(v), raw)

	r, ttl, err := ts.im.Get(mockCtx, k)
	ts.NoError(err)
	ts.Equal(v, r)
	ts.Equal(time.Minute, ttl)
}

func (ts *testsuite) TestZip() {
	k := "key"
	v := []byte("value value value value")

	ts.NoError(ts.zp.Set(mockCtx, k, v, time.Minute))
	raw, err := ts.mr.Get(k)
	ts.NoError(err)
	ts.NotEqual(string(v), raw)

	r, _, err := ts.zp.Get(mockCtx, k)
	ts.NoError(err)
	ts.Equal(v, r)
}

func (ts *testsuite) TestGetNotFound() {
	_, _, err := ts.im.Get(mockCtx, "missing")
	ts.Equal(provider.ErrNotFound, err)
}

func (ts *testsuite) TestGetForever() {
	ts.NoError(ts.mr.Set("key", "value"))
	r, ttl, err := ts.im.Get(mockCtx, "key")
	ts.NoError(err)
	ts.Equal([]byte("value"), r)
	ts.Equal(time.Duration(0), ttl)
}

func (ts *testsuite) TestDel() {
	ts.NoError(ts.im.Set(mockCtx, "key", []byte("value"), time.Minute))
	ts.NoError(ts.im.Del(mockCtx, "key"))
	ts.False(ts.mr.Exists("key"))
}
