package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/domain"
	"github.com/walrens/gateway/domain/gateway"
	"github.com/walrens/gateway/domain/keys"
	"github.com/walrens/gateway/domain/walrus"
	"github.com/walrens/gateway/service/cache/provider"
	"github.com/walrens/gateway/service/cache/provider/primitive"
)

var (
	mockCtx = ctx.Background()
)

type responseCacheSuite struct {
	suite.Suite

	provider provider.Provider
	im       gateway.ResponseCacheRepo
}

func (s *responseCacheSuite) SetupTest() {
	s.provider = primitive.NewPrimitive("memory", 8)
	s.im = NewResponseCache(&ResponseCacheCfg{
		Cache:   s.provider,
		SiteTtl: time.Hour,
		BlobTtl: 10 * time.Minute,
	})
}

func TestResponseCacheSuite(t *testing.T) {
	suite.Run(t, new(responseCacheSuite))
}

func (s *responseCacheSuite) TestStoreGet() {
	url := "https://aggregator/sites/s1/index.html"
	entry := &gateway.Entry{
		Url:          url,
		Status:       200,
		ContentType:  "text/html",
		CacheControl: "public, max-age=3600",
		Body:         []byte("<html></html>"),
		StoredAt:     time.Unix(1700000000, 0).UTC(),
	}

	_, err := s.im.Get(mockCtx, url)
	s.Equal(domain.ErrNotFound, err)

	s.NoError(s.im.Store(mockCtx, walrus.KindSite, entry))
	got, err := s.im.Get(mockCtx, url)
	s.NoError(err)
	s.Equal(entry, got)
}

func (s *responseCacheSuite) TestTtlByKind() {
	site := &gateway.Entry{Url: "https://aggregator/sites/s1/index.html", Status: 200}
	blob := &gateway.Entry{Url: "https://aggregator/blobs/b1", Status: 200}
	s.NoError(s.im.Store(mockCtx, walrus.KindSite, site))
	s.NoError(s.im.Store(mockCtx, walrus.KindBlob, blob))

	_, siteTtl, err := s.provider.Get(mockCtx, keys.RedisKey(keys.PfxUpstream, keys.MD5(site.Url)))
	s.NoError(err)
	_, blobTtl, err := s.provider.Get(mockCtx, keys.RedisKey(keys.PfxUpstream, keys.MD5(blob.Url)))
	s.NoError(err)

	s.True(siteTtl > 50*time.Minute)
	s.True(blobTtl <= 10*time.Minute)
}

func (s *responseCacheSuite) TestCollisionIsMiss() {
	url := "https://aggregator/blobs/b1"
	other := &gateway.Entry{Url: "https://aggregator/blobs/b2", Status: 200}

	// plant an entry for another url under the key of url
	svc := s.im.(*responseCache).blob
	s.NoError(svc.Set(mockCtx, keys.MD5(url), other))

	_, err := s.im.Get(mockCtx, url)
	s.Equal(domain.ErrNotFound, err)
}
