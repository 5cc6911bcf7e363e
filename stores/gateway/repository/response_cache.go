package repository

import (
	"time"

	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/domain"
	"github.com/walrens/gateway/domain/gateway"
	"github.com/walrens/gateway/domain/keys"
	"github.com/walrens/gateway/domain/walrus"
	"github.com/walrens/gateway/service/cache"
	"github.com/walrens/gateway/service/cache/provider"
)

type ResponseCacheCfg struct {
	Cache   provider.Provider
	SiteTtl time.Duration
	BlobTtl time.Duration
}

type responseCache struct {
	site cache.Service
	blob cache.Service
}

// NewResponseCache keys entries by upstream url only. Site and blob entries
// share the provider and differ in ttl.
func NewResponseCache(cfg *ResponseCacheCfg) gateway.ResponseCacheRepo {
	return &responseCache{
		site: cache.New(cache.ServiceConfig{
			Ttl:   cfg.SiteTtl,
			Pfx:   keys.PfxUpstream,
			Cache: cfg.Cache,
		}),
		blob: cache.New(cache.ServiceConfig{
			Ttl:   cfg.BlobTtl,
			Pfx:   keys.PfxUpstream,
			Cache: cfg.Cache,
		}),
	}
}

func (r *responseCache) Get(c ctx.Ctx, url string) (*gateway.Entry, error) {
	entry := &gateway.Entry{}
	// ttl does not matter for reads
	if err := r.site.Get(c, keys.MD5(url), entry); err == cache.ErrNotFound {
		return nil, domain.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	// md5 collisions are not served
	if entry.Url != url {
		c.WithField("url", url).WithField("cachedUrl", entry.Url).Warn("cache key collision")
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

func (r *responseCache) Store(c ctx.Ctx, kind walrus.Kind, entry *gateway.Entry) error {
	svc := r.site
	if kind == walrus.KindBlob {
		svc = r.blob
	}
	return svc.Set(c, keys.MD5(entry.Url), entry)
}
