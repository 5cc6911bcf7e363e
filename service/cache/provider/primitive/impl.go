package primitive

import (
	"time"

	"github.com/coocood/freecache"
	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/service/cache/provider"
)

type impl struct {
	name  string
	cache *freecache.Cache
}

// NewPrimitive creates an in-process freecache layer of sizeMb megabytes.
func NewPrimitive(name string, sizeMb int) provider.Provider {
	return &impl{name, freecache.NewCache(sizeMb * 1024 * 1024)}
}

func (im *impl) Name() string {
	return im.name
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, time.Duration, error) {
	val, expireAt, err := im.cache.GetWithExpiration([]byte(key))
	if err == freecache.ErrNotFound {
		return nil, 0, provider.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).WithField("key", key).Error("cache.GetWithExpiration failed")
		return nil, 0, err
	}

	if expireAt == 0 {
		return val, 0, nil
	}
	ttl := time.Until(time.Unix(int64(expireAt), 0))
	if ttl < time.Second {
		ttl = time.Second
	}
	return val, ttl, nil
}

func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	// freecache counts whole seconds, round up so short ttls do not become forever
	secs := int((ttl + time.Second - 1) / time.Second)
	if err := im.cache.Set([]byte(key), value, secs); err != nil {
		c.WithField("err", err).WithField("key", key).WithField("size", len(value)).Warn("cache.Set failed")
		return err
	}
	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	im.cache.Del([]byte(key))
	return nil
}
