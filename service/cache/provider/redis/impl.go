package redis

import (
	"time"

	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/service/cache/provider"
	"github.com/walrens/gateway/service/redis"
)

type impl struct {
	redis redis.Service
	zip   bool
}

// NewRedis creates a shared layer on redis. With zip values are gzipped on the wire.
func NewRedis(redis redis.Service, zip bool) provider.Provider {
	return &impl{redis, zip}
}

func (im *impl) Name() string {
	return "redis:" + im.redis.Name()
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, time.Duration, error) {
	get := im.redis.Get
	if im.zip {
		get = im.redis.GetZip
	}

	val, err := get(c, key)
	if err == redis.ErrNotFound {
		return nil, 0, provider.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).WithField("key", key).Error("redis.Get failed")
		return nil, 0, err
	}

	ttl, err := im.redis.TTL(c, key)
	if err == redis.ErrNoTTL {
		return val, 0, nil
	} else if err == redis.ErrNotFound {
		// expired in between
		return nil, 0, provider.ErrNotFound
	} else if err != nil {
		c.WithField("err", err).WithField("key", key).Error("redis.TTL failed")
		return nil, 0, err
	}
	return val, time.Duration(ttl) * time.Second, nil
}

func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	set := im.redis.Set
	if im.zip {
		set = im.redis.SetZip
	}
	if err := set(c, key, value, ttl); err != nil {
		c.WithField("err", err).WithField("key", key).Error("redis.Set failed")
		return err
	}
	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	if _, err := im.redis.Del(c, key); err != nil {
		c.WithField("err", err).WithField("key", key).Error("redis.Del failed")
		return err
	}
	return nil
}
