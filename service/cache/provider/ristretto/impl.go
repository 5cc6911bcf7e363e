package ristretto

import (
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/service/cache/provider"
)

type impl struct {
	name  string
	cache *ristretto.Cache
}

// NewRistretto creates an in-process layer admitting up to sizeMb megabytes
// of values. Writes become visible asynchronously.
func NewRistretto(name string, sizeMb int) (provider.Provider, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 100000,
		MaxCost:     int64(sizeMb) * 1024 * 1024,
		BufferItems: 64,
		Cost: func(value interface{}) int64 {
			return int64(len(value.([]byte)))
		},
	})
	if err != nil {
		return nil, err
	}
	return &impl{name, cache}, nil
}

func (im *impl) Name() string {
	return im.name
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, time.Duration, error) {
	val, ok := im.cache.Get(key)
	if !ok {
		return nil, 0, provider.ErrNotFound
	}
	ttl, _ := im.cache.GetTTL(key)
	return val.([]byte), ttl, nil
}

func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	if !im.cache.SetWithTTL(key, value, int64(len(value)), ttl) {
		c.WithField("key", key).WithField("size", len(value)).Debug("ristretto dropped set")
	}
	return nil
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	im.cache.Del(key)
	return nil
}

// Wait blocks until buffered writes are applied.
func Wait(p provider.Provider) {
	if im, ok := p.(*impl); ok {
		im.cache.Wait()
	}
}
