package compound

import (
	"strings"
	"time"

	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/service/cache/provider"
)

type impl struct {
	layers []provider.Provider
}

// NewCompound stacks layers from the fastest to the slowest. Get returns on
// the first hit and fills the layers in front of it.
func NewCompound(layers []provider.Provider) provider.Provider {
	return &impl{layers}
}

func (im *impl) Name() string {
	names := make([]string, 0, len(im.layers))
	for _, lyr := range im.layers {
		names = append(names, lyr.Name())
	}
	return strings.Join(names, ">")
}

func (im *impl) Get(c ctx.Ctx, key string) ([]byte, time.Duration, error) {
	var (
		val    []byte
		ttl    time.Duration
		err    error
		hitIdx = -1
	)

	for idx, lyr := range im.layers {
		if val, ttl, err = lyr.Get(c, key); err == provider.ErrNotFound {
			continue
		} else if err != nil {
			// a broken layer is a miss for this layer only
			c.WithField("err", err).WithField("layer", lyr.Name()).Warn("layer Get failed")
			continue
		}
		hitIdx = idx
		break
	}

	if hitIdx == -1 {
		return nil, 0, provider.ErrNotFound
	}

	for idx := 0; idx < hitIdx; idx++ {
		lyr := im.layers[idx]
		if err := lyr.Set(c, key, val, ttl); err != nil {
			c.WithField("err", err).WithField("layer", lyr.Name()).Warn("layer fill failed")
		}
	}

	return val, ttl, nil
}

// Set writes every layer and returns the first error.
func (im *impl) Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error {
	var first error
	for _, lyr := range im.layers {
		if err := lyr.Set(c, key, value, ttl); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (im *impl) Del(c ctx.Ctx, key string) error {
	var first error
	for _, lyr := range im.layers {
		if err := lyr.Del(c, key); err != nil && first == nil {
			first = err
		}
	}
	return first
}
