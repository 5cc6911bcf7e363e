package cache

import (
	"time"

	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/service/cache/provider"
)

// ErrNotFound is returned by Get on a miss or an expired entry
var ErrNotFound = provider.ErrNotFound

// OneTimeGetter loads a value on miss, it must return a pointer
type OneTimeGetter func() (interface{}, error)

type Serializer func(interface{}) ([]byte, error)

type Deserializer func([]byte, interface{}) error

// Service is a typed cache on top of a provider, keys are prefixed by Pfx.
// Concurrent GetByFunc misses on one key share a single getter call.
type Service interface {
	GetByFunc(c ctx.Ctx, key string, container interface{}, getter OneTimeGetter) error
	Get(c ctx.Ctx, key string, container interface{}) error
	Set(c ctx.Ctx, key string, value interface{}) error
	Del(c ctx.Ctx, key string) error
}

type ServiceConfig struct {
	Ttl   time.Duration
	Pfx   string
	Cache provider.Provider
	// Serialize and Deserialize default to encoding/json
	Serialize   Serializer
	Deserialize Deserializer
}
