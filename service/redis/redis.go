package redis

import (
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/walrens/gateway/base/ctx"
)

const (
	// Forever is the expire value for keys without ttl
	Forever = time.Duration(0)
)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = redis.ErrNil
	// ErrNoTTL is returned by TTL when the key exists without expire
	ErrNoTTL = errors.New("redis: key has no ttl")
)

// Service is the subset of redis commands the gateway relies on
type Service interface {
	Name() string
	Ping(c ctx.Ctx) error
	Get(c ctx.Ctx, key string) ([]byte, error)
	GetZip(c ctx.Ctx, key string) ([]byte, error)
	Set(c ctx.Ctx, key string, val []byte, expire time.Duration) error
	SetZip(c ctx.Ctx, key string, val []byte, expire time.Duration) error
	Del(c ctx.Ctx, keys ...string) (int, error)
	// TTL returns the remaining seconds of key
	TTL(c ctx.Ctx, key string) (int, error)
}
