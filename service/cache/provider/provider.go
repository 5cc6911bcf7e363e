package provider

import (
	"errors"
	"time"

	"github.com/walrens/gateway/base/ctx"
)

var (
	ErrNotFound = errors.New("cache: not found")
)

// Provider stores raw bytes with an expiry. Get returns the remaining ttl of
// the entry, zero meaning it never expires. Name identifies the provider in
// logs and metrics.
type Provider interface {
	Name() string
	Get(c ctx.Ctx, key string) ([]byte, time.Duration, error)
	Set(c ctx.Ctx, key string, value []byte, ttl time.Duration) error
	Del(c ctx.Ctx, key string) error
}
