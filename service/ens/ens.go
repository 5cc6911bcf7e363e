package ens

import (
	"errors"
	"time"

	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/service/redis"
)

var (
	// ErrNoRecord means the lookup ran and the name has no such text record
	ErrNoRecord = errors.New("ens: no record")
	// ErrUnavailable means the lookup mechanism cannot serve this name, e.g. no
	// resolver is set or the resolver lacks the interface
	ErrUnavailable = errors.New("ens: lookup unavailable")
)

// ENS is the read side of the naming chain. Errors other than ErrNoRecord
// and ErrUnavailable are transport failures.
type ENS interface {
	// TextRecord reads key through the resolver registered for name
	TextRecord(c ctx.Ctx, name, key string) (string, error)
	// ResolverTextRecord reads key by calling the resolver contract directly,
	// skipping the interface checks of TextRecord
	ResolverTextRecord(c ctx.Ctx, name, key string) (string, error)
	// Resolve returns the address name points to, empty when unset
	Resolve(c ctx.Ctx, name string) (string, error)
}

type Config struct {
	RpcUrl string
	// Registry overrides the ENS registry address, mainnet when empty
	Registry string
	Timeout  time.Duration
	// MaxConcurrentCalls bounds in flight contract reads, 0 is unbounded
	MaxConcurrentCalls int
	// RecordCacheTtl memoises text records in memory, 0 disables
	RecordCacheTtl time.Duration
	// Redis adds a shared second layer to the record cache when set
	Redis redis.Service
}
