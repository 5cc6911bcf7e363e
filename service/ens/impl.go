package ens

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	goens "github.com/wealdtech/go-ens/v3"
	"github.com/wealdtech/go-ens/v3/contracts/resolver"
	"golang.org/x/xerrors"

	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/base/ethereum"
	"github.com/walrens/gateway/base/log"
	"github.com/walrens/gateway/domain/keys"
	"github.com/walrens/gateway/service/cache"
	compoundcache "github.com/walrens/gateway/service/cache/compoundCache"
	"github.com/walrens/gateway/service/cache/provider/primitive"
	redisCache "github.com/walrens/gateway/service/cache/provider/redis"
)

const (
	defaultTimeout = 5 * time.Second

	lookupText     = "text"
	lookupResolver = "resolver"
)

// messages go-ens and go-ethereum use for names they cannot serve
var unavailableMessages = []string{
	"no resolver",
	"unregistered name",
	"no address",
	"execution reverted",
	bind.ErrNoCode.Error(),
}

type impl struct {
	client   bind.ContractBackend
	registry *goens.Registry
	timeout  time.Duration
	cache    cache.Service
}

func New(cfg Config) (ENS, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	rpcClient, err := rpc.DialHTTPWithClient(cfg.RpcUrl, &http.Client{Timeout: cfg.Timeout})
	if err != nil {
		return nil, xerrors.Errorf("failed to dial rpc: %w", err)
	}
	eth := ethclient.NewClient(rpcClient)
	var client bind.ContractBackend = eth
	if cfg.MaxConcurrentCalls > 0 {
		client = ethereum.NewThrottledClient(eth, cfg.MaxConcurrentCalls)
	}

	var registry *goens.Registry
	if cfg.Registry != "" {
		if !common.IsHexAddress(cfg.Registry) {
			return nil, xerrors.Errorf("invalid registry address %q", cfg.Registry)
		}
		registry, err = goens.NewRegistryAt(client, common.HexToAddress(cfg.Registry))
	} else {
		registry, err = goens.NewRegistry(client)
	}
	if err != nil {
		return nil, xerrors.Errorf("failed to create registry: %w", err)
	}

	return &impl{
		client:   client,
		registry: registry,
		timeout:  cfg.Timeout,
		cache:    newRecordCache(cfg),
	}, nil
}

func newRecordCache(cfg Config) cache.Service {
	if cfg.RecordCacheTtl <= 0 {
		return nil
	}

	layers := []cache.Service{
		cache.New(cache.ServiceConfig{
			Ttl:   cfg.RecordCacheTtl,
			Pfx:   keys.PfxTextRecord,
			Cache: primitive.NewPrimitive("ens", 16),
		}),
	}
	if cfg.Redis != nil {
		layers = append(layers, cache.New(cache.ServiceConfig{
			Ttl:   cfg.RecordCacheTtl,
			Pfx:   keys.PfxTextRecord,
			Cache: redisCache.NewRedis(cfg.Redis, false),
		}))
	}
	return compoundcache.NewCompoundCache(layers)
}

func (im *impl) TextRecord(c ctx.Ctx, name, key string) (string, error) {
	return im.cachedText(c, lookupText, name, key, func(cc ctx.Ctx) (string, error) {
		return runBlocking(cc, func() (string, error) {
			addr, err := im.registry.ResolverAddress(name)
			if err != nil {
				return "", err
			}
			r, err := goens.NewResolverAt(im.client, name, addr)
			if err != nil {
				return "", err
			}
			return r.Text(key)
		})
	})
}

func (im *impl) ResolverTextRecord(c ctx.Ctx, name, key string) (string, error) {
	return im.cachedText(c, lookupResolver, name, key, func(cc ctx.Ctx) (string, error) {
		node, err := goens.NameHash(name)
		if err != nil {
			return "", err
		}
		addr, err := im.registry.Contract.Resolver(&bind.CallOpts{Context: cc}, node)
		if err != nil {
			return "", err
		}
		if addr == goens.UnknownAddress {
			return "", errors.New("no resolver")
		}
		contract, err := resolver.NewContract(addr, im.client)
		if err != nil {
			return "", err
		}
		return contract.Text(&bind.CallOpts{Context: cc}, node, key)
	})
}

func (im *impl) cachedText(c ctx.Ctx, lookup, name, key string, read func(ctx.Ctx) (string, error)) (string, error) {
	fetch := func() (string, error) {
		cc, cancel := ctx.WithTimeout(c, im.timeout)
		defer cancel()

		val, err := read(cc)
		if err != nil {
			return "", classify(err)
		}
		return val, nil
	}

	var (
		val string
		err error
	)
	if im.cache == nil {
		val, err = fetch()
	} else {
		// absent records are cached as empty strings, errors are not cached
		err = im.cache.GetByFunc(c, keys.RedisKey(lookup, name, key), &val, func() (interface{}, error) {
			v, err := fetch()
			if err != nil {
				return nil, err
			}
			return &v, nil
		})
	}

	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			c.WithFields(log.Fields{
				"err":    err,
				"name":   name,
				"key":    key,
				"lookup": lookup,
			}).Error("failed to read text record")
		}
		return "", err
	}
	if val == "" {
		return "", ErrNoRecord
	}
	return val, nil
}

func (im *impl) Resolve(c ctx.Ctx, name string) (string, error) {
	cc, cancel := ctx.WithTimeout(c, im.timeout)
	defer cancel()

	addr, err := runBlocking(cc, func() (common.Address, error) {
		return goens.Resolve(im.client, name)
	})
	if err != nil {
		if errors.Is(classify(err), ErrUnavailable) {
			return "", nil
		}
		c.WithFields(log.Fields{
			"err":  err,
			"name": name,
		}).Error("failed to goens.Resolve")
		return "", err
	}
	return addr.Hex(), nil
}

// runBlocking bounds a call without context support by c.
func runBlocking[T any](c ctx.Ctx, f func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}

	done := make(chan result, 1)
	go func() {
		v, err := f()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-c.Done():
		var zero T
		return zero, c.Err()
	}
}

// classify maps go-ens and transport errors onto ErrUnavailable. Anything
// unknown is kept as a transport failure.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var (
		urlErr *url.Error
		netErr net.Error
	)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return xerrors.Errorf("ens transport: %w", err)
	}

	msg := err.Error()
	for _, m := range unavailableMessages {
		if strings.Contains(msg, m) {
			return xerrors.Errorf("%s: %w", msg, ErrUnavailable)
		}
	}
	return xerrors.Errorf("ens transport: %w", err)
}
