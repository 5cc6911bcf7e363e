package repository

import (
	"time"

	"github.com/walrens/gateway/base/ctx"
	hcdomain "github.com/walrens/gateway/domain/healthcheck"
	"github.com/walrens/gateway/service/aggregator"
	"github.com/walrens/gateway/service/redis"
)

const pingTimeout = 2 * time.Second

type impl struct {
	redisCache redis.Service
	aggregator aggregator.Client
	base       string
}

// New creates a HealthCheckRepo. redisCache and agg are optional, a missing
// dependency always pings fine.
func New(redisCache redis.Service, agg aggregator.Client, base string) hcdomain.HealthCheckRepo {
	return &impl{
		redisCache: redisCache,
		aggregator: agg,
		base:       base,
	}
}

func (im *impl) PingCache(c ctx.Ctx) error {
	if im.redisCache == nil {
		return nil
	}

	pc, cancel := ctx.WithTimeout(c, pingTimeout)
	defer cancel()
	if err := im.redisCache.Ping(pc); err != nil {
		c.WithField("err", err).Error("ping redis error")
		return err
	}
	return nil
}

// PingUpstream succeeds on any answer from the aggregator, only transport
// errors count as down
func (im *impl) PingUpstream(c ctx.Ctx) error {
	if im.aggregator == nil || im.base == "" {
		return nil
	}

	pc, cancel := ctx.WithTimeout(c, pingTimeout)
	defer cancel()
	if _, err := im.aggregator.Get(pc, im.base); err != nil {
		c.WithField("err", err).Warn("ping aggregator error")
		return err
	}
	return nil
}
