package redisclient

import (
	"context"
	"runtime"
	"strings"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/walrens/gateway/base/backoff"
	"github.com/walrens/gateway/base/log"
)

const (
	dialTimeout  = 2 * time.Second
	readTimeout  = 1500 * time.Millisecond
	writeTimeout = 1500 * time.Millisecond

	retryCount = 3
	retryStart = time.Second
	retryLimit = 4 * time.Second
)

// RedisParam is the optional param for redis connection
type RedisParam struct {
	// PoolMultiplier sizes the pool per cpu, zero keeps the defaults
	PoolMultiplier float64
	// Retry dials up to retryCount more times with jitter
	Retry bool
	DB    int
}

// MustConnectRedis connects to one redis uri
// NOTE This function panics if the connection fails.
func MustConnectRedis(uri, password string, param ...RedisParam) *redis.Pool {
	p, err := ConnectRedis(uri, password, param...)
	if err != nil {
		log.Log().WithFields(log.Fields{"redisURI": uri, "err": err}).Panic("fail to dial Redis")
	}
	return p
}

// ConnectRedis returns a pool once a connection to uri answers PING.
// uri is host:port or a redis:// url.
func ConnectRedis(uri, password string, param ...RedisParam) (*redis.Pool, error) {
	prm := RedisParam{}
	if len(param) > 0 {
		prm = param[0]
	}

	maxIdle, maxActive := 64, 256
	if prm.PoolMultiplier > 0 {
		cpu := float64(runtime.NumCPU())
		// allowing 25% idle connection
		maxIdle = int(cpu * prm.PoolMultiplier / 4)
		maxActive = int(cpu * prm.PoolMultiplier)
	}

	opts := []redis.DialOption{
		redis.DialConnectTimeout(dialTimeout),
		redis.DialReadTimeout(readTimeout),
		redis.DialWriteTimeout(writeTimeout),
	}
	if password != "" {
		opts = append(opts, redis.DialPassword(password))
	}
	if prm.DB > 0 {
		opts = append(opts, redis.DialDatabase(prm.DB))
	}

	dial := func() (redis.Conn, error) {
		if strings.Contains(uri, "://") {
			return redis.DialURL(uri, opts...)
		}
		return redis.Dial("tcp", uri, opts...)
	}

	p := &redis.Pool{
		MaxIdle:     maxIdle,
		MaxActive:   maxActive,
		Wait:        true,
		IdleTimeout: 240 * time.Second,
		Dial:        dial,
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			// No need to test if it's been recycled less than 1 sec.
			if time.Since(t) < time.Second {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	attempts := 1
	if prm.Retry {
		attempts += retryCount
	}

	b := backoff.NewExponential(retryStart, retryLimit).WithJitter(0.5)
	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			_ = b.Backoff(context.Background())
		}
		if err = ping(dial); err == nil {
			break
		}
		log.Log().WithFields(log.Fields{
			"redisURI": uri,
			"err":      err,
			"attempt":  i,
		}).Error("fail to dial Redis")
	}
	if err != nil {
		return nil, err
	}

	log.Log().WithField("redisURI", uri).Info("redis connected")
	return p, nil
}

func ping(dial func() (redis.Conn, error)) error {
	c, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()
	_, err = c.Do("PING")
	return err
}
