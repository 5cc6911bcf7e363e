package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/walrens/gateway/base/config"
	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/base/database/redisclient"
	"github.com/walrens/gateway/base/delivery"
	"github.com/walrens/gateway/base/goroutine"
	"github.com/walrens/gateway/base/log"
	"github.com/walrens/gateway/base/metrics"
	bValidator "github.com/walrens/gateway/base/validator"
	mmiddleware "github.com/walrens/gateway/middleware"
	"github.com/walrens/gateway/service/aggregator"
	"github.com/walrens/gateway/service/cache/provider"
	"github.com/walrens/gateway/service/cache/provider/compound"
	"github.com/walrens/gateway/service/cache/provider/disk"
	"github.com/walrens/gateway/service/cache/provider/primitive"
	redisCache "github.com/walrens/gateway/service/cache/provider/redis"
	"github.com/walrens/gateway/service/cache/provider/ristretto"
	"github.com/walrens/gateway/service/ens"
	"github.com/walrens/gateway/service/redis"
	gateway_delivery "github.com/walrens/gateway/stores/gateway/delivery/http"
	gateway_repository "github.com/walrens/gateway/stores/gateway/repository"
	gateway_usecase "github.com/walrens/gateway/stores/gateway/usecase"
	hc_delivery "github.com/walrens/gateway/stores/healthcheck/delivery/http"
	hc_repo "github.com/walrens/gateway/stores/healthcheck/repository"
	hc_usecase "github.com/walrens/gateway/stores/healthcheck/usecase"
	resolver_usecase "github.com/walrens/gateway/stores/resolver/usecase"
)

const (
	resolveCacheTtl  = 30 * time.Second
	httpCacheSizeMb  = 16
	poolQueueLen     = 1024
	poolScheduleWait = 50 * time.Millisecond
)

func init() {
	// a missing .env is fine
	_ = godotenv.Load()

	pflag.String("config", "infra/configs/config.yaml", "path of the config file")
	pflag.Parse()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		panic(err)
	}

	config.SetDefaults(viper.GetViper())
	if err := config.BindEnv(viper.GetViper()); err != nil {
		panic(err)
	}

	viper.SetConfigType("yaml")
	viper.SetConfigFile(viper.GetString("config"))
	if err := viper.ReadInConfig(); err != nil {
		log.Log().WithField("err", err).Warn("no config file, using defaults and env")
	}

	if viper.GetBool(`debug`) {
		log.SetDebug(true)
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	defer log.Sync()
	context := ctx.Background()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		context.WithField("err", err).Panic("config.Load failed")
	}

	// init redis, only when a layer needs it
	var redisSvc redis.Service
	if cfg.Cache.HasLayer(config.LayerRedis) {
		context.Info("init redis")
		pool := redisclient.MustConnectRedis(cfg.Cache.Redis.Uri, cfg.Cache.Redis.Password, redisclient.RedisParam{
			PoolMultiplier: cfg.Cache.Redis.PoolMultiplier,
			Retry:          true,
		})
		redisSvc = redis.New(cfg.Cache.Redis.Name, metrics.New(cfg.Cache.Redis.Name), &redis.Pools{
			Src: pool,
		})
	}

	layers, closers := newLayers(context, cfg, redisSvc)
	defer func() {
		for _, c := range closers {
			c()
		}
	}()
	contentCache := compound.NewCompound(layers)
	context.WithField("cache", contentCache.Name()).Info("content cache ready")

	mmiddleware.SetupCache(primitive.NewPrimitive("httpCache", httpCacheSizeMb))

	// init ens
	context.Info("init ens")
	ensSvc, err := ens.New(ens.Config{
		RpcUrl:             cfg.Ens.RpcUrl,
		Registry:           cfg.Ens.Registry,
		Timeout:            cfg.Ens.Timeout,
		RecordCacheTtl:     cfg.Ens.RecordCacheTtl,
		MaxConcurrentCalls: cfg.Ens.MaxConcurrentCalls,
		Redis:              redisSvc,
	})
	if err != nil {
		context.WithField("err", err).Panic("ens.New failed")
	}

	pool := goroutine.NewPool(cfg.Cache.Workers, poolQueueLen, poolScheduleWait)
	defer pool.Release()

	resolver := resolver_usecase.New(ensSvc, resolver_usecase.DefaultSteps)
	agg := aggregator.NewClient(&aggregator.ClientCfg{
		HttpClient: http.Client{},
		Timeout:    cfg.Walrus.Timeout,
	})
	gatewayUC := gateway_usecase.NewGatewayUseCase(&gateway_usecase.GatewayUseCaseCfg{
		Resolver:   resolver,
		Aggregator: agg,
		Cache: gateway_repository.NewResponseCache(&gateway_repository.ResponseCacheCfg{
			Cache:   contentCache,
			SiteTtl: cfg.Cache.SiteTtl,
			BlobTtl: cfg.Cache.BlobTtl,
		}),
		Pool:              pool,
		Base:              cfg.Walrus.Base,
		Networks:          cfg.Walrus.Networks,
		DefaultNetwork:    cfg.Ens.Network,
		SiteMaxAge:        cfg.Cache.SiteTtl,
		BlobMaxAge:        cfg.Cache.BlobTtl,
		FetchTimeout:      cfg.Walrus.Timeout,
		MaxCacheableBytes: cfg.Walrus.MaxCacheableBytes,
		SniffContentType:  cfg.Walrus.SniffContentType,
	})

	// init echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = delivery.ErrorHandler
	middL := mmiddleware.InitMiddleware(cfg.Server.GatewayDomain)
	e.Pre(middL.HostRewrite())
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middL.ResponseLogger())
	e.Use(middL.AddContext())
	e.Use(middL.CORS)
	e.Validator = bValidator.NewCustomValidator(goValidator.New())

	hc_delivery.New(e, hc_usecase.New(hc_repo.New(redisSvc, agg, cfg.Walrus.Base)))
	gateway_delivery.New(e, gatewayUC, resolveCacheTtl)

	go func() {
		if err := e.Start(cfg.Server.Address); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	ctx, cancel := ctx.WithTimeout(context, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}

// newLayers builds the content cache layers in configured order
func newLayers(c ctx.Ctx, cfg *config.Config, redisSvc redis.Service) ([]provider.Provider, []func()) {
	layers := []provider.Provider{}
	closers := []func(){}

	for _, layer := range cfg.Cache.Layers {
		switch layer {
		case config.LayerMemory:
			if cfg.Cache.Memory.Engine == config.EngineFreecache {
				layers = append(layers, primitive.NewPrimitive("memory", cfg.Cache.Memory.SizeMb))
				continue
			}
			p, err := ristretto.NewRistretto("memory", cfg.Cache.Memory.SizeMb)
			if err != nil {
				c.WithField("err", err).Panic("ristretto.NewRistretto failed")
			}
			layers = append(layers, p)
		case config.LayerRedis:
			layers = append(layers, redisCache.NewRedis(redisSvc, true))
		case config.LayerDisk:
			p, err := disk.NewDisk("disk", cfg.Cache.Disk.Path)
			if err != nil {
				c.WithField("err", err).Panic("disk.NewDisk failed")
			}
			layers = append(layers, p)
			closers = append(closers, func() {
				if err := p.Close(); err != nil {
					c.WithField("err", err).Error("disk.Close failed")
				}
			})
		}
	}
	return layers, closers
}
