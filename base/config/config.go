package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/xerrors"

	"github.com/walrens/gateway/domain"
)

const (
	LayerMemory = "memory"
	LayerRedis  = "redis"
	LayerDisk   = "disk"

	EngineFreecache = "freecache"
	EngineRistretto = "ristretto"
)

type Config struct {
	Server      ServerC `mapstructure:"server"`
	Walrus      WalrusC `mapstructure:"walrus"`
	Ens         EnsC    `mapstructure:"ens"`
	Cache       CacheC  `mapstructure:"cache"`
	DatadogHost string  `mapstructure:"datadog_host"`
	EnvName     string  `mapstructure:"env_name"`
	AppName     string  `mapstructure:"app_name"`
	Debug       bool    `mapstructure:"debug"`
}

type ServerC struct {
	Address         string        `mapstructure:"address"`
	GatewayDomain   string        `mapstructure:"gatewayDomain"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type WalrusC struct {
	Base string `mapstructure:"base"`
	// Networks maps a network tag onto an aggregator base url
	Networks          map[string]string `mapstructure:"networks"`
	Timeout           time.Duration     `mapstructure:"timeout"`
	MaxCacheableBytes int               `mapstructure:"maxCacheableBytes"`
	SniffContentType  bool              `mapstructure:"sniffContentType"`
}

type EnsC struct {
	RpcUrl string `mapstructure:"rpcUrl"`
	// Network is the tag used when a mapping carries none
	Network        string        `mapstructure:"network"`
	Registry       string        `mapstructure:"registry"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RecordCacheTtl time.Duration `mapstructure:"recordCacheTtl"`
	// MaxConcurrentCalls bounds in flight rpc reads, 0 is unbounded
	MaxConcurrentCalls int `mapstructure:"maxConcurrentCalls"`
}

type CacheC struct {
	Layers  []string      `mapstructure:"layers"`
	Memory  MemoryC       `mapstructure:"memory"`
	Redis   RedisC        `mapstructure:"redis"`
	Disk    DiskC         `mapstructure:"disk"`
	SiteTtl time.Duration `mapstructure:"siteTtl"`
	BlobTtl time.Duration `mapstructure:"blobTtl"`
	Workers int           `mapstructure:"workers"`
}

type MemoryC struct {
	Engine string `mapstructure:"engine"`
	SizeMb int    `mapstructure:"sizeMb"`
}

type RedisC struct {
	Name           string  `mapstructure:"name"`
	Uri            string  `mapstructure:"uri"`
	Password       string  `mapstructure:"password"`
	PoolMultiplier float64 `mapstructure:"poolMultiplier"`
}

type DiskC struct {
	Path string `mapstructure:"path"`
}

// HasLayer reports whether layer is one of the configured cache layers
func (c *CacheC) HasLayer(layer string) bool {
	for _, l := range c.Layers {
		if l == layer {
			return true
		}
	}
	return false
}

// envAliases are the short env names kept for deployments
var envAliases = map[string]string{
	"walrus.base":          "WALRUS_BASE",
	"ens.rpcUrl":           "ETH_RPC_URL",
	"server.gatewayDomain": "GATEWAY_DOMAIN",
	"cache.redis.uri":      "REDIS_CACHE_URI",
}

// SetDefaults sets every key, so AutomaticEnv can override any of them
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.gatewayDomain", "")
	v.SetDefault("server.shutdownTimeout", 10*time.Second)

	v.SetDefault("walrus.base", "")
	v.SetDefault("walrus.networks", map[string]string{})
	v.SetDefault("walrus.timeout", 10*time.Second)
	v.SetDefault("walrus.maxCacheableBytes", 10<<20)
	v.SetDefault("walrus.sniffContentType", false)

	v.SetDefault("ens.rpcUrl", "")
	v.SetDefault("ens.network", "")
	v.SetDefault("ens.registry", "")
	v.SetDefault("ens.timeout", 8*time.Second)
	v.SetDefault("ens.recordCacheTtl", 30*time.Second)
	v.SetDefault("ens.maxConcurrentCalls", 32)

	v.SetDefault("cache.layers", []string{LayerMemory})
	v.SetDefault("cache.memory.engine", EngineRistretto)
	v.SetDefault("cache.memory.sizeMb", 256)
	v.SetDefault("cache.redis.name", "cache")
	v.SetDefault("cache.redis.uri", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.poolMultiplier", 20)
	v.SetDefault("cache.disk.path", "")
	v.SetDefault("cache.siteTtl", time.Hour)
	v.SetDefault("cache.blobTtl", 10*time.Minute)
	v.SetDefault("cache.workers", 16)

	v.SetDefault("datadog_host", "")
	v.SetDefault("env_name", "local")
	v.SetDefault("app_name", "walrens-gateway")
	v.SetDefault("debug", false)
}

// BindEnv lets WALRUS_BASE style variables override walrus.base style keys
func BindEnv(v *viper.Viper) error {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return err
		}
	}
	return nil
}

// Load decodes v into a validated Config. Errors wrap domain.ErrConfiguration.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, xerrors.Errorf("%w: %v", domain.ErrConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := checkHttpUrl("walrus.base", c.Walrus.Base); err != nil {
		return err
	}
	for tag, base := range c.Walrus.Networks {
		if err := checkHttpUrl("walrus.networks."+tag, base); err != nil {
			return err
		}
	}
	if err := checkHttpUrl("ens.rpcUrl", c.Ens.RpcUrl); err != nil {
		return err
	}

	if len(c.Cache.Layers) == 0 {
		return xerrors.Errorf("%w: cache.layers is empty", domain.ErrConfiguration)
	}
	for _, layer := range c.Cache.Layers {
		switch layer {
		case LayerMemory:
			if c.Cache.Memory.Engine != EngineFreecache && c.Cache.Memory.Engine != EngineRistretto {
				return xerrors.Errorf("%w: unknown cache.memory.engine %q", domain.ErrConfiguration, c.Cache.Memory.Engine)
			}
			if c.Cache.Memory.SizeMb <= 0 {
				return xerrors.Errorf("%w: cache.memory.sizeMb must be positive", domain.ErrConfiguration)
			}
		case LayerRedis:
			if c.Cache.Redis.Uri == "" {
				return xerrors.Errorf("%w: cache.redis.uri is required by the redis layer", domain.ErrConfiguration)
			}
		case LayerDisk:
			if c.Cache.Disk.Path == "" {
				return xerrors.Errorf("%w: cache.disk.path is required by the disk layer", domain.ErrConfiguration)
			}
		default:
			return xerrors.Errorf("%w: unknown cache layer %q", domain.ErrConfiguration, layer)
		}
	}
	return nil
}

func checkHttpUrl(key, raw string) error {
	if raw == "" {
		return xerrors.Errorf("%w: %s is required", domain.ErrConfiguration, key)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return xerrors.Errorf("%w: %s %q is not an http(s) url", domain.ErrConfiguration, key, raw)
	}
	return nil
}
