package permcache

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	RedisURL       string        `env:"PERMCACHE_REDIS_URL"`                         // RedisURL selects the distributed backend; empty means in-process. Format "redis://:password@localhost:6379/0".
	ConnectTimeout time.Duration `env:"PERMCACHE_REDIS_CONNECT_TIMEOUT" envDefault:"10s"` // ConnectTimeout bounds the whole connection attempt including retries.
	RetryAttempts  int           `env:"PERMCACHE_REDIS_RETRY_ATTEMPTS" envDefault:"3"`    // RetryAttempts is the number of connection attempts before giving up.
	RetryInterval  time.Duration `env:"PERMCACHE_REDIS_RETRY_INTERVAL" envDefault:"2s"`   // RetryInterval is the wait between connection attempts.

	MaxEntries      int           `env:"PERMCACHE_MAX_ENTRIES" envDefault:"10000"`     // MaxEntries bounds the in-process backend; least recently used entries are evicted.
	StaleFor        time.Duration `env:"PERMCACHE_STALE_FOR" envDefault:"1h"`          // StaleFor is how long an expired entry remains available to GetStale.
	CleanupInterval time.Duration `env:"PERMCACHE_CLEANUP_INTERVAL" envDefault:"1m"`   // CleanupInterval is the cadence of the in-process expiry sweep.
	ScanBatchSize   int64         `env:"PERMCACHE_SCAN_BATCH_SIZE" envDefault:"200"`   // ScanBatchSize bounds each SCAN page during pattern deletes on the redis backend.
}

// LoadConfig reads the cache configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// withDefaults fills zero values so stores constructed from a literal Config
// behave the same as env-loaded ones.
func (c Config) withDefaults() Config {
	if c.MaxEntries <= 0 {
		c.MaxEntries = 10000
	}
	if c.StaleFor <= 0 {
		c.StaleFor = time.Hour
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = time.Minute
	}
	if c.ScanBatchSize <= 0 {
		c.ScanBatchSize = 200
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = 2 * time.Second
	}
	return c
}
