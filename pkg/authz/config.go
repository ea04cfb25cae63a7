package authz

import (
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/permkit/permkit/pkg/permcache"
)

type Config struct {
	Cache permcache.Config

	TTL          time.Duration `env:"AUTHZ_CACHE_TTL" envDefault:"5m"`        // TTL is the nominal lifetime of a resolved permission set in cache.
	TTLJitter    float64       `env:"AUTHZ_CACHE_TTL_JITTER" envDefault:"0.1"` // TTLJitter is the max random extra TTL as a fraction of TTL, preventing synchronized mass expiry.
	FetchTimeout time.Duration `env:"AUTHZ_FETCH_TIMEOUT" envDefault:"5s"`    // FetchTimeout is the hard bound on a single backing-store fetch.

	BreakerFailureThreshold int           `env:"AUTHZ_BREAKER_FAILURE_THRESHOLD" envDefault:"5"` // BreakerFailureThreshold opens the circuit after this many consecutive fetch failures.
	BreakerCooldown         time.Duration `env:"AUTHZ_BREAKER_COOLDOWN" envDefault:"30s"`        // BreakerCooldown is how long the circuit stays open before a recovery trial.
}

var loadDotEnvOnce sync.Once

// LoadConfig reads the engine configuration from environment variables,
// loading a .env file first if one is present.
func LoadConfig() (Config, error) {
	loadDotEnvOnce.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
