package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is loaded once at startup and treated as read-only afterwards.
type Config struct {
	Port     string `env:"PORT,      default=3001"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// CORSOrigin is a comma separated list of allowed browser origins.
	CORSOrigin string `env:"CORS_ORIGIN, default=http://localhost:3000"`
	// TrustProxy makes the client address come from X-Forwarded-For.
	TrustProxy bool `env:"TRUST_PROXY, default=false"`

	StoreTimeout time.Duration `env:"STORE_TIMEOUT, default=5s"`

	Auth      AuthConfig
	RateLimit RateLimitConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET, required"`
	JWTIssuer string        `env:"JWT_ISSUER, default=aquario"`
	JWTTTL    time.Duration `env:"JWT_TTL,    default=24h"`

	BcryptCost         int  `env:"BCRYPT_COST,                  default=11"`
	HashWorkers        int  `env:"HASH_WORKERS,                 default=4"`
	RequireComposition bool `env:"PASSWORD_REQUIRE_COMPOSITION, default=true"`
}

type RateLimitConfig struct {
	// Backend is "redis" (shared across replicas) or "memory".
	Backend string `env:"RATE_LIMIT_BACKEND, default=redis"`

	GeneralMax    int64         `env:"RATE_LIMIT_GENERAL_MAX,    default=100"`
	GeneralWindow time.Duration `env:"RATE_LIMIT_GENERAL_WINDOW, default=15m"`
	AuthMax       int64         `env:"RATE_LIMIT_AUTH_MAX,       default=5"`
	AuthWindow    time.Duration `env:"RATE_LIMIT_AUTH_WINDOW,    default=15m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=aquario"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from l. Tests pass envconfig.MapLookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// CORSOrigins splits CORSOrigin into trimmed, non-empty origins.
func (c *Config) CORSOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// IsDevelopment reports whether the service runs locally.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) validate() error {
	var errs []error
	switch c.RateLimit.Backend {
	case "redis", "memory":
	default:
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BACKEND must be redis or memory, got %q", c.RateLimit.Backend))
	}
	if c.RateLimit.GeneralMax <= 0 || c.RateLimit.AuthMax <= 0 {
		errs = append(errs, errors.New("rate limit maxima must be positive"))
	}
	if c.RateLimit.GeneralWindow <= 0 || c.RateLimit.AuthWindow <= 0 {
		errs = append(errs, errors.New("rate limit windows must be positive"))
	}
	if c.Auth.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	return errors.Join(errs...)
}
