package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET, required"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Auth     AuthConfig
	Schedule ScheduleConfig
	Audit    AuditConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type AuthConfig struct {
	TokenTTL    time.Duration `env:"TOKEN_TTL,    default=60m"`
	AdminEmails []string      `env:"ADMIN_EMAILS"`
}

type ScheduleConfig struct {
	// Scope is "room" for one calendar per room or "global" for a single
	// calendar shared by every reservation.
	Scope         string        `env:"SCHEDULE_SCOPE, default=room"`
	LockTTL       time.Duration `env:"LOCK_TTL,       default=10s"`
	PurgeSchedule string        `env:"PURGE_SCHEDULE, default=@hourly"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=room_booking"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsDevelopment reports whether human-friendly output should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through l. Tests pass an envconfig.MapLookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Schedule.Scope {
	case "room", "global":
	default:
		return fmt.Errorf("SCHEDULE_SCOPE must be room or global, got %q", c.Schedule.Scope)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}
