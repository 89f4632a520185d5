package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Tracing  TracingConfig
	Notify   NotifyConfig
}

type AppConfig struct {
	AppName         string
	Environment     string
	HTTPPort        string
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration `env:"DB_CONNECT_TIMEOUT" envDefault:"5s"`
	PoolMaxConns          int32         `env:"DB_POOL_MAX_CONNS" envDefault:"10"`
	PoolMinConns          int32         `env:"DB_POOL_MIN_CONNS" envDefault:"1"`
	PoolMaxConnLifetime   time.Duration `env:"DB_POOL_MAX_CONN_LIFETIME" envDefault:"1h"`
	PoolMaxConnIdleTime   time.Duration `env:"DB_POOL_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	PoolHealthCheckPeriod time.Duration `env:"DB_POOL_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	StoreRetryTries       uint          `env:"DB_STORE_RETRY_TRIES" envDefault:"3"`
	MigrationsDir         string        `env:"DB_MIGRATIONS_DIR"`
	AutoMigrate           bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	SeedDemo              bool          `env:"DB_SEED_DEMO" envDefault:"false"`
	SlowQueryThreshold    time.Duration `env:"DB_SLOW_QUERY_THRESHOLD" envDefault:"500ms"`
}

// Enabled reports whether a Postgres host is configured. Without one the
// service runs on in-memory stores.
func (c DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(c.DBHost) != ""
}

type RedisConfig struct {
	Host         string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port         string        `env:"REDIS_PORT" envDefault:"6379"`
	Password     string        `env:"REDIS_PASSWORD"`
	DB           int           `env:"REDIS_DB" envDefault:"0"`
	TTL          time.Duration `env:"REDIS_TTL" envDefault:"10m"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"2s"`
	EventChannel string        `env:"REDIS_EVENT_CHANNEL" envDefault:"swaps:events"`
	Disabled     bool          `env:"REDIS_DISABLED" envDefault:"false"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type JWTConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessExpiresIn  time.Duration `env:"JWT_ACCESS_EXPIRES_IN" envDefault:"15m"`
	RefreshExpiresIn time.Duration `env:"JWT_REFRESH_EXPIRES_IN" envDefault:"168h"`
}

type TracingConfig struct {
	Endpoint    string  `env:"OTEL_EXPORTER_ENDPOINT"`
	SampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
}

func (c TracingConfig) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

type NotifyConfig struct {
	Workers   int `env:"NOTIFY_WORKERS" envDefault:"4"`
	QueueSize int `env:"NOTIFY_QUEUE_SIZE" envDefault:"256"`
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key string) string {
		return strings.TrimSpace(os.Getenv(key))
	}

	// Tunables first so the required fields below are not overwritten.
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.App.AppName = req("APP_NAME")
	cfg.App.Environment = req("APP_ENV")
	cfg.App.HTTPPort = req("HTTP_PORT")

	cfg.Database.DBHost = opt("DB_HOST")
	cfg.Database.DBPort = opt("DB_PORT")
	cfg.Database.DBName = opt("DB_NAME")
	cfg.Database.DBUser = opt("DB_USER")
	cfg.Database.DBPassword = opt("DB_PASSWORD")
	cfg.Database.DBSSLMode = opt("DB_SSL_MODE")

	cfg.JWT.AccessSecret = req("JWT_ACCESS_SECRET")
	cfg.JWT.RefreshSecret = opt("JWT_REFRESH_SECRET")

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	if cfg.Database.Enabled() {
		if cfg.Database.DBPort == "" {
			cfg.Database.DBPort = "5432"
		}
		if cfg.Database.DBSSLMode == "" {
			cfg.Database.DBSSLMode = "disable"
		}
	}
	if cfg.Notify.Workers <= 0 {
		cfg.Notify.Workers = 1
	}

	return cfg, nil
}

// DSN renders the key/value connection string understood by pgx.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		strings.TrimSpace(c.DBHost),
		strings.TrimSpace(c.DBPort),
		strings.TrimSpace(c.DBUser),
		c.DBPassword,
		strings.TrimSpace(c.DBName),
		strings.TrimSpace(c.DBSSLMode),
	)
}
