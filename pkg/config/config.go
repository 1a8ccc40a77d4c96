package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env string

	Database    DatabaseConfig
	Redis       RedisConfig
	Log         LogConfig
	Tasks       TaskConfig
	Store       StoreConfig
	Diagnostics DiagnosticsConfig
}

type DatabaseConfig struct {
	Driver         string
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	Path           string
	MaxOpenConns   int
	MaxIdleConns   int
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	CacheTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// TaskConfig sizes the worker pool behind the async task bridge.
type TaskConfig struct {
	Workers   int
	QueueSize int
	RateLimit float64
	RateBurst int
}

// StoreConfig toggles entity store behaviour.
type StoreConfig struct {
	CompositeAtomic bool
}

// DiagnosticsConfig exposes health and metrics endpoints on localhost.
type DiagnosticsConfig struct {
	Enabled bool
	Port    int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Database = DatabaseConfig{
		Driver:         strings.ToLower(v.GetString("DB_DRIVER")),
		Host:           v.GetString("DB_HOST"),
		Port:           v.GetInt("DB_PORT"),
		User:           v.GetString("DB_USER"),
		Password:       v.GetString("DB_PASSWORD"),
		Name:           v.GetString("DB_NAME"),
		SSLMode:        v.GetString("DB_SSL_MODE"),
		Path:           v.GetString("DB_PATH"),
		MaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnectTimeout: parseDuration(v.GetString("DB_CONNECT_TIMEOUT"), 5*time.Second),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		CacheTTL: parseDuration(v.GetString("CACHE_TTL"), 10*time.Minute),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Tasks = TaskConfig{
		Workers:   v.GetInt("TASK_WORKERS"),
		QueueSize: v.GetInt("TASK_QUEUE_SIZE"),
		RateLimit: v.GetFloat64("TASK_RATE_LIMIT"),
		RateBurst: v.GetInt("TASK_RATE_BURST"),
	}

	cfg.Store = StoreConfig{
		CompositeAtomic: v.GetBool("COMPOSITE_ATOMIC"),
	}

	cfg.Diagnostics = DiagnosticsConfig{
		Enabled: v.GetBool("DIAG_ENABLED"),
		Port:    v.GetInt("DIAG_PORT"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("DB_DRIVER", DriverMySQL)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "sims")
	v.SetDefault("DB_PASSWORD", "sims")
	v.SetDefault("DB_NAME", "sims")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_PATH", "sims.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 8)
	v.SetDefault("DB_MAX_IDLE_CONNS", 4)
	v.SetDefault("DB_CONNECT_TIMEOUT", "5s")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "10m")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("TASK_WORKERS", 4)
	v.SetDefault("TASK_QUEUE_SIZE", 64)
	v.SetDefault("TASK_RATE_LIMIT", 0)
	v.SetDefault("TASK_RATE_BURST", 1)

	v.SetDefault("COMPOSITE_ATOMIC", true)

	v.SetDefault("DIAG_ENABLED", false)
	v.SetDefault("DIAG_PORT", 9464)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}
