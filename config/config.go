// Package config - service configuration
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alwitt/reporter/db"
	"github.com/alwitt/reporter/store"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefix of environment variables overriding config file values
const EnvPrefix = "REPORTER"

// LogConfig application logging config
type LogConfig struct {
	// Level apex log level
	Level string `mapstructure:"level" json:"level" validate:"required,oneof=debug info warn error fatal"`
	// Format log output format
	Format string `mapstructure:"format" json:"format" validate:"required,oneof=text json"`
}

// HTTPConfig HTTP server config
type HTTPConfig struct {
	// ListenAddress address the server binds to
	ListenAddress string `mapstructure:"listen_address" json:"listen_address" validate:"required"`
	// StaticDir directory holding the web UI assets; routes are skipped when empty
	StaticDir string `mapstructure:"static_dir" json:"static_dir"`
	// CORSOrigins allowed CORS origins; CORS is disabled when empty
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
	// ReadTimeout max duration for reading a request
	ReadTimeout time.Duration `mapstructure:"read_timeout" json:"read_timeout" validate:"gte=0"`
	// WriteTimeout max duration for writing a response
	WriteTimeout time.Duration `mapstructure:"write_timeout" json:"write_timeout" validate:"gte=0"`
	// IdleTimeout max keep-alive idle duration
	IdleTimeout time.Duration `mapstructure:"idle_timeout" json:"idle_timeout" validate:"gte=0"`
	// ShutdownTimeout max duration to drain in-flight requests on shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout" validate:"gte=0"`
}

// PoolConfig SQL connection pool config
type PoolConfig struct {
	MaxIdleConns    int           `mapstructure:"max_idle_conns" json:"max_idle_conns" validate:"gte=0"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" json:"max_open_conns" validate:"gte=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" json:"conn_max_lifetime" validate:"gte=0"`
}

// DatabaseConfig persistence config
type DatabaseConfig struct {
	// Dialect SQL dialect
	Dialect string `mapstructure:"dialect" json:"dialect" validate:"required,oneof=sqlite mysql postgres"`
	// DSN connection string; for sqlite, the DB file path
	DSN string `mapstructure:"dsn" json:"-" validate:"required"`
	// LogLevel SQL log level
	LogLevel string `mapstructure:"log_level" json:"log_level" validate:"required,oneof=silent error warn info"`
	// AutoMigrate create or upgrade the tables when the server starts
	AutoMigrate bool `mapstructure:"auto_migrate" json:"auto_migrate"`
	// Pool connection pool settings
	Pool PoolConfig `mapstructure:"pool" json:"pool"`
}

// PoolParams the pool settings as the db package takes them
func (c DatabaseConfig) PoolParams() db.PoolParams {
	return db.PoolParams{
		MaxIdleConns:    c.Pool.MaxIdleConns,
		MaxOpenConns:    c.Pool.MaxOpenConns,
		ConnMaxLifetime: c.Pool.ConnMaxLifetime,
	}
}

// AuthConfig bearer token config
type AuthConfig struct {
	// TokenSecret symmetric signing secret; required to serve
	TokenSecret string `mapstructure:"token_secret" json:"-"`
	// TokenAlgorithm HMAC signing algorithm
	TokenAlgorithm string `mapstructure:"token_algorithm" json:"token_algorithm" validate:"required,oneof=HS256 HS384 HS512"`
	// TokenTTL default token lifetime
	TokenTTL time.Duration `mapstructure:"token_ttl" json:"token_ttl" validate:"gte=0"`
}

// RetryConfig read retry config
type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts" json:"max_attempts" validate:"gte=1"`
	InitialInterval time.Duration `mapstructure:"initial_interval" json:"initial_interval" validate:"gte=0"`
	MaxInterval     time.Duration `mapstructure:"max_interval" json:"max_interval" validate:"gte=0"`
}

// RetryParams the retry settings as the store package takes them
func (c RetryConfig) RetryParams() store.RetryParams {
	return store.RetryParams{
		MaxAttempts:     c.MaxAttempts,
		InitialInterval: c.InitialInterval,
		MaxInterval:     c.MaxInterval,
	}
}

// StoreConfig storage controller config
type StoreConfig struct {
	ReadRetry RetryConfig `mapstructure:"read_retry" json:"read_retry"`
}

// Config the reporter service config
type Config struct {
	Log      LogConfig      `mapstructure:"log" json:"log"`
	HTTP     HTTPConfig     `mapstructure:"http" json:"http"`
	Database DatabaseConfig `mapstructure:"database" json:"database"`
	Auth     AuthConfig     `mapstructure:"auth" json:"auth"`
	Store    StoreConfig    `mapstructure:"store" json:"store"`
}

// ErrMissingTokenSecret no token signing secret was configured
var ErrMissingTokenSecret = errors.New("auth.token_secret is not set")

// ValidateForServing check the settings only the HTTP server depends on
func (c Config) ValidateForServing() error {
	if c.Auth.TokenSecret == "" {
		return ErrMissingTokenSecret
	}
	return nil
}

// redactedValue replaces secret values in loggable copies of the config
const redactedValue = "[REDACTED]"

/*
Redacted copy of the config safe to log

The token secret is always masked. The DSN is masked unless the dialect is sqlite, where it
is only a file path.

	@return the redacted copy
*/
func (c Config) Redacted() Config {
	if c.Auth.TokenSecret != "" {
		c.Auth.TokenSecret = redactedValue
	}
	if c.Database.Dialect != db.DialectSqlite && c.Database.DSN != "" {
		c.Database.DSN = redactedValue
	}
	return c
}

func installDefaults(v *viper.Viper) {
	pool := db.DefaultPoolParams()
	retry := store.DefaultRetryParams()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("http.listen_address", ":8000")
	v.SetDefault("http.static_dir", "")
	v.SetDefault("http.cors_origins", []string{})
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.dialect", db.DialectSqlite)
	v.SetDefault("database.dsn", "reporter.db")
	v.SetDefault("database.log_level", "error")
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("database.pool.max_idle_conns", pool.MaxIdleConns)
	v.SetDefault("database.pool.max_open_conns", pool.MaxOpenConns)
	v.SetDefault("database.pool.conn_max_lifetime", pool.ConnMaxLifetime)

	v.SetDefault("auth.token_secret", "")
	v.SetDefault("auth.token_algorithm", "HS256")
	v.SetDefault("auth.token_ttl", 1440*time.Minute)

	v.SetDefault("store.read_retry.max_attempts", retry.MaxAttempts)
	v.SetDefault("store.read_retry.initial_interval", retry.InitialInterval)
	v.SetDefault("store.read_retry.max_interval", retry.MaxInterval)
}

/*
Load read the service config

Values come from, in increasing precedence: built-in defaults, the config file, and
REPORTER_* environment variables (e.g. REPORTER_DATABASE_DSN for database.dsn).

	@param configFile string - optional YAML config file
	@return the validated config
*/
func Load(configFile string) (Config, error) {
	v := viper.New()
	installDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file '%s' [%w]", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config [%w]", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return Config{}, fmt.Errorf("config is not valid [%w]", err)
	}

	return cfg, nil
}
