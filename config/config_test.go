package config_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alwitt/reporter/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	assert := assert.New(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal("info", cfg.Log.Level)
	assert.Equal(":8000", cfg.HTTP.ListenAddress)
	assert.Equal("sqlite", cfg.Database.Dialect)
	assert.Equal(5, cfg.Database.Pool.MaxIdleConns)
	assert.Equal(15, cfg.Database.Pool.MaxOpenConns)
	assert.Equal(300*time.Second, cfg.Database.Pool.ConnMaxLifetime)
	assert.Equal("HS256", cfg.Auth.TokenAlgorithm)
	assert.Equal(1440*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(3, cfg.Store.ReadRetry.MaxAttempts)

	// No secret by default
	assert.ErrorIs(cfg.ValidateForServing(), config.ErrMissingTokenSecret)
}

func TestLoadFileAndEnv(t *testing.T) {
	assert := assert.New(t)

	configFile := filepath.Join(t.TempDir(), "reporter.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
log:
  level: debug
  format: json
http:
  listen_address: 127.0.0.1:9000
  cors_origins:
    - http://localhost:3000
database:
  dialect: mysql
  dsn: file-dsn
  pool:
    max_open_conns: 20
auth:
  token_algorithm: HS512
  token_ttl: 30m
`), 0o600))

	t.Setenv("REPORTER_DATABASE_DSN", "user:pass@tcp(db:3306)/reports?parseTime=true")
	t.Setenv("REPORTER_AUTH_TOKEN_SECRET", "from-env")

	cfg, err := config.Load(configFile)
	require.NoError(t, err)

	assert.Equal("debug", cfg.Log.Level)
	assert.Equal("json", cfg.Log.Format)
	assert.Equal("127.0.0.1:9000", cfg.HTTP.ListenAddress)
	assert.Equal([]string{"http://localhost:3000"}, cfg.HTTP.CORSOrigins)
	assert.Equal("mysql", cfg.Database.Dialect)
	assert.Equal("user:pass@tcp(db:3306)/reports?parseTime=true", cfg.Database.DSN)
	assert.Equal(20, cfg.Database.PoolParams().MaxOpenConns)
	assert.Equal(5, cfg.Database.PoolParams().MaxIdleConns)
	assert.Equal("HS512", cfg.Auth.TokenAlgorithm)
	assert.Equal(30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal("from-env", cfg.Auth.TokenSecret)
	assert.Nil(cfg.ValidateForServing())
}

func TestLoadInvalid(t *testing.T) {
	assert := assert.New(t)

	// Case 0: unknown dialect
	t.Run("dialect", func(t *testing.T) {
		t.Setenv("REPORTER_DATABASE_DIALECT", "oracle")
		_, err := config.Load("")
		assert.Error(err)
	})

	// Case 1: asymmetric algorithm
	t.Run("algorithm", func(t *testing.T) {
		t.Setenv("REPORTER_AUTH_TOKEN_ALGORITHM", "RS256")
		_, err := config.Load("")
		assert.Error(err)
	})

	// Case 2: missing file
	t.Run("file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(err)
	})

	// Case 3: unparsable duration
	t.Run("duration", func(t *testing.T) {
		t.Setenv("REPORTER_AUTH_TOKEN_TTL", "forever")
		_, err := config.Load("")
		assert.Error(err)
	})
}

func TestRedacted(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("REPORTER_AUTH_TOKEN_SECRET", "signing-secret")
	t.Setenv("REPORTER_DATABASE_DIALECT", "mysql")
	t.Setenv("REPORTER_DATABASE_DSN", "reporter:db-password@tcp(db:3306)/reports")

	cfg, err := config.Load("")
	require.NoError(t, err)

	redacted := cfg.Redacted()
	assert.Equal("[REDACTED]", redacted.Auth.TokenSecret)
	assert.Equal("[REDACTED]", redacted.Database.DSN)
	assert.NotContains(fmt.Sprintf("%v", redacted), "signing-secret")
	assert.NotContains(fmt.Sprintf("%+v", redacted), "db-password")

	// Source config is untouched
	assert.Equal("signing-secret", cfg.Auth.TokenSecret)
	assert.Equal("reporter:db-password@tcp(db:3306)/reports", cfg.Database.DSN)

	// A sqlite DSN is only a file path
	cfg.Database.Dialect = "sqlite"
	cfg.Database.DSN = "/tmp/reporter.db"
	assert.Equal("/tmp/reporter.db", cfg.Redacted().Database.DSN)

	// No secret set, nothing to mask
	cfg.Auth.TokenSecret = ""
	assert.Empty(cfg.Redacted().Auth.TokenSecret)
}
