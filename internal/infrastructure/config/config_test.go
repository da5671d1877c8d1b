package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetEnv unsets the given variables and registers a cleanup restoring
// whatever values the process started with. The returned func clears them
// again, for subtests that need a fresh slate.
func resetEnv(t *testing.T, keys []string) func() {
	t.Helper()
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { os.Setenv(k, v) })
		} else {
			t.Cleanup(func() { os.Unsetenv(k) })
		}
	}
	clear := func() {
		for _, k := range keys {
			os.Unsetenv(k)
		}
	}
	clear()
	return clear
}

func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		os.Setenv(k, v)
	}
}

func TestLoad(t *testing.T) {
	clearEnv := resetEnv(t, []string{
		"FABMATE_APP_NAME",
		"FABMATE_APP_ENV",
		"FABMATE_APP_PORT",
		"FABMATE_DATABASE_HOST",
		"FABMATE_DATABASE_PORT",
		"FABMATE_DATABASE_USER",
		"FABMATE_DATABASE_PASSWORD",
		"FABMATE_DATABASE_DBNAME",
		"FABMATE_DATABASE_SSLMODE",
		"FABMATE_DATABASE_MAX_OPEN_CONNS",
		"FABMATE_DATABASE_MAX_IDLE_CONNS",
		"FABMATE_JWT_SECRET",
		"FABMATE_STORAGE_BUCKET",
		"APP_ENV",
	})

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "fabmate-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "fabmate", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "fabmate-drawings", cfg.Storage.Bucket)
		assert.Equal(t, int64(50<<20), cfg.Upload.MaxDrawingSizeBytes)
		assert.Equal(t, 15*time.Minute, cfg.Upload.UploadURLExpiry)
		assert.Equal(t, time.Hour, cfg.Upload.DownloadURLExpiry)
	})

	t.Run("loads values from environment variables with FABMATE prefix", func(t *testing.T) {
		clearEnv()
		setEnv(t, map[string]string{
			"FABMATE_APP_NAME":                "test-app",
			"FABMATE_APP_ENV":                 "testing",
			"FABMATE_APP_PORT":                "9000",
			"FABMATE_DATABASE_HOST":           "testdb.local",
			"FABMATE_DATABASE_PORT":           "5433",
			"FABMATE_DATABASE_USER":           "testuser",
			"FABMATE_DATABASE_PASSWORD":       "testpass",
			"FABMATE_DATABASE_DBNAME":         "testdb",
			"FABMATE_DATABASE_SSLMODE":        "require",
			"FABMATE_DATABASE_MAX_OPEN_CONNS": "50",
			"FABMATE_DATABASE_MAX_IDLE_CONNS": "10",
			"FABMATE_STORAGE_BUCKET":          "test-drawings",
		})

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.Equal(t, "test-drawings", cfg.Storage.Bucket)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		setEnv(t, map[string]string{
			"FABMATE_DATABASE_MAX_OPEN_CONNS": "10",
			"FABMATE_DATABASE_MAX_IDLE_CONNS": "20",
		})

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("FABMATE_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("FABMATE_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	clearEnv := resetEnv(t, []string{
		"FABMATE_APP_ENV",
		"FABMATE_JWT_SECRET",
		"FABMATE_DATABASE_PASSWORD",
		"FABMATE_DATABASE_SSLMODE",
		"FABMATE_COOKIE_SECURE",
		"FABMATE_SWAGGER_ENABLED",
		"FABMATE_SWAGGER_REQUIRE_AUTH",
		"FABMATE_SWAGGER_ALLOWED_IPS",
		"FABMATE_STORAGE_ACCESS_KEY_ID",
		"FABMATE_STORAGE_SECRET_ACCESS_KEY",
		"APP_ENV",
	})

	// A production config that passes every check; subtests break one
	// knob at a time.
	productionBase := func(t *testing.T) {
		clearEnv()
		setEnv(t, map[string]string{
			"FABMATE_APP_ENV":                   "production",
			"FABMATE_JWT_SECRET":                "this-is-a-very-secure-jwt-secret-key-32chars",
			"FABMATE_DATABASE_PASSWORD":         "secure-password",
			"FABMATE_DATABASE_SSLMODE":          "require",
			"FABMATE_COOKIE_SECURE":             "true",
			"FABMATE_SWAGGER_ENABLED":           "false",
			"FABMATE_STORAGE_ACCESS_KEY_ID":     "AKIA-test",
			"FABMATE_STORAGE_SECRET_ACCESS_KEY": "storage-secret",
		})
	}

	requireLoadError := func(t *testing.T, fragment string) {
		t.Helper()
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), fragment)
	}

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		productionBase(t)
		os.Unsetenv("FABMATE_JWT_SECRET")
		requireLoadError(t, "jwt.secret is required in production")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		productionBase(t)
		os.Setenv("FABMATE_JWT_SECRET", "short-secret")
		requireLoadError(t, "jwt.secret must be at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		productionBase(t)
		os.Unsetenv("FABMATE_DATABASE_PASSWORD")
		requireLoadError(t, "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		productionBase(t)
		os.Setenv("FABMATE_DATABASE_SSLMODE", "disable")
		requireLoadError(t, "database.sslmode cannot be 'disable' in production")
	})

	t.Run("requires storage credentials in production", func(t *testing.T) {
		productionBase(t)
		os.Unsetenv("FABMATE_STORAGE_ACCESS_KEY_ID")
		os.Unsetenv("FABMATE_STORAGE_SECRET_ACCESS_KEY")
		requireLoadError(t, "storage credentials are required in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		productionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("fails if swagger enabled without protection in production", func(t *testing.T) {
		productionBase(t)
		os.Setenv("FABMATE_SWAGGER_ENABLED", "true")
		os.Setenv("FABMATE_SWAGGER_REQUIRE_AUTH", "false")
		requireLoadError(t, "swagger endpoint must be disabled, require authentication, or have IP restriction")
	})

	t.Run("passes with swagger enabled and require_auth in production", func(t *testing.T) {
		productionBase(t)
		os.Setenv("FABMATE_SWAGGER_ENABLED", "true")
		os.Setenv("FABMATE_SWAGGER_REQUIRE_AUTH", "true")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Swagger.Enabled)
		assert.True(t, cfg.Swagger.RequireAuth)
	})

	t.Run("passes with swagger disabled in production", func(t *testing.T) {
		productionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Swagger.Enabled)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	base := DatabaseConfig{
		Host:    "localhost",
		Port:    5432,
		User:    "testuser",
		DBName:  "testdb",
		SSLMode: "disable",
	}

	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := base
		cfg.Password = "testpass"

		dsn := cfg.DSN()
		for _, fragment := range []string{"localhost", "5432", "testuser", "testdb", "sslmode=disable"} {
			assert.Contains(t, dsn, fragment)
		}
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := base
		cfg.Password = "pass@word#123"

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		assert.NotEmpty(t, base.DSN())
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "redis.local", Port: 6380}
	assert.Equal(t, "redis.local:6380", cfg.Addr())
}
