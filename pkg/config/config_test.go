package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "/uploads", cfg.Uploads.URLPrefix)
	assert.Equal(t, "admin@nrb.gov", cfg.Admin.Email)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("UPLOAD_URL_PREFIX", "files/")
	t.Setenv("ADMIN_EMAIL", "  Ops@NRB.gov ")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, "/files", cfg.Uploads.URLPrefix)
	assert.Equal(t, "ops@nrb.gov", cfg.Admin.Email)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsDevSecretInProduction(t *testing.T) {
	t.Setenv("ENV", EnvProduction)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestValidateRequiresAdminPasswordInProduction(t *testing.T) {
	cfg := &Config{
		Env:      EnvProduction,
		Database: DatabaseConfig{Driver: DriverSQLite, Path: "db.sqlite"},
		Session:  SessionConfig{Store: SessionStoreMemory, Secret: "prod-secret"},
		Uploads:  UploadConfig{Dir: "x"},
		Admin:    AdminConfig{Email: "admin@nrb.gov"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD")

	cfg.Admin.Password = "chosen-by-ops"
	assert.NoError(t, cfg.Validate())

	cfg.Env = EnvDevelopment
	cfg.Admin.Password = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "mysql"},
		Session:  SessionConfig{Store: SessionStoreMemory, Secret: "s"},
		Uploads:  UploadConfig{Dir: "x"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Database = DatabaseConfig{Driver: DriverSQLite, Path: "db.sqlite"}
	assert.NoError(t, cfg.Validate())

	cfg.Session.Store = "memcached"
	assert.Error(t, cfg.Validate())
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 90*time.Second, parseDuration("90s", time.Minute))
}
