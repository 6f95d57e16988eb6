package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, config.DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, int32(25), cfg.DB.MaxConns)
	assert.Equal(t, config.AuditSinkPostgres, cfg.Audit.Sink)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_EnvTienePrioridad(t *testing.T) {
	t.Setenv("DB_DRIVER", "MEMORY")
	t.Setenv("AUDIT_SINK", "redis")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("AUDIT_TIMEOUT", "500ms")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverMemory, cfg.DB.Driver)
	assert.Equal(t, config.AuditSinkRedis, cfg.Audit.Sink)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.Audit.Timeout)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_RechazaCombinacionesInvalidas(t *testing.T) {
	t.Run("driver desconocido", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mysql")
		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("auditoría postgres sin postgres", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "memory")
		t.Setenv("AUDIT_SINK", "postgres")
		_, err := config.Load()
		assert.Error(t, err)
	})
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/inv?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
