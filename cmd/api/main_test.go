package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func TestRun_FalloDeRedisCierraElAlmacen(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &config.Config{
		App:   config.AppConfig{Name: "test"},
		DB:    config.DBConfig{Driver: config.DriverMemory},
		Redis: config.RedisConfig{Addr: addr, Stream: "audit"},
		Audit: config.AuditConfig{Sink: config.AuditSinkRedis, Buffer: 1},
	}

	closed := false
	open := func(context.Context, *config.Config, *logger.Logger) (*storage, error) {
		s := memory.NewStore()
		return &storage{
			tx:        s,
			movements: s.Movements(),
			products:  s.Products(),
			orders:    s.Orders(),
			close:     func() { closed = true },
		}, nil
	}

	err := run(cfg, logger.Nop(), open)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conexión a Redis")
	assert.True(t, closed, "el almacén se cierra aunque el arranque falle")
}
