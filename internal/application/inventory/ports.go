package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit solo si fn devuelve nil; cualquier error o panic deja cero cambios observables.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.ProductStockRepository,
	) error) error
}

// Auditor recibe eventos después del commit. No devuelve error: la auditoría nunca revierte el negocio.
type Auditor interface {
	Record(ctx context.Context, event entity.AuditEvent)
}

// Metrics registra el resultado y la duración de cada operación.
type Metrics interface {
	Observe(operation string, err error, elapsed time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) Observe(string, error, time.Duration) {}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, entity.AuditEvent) {}
