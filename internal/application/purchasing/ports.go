package purchasing

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con los repositorios de pedidos, precios y proveedores atados a ella.
type TxRunner interface {
	RunOrders(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		stockRepo repository.ProductStockRepository,
		supplierRepo repository.SupplierRepository,
	) error) error
}

// Auditor recibe eventos después del commit.
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
