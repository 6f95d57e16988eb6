package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para pedidos y sus líneas.
type OrderRepository interface {
	// Create inserta la cabecera y asigna order.ID, CreatedAt y UpdatedAt.
	Create(ctx context.Context, order *entity.Order) error
	// CreateLine inserta una línea y asigna line.ID.
	CreateLine(ctx context.Context, line *entity.OrderLine) error
	// GetStatusForUpdate bloquea la cabecera y devuelve su estado. ErrNotFound si no existe.
	GetStatusForUpdate(ctx context.Context, orderID int64) (entity.OrderStatus, error)
	UpdateStatus(ctx context.Context, orderID int64, status entity.OrderStatus, at time.Time) error
	// DeleteLines borra todas las líneas del pedido y devuelve cuántas borró.
	DeleteLines(ctx context.Context, orderID int64) (int64, error)
	// Delete borra la cabecera. ErrNotFound si no había fila.
	Delete(ctx context.Context, orderID int64) error
	// GetByID devuelve cabecera y líneas; (nil, nil) si no existe.
	GetByID(ctx context.Context, orderID int64) (*entity.Order, error)
	List(ctx context.Context, filter entity.OrderFilter) ([]entity.OrderView, error)
	CountByStatus(ctx context.Context) (map[entity.OrderStatus]int, error)
}

// SupplierRepository lecturas de proveedores usadas por el ledger de pedidos.
type SupplierRepository interface {
	Exists(ctx context.Context, supplierID int64) (bool, error)
}
