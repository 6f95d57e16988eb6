package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LowStockItem producto activo con stock en o por debajo de su stock mínimo.
type LowStockItem struct {
	ProductID        int64
	SKU              string
	ProductName      string
	Stock            int64
	ReorderThreshold int64
	Price            decimal.Decimal
}

// ProductStockRepository es la única fuente de verdad del contador de stock (DIP).
// GetForUpdate y SetStock deben usarse con un Querier atado a la transacción del llamador.
type ProductStockRepository interface {
	// GetForUpdate lee el stock bloqueando la fila (SELECT FOR UPDATE). ErrNotFound si no existe.
	GetForUpdate(ctx context.Context, productID int64) (*entity.Stock, error)
	// SetStock escribe el nuevo stock y updated_at. ErrNotFound si el producto ya no existe.
	SetStock(ctx context.Context, productID, newStock int64, at time.Time) error
	// GetPrices lee el precio vigente de cada producto; los ausentes no aparecen en el mapa.
	GetPrices(ctx context.Context, productIDs []int64) (map[int64]decimal.Decimal, error)

	GetByID(ctx context.Context, productID int64) (*entity.Product, error)
	Exists(ctx context.Context, productID int64) (bool, error)
	Deactivate(ctx context.Context, productID int64, at time.Time) error
	ListBelowThreshold(ctx context.Context) ([]LowStockItem, error)
}
