package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo (tabla productos).
// Stock solo lo modifican los movimientos; el catálogo nunca lo escribe directamente.
// Los productos no se borran: Active=false (soft delete) para que movimientos y pedidos
// históricos sigan resolviendo la referencia.
type Product struct {
	ID               int64
	SKU              string
	Name             string
	Stock            int64
	ReorderThreshold int64           // stock_minimo
	Price            decimal.Decimal // precio unitario vigente
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Supplier proveedor al que se emiten pedidos de compra.
type Supplier struct {
	ID      int64
	Name    string
	Contact string
	Email   string
	Active  bool
}
