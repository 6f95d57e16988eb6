package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado de un pedido de compra.
type OrderStatus string

// Estados de pedido. No hay grafo de transiciones: cualquier estado válido
// puede pasar a cualquier otro (incluido cancelado → entregado).
const (
	OrderPending   OrderStatus = "pendiente"
	OrderConfirmed OrderStatus = "confirmado"
	OrderShipped   OrderStatus = "enviado"
	OrderInTransit OrderStatus = "en_transito"
	OrderDelivered OrderStatus = "entregado"
	OrderCancelled OrderStatus = "cancelado"
)

// OrderStatuses todos los estados permitidos, en el orden del resumen.
var OrderStatuses = []OrderStatus{
	OrderPending,
	OrderConfirmed,
	OrderShipped,
	OrderInTransit,
	OrderDelivered,
	OrderCancelled,
}

// Valid indica si s pertenece al conjunto permitido.
func (s OrderStatus) Valid() bool {
	for _, st := range OrderStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Order cabecera de pedido de compra (tabla pedidos).
// Total es siempre la suma de los subtotales de sus líneas.
type Order struct {
	ID                int64
	Number            string
	SupplierID        int64
	Status            OrderStatus
	Total             decimal.Decimal
	EstimatedDelivery *time.Time
	Notes             string
	CreatedBy         *int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Lines             []OrderLine
}

// OrderLine línea de pedido (tabla pedido_productos). UnitPrice es una copia del
// precio del producto al crear el pedido; cambios posteriores del catálogo no la afectan.
type OrderLine struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int64
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// OrderView pedido con proveedor, creador y número de líneas para listados.
type OrderView struct {
	Order
	SupplierName    *string
	SupplierContact *string
	CreatorName     *string
	LineCount       int
}

// OrderFilter filtros para listar pedidos.
type OrderFilter struct {
	Search string
	Status OrderStatus
	Limit  int
	Offset int
}
