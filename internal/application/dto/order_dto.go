package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea de pedido en el body de creación.
type OrderLineRequest struct {
	ProductoID int64 `json:"producto_id"`
	Cantidad   int64 `json:"cantidad"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	NumeroPedido         string             `json:"numero_pedido"`
	ProveedorID          int64              `json:"proveedor_id"`
	Estado               string             `json:"estado,omitempty"`
	FechaEntregaEstimada string             `json:"fecha_entrega_estimada,omitempty"`
	Notas                string             `json:"notas,omitempty"`
	CreadoPor            *int64             `json:"creado_por,omitempty"`
	Productos            []OrderLineRequest `json:"productos"`
}

// CreateOrderResponse id del pedido creado y su total.
type CreateOrderResponse struct {
	ID         int64           `json:"id"`
	MontoTotal decimal.Decimal `json:"monto_total"`
}

// UpdateOrderStatusRequest body para PATCH /api/orders/:id/status.
type UpdateOrderStatusRequest struct {
	Estado string `json:"estado"`
}

// OrderFilterRequest query de GET /api/orders.
type OrderFilterRequest struct {
	PageRequest
	Search string `query:"search"`
	Estado string `query:"estado"`
}

// OrderLineDTO línea con el precio congelado al crear el pedido.
type OrderLineDTO struct {
	ID             int64           `json:"id"`
	ProductoID     int64           `json:"producto_id"`
	Cantidad       int64           `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// OrderDTO pedido con sus líneas (GET /api/orders/:id) o con datos de listado.
type OrderDTO struct {
	ID                   int64           `json:"id"`
	NumeroPedido         string          `json:"numero_pedido"`
	ProveedorID          int64           `json:"proveedor_id"`
	ProveedorNombre      *string         `json:"proveedor_nombre,omitempty"`
	ProveedorContacto    *string         `json:"proveedor_contacto,omitempty"`
	Estado               string          `json:"estado"`
	MontoTotal           decimal.Decimal `json:"monto_total"`
	FechaEntregaEstimada *string         `json:"fecha_entrega_estimada"`
	Notas                string          `json:"notas"`
	CreadoPor            *int64          `json:"creado_por"`
	CreadoPorNombre      *string         `json:"creado_por_nombre,omitempty"`
	TotalProductos       int             `json:"total_productos"`
	FechaCreacion        time.Time       `json:"fecha_creacion"`
	FechaActualizacion   time.Time       `json:"fecha_actualizacion"`
	Productos            []OrderLineDTO  `json:"productos,omitempty"`
}

// OrderListResponse respuesta de GET /api/orders con el conteo por estado.
type OrderListResponse struct {
	Items   []OrderDTO     `json:"items"`
	Summary map[string]int `json:"resumen"`
	Page    PageResponse   `json:"page"`
}
