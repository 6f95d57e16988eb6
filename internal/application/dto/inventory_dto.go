package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplyMovementRequest body para POST /api/inventory/movements.
// FechaMovimiento acepta RFC3339, "2006-01-02 15:04:05" o "2006-01-02"; vacío = ahora.
type ApplyMovementRequest struct {
	Tipo            string `json:"tipo"`
	ProductoID      int64  `json:"producto_id"`
	Cantidad        int64  `json:"cantidad"`
	ResponsableID   *int64 `json:"responsable_id,omitempty"`
	Referencia      string `json:"referencia,omitempty"`
	Notas           string `json:"notas,omitempty"`
	FechaMovimiento string `json:"fecha_movimiento,omitempty"`
}

// ApplyMovementResponse resultado de registrar un movimiento.
type ApplyMovementResponse struct {
	ID         int64 `json:"id"`
	NuevoStock int64 `json:"nuevo_stock"`
}

// MovementFilterRequest query de GET /api/inventory/movements.
type MovementFilterRequest struct {
	PageRequest
	Search string `query:"search"`
	Tipo   string `query:"tipo"`
}

// MovementDTO movimiento en listados.
type MovementDTO struct {
	ID                int64     `json:"id"`
	Tipo              string    `json:"tipo"`
	ProductoID        int64     `json:"producto_id"`
	ProductoNombre    string    `json:"producto_nombre"`
	ProductoSKU       string    `json:"producto_sku"`
	StockActual       *int64    `json:"stock_actual"`
	Cantidad          int64     `json:"cantidad"`
	ResponsableID     *int64    `json:"responsable_id"`
	ResponsableNombre *string   `json:"responsable_nombre"`
	Referencia        string    `json:"referencia"`
	Notas             string    `json:"notas"`
	FechaMovimiento   time.Time `json:"fecha_movimiento"`
}

// MovementSummaryDTO totales del listado filtrado.
type MovementSummaryDTO struct {
	TotalEntradas int64 `json:"total_entradas"`
	TotalSalidas  int64 `json:"total_salidas"`
	Balance       int64 `json:"balance"`
}

// MovementListResponse respuesta de GET /api/inventory/movements.
type MovementListResponse struct {
	Items   []MovementDTO      `json:"items"`
	Summary MovementSummaryDTO `json:"resumen"`
	Page    PageResponse       `json:"page"`
}

// LowStockItemDTO producto en o bajo su stock mínimo con la reposición sugerida.
// Deficit = stock_minimo - stock; SuggestedOrderQty = 2 × stock_minimo - stock (nunca negativo);
// EstimatedOrderCost = SuggestedOrderQty × precio; Priority 1 = más urgente.
type LowStockItemDTO struct {
	ProductID          int64           `json:"producto_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"nombre"`
	CurrentStock       int64           `json:"stock"`
	ReorderThreshold   int64           `json:"stock_minimo"`
	Deficit            int64           `json:"deficit"`
	SuggestedOrderQty  int64           `json:"cantidad_sugerida"`
	UnitPrice          decimal.Decimal `json:"precio"`
	EstimatedOrderCost decimal.Decimal `json:"costo_estimado"`
	Priority           int             `json:"prioridad"`
}
