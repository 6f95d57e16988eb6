package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReplenishmentUseCase genera el reporte de stock bajo (alertas) con la cantidad sugerida de reposición.
type ReplenishmentUseCase struct {
	products repository.ProductStockRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(products repository.ProductStockRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{products: products}
}

// GenerateLowStockReport devuelve los productos activos con stock <= stock mínimo, mayor déficit primero.
// La cantidad sugerida lleva el stock al doble del mínimo.
func (uc *ReplenishmentUseCase) GenerateLowStockReport(ctx context.Context) ([]dto.LowStockItemDTO, error) {
	items, err := uc.products.ListBelowThreshold(ctx)
	if err != nil {
		return nil, domain.AsTransactionFailure(err)
	}

	report := make([]dto.LowStockItemDTO, 0, len(items))
	for i, it := range items {
		suggested := 2*it.ReorderThreshold - it.Stock
		if suggested < 0 {
			suggested = 0
		}
		report = append(report, dto.LowStockItemDTO{
			ProductID:          it.ProductID,
			SKU:                it.SKU,
			ProductName:        it.ProductName,
			CurrentStock:       it.Stock,
			ReorderThreshold:   it.ReorderThreshold,
			Deficit:            it.ReorderThreshold - it.Stock,
			SuggestedOrderQty:  suggested,
			UnitPrice:          it.Price,
			EstimatedOrderCost: it.Price.Mul(decimal.NewFromInt(suggested)),
			Priority:           i + 1,
		})
	}
	return report, nil
}
