package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

func TestGenerateLowStockReport(t *testing.T) {
	store := memory.NewStore()
	store.AddProduct(entity.Product{SKU: "B", Name: "Brocas", Stock: 4, ReorderThreshold: 5, Price: decimal.RequireFromString("2.50"), Active: true})
	store.AddProduct(entity.Product{SKU: "A", Name: "Arandelas", Stock: 0, ReorderThreshold: 10, Price: decimal.RequireFromString("0.10"), Active: true})
	store.AddProduct(entity.Product{SKU: "C", Name: "Clavos", Stock: 50, ReorderThreshold: 10, Active: true})
	store.AddProduct(entity.Product{SKU: "D", Name: "Descontinuado", Stock: 0, ReorderThreshold: 10, Active: false})

	report, err := inventory.NewReplenishmentUseCase(store.Products()).GenerateLowStockReport(context.Background())
	require.NoError(t, err)
	require.Len(t, report, 2)

	first := report[0]
	assert.Equal(t, "A", first.SKU)
	assert.Equal(t, 1, first.Priority)
	assert.Equal(t, int64(10), first.Deficit)
	assert.Equal(t, int64(20), first.SuggestedOrderQty)
	assert.True(t, decimal.RequireFromString("2").Equal(first.EstimatedOrderCost))

	second := report[1]
	assert.Equal(t, "B", second.SKU)
	assert.Equal(t, int64(6), second.SuggestedOrderQty)
	assert.True(t, decimal.RequireFromString("15").Equal(second.EstimatedOrderCost))
}

func TestGenerateLowStockReport_Vacio(t *testing.T) {
	store := memory.NewStore()
	report, err := inventory.NewReplenishmentUseCase(store.Products()).GenerateLowStockReport(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, report)
	assert.Empty(t, report)
}
