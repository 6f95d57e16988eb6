package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

func seedProduct(s *memory.Store, sku string, stock, minimo int64) int64 {
	return s.AddProduct(entity.Product{
		SKU: sku, Name: "Producto " + sku, Stock: stock, ReorderThreshold: minimo,
		Price: decimal.RequireFromString("2.50"), Active: true,
	})
}

func TestRun_ErrorDescartaCambios(t *testing.T) {
	s := memory.NewStore()
	pid := seedProduct(s, "A-1", 10, 0)
	boom := errors.New("boom")

	err := s.Run(context.Background(), func(movRepo repository.MovementRepository, stockRepo repository.ProductStockRepository) error {
		require.NoError(t, stockRepo.SetStock(context.Background(), pid, 99, time.Now()))
		require.NoError(t, movRepo.Create(context.Background(), &entity.Movement{Kind: entity.MovementEntry, ProductID: pid, Quantity: 89}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := s.Products().GetByID(context.Background(), pid)
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.Stock, "el stock no debe cambiar tras un error")

	list, err := s.Movements().List(context.Background(), entity.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRun_FalloDeCommit(t *testing.T) {
	s := memory.NewStore()
	pid := seedProduct(s, "A-1", 10, 0)
	s.FailNextCommit(errors.New("conexión perdida"))

	err := s.Run(context.Background(), func(_ repository.MovementRepository, stockRepo repository.ProductStockRepository) error {
		return stockRepo.SetStock(context.Background(), pid, 0, time.Now())
	})
	require.ErrorIs(t, err, domain.ErrTransactionFailure)

	p, _ := s.Products().GetByID(context.Background(), pid)
	assert.Equal(t, int64(10), p.Stock)

	// La inyección es de un solo uso.
	err = s.Run(context.Background(), func(_ repository.MovementRepository, stockRepo repository.ProductStockRepository) error {
		return stockRepo.SetStock(context.Background(), pid, 0, time.Now())
	})
	require.NoError(t, err)
}

func TestRun_ContextoCancelado(t *testing.T) {
	s := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Run(ctx, func(repository.MovementRepository, repository.ProductStockRepository) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, domain.ErrTransactionFailure)
	assert.False(t, called)
}

func TestProductRepo_SetStockNegativo(t *testing.T) {
	s := memory.NewStore()
	pid := seedProduct(s, "A-1", 1, 0)

	err := s.Products().SetStock(context.Background(), pid, -1, time.Now())
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	err = s.Products().SetStock(context.Background(), 999, 1, time.Now())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepo_ListBelowThreshold(t *testing.T) {
	s := memory.NewStore()
	seedProduct(s, "B-2", 4, 5)  // déficit 1
	seedProduct(s, "A-1", 0, 10) // déficit 10
	seedProduct(s, "C-3", 20, 5) // sobre el mínimo
	inactive := seedProduct(s, "D-4", 0, 5)
	require.NoError(t, s.Products().Deactivate(context.Background(), inactive, time.Now()))

	items, err := s.Products().ListBelowThreshold(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A-1", items[0].SKU)
	assert.Equal(t, "B-2", items[1].SKU)
}

func TestMovementRepo_ListFiltraYOrdena(t *testing.T) {
	s := memory.NewStore()
	pid := seedProduct(s, "TOR-01", 100, 0)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	err := s.Run(context.Background(), func(movRepo repository.MovementRepository, _ repository.ProductStockRepository) error {
		for i, kind := range []entity.MovementKind{entity.MovementEntry, entity.MovementExit, entity.MovementEntry} {
			m := &entity.Movement{Kind: kind, ProductID: pid, Quantity: int64(i + 1), Reference: "REF", OccurredAt: base.Add(time.Duration(i) * time.Hour)}
			if err := movRepo.Create(context.Background(), m); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	all, err := s.Movements().List(context.Background(), entity.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].ID, "más reciente primero")
	assert.Equal(t, "TOR-01", all[0].ProductSKU)

	entries, err := s.Movements().List(context.Background(), entity.MovementFilter{Kind: entity.MovementEntry, Search: "tor"})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	page, err := s.Movements().List(context.Background(), entity.MovementFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(2), page[0].ID)

	sum, err := s.Movements().Summary(context.Background(), entity.MovementFilter{})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementSummary{TotalEntries: 4, TotalExits: 2, Balance: 2}, sum)
}

func TestMovementRepo_ResponsableInexistente(t *testing.T) {
	s := memory.NewStore()
	pid := seedProduct(s, "A-1", 0, 0)
	ghost := int64(42)

	err := s.Movements().Create(context.Background(), &entity.Movement{Kind: entity.MovementEntry, ProductID: pid, Quantity: 1, ResponsibleID: &ghost})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "responsable_id")
}

func TestOrderRepo_CountByStatusIncluyeCeros(t *testing.T) {
	s := memory.NewStore()
	sup := s.AddSupplier(entity.Supplier{Name: "Acme"})
	o := &entity.Order{Number: "PO-1", SupplierID: sup, Status: entity.OrderConfirmed}
	require.NoError(t, s.Orders().Create(context.Background(), o))

	counts, err := s.Orders().CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Len(t, counts, len(entity.OrderStatuses))
	assert.Equal(t, 1, counts[entity.OrderConfirmed])
	assert.Equal(t, 0, counts[entity.OrderPending])
}
