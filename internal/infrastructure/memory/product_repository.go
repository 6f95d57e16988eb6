package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductStockRepository = (*ProductRepo)(nil)

// ProductRepo productos y stock en memoria.
type ProductRepo struct {
	store *Store
	tx    *state
}

func (r *ProductRepo) with(fn func(st *state) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	return r.store.read(fn)
}

func (r *ProductRepo) GetForUpdate(_ context.Context, productID int64) (*entity.Stock, error) {
	var out *entity.Stock
	err := r.with(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return fmt.Errorf("producto %d: %w", productID, domain.ErrNotFound)
		}
		out = &entity.Stock{ProductID: p.ID, Quantity: p.Stock, Active: p.Active, UpdatedAt: p.UpdatedAt}
		return nil
	})
	return out, err
}

func (r *ProductRepo) SetStock(_ context.Context, productID, newStock int64, at time.Time) error {
	return r.with(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return fmt.Errorf("producto %d: %w", productID, domain.ErrNotFound)
		}
		if newStock < 0 {
			return fmt.Errorf("producto %d: %w", productID, domain.ErrInsufficientStock)
		}
		p.Stock, p.UpdatedAt = newStock, at
		st.products[productID] = p
		return nil
	})
}

func (r *ProductRepo) GetPrices(_ context.Context, productIDs []int64) (map[int64]decimal.Decimal, error) {
	prices := make(map[int64]decimal.Decimal, len(productIDs))
	err := r.with(func(st *state) error {
		for _, id := range productIDs {
			if p, ok := st.products[id]; ok {
				prices[id] = p.Price
			}
		}
		return nil
	})
	return prices, err
}

func (r *ProductRepo) GetByID(_ context.Context, productID int64) (*entity.Product, error) {
	var out *entity.Product
	err := r.with(func(st *state) error {
		if p, ok := st.products[productID]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) Exists(_ context.Context, productID int64) (bool, error) {
	var ok bool
	err := r.with(func(st *state) error {
		_, ok = st.products[productID]
		return nil
	})
	return ok, err
}

func (r *ProductRepo) Deactivate(_ context.Context, productID int64, at time.Time) error {
	return r.with(func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return fmt.Errorf("producto %d: %w", productID, domain.ErrNotFound)
		}
		p.Active, p.UpdatedAt = false, at
		st.products[productID] = p
		return nil
	})
}

func (r *ProductRepo) ListBelowThreshold(_ context.Context) ([]repository.LowStockItem, error) {
	var list []repository.LowStockItem
	err := r.with(func(st *state) error {
		for _, p := range st.products {
			if !p.Active || p.Stock > p.ReorderThreshold {
				continue
			}
			list = append(list, repository.LowStockItem{
				ProductID: p.ID, SKU: p.SKU, ProductName: p.Name,
				Stock: p.Stock, ReorderThreshold: p.ReorderThreshold, Price: p.Price,
			})
		}
		return nil
	})
	sort.Slice(list, func(i, j int) bool {
		di, dj := list[i].ReorderThreshold-list[i].Stock, list[j].ReorderThreshold-list[j].Stock
		if di != dj {
			return di > dj
		}
		return list[i].SKU < list[j].SKU
	})
	return list, err
}
