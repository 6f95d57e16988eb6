package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductStockRepository = (*ProductStockRepo)(nil)

// ProductStockRepo implementación de ProductStockRepository sobre la tabla productos (usable con pool o tx).
type ProductStockRepo struct {
	q Querier
}

// NewProductStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewProductStockRepository(q Querier) *ProductStockRepo {
	return &ProductStockRepo{q: q}
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
// Dos salidas concurrentes sobre el mismo producto se serializan aquí.
func (r *ProductStockRepo) GetForUpdate(ctx context.Context, productID int64) (*entity.Stock, error) {
	query := `
		SELECT id, stock, activo, fecha_actualizacion
		FROM productos WHERE id = $1
		FOR UPDATE`
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, productID).Scan(&s.ProductID, &s.Quantity, &s.Active, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("producto %d: %w", productID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// SetStock escribe el nuevo stock. El CHECK (stock >= 0) de la tabla se traduce a ErrInsufficientStock.
func (r *ProductStockRepo) SetStock(ctx context.Context, productID, newStock int64, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE productos SET stock = $2, fecha_actualizacion = $3 WHERE id = $1`,
		productID, newStock, at,
	)
	if err != nil {
		if isCheckViolation(err) {
			return fmt.Errorf("producto %d: %w", productID, domain.ErrInsufficientStock)
		}
		return fmt.Errorf("set stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("producto %d: %w", productID, domain.ErrNotFound)
	}
	return nil
}

// GetPrices lee el precio vigente de los productos indicados en una sola consulta.
func (r *ProductStockRepo) GetPrices(ctx context.Context, productIDs []int64) (map[int64]decimal.Decimal, error) {
	prices := make(map[int64]decimal.Decimal, len(productIDs))
	if len(productIDs) == 0 {
		return prices, nil
	}
	rows, err := r.q.Query(ctx, `SELECT id, precio FROM productos WHERE id = ANY($1)`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("get prices: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var price decimal.Decimal
		if err := rows.Scan(&id, &price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		prices[id] = price
	}
	return prices, rows.Err()
}

// GetByID obtiene un producto por ID; (nil, nil) si no existe.
func (r *ProductStockRepo) GetByID(ctx context.Context, productID int64) (*entity.Product, error) {
	query := `
		SELECT id, sku, nombre, stock, stock_minimo, precio, activo, fecha_creacion, fecha_actualizacion
		FROM productos WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, productID).Scan(
		&p.ID, &p.SKU, &p.Name, &p.Stock, &p.ReorderThreshold, &p.Price, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// Exists indica si el producto existe (activo o no).
func (r *ProductStockRepo) Exists(ctx context.Context, productID int64) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM productos WHERE id = $1)`, productID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("product exists: %w", err)
	}
	return ok, nil
}

// Deactivate marca el producto como inactivo (soft delete).
func (r *ProductStockRepo) Deactivate(ctx context.Context, productID int64, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE productos SET activo = FALSE, fecha_actualizacion = $2 WHERE id = $1`,
		productID, at,
	)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("producto %d: %w", productID, domain.ErrNotFound)
	}
	return nil
}

// ListBelowThreshold devuelve los productos activos con stock <= stock_minimo, mayor déficit primero.
func (r *ProductStockRepo) ListBelowThreshold(ctx context.Context) ([]repository.LowStockItem, error) {
	query := `
		SELECT id, sku, nombre, stock, stock_minimo, precio
		FROM productos
		WHERE activo AND stock <= stock_minimo
		ORDER BY (stock_minimo - stock) DESC, sku`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list below threshold: %w", err)
	}
	defer rows.Close()
	var list []repository.LowStockItem
	for rows.Next() {
		var it repository.LowStockItem
		if err := rows.Scan(&it.ProductID, &it.SKU, &it.ProductName, &it.Stock, &it.ReorderThreshold, &it.Price); err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}
