package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo lecturas de la tabla proveedores.
type SupplierRepo struct {
	q Querier
}

func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

// Exists indica si el proveedor existe.
func (r *SupplierRepo) Exists(ctx context.Context, supplierID int64) (bool, error) {
	var ok bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM proveedores WHERE id = $1)`, supplierID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("supplier exists: %w", err)
	}
	return ok, nil
}
