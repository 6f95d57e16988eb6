package inventory

import (
	"fmt"
	"math"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ApplyDelta calcula el stock resultante de aplicar un movimiento (servicio de dominio).
// entry: stock + cantidad; exit: stock - cantidad, con ErrInsufficientStock si stock < cantidad.
// Una entrada cuyo resultado no cabe en int64 es un ValidationError sobre cantidad.
func ApplyDelta(current int64, kind entity.MovementKind, quantity int64) (int64, error) {
	switch kind {
	case entity.MovementEntry:
		if quantity > math.MaxInt64-current {
			return current, domain.NewValidationError("cantidad fuera de rango",
				map[string]string{"cantidad": "La cantidad excede el stock máximo admitido"})
		}
		return current + quantity, nil
	case entity.MovementExit:
		if current < quantity {
			return current, fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, current, quantity)
		}
		return current - quantity, nil
	}
	return current, domain.NewValidationError("tipo de movimiento inválido", map[string]string{"tipo": "Tipo inválido"})
}

// ReverseDelta calcula el stock tras deshacer un movimiento previo de tipo kind.
// Deshacer una entrada ya consumida por salidas posteriores devuelve ErrInvalidReversal.
func ReverseDelta(current int64, kind entity.MovementKind, quantity int64) (int64, error) {
	next, err := ApplyDelta(current, kind.Inverse(), quantity)
	if err != nil {
		if kind == entity.MovementEntry {
			return current, fmt.Errorf("%w: stock %d, entrada %d", domain.ErrInvalidReversal, current, quantity)
		}
		return current, err
	}
	return next, nil
}
