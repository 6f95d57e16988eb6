package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia para movimientos de inventario.
type MovementRepository interface {
	// Create inserta el movimiento y asigna movement.ID.
	Create(ctx context.Context, movement *entity.Movement) error
	// GetForUpdate lee y bloquea el movimiento; (nil, nil) si no existe.
	GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error)
	// Delete borra el movimiento. ErrNotFound si no había fila.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter entity.MovementFilter) ([]entity.MovementView, error)
	Summary(ctx context.Context, filter entity.MovementFilter) (entity.MovementSummary, error)
}
