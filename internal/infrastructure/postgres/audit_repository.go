package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo escribe eventos en la tabla auditoria. Siempre usa el pool, nunca la tx del ledger:
// el evento se escribe después del commit.
type AuditRepo struct {
	q Querier
}

func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

type auditChanges struct {
	Before map[string]any `json:"antes,omitempty"`
	After  map[string]any `json:"despues,omitempty"`
}

// Create inserta el evento. nombre_usuario se resuelve desde usuarios si hay actor.
// Un evento repetido (mismo evento_id) se ignora.
func (r *AuditRepo) Create(ctx context.Context, e *entity.AuditEvent) error {
	changes, err := json.Marshal(auditChanges{Before: e.Before, After: e.After})
	if err != nil {
		return fmt.Errorf("marshal audit changes: %w", err)
	}
	query := `
		INSERT INTO auditoria (evento_id, usuario_id, nombre_usuario, accion, entidad, entidad_id, cambios, fecha)
		VALUES ($1, $2, (SELECT nombre FROM usuarios WHERE id = $2), $3, $4, $5, $6, $7)
		ON CONFLICT (evento_id) DO NOTHING`
	_, err = r.q.Exec(ctx, query, e.ID, e.ActorID, e.Action, e.Entity, e.EntityID, changes, e.OccurredAt)
	if err != nil {
		return fmt.Errorf("create audit event: %w", err)
	}
	return nil
}
