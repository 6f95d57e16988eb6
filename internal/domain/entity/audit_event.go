package entity

import "time"

// Acciones auditadas por los ledgers.
const (
	AuditMovementCreated  = "Registro de movimiento"
	AuditMovementReversed = "Eliminación de movimiento"
	AuditOrderCreated     = "Creación de pedido"
	AuditOrderStatus      = "Actualización de estado de pedido"
	AuditOrderDeleted     = "Eliminación de pedido"

	AuditEntityMovement = "Movimiento"
	AuditEntityOrder    = "Pedido"
)

// AuditEvent evento emitido tras una operación confirmada (tabla auditoria o stream).
// Before/After son mapas serializables a JSON; pueden ser nil.
type AuditEvent struct {
	ID         string
	Action     string
	Entity     string
	EntityID   string
	Before     map[string]any
	After      map[string]any
	ActorID    *int64
	OccurredAt time.Time
}
