package repository

//go:generate mockgen -source=audit_repository.go -destination=mocks/audit_repository_mock.go -package=mocks

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// AuditRepository destino de eventos de auditoría (tabla auditoria o stream Redis).
type AuditRepository interface {
	Create(ctx context.Context, event *entity.AuditEvent) error
}
