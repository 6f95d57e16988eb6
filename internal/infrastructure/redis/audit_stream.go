package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	goredis "github.com/redis/go-redis/v9"
)

var _ repository.AuditRepository = (*AuditStream)(nil)

// AuditStream publica eventos de auditoría en un stream Redis (XADD) para consumidores externos.
type AuditStream struct {
	client *goredis.Client
	stream string
	maxLen int64
}

// NewAuditStream construye el destino. maxLen <= 0 deja el stream sin recorte.
func NewAuditStream(client *goredis.Client, stream string, maxLen int64) *AuditStream {
	return &AuditStream{client: client, stream: stream, maxLen: maxLen}
}

// Create añade el evento al stream. Los cambios viajan como JSON {"antes","despues"}.
func (s *AuditStream) Create(ctx context.Context, e *entity.AuditEvent) error {
	changes, err := json.Marshal(map[string]any{"antes": e.Before, "despues": e.After})
	if err != nil {
		return fmt.Errorf("marshal audit changes: %w", err)
	}
	values := map[string]any{
		"evento_id":  e.ID,
		"accion":     e.Action,
		"entidad":    e.Entity,
		"entidad_id": e.EntityID,
		"cambios":    string(changes),
		"fecha":      e.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	if e.ActorID != nil {
		values["usuario_id"] = strconv.FormatInt(*e.ActorID, 10)
	}
	args := &goredis.XAddArgs{Stream: s.stream, Values: values}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}
