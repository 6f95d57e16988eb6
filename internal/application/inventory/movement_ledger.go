package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Nombres de operación para métricas y logs.
const (
	OpApply   = "movement_apply"
	OpReverse = "movement_reverse"
)

// MovementLedger registra y revierte movimientos de stock. Cada operación corre en una
// transacción con la fila del producto bloqueada (SELECT FOR UPDATE) entre la lectura y la escritura.
type MovementLedger struct {
	txRunner  TxRunner
	movements repository.MovementRepository
	auditor   Auditor
	metrics   Metrics
	log       *logger.Logger
	now       func() time.Time
}

// Option configura dependencias opcionales del ledger.
type Option func(*MovementLedger)

// WithAuditor emite eventos de auditoría tras cada operación confirmada.
func WithAuditor(a Auditor) Option { return func(l *MovementLedger) { l.auditor = a } }

// WithMetrics registra resultado y duración de cada operación.
func WithMetrics(m Metrics) Option { return func(l *MovementLedger) { l.metrics = m } }

// WithClock fija el reloj (tests).
func WithClock(now func() time.Time) Option { return func(l *MovementLedger) { l.now = now } }

// NewMovementLedger construye el ledger. movements se usa solo para lecturas fuera de transacción.
func NewMovementLedger(txRunner TxRunner, movements repository.MovementRepository, log *logger.Logger, opts ...Option) *MovementLedger {
	l := &MovementLedger{
		txRunner:  txRunner,
		movements: movements,
		auditor:   nopAuditor{},
		metrics:   nopMetrics{},
		log:       log.Component("movement_ledger"),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ApplyInput datos de un movimiento nuevo. OccurredAt nil = ahora.
// ActorID es quien ejecuta la operación; si es nil la auditoría usa ResponsibleID.
type ApplyInput struct {
	Kind          entity.MovementKind
	ProductID     int64
	Quantity      int64
	ResponsibleID *int64
	ActorID       *int64
	Reference     string
	Notes         string
	OccurredAt    *time.Time
}

func (in ApplyInput) auditActor() *int64 {
	if in.ActorID != nil {
		return in.ActorID
	}
	return in.ResponsibleID
}

// ApplyResult identificador del movimiento creado y stock resultante.
type ApplyResult struct {
	MovementID int64
	NewStock   int64
}

func (in ApplyInput) validate() error {
	fields := map[string]string{}
	if !in.Kind.Valid() {
		fields["tipo"] = "Tipo inválido"
	}
	if in.ProductID <= 0 {
		fields["producto_id"] = "Selecciona un producto válido"
	}
	if in.Quantity <= 0 {
		fields["cantidad"] = "La cantidad debe ser mayor a 0"
	}
	if in.ResponsibleID != nil && *in.ResponsibleID <= 0 {
		fields["responsable_id"] = "Responsable inválido"
	}
	if len(fields) > 0 {
		return domain.NewValidationError("Datos de movimiento inválidos", fields)
	}
	return nil
}

// Apply valida, bloquea el producto, calcula el nuevo stock, inserta el movimiento y actualiza el stock.
// Una salida mayor al stock devuelve ErrInsufficientStock sin escribir nada.
func (l *MovementLedger) Apply(ctx context.Context, in ApplyInput) (res ApplyResult, err error) {
	start := time.Now()
	defer func() { l.finish(OpApply, err, start) }()

	if err := in.validate(); err != nil {
		return ApplyResult{}, err
	}
	now := l.now()
	mov := &entity.Movement{
		Kind:          in.Kind,
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		ResponsibleID: in.ResponsibleID,
		Reference:     strings.TrimSpace(in.Reference),
		Notes:         strings.TrimSpace(in.Notes),
		OccurredAt:    now,
	}
	if in.OccurredAt != nil {
		mov.OccurredAt = in.OccurredAt.UTC()
	}

	var before int64
	err = l.txRunner.Run(ctx, func(movRepo repository.MovementRepository, stockRepo repository.ProductStockRepository) error {
		stock, err := stockRepo.GetForUpdate(ctx, mov.ProductID)
		if err != nil {
			return err
		}
		newStock, err := inventory.ApplyDelta(stock.Quantity, mov.Kind, mov.Quantity)
		if err != nil {
			return err
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		if err := stockRepo.SetStock(ctx, mov.ProductID, newStock, now); err != nil {
			return err
		}
		before, res = stock.Quantity, ApplyResult{MovementID: mov.ID, NewStock: newStock}
		return nil
	})
	if err != nil {
		return ApplyResult{}, domain.AsTransactionFailure(err)
	}

	l.auditor.Record(ctx, entity.AuditEvent{
		Action:   entity.AuditMovementCreated,
		Entity:   entity.AuditEntityMovement,
		EntityID: strconv.FormatInt(res.MovementID, 10),
		Before:   map[string]any{"producto_id": mov.ProductID, "stock": before},
		After: map[string]any{
			"tipo":        string(mov.Kind),
			"producto_id": mov.ProductID,
			"cantidad":    mov.Quantity,
			"referencia":  mov.Reference,
			"stock":       res.NewStock,
		},
		ActorID: in.auditActor(),
	})
	return res, nil
}

// Reverse elimina un movimiento aplicando el ajuste inverso. Si eliminar una entrada dejaría
// el stock negativo devuelve ErrInvalidReversal y el movimiento se conserva.
func (l *MovementLedger) Reverse(ctx context.Context, movementID int64, actorID *int64) (err error) {
	start := time.Now()
	defer func() { l.finish(OpReverse, err, start) }()

	if movementID <= 0 {
		return domain.NewValidationError("ID de movimiento inválido", map[string]string{"id": "ID de movimiento inválido"})
	}
	now := l.now()

	var removed entity.Movement
	var before, after int64
	err = l.txRunner.Run(ctx, func(movRepo repository.MovementRepository, stockRepo repository.ProductStockRepository) error {
		mov, err := movRepo.GetForUpdate(ctx, movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return fmt.Errorf("movimiento no encontrado: %w", domain.ErrNotFound)
		}
		stock, err := stockRepo.GetForUpdate(ctx, mov.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("producto asociado no encontrado: %w", domain.ErrNotFound)
			}
			return err
		}
		newStock, err := inventory.ReverseDelta(stock.Quantity, mov.Kind, mov.Quantity)
		if err != nil {
			return err
		}
		if err := movRepo.Delete(ctx, mov.ID); err != nil {
			return err
		}
		if err := stockRepo.SetStock(ctx, mov.ProductID, newStock, now); err != nil {
			return err
		}
		removed, before, after = *mov, stock.Quantity, newStock
		return nil
	})
	if err != nil {
		return domain.AsTransactionFailure(err)
	}

	l.auditor.Record(ctx, entity.AuditEvent{
		Action:   entity.AuditMovementReversed,
		Entity:   entity.AuditEntityMovement,
		EntityID: strconv.FormatInt(removed.ID, 10),
		Before: map[string]any{
			"tipo":        string(removed.Kind),
			"producto_id": removed.ProductID,
			"cantidad":    removed.Quantity,
			"referencia":  removed.Reference,
			"stock":       before,
		},
		After:   map[string]any{"producto_id": removed.ProductID, "stock": after},
		ActorID: actorID,
	})
	return nil
}

// List devuelve movimientos filtrados, más recientes primero.
func (l *MovementLedger) List(ctx context.Context, f entity.MovementFilter) ([]entity.MovementView, error) {
	list, err := l.movements.List(ctx, f)
	if err != nil {
		l.log.Error().Err(err).Msg("listar movimientos")
		return nil, domain.AsTransactionFailure(err)
	}
	return list, nil
}

// Summary totaliza entradas y salidas con el mismo filtro que List.
func (l *MovementLedger) Summary(ctx context.Context, f entity.MovementFilter) (entity.MovementSummary, error) {
	s, err := l.movements.Summary(ctx, f)
	if err != nil {
		l.log.Error().Err(err).Msg("resumen de movimientos")
		return entity.MovementSummary{}, domain.AsTransactionFailure(err)
	}
	return s, nil
}

func (l *MovementLedger) finish(op string, err error, start time.Time) {
	elapsed := time.Since(start)
	l.metrics.Observe(op, err, elapsed)
	switch {
	case err == nil:
		l.log.Debug().Str("op", op).Dur("elapsed", elapsed).Msg("ok")
	case errors.Is(err, domain.ErrTransactionFailure):
		l.log.Error().Err(err).Str("op", op).Msg("fallo del almacén")
	default:
		l.log.Warn().Err(err).Str("op", op).Msg("operación rechazada")
	}
}
