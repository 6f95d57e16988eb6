package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ApplyFromRequest adapta el body HTTP a Apply. Usar desde handlers o importadores que reciban dto.ApplyMovementRequest.
// actorID es el usuario autenticado que ejecuta la operación.
func (l *MovementLedger) ApplyFromRequest(ctx context.Context, in dto.ApplyMovementRequest, actorID *int64) (dto.ApplyMovementResponse, error) {
	occurredAt, ok := dto.ParseDateTime(in.FechaMovimiento)
	if !ok {
		return dto.ApplyMovementResponse{}, domain.NewValidationError("Datos de movimiento inválidos",
			map[string]string{"fecha_movimiento": "Fecha de movimiento inválida"})
	}
	res, err := l.Apply(ctx, ApplyInput{
		Kind:          entity.MovementKind(strings.ToLower(strings.TrimSpace(in.Tipo))),
		ProductID:     in.ProductoID,
		Quantity:      in.Cantidad,
		ResponsibleID: in.ResponsableID,
		ActorID:       actorID,
		Reference:     in.Referencia,
		Notes:         in.Notas,
		OccurredAt:    occurredAt,
	})
	if err != nil {
		return dto.ApplyMovementResponse{}, err
	}
	return dto.ApplyMovementResponse{ID: res.MovementID, NuevoStock: res.NewStock}, nil
}

// ListFromRequest lista y totaliza movimientos para GET /api/inventory/movements.
func (l *MovementLedger) ListFromRequest(ctx context.Context, in dto.MovementFilterRequest) (dto.MovementListResponse, error) {
	in.DefaultPage()
	kind := entity.MovementKind(strings.ToLower(strings.TrimSpace(in.Tipo)))
	if kind != "" && !kind.Valid() {
		return dto.MovementListResponse{}, domain.NewValidationError("Filtro inválido", map[string]string{"tipo": "Tipo inválido"})
	}
	filter := entity.MovementFilter{Search: strings.TrimSpace(in.Search), Kind: kind, Limit: in.Limit, Offset: in.Offset}

	list, err := l.List(ctx, filter)
	if err != nil {
		return dto.MovementListResponse{}, err
	}
	summary, err := l.Summary(ctx, filter)
	if err != nil {
		return dto.MovementListResponse{}, err
	}

	items := make([]dto.MovementDTO, 0, len(list))
	for _, v := range list {
		items = append(items, dto.MovementDTO{
			ID:                v.ID,
			Tipo:              string(v.Kind),
			ProductoID:        v.ProductID,
			ProductoNombre:    v.ProductName,
			ProductoSKU:       v.ProductSKU,
			StockActual:       v.ProductStock,
			Cantidad:          v.Quantity,
			ResponsableID:     v.ResponsibleID,
			ResponsableNombre: v.ResponsibleName,
			Referencia:        v.Reference,
			Notas:             v.Notes,
			FechaMovimiento:   v.OccurredAt,
		})
	}
	return dto.MovementListResponse{
		Items: items,
		Summary: dto.MovementSummaryDTO{
			TotalEntradas: summary.TotalEntries,
			TotalSalidas:  summary.TotalExits,
			Balance:       summary.Balance,
		},
		Page: dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}
