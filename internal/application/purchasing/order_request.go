package purchasing

import (
	"context"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ParseStatus normaliza un estado recibido por HTTP (mayúsculas, espacios).
func ParseStatus(s string) entity.OrderStatus {
	return entity.OrderStatus(strings.ToLower(strings.TrimSpace(s)))
}

// CreateFromRequest adapta el body de POST /api/orders a Create.
func (l *OrderLedger) CreateFromRequest(ctx context.Context, in dto.CreateOrderRequest) (dto.CreateOrderResponse, error) {
	delivery, ok := dto.ParseDateTime(in.FechaEntregaEstimada)
	if !ok {
		return dto.CreateOrderResponse{}, domain.NewValidationError("Datos de pedido inválidos",
			map[string]string{"fecha_entrega_estimada": "Fecha de entrega inválida"})
	}
	lines := make([]LineInput, 0, len(in.Productos))
	for _, p := range in.Productos {
		lines = append(lines, LineInput{ProductID: p.ProductoID, Quantity: p.Cantidad})
	}
	res, err := l.Create(ctx, CreateInput{
		Number:            in.NumeroPedido,
		SupplierID:        in.ProveedorID,
		Status:            ParseStatus(in.Estado),
		Lines:             lines,
		EstimatedDelivery: delivery,
		Notes:             in.Notas,
		CreatedBy:         in.CreadoPor,
	})
	if err != nil {
		return dto.CreateOrderResponse{}, err
	}
	return dto.CreateOrderResponse{ID: res.OrderID, MontoTotal: res.Total}, nil
}

// GetDTO devuelve el pedido con sus líneas listo para serializar.
func (l *OrderLedger) GetDTO(ctx context.Context, orderID int64) (dto.OrderDTO, error) {
	order, err := l.Get(ctx, orderID)
	if err != nil {
		return dto.OrderDTO{}, err
	}
	out := toOrderDTO(*order)
	out.TotalProductos = len(order.Lines)
	out.Productos = make([]dto.OrderLineDTO, 0, len(order.Lines))
	for _, line := range order.Lines {
		out.Productos = append(out.Productos, dto.OrderLineDTO{
			ID:             line.ID,
			ProductoID:     line.ProductID,
			Cantidad:       line.Quantity,
			PrecioUnitario: line.UnitPrice,
			Subtotal:       line.Subtotal,
		})
	}
	return out, nil
}

// ListFromRequest lista pedidos y el conteo por estado para GET /api/orders.
func (l *OrderLedger) ListFromRequest(ctx context.Context, in dto.OrderFilterRequest) (dto.OrderListResponse, error) {
	in.DefaultPage()
	status := ParseStatus(in.Estado)
	if status != "" && !status.Valid() {
		return dto.OrderListResponse{}, domain.NewValidationError("Filtro inválido", map[string]string{"estado": "Estado no permitido"})
	}
	list, err := l.List(ctx, entity.OrderFilter{Search: strings.TrimSpace(in.Search), Status: status, Limit: in.Limit, Offset: in.Offset})
	if err != nil {
		return dto.OrderListResponse{}, err
	}
	counts, err := l.Summary(ctx)
	if err != nil {
		return dto.OrderListResponse{}, err
	}

	items := make([]dto.OrderDTO, 0, len(list))
	for _, v := range list {
		item := toOrderDTO(v.Order)
		item.ProveedorNombre = v.SupplierName
		item.ProveedorContacto = v.SupplierContact
		item.CreadoPorNombre = v.CreatorName
		item.TotalProductos = v.LineCount
		items = append(items, item)
	}
	summary := make(map[string]int, len(counts))
	for s, n := range counts {
		summary[string(s)] = n
	}
	return dto.OrderListResponse{
		Items:   items,
		Summary: summary,
		Page:    dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

func toOrderDTO(o entity.Order) dto.OrderDTO {
	return dto.OrderDTO{
		ID:                   o.ID,
		NumeroPedido:         o.Number,
		ProveedorID:          o.SupplierID,
		Estado:               string(o.Status),
		MontoTotal:           o.Total,
		FechaEntregaEstimada: dto.FormatDate(o.EstimatedDelivery),
		Notas:                o.Notes,
		CreadoPor:            o.CreatedBy,
		FechaCreacion:        o.CreatedAt,
		FechaActualizacion:   o.UpdatedAt,
	}
}
