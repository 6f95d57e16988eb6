package purchasing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
	"github.com/shopspring/decimal"
)

// Nombres de operación para métricas y logs.
const (
	OpCreate       = "order_create"
	OpUpdateStatus = "order_update_status"
	OpDelete       = "order_delete"
)

// OrderLedger crea pedidos de compra con precios congelados y gestiona su estado.
// Los pedidos nunca mueven stock: la recepción se registra como movimiento de entrada aparte.
type OrderLedger struct {
	txRunner TxRunner
	orders   repository.OrderRepository
	auditor  Auditor
	metrics  Metrics
	log      *logger.Logger
	now      func() time.Time
}

// Option configura dependencias opcionales del ledger.
type Option func(*OrderLedger)

func WithAuditor(a Auditor) Option { return func(l *OrderLedger) { l.auditor = a } }

func WithMetrics(m Metrics) Option { return func(l *OrderLedger) { l.metrics = m } }

func WithClock(now func() time.Time) Option { return func(l *OrderLedger) { l.now = now } }

// NewOrderLedger construye el ledger. orders se usa solo para lecturas fuera de transacción.
func NewOrderLedger(txRunner TxRunner, orders repository.OrderRepository, log *logger.Logger, opts ...Option) *OrderLedger {
	l := &OrderLedger{
		txRunner: txRunner,
		orders:   orders,
		auditor:  nopAuditor{},
		metrics:  nopMetrics{},
		log:      log.Component("order_ledger"),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LineInput producto y cantidad pedidos.
type LineInput struct {
	ProductID int64
	Quantity  int64
}

// CreateInput datos de un pedido nuevo. Status vacío = pendiente.
type CreateInput struct {
	Number            string
	SupplierID        int64
	Status            entity.OrderStatus
	Lines             []LineInput
	EstimatedDelivery *time.Time
	Notes             string
	CreatedBy         *int64
}

// CreateResult pedido creado.
type CreateResult struct {
	OrderID int64
	Total   decimal.Decimal
}

// normalize recorta textos, descarta líneas sin producto o con cantidad <= 0 y valida la cabecera.
func (in CreateInput) normalize() (CreateInput, error) {
	out := in
	out.Number = strings.TrimSpace(in.Number)
	out.Notes = strings.TrimSpace(in.Notes)
	if out.Status == "" {
		out.Status = entity.OrderPending
	}
	if in.EstimatedDelivery != nil {
		d := time.Date(in.EstimatedDelivery.Year(), in.EstimatedDelivery.Month(), in.EstimatedDelivery.Day(), 0, 0, 0, 0, time.UTC)
		out.EstimatedDelivery = &d
	}

	out.Lines = make([]LineInput, 0, len(in.Lines))
	for _, line := range in.Lines {
		if line.ProductID <= 0 || line.Quantity <= 0 {
			continue
		}
		out.Lines = append(out.Lines, line)
	}

	fields := map[string]string{}
	if out.Number == "" {
		fields["numero_pedido"] = "El número de pedido es obligatorio"
	}
	if out.SupplierID <= 0 {
		fields["proveedor_id"] = "Selecciona un proveedor válido"
	}
	if !out.Status.Valid() {
		fields["estado"] = "Estado no permitido"
	}
	if len(out.Lines) == 0 {
		if len(in.Lines) == 0 {
			fields["productos"] = "Debes agregar al menos un producto"
		} else {
			fields["productos"] = "Los productos deben tener cantidades válidas"
		}
	}
	if out.CreatedBy != nil && *out.CreatedBy <= 0 {
		fields["creado_por"] = "Usuario creador inválido"
	}
	if len(fields) > 0 {
		return out, domain.NewValidationError("Datos de pedido inválidos", fields)
	}
	return out, nil
}

// Create inserta cabecera y líneas en una sola transacción. El precio de cada línea se copia
// del producto en ese momento; cualquier fallo deja cero filas escritas.
func (l *OrderLedger) Create(ctx context.Context, raw CreateInput) (res CreateResult, err error) {
	start := time.Now()
	defer func() { l.finish(OpCreate, err, start) }()

	in, err := raw.normalize()
	if err != nil {
		return CreateResult{}, err
	}
	now := l.now()
	order := &entity.Order{
		Number:            in.Number,
		SupplierID:        in.SupplierID,
		Status:            in.Status,
		EstimatedDelivery: in.EstimatedDelivery,
		Notes:             in.Notes,
		CreatedBy:         in.CreatedBy,
		CreatedAt:         now,
	}

	err = l.txRunner.RunOrders(ctx, func(
		orderRepo repository.OrderRepository,
		stockRepo repository.ProductStockRepository,
		supplierRepo repository.SupplierRepository,
	) error {
		ok, err := supplierRepo.Exists(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NewValidationError("Datos de pedido inválidos", map[string]string{"proveedor_id": "Selecciona un proveedor válido"})
		}

		ids := make([]int64, 0, len(in.Lines))
		seen := make(map[int64]bool, len(in.Lines))
		for _, line := range in.Lines {
			if !seen[line.ProductID] {
				seen[line.ProductID] = true
				ids = append(ids, line.ProductID)
			}
		}
		prices, err := stockRepo.GetPrices(ctx, ids)
		if err != nil {
			return err
		}

		total := decimal.Zero
		lines := make([]entity.OrderLine, 0, len(in.Lines))
		for _, line := range in.Lines {
			price, ok := prices[line.ProductID]
			if !ok {
				return domain.NewValidationError("Producto no encontrado para el pedido",
					map[string]string{"productos": fmt.Sprintf("Producto %d no encontrado para el pedido", line.ProductID)})
			}
			subtotal := price.Mul(decimal.NewFromInt(line.Quantity))
			total = total.Add(subtotal)
			lines = append(lines, entity.OrderLine{ProductID: line.ProductID, Quantity: line.Quantity, UnitPrice: price, Subtotal: subtotal})
		}
		order.Total = total

		if err := orderRepo.Create(ctx, order); err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = order.ID
			if err := orderRepo.CreateLine(ctx, &lines[i]); err != nil {
				return err
			}
		}
		order.Lines = lines
		return nil
	})
	if err != nil {
		return CreateResult{}, domain.AsTransactionFailure(err)
	}

	l.auditor.Record(ctx, entity.AuditEvent{
		Action:   entity.AuditOrderCreated,
		Entity:   entity.AuditEntityOrder,
		EntityID: strconv.FormatInt(order.ID, 10),
		After: map[string]any{
			"numero_pedido": order.Number,
			"proveedor_id":  order.SupplierID,
			"estado":        string(order.Status),
			"monto_total":   order.Total.StringFixed(2),
			"productos":     len(order.Lines),
		},
		ActorID: order.CreatedBy,
	})
	return CreateResult{OrderID: order.ID, Total: order.Total}, nil
}

// UpdateStatus cambia el estado del pedido. Cualquier estado válido puede pasar a cualquier otro
// (incluido cancelado → entregado) y el cambio no mueve stock.
func (l *OrderLedger) UpdateStatus(ctx context.Context, orderID int64, status entity.OrderStatus, actorID *int64) (err error) {
	start := time.Now()
	defer func() { l.finish(OpUpdateStatus, err, start) }()

	fields := map[string]string{}
	if orderID <= 0 {
		fields["id"] = "ID de pedido inválido"
	}
	if !status.Valid() {
		fields["estado"] = "Estado no permitido"
	}
	if len(fields) > 0 {
		return domain.NewValidationError("Datos de pedido inválidos", fields)
	}
	now := l.now()

	var previous entity.OrderStatus
	err = l.txRunner.RunOrders(ctx, func(orderRepo repository.OrderRepository, _ repository.ProductStockRepository, _ repository.SupplierRepository) error {
		current, err := orderRepo.GetStatusForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := orderRepo.UpdateStatus(ctx, orderID, status, now); err != nil {
			return err
		}
		previous = current
		return nil
	})
	if err != nil {
		return domain.AsTransactionFailure(err)
	}

	l.auditor.Record(ctx, entity.AuditEvent{
		Action:   entity.AuditOrderStatus,
		Entity:   entity.AuditEntityOrder,
		EntityID: strconv.FormatInt(orderID, 10),
		Before:   map[string]any{"estado": string(previous)},
		After:    map[string]any{"estado": string(status)},
		ActorID:  actorID,
	})
	return nil
}

// Delete borra las líneas y luego la cabecera en una transacción. No toca stock.
func (l *OrderLedger) Delete(ctx context.Context, orderID int64, actorID *int64) (err error) {
	start := time.Now()
	defer func() { l.finish(OpDelete, err, start) }()

	if orderID <= 0 {
		return domain.NewValidationError("ID de pedido inválido", map[string]string{"id": "ID de pedido inválido"})
	}

	var previous entity.OrderStatus
	var removedLines int64
	err = l.txRunner.RunOrders(ctx, func(orderRepo repository.OrderRepository, _ repository.ProductStockRepository, _ repository.SupplierRepository) error {
		current, err := orderRepo.GetStatusForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		n, err := orderRepo.DeleteLines(ctx, orderID)
		if err != nil {
			return err
		}
		if err := orderRepo.Delete(ctx, orderID); err != nil {
			return err
		}
		previous, removedLines = current, n
		return nil
	})
	if err != nil {
		return domain.AsTransactionFailure(err)
	}

	l.auditor.Record(ctx, entity.AuditEvent{
		Action:   entity.AuditOrderDeleted,
		Entity:   entity.AuditEntityOrder,
		EntityID: strconv.FormatInt(orderID, 10),
		Before:   map[string]any{"estado": string(previous), "productos": removedLines},
		ActorID:  actorID,
	})
	return nil
}

// Get devuelve el pedido con sus líneas; ErrNotFound si no existe.
func (l *OrderLedger) Get(ctx context.Context, orderID int64) (*entity.Order, error) {
	order, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		l.log.Error().Err(err).Int64("pedido_id", orderID).Msg("obtener pedido")
		return nil, domain.AsTransactionFailure(err)
	}
	if order == nil {
		return nil, fmt.Errorf("pedido %d: %w", orderID, domain.ErrNotFound)
	}
	return order, nil
}

// List lista pedidos filtrados, más recientes primero.
func (l *OrderLedger) List(ctx context.Context, f entity.OrderFilter) ([]entity.OrderView, error) {
	list, err := l.orders.List(ctx, f)
	if err != nil {
		l.log.Error().Err(err).Msg("listar pedidos")
		return nil, domain.AsTransactionFailure(err)
	}
	return list, nil
}

// Summary cuenta pedidos por estado; todos los estados aparecen aunque valgan 0.
func (l *OrderLedger) Summary(ctx context.Context) (map[entity.OrderStatus]int, error) {
	counts, err := l.orders.CountByStatus(ctx)
	if err != nil {
		l.log.Error().Err(err).Msg("resumen de pedidos")
		return nil, domain.AsTransactionFailure(err)
	}
	for _, s := range entity.OrderStatuses {
		if _, ok := counts[s]; !ok {
			counts[s] = 0
		}
	}
	return counts, nil
}

func (l *OrderLedger) finish(op string, err error, start time.Time) {
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
