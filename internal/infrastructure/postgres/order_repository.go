package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre pedidos y pedido_productos.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create inserta la cabecera del pedido.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO pedidos (numero_pedido, proveedor_id, estado, monto_total, fecha_entrega_estimada, notas, creado_por, fecha_creacion, fecha_actualizacion)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING id, fecha_creacion, fecha_actualizacion`
	now := o.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	err := r.q.QueryRow(ctx, query,
		o.Number, o.SupplierID, string(o.Status), o.Total, o.EstimatedDelivery, o.Notes, o.CreatedBy, now,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if constraint, ok := foreignKeyConstraint(err); ok {
			switch {
			case strings.Contains(constraint, "proveedor"):
				return domain.NewValidationError("Datos de pedido inválidos", map[string]string{"proveedor_id": "Selecciona un proveedor válido"})
			case strings.Contains(constraint, "creado_por"):
				return domain.NewValidationError("Datos de pedido inválidos", map[string]string{"creado_por": "Usuario creador no encontrado"})
			}
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// CreateLine inserta una línea del pedido con su precio ya congelado.
func (r *OrderRepo) CreateLine(ctx context.Context, l *entity.OrderLine) error {
	query := `
		INSERT INTO pedido_productos (pedido_id, producto_id, cantidad, precio_unitario, subtotal)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, l.OrderID, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal).Scan(&l.ID)
	if err != nil {
		if _, ok := foreignKeyConstraint(err); ok {
			return domain.NewValidationError("Producto no encontrado para el pedido", map[string]string{"productos": "Producto no encontrado para el pedido"})
		}
		return fmt.Errorf("create order line: %w", err)
	}
	return nil
}

// GetStatusForUpdate bloquea la cabecera del pedido y devuelve su estado actual.
func (r *OrderRepo) GetStatusForUpdate(ctx context.Context, orderID int64) (entity.OrderStatus, error) {
	var status string
	err := r.q.QueryRow(ctx, `SELECT estado FROM pedidos WHERE id = $1 FOR UPDATE`, orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("pedido %d: %w", orderID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("get order status: %w", err)
	}
	return entity.OrderStatus(status), nil
}

// UpdateStatus escribe el nuevo estado sin validar transiciones.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID int64, status entity.OrderStatus, at time.Time) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE pedidos SET estado = $2, fecha_actualizacion = $3 WHERE id = $1`,
		orderID, string(status), at,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("pedido %d: %w", orderID, domain.ErrNotFound)
	}
	return nil
}

// DeleteLines borra las líneas del pedido.
func (r *OrderRepo) DeleteLines(ctx context.Context, orderID int64) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM pedido_productos WHERE pedido_id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("delete order lines: %w", err)
	}
	return cmd.RowsAffected(), nil
}

// Delete borra la cabecera del pedido.
func (r *OrderRepo) Delete(ctx context.Context, orderID int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM pedidos WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("pedido %d: %w", orderID, domain.ErrNotFound)
	}
	return nil
}

// GetByID devuelve la cabecera con sus líneas; (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, orderID int64) (*entity.Order, error) {
	query := `
		SELECT id, numero_pedido, proveedor_id, estado, monto_total, fecha_entrega_estimada, notas, creado_por, fecha_creacion, fecha_actualizacion
		FROM pedidos WHERE id = $1`
	var o entity.Order
	var status string
	err := r.q.QueryRow(ctx, query, orderID).Scan(
		&o.ID, &o.Number, &o.SupplierID, &status, &o.Total, &o.EstimatedDelivery, &o.Notes, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	o.Status = entity.OrderStatus(status)

	rows, err := r.q.Query(ctx, `
		SELECT id, pedido_id, producto_id, cantidad, precio_unitario, subtotal
		FROM pedido_productos WHERE pedido_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// List lista pedidos con proveedor, creador y número de líneas, más recientes primero.
func (r *OrderRepo) List(ctx context.Context, f entity.OrderFilter) ([]entity.OrderView, error) {
	qb := psql.Select(
		"o.id", "o.numero_pedido", "o.proveedor_id", "o.estado", "o.monto_total", "o.fecha_entrega_estimada", "o.notas",
		"o.creado_por", "o.fecha_creacion", "o.fecha_actualizacion",
		"prov.nombre", "prov.contacto", "u.nombre", "COUNT(pp.id)",
	).
		From("pedidos o").
		LeftJoin("proveedores prov ON prov.id = o.proveedor_id").
		LeftJoin("usuarios u ON u.id = o.creado_por").
		LeftJoin("pedido_productos pp ON pp.pedido_id = o.id").
		GroupBy("o.id", "prov.id", "u.id").
		OrderBy("o.fecha_creacion DESC", "o.id DESC")

	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + s + "%"
		qb = qb.Where(squirrel.Or{
			squirrel.ILike{"o.numero_pedido": pattern},
			squirrel.ILike{"prov.nombre": pattern},
			squirrel.ILike{"o.notas": pattern},
		})
	}
	if f.Status.Valid() {
		qb = qb.Where(squirrel.Eq{"o.estado": string(f.Status)})
	}
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		qb = qb.Offset(uint64(f.Offset))
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list orders: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []entity.OrderView
	for rows.Next() {
		var v entity.OrderView
		var status string
		if err := rows.Scan(&v.ID, &v.Number, &v.SupplierID, &status, &v.Total, &v.EstimatedDelivery, &v.Notes,
			&v.CreatedBy, &v.CreatedAt, &v.UpdatedAt,
			&v.SupplierName, &v.SupplierContact, &v.CreatorName, &v.LineCount); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		v.Status = entity.OrderStatus(status)
		list = append(list, v)
	}
	return list, rows.Err()
}

// CountByStatus cuenta pedidos por estado. Los estados sin pedidos aparecen con 0.
func (r *OrderRepo) CountByStatus(ctx context.Context) (map[entity.OrderStatus]int, error) {
	counts := make(map[entity.OrderStatus]int, len(entity.OrderStatuses))
	for _, s := range entity.OrderStatuses {
		counts[s] = 0
	}
	rows, err := r.q.Query(ctx, `SELECT estado, COUNT(*) FROM pedidos GROUP BY estado`)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan order count: %w", err)
		}
		counts[entity.OrderStatus(status)] = n
	}
	return counts, rows.Err()
}
