package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación sobre PostgreSQL de la tabla movimientos (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento y asigna su ID.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movimientos (tipo, producto_id, cantidad, responsable_id, referencia, notas, fecha_movimiento)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		string(m.Kind), m.ProductID, m.Quantity, m.ResponsibleID, m.Reference, m.Notes, m.OccurredAt,
	).Scan(&m.ID)
	if err != nil {
		if constraint, ok := foreignKeyConstraint(err); ok && strings.Contains(constraint, "responsable") {
			return domain.NewValidationError("Datos de movimiento inválidos", map[string]string{"responsable_id": "Responsable no encontrado"})
		}
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetForUpdate obtiene y bloquea un movimiento. Un segundo borrado concurrente del mismo
// movimiento espera aquí y, tras el commit del primero, ya no encuentra la fila.
func (r *MovementRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Movement, error) {
	query := `
		SELECT id, tipo, producto_id, cantidad, responsable_id, referencia, notas, fecha_movimiento
		FROM movimientos WHERE id = $1
		FOR UPDATE`
	var m entity.Movement
	var kind string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &kind, &m.ProductID, &m.Quantity, &m.ResponsibleID, &m.Reference, &m.Notes, &m.OccurredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	m.Kind = entity.MovementKind(kind)
	return &m, nil
}

// Delete elimina un movimiento por ID.
func (r *MovementRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM movimientos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("movimiento %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func movementConditions(f entity.MovementFilter) squirrel.And {
	var conds squirrel.And
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + s + "%"
		conds = append(conds, squirrel.Or{
			squirrel.ILike{"p.nombre": pattern},
			squirrel.ILike{"p.sku": pattern},
			squirrel.ILike{"m.referencia": pattern},
			squirrel.ILike{"m.notas": pattern},
		})
	}
	if f.Kind.Valid() {
		conds = append(conds, squirrel.Eq{"m.tipo": string(f.Kind)})
	}
	return conds
}

// List lista movimientos con producto y responsable, más recientes primero.
func (r *MovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]entity.MovementView, error) {
	qb := psql.Select(
		"m.id", "m.tipo", "m.producto_id", "m.cantidad", "m.responsable_id", "m.referencia", "m.notas", "m.fecha_movimiento",
		"p.nombre", "p.sku", "p.stock", "u.nombre",
	).
		From("movimientos m").
		LeftJoin("productos p ON p.id = m.producto_id").
		LeftJoin("usuarios u ON u.id = m.responsable_id").
		OrderBy("m.fecha_movimiento DESC", "m.id DESC")
	if conds := movementConditions(f); len(conds) > 0 {
		qb = qb.Where(conds)
	}
	if f.Limit > 0 {
		qb = qb.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		qb = qb.Offset(uint64(f.Offset))
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list movements: %w", err)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []entity.MovementView
	for rows.Next() {
		var v entity.MovementView
		var kind string
		var name, sku *string
		if err := rows.Scan(&v.ID, &kind, &v.ProductID, &v.Quantity, &v.ResponsibleID, &v.Reference, &v.Notes, &v.OccurredAt,
			&name, &sku, &v.ProductStock, &v.ResponsibleName); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		v.Kind = entity.MovementKind(kind)
		if name != nil {
			v.ProductName = *name
		}
		if sku != nil {
			v.ProductSKU = *sku
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

// Summary suma entradas y salidas para el mismo filtro que List (sin paginación).
func (r *MovementRepo) Summary(ctx context.Context, f entity.MovementFilter) (entity.MovementSummary, error) {
	qb := psql.Select(
		"COALESCE(SUM(CASE WHEN m.tipo = 'entry' THEN m.cantidad ELSE 0 END), 0)::BIGINT",
		"COALESCE(SUM(CASE WHEN m.tipo = 'exit' THEN m.cantidad ELSE 0 END), 0)::BIGINT",
	).
		From("movimientos m").
		LeftJoin("productos p ON p.id = m.producto_id")
	if conds := movementConditions(f); len(conds) > 0 {
		qb = qb.Where(conds)
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return entity.MovementSummary{}, fmt.Errorf("build movement summary: %w", err)
	}
	var s entity.MovementSummary
	if err := r.q.QueryRow(ctx, query, args...).Scan(&s.TotalEntries, &s.TotalExits); err != nil {
		return entity.MovementSummary{}, fmt.Errorf("movement summary: %w", err)
	}
	s.Balance = s.TotalEntries - s.TotalExits
	return s, nil
}
