package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo movimientos en memoria. Con tx != nil opera sobre la copia de la transacción.
type MovementRepo struct {
	store *Store
	tx    *state
}

func (r *MovementRepo) with(fn func(st *state) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	return r.store.read(fn)
}

func (r *MovementRepo) Create(_ context.Context, m *entity.Movement) error {
	return r.with(func(st *state) error {
		if m.ResponsibleID != nil {
			if _, ok := st.users[*m.ResponsibleID]; !ok {
				return domain.NewValidationError("Datos de movimiento inválidos", map[string]string{"responsable_id": "Responsable no encontrado"})
			}
		}
		if _, ok := st.products[m.ProductID]; !ok {
			return fmt.Errorf("producto %d: %w", m.ProductID, domain.ErrNotFound)
		}
		st.nextMovement++
		m.ID = st.nextMovement
		st.movements[m.ID] = *m
		return nil
	})
}

func (r *MovementRepo) GetForUpdate(_ context.Context, id int64) (*entity.Movement, error) {
	var out *entity.Movement
	err := r.with(func(st *state) error {
		if m, ok := st.movements[id]; ok {
			out = &m
		}
		return nil
	})
	return out, err
}

func (r *MovementRepo) Delete(_ context.Context, id int64) error {
	return r.with(func(st *state) error {
		if _, ok := st.movements[id]; !ok {
			return fmt.Errorf("movimiento %d: %w", id, domain.ErrNotFound)
		}
		delete(st.movements, id)
		return nil
	})
}

func filterMovements(st *state, f entity.MovementFilter) []entity.MovementView {
	search := strings.TrimSpace(f.Search)
	var list []entity.MovementView
	for _, id := range sortedIDs(st.movements) {
		m := st.movements[id]
		if f.Kind.Valid() && m.Kind != f.Kind {
			continue
		}
		v := entity.MovementView{Movement: m}
		if p, ok := st.products[m.ProductID]; ok {
			stock := p.Stock
			v.ProductName, v.ProductSKU, v.ProductStock = p.Name, p.SKU, &stock
		}
		if m.ResponsibleID != nil {
			if name, ok := st.users[*m.ResponsibleID]; ok {
				v.ResponsibleName = &name
			}
		}
		if !matches(search, v.ProductName, v.ProductSKU, m.Reference, m.Notes) {
			continue
		}
		list = append(list, v)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].OccurredAt.Equal(list[j].OccurredAt) {
			return list[i].OccurredAt.After(list[j].OccurredAt)
		}
		return list[i].ID > list[j].ID
	})
	return list
}

func (r *MovementRepo) List(_ context.Context, f entity.MovementFilter) ([]entity.MovementView, error) {
	var out []entity.MovementView
	err := r.with(func(st *state) error {
		out = paginate(filterMovements(st, f), f.Limit, f.Offset)
		return nil
	})
	return out, err
}

func (r *MovementRepo) Summary(_ context.Context, f entity.MovementFilter) (entity.MovementSummary, error) {
	var s entity.MovementSummary
	err := r.with(func(st *state) error {
		for _, v := range filterMovements(st, f) {
			if v.Kind == entity.MovementEntry {
				s.TotalEntries += v.Quantity
			} else {
				s.TotalExits += v.Quantity
			}
		}
		return nil
	})
	s.Balance = s.TotalEntries - s.TotalExits
	return s, err
}
