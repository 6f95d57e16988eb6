package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.OrderRepository    = (*OrderRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

// OrderRepo pedidos y líneas en memoria.
type OrderRepo struct {
	store *Store
	tx    *state
}

func (r *OrderRepo) with(fn func(st *state) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	return r.store.read(fn)
}

func (r *OrderRepo) Create(_ context.Context, o *entity.Order) error {
	return r.with(func(st *state) error {
		if _, ok := st.suppliers[o.SupplierID]; !ok {
			return domain.NewValidationError("Datos de pedido inválidos", map[string]string{"proveedor_id": "Selecciona un proveedor válido"})
		}
		if o.CreatedBy != nil {
			if _, ok := st.users[*o.CreatedBy]; !ok {
				return domain.NewValidationError("Datos de pedido inválidos", map[string]string{"creado_por": "Usuario creador no encontrado"})
			}
		}
		if o.CreatedAt.IsZero() {
			o.CreatedAt = time.Now().UTC()
		}
		o.UpdatedAt = o.CreatedAt
		st.nextOrder++
		o.ID = st.nextOrder
		stored := *o
		stored.Lines = nil
		st.orders[o.ID] = stored
		return nil
	})
}

func (r *OrderRepo) CreateLine(_ context.Context, l *entity.OrderLine) error {
	return r.with(func(st *state) error {
		if _, ok := st.orders[l.OrderID]; !ok {
			return fmt.Errorf("pedido %d: %w", l.OrderID, domain.ErrNotFound)
		}
		if _, ok := st.products[l.ProductID]; !ok {
			return domain.NewValidationError("Producto no encontrado para el pedido", map[string]string{"productos": "Producto no encontrado para el pedido"})
		}
		st.nextLine++
		l.ID = st.nextLine
		st.lines[l.OrderID] = append(st.lines[l.OrderID], *l)
		return nil
	})
}

func (r *OrderRepo) GetStatusForUpdate(_ context.Context, orderID int64) (entity.OrderStatus, error) {
	var status entity.OrderStatus
	err := r.with(func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return fmt.Errorf("pedido %d: %w", orderID, domain.ErrNotFound)
		}
		status = o.Status
		return nil
	})
	return status, err
}

func (r *OrderRepo) UpdateStatus(_ context.Context, orderID int64, status entity.OrderStatus, at time.Time) error {
	return r.with(func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return fmt.Errorf("pedido %d: %w", orderID, domain.ErrNotFound)
		}
		o.Status, o.UpdatedAt = status, at
		st.orders[orderID] = o
		return nil
	})
}

func (r *OrderRepo) DeleteLines(_ context.Context, orderID int64) (int64, error) {
	var n int64
	err := r.with(func(st *state) error {
		n = int64(len(st.lines[orderID]))
		delete(st.lines, orderID)
		return nil
	})
	return n, err
}

func (r *OrderRepo) Delete(_ context.Context, orderID int64) error {
	return r.with(func(st *state) error {
		if _, ok := st.orders[orderID]; !ok {
			return fmt.Errorf("pedido %d: %w", orderID, domain.ErrNotFound)
		}
		delete(st.orders, orderID)
		delete(st.lines, orderID)
		return nil
	})
}

func (r *OrderRepo) GetByID(_ context.Context, orderID int64) (*entity.Order, error) {
	var out *entity.Order
	err := r.with(func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return nil
		}
		o.Lines = append([]entity.OrderLine(nil), st.lines[orderID]...)
		out = &o
		return nil
	})
	return out, err
}

func (r *OrderRepo) List(_ context.Context, f entity.OrderFilter) ([]entity.OrderView, error) {
	search := strings.TrimSpace(f.Search)
	var list []entity.OrderView
	err := r.with(func(st *state) error {
		for _, id := range sortedIDs(st.orders) {
			o := st.orders[id]
			if f.Status.Valid() && o.Status != f.Status {
				continue
			}
			v := entity.OrderView{Order: o, LineCount: len(st.lines[id])}
			supplierName := ""
			if sp, ok := st.suppliers[o.SupplierID]; ok {
				name, contact := sp.Name, sp.Contact
				v.SupplierName, v.SupplierContact = &name, &contact
				supplierName = name
			}
			if o.CreatedBy != nil {
				if name, ok := st.users[*o.CreatedBy]; ok {
					v.CreatorName = &name
				}
			}
			if !matches(search, o.Number, supplierName, o.Notes) {
				continue
			}
			list = append(list, v)
		}
		return nil
	})
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return paginate(list, f.Limit, f.Offset), err
}

func (r *OrderRepo) CountByStatus(_ context.Context) (map[entity.OrderStatus]int, error) {
	counts := make(map[entity.OrderStatus]int, len(entity.OrderStatuses))
	for _, s := range entity.OrderStatuses {
		counts[s] = 0
	}
	err := r.with(func(st *state) error {
		for _, o := range st.orders {
			counts[o.Status]++
		}
		return nil
	})
	return counts, err
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct {
	store *Store
	tx    *state
}

func (r *SupplierRepo) Exists(_ context.Context, supplierID int64) (bool, error) {
	var ok bool
	fn := func(st *state) error {
		_, ok = st.suppliers[supplierID]
		return nil
	}
	var err error
	if r.tx != nil {
		err = fn(r.tx)
	} else {
		err = r.store.read(fn)
	}
	return ok, err
}
