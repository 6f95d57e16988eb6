// Package memory implementa los puertos de persistencia en memoria. Cada transacción
// trabaja sobre una copia del estado que solo se publica si el callback termina sin error.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/shopspring/decimal"
)

type state struct {
	products  map[int64]entity.Product
	suppliers map[int64]entity.Supplier
	users     map[int64]string
	movements map[int64]entity.Movement
	orders    map[int64]entity.Order
	lines     map[int64][]entity.OrderLine // por pedido

	nextProduct, nextSupplier, nextUser, nextMovement, nextOrder, nextLine int64
}

func newState() *state {
	return &state{
		products:  map[int64]entity.Product{},
		suppliers: map[int64]entity.Supplier{},
		users:     map[int64]string{},
		movements: map[int64]entity.Movement{},
		orders:    map[int64]entity.Order{},
		lines:     map[int64][]entity.OrderLine{},
	}
}

func (s *state) clone() *state {
	c := *s
	c.products = make(map[int64]entity.Product, len(s.products))
	for k, v := range s.products {
		c.products[k] = v
	}
	c.suppliers = make(map[int64]entity.Supplier, len(s.suppliers))
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	c.users = make(map[int64]string, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.movements = make(map[int64]entity.Movement, len(s.movements))
	for k, v := range s.movements {
		c.movements[k] = v
	}
	c.orders = make(map[int64]entity.Order, len(s.orders))
	for k, v := range s.orders {
		c.orders[k] = v
	}
	c.lines = make(map[int64][]entity.OrderLine, len(s.lines))
	for k, v := range s.lines {
		c.lines[k] = append([]entity.OrderLine(nil), v...)
	}
	return &c
}

// Store almacén en memoria. Las transacciones se serializan con un único mutex,
// lo que equivale a bloquear todas las filas que toca cada operación.
type Store struct {
	mu       sync.Mutex
	st       *state
	failNext error
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// FailNextCommit hace que la próxima transacción descarte sus cambios y devuelva err
// envuelto en ErrTransactionFailure, como un commit fallido.
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

func (s *Store) runTx(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: begin: %w", domain.ErrTransactionFailure, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(work); err != nil {
		return err
	}
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return fmt.Errorf("%w: commit: %w", domain.ErrTransactionFailure, err)
	}
	s.st = work
	return nil
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	stockRepo repository.ProductStockRepository,
) error) error {
	return s.runTx(ctx, func(st *state) error {
		return fn(&MovementRepo{tx: st}, &ProductRepo{tx: st})
	})
}

// RunOrders implementa purchasing.TxRunner.
func (s *Store) RunOrders(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	stockRepo repository.ProductStockRepository,
	supplierRepo repository.SupplierRepository,
) error) error {
	return s.runTx(ctx, func(st *state) error {
		return fn(&OrderRepo{tx: st}, &ProductRepo{tx: st}, &SupplierRepo{tx: st})
	})
}

// read ejecuta fn sobre el estado publicado, fuera de cualquier transacción.
func (s *Store) read(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Movements repositorio de lectura fuera de transacción.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{store: s} }

// Products repositorio de lectura fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{store: s} }

// Orders repositorio de lectura fuera de transacción.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{store: s} }

// Suppliers repositorio de lectura fuera de transacción.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{store: s} }

// AddProduct da de alta un producto (catálogo fuera del ledger) y devuelve su ID.
func (s *Store) AddProduct(p entity.Product) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.nextProduct++
	p.ID = s.st.nextProduct
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
	s.st.products[p.ID] = p
	return p.ID
}

// SetPrice cambia el precio vigente de un producto.
func (s *Store) SetPrice(productID int64, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.st.products[productID]; ok {
		p.Price = price
		s.st.products[productID] = p
	}
}

// AddSupplier da de alta un proveedor y devuelve su ID.
func (s *Store) AddSupplier(sp entity.Supplier) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.nextSupplier++
	sp.ID = s.st.nextSupplier
	s.st.suppliers[sp.ID] = sp
	return sp.ID
}

// AddUser da de alta un usuario (responsable o creador) y devuelve su ID.
func (s *Store) AddUser(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.nextUser++
	s.st.users[s.st.nextUser] = name
	return s.st.nextUser
}

func matches(search string, fields ...string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return nil
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
