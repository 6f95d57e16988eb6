package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fakeAuditor struct {
	mu     sync.Mutex
	events []entity.AuditEvent
}

func (a *fakeAuditor) Record(_ context.Context, e entity.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *fakeAuditor) all() []entity.AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]entity.AuditEvent(nil), a.events...)
}

type fakeMetrics struct {
	mu       sync.Mutex
	outcomes map[string][]error
}

func (m *fakeMetrics) Observe(op string, err error, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.outcomes == nil {
		m.outcomes = map[string][]error{}
	}
	m.outcomes[op] = append(m.outcomes[op], err)
}

type fixture struct {
	store   *memory.Store
	ledger  *inventory.MovementLedger
	auditor *fakeAuditor
	metrics *fakeMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{store: store, auditor: &fakeAuditor{}, metrics: &fakeMetrics{}}
	f.ledger = inventory.NewMovementLedger(store, store.Movements(), logger.Nop(),
		inventory.WithAuditor(f.auditor),
		inventory.WithMetrics(f.metrics),
	)
	return f
}

func (f *fixture) product(stock int64) int64 {
	return f.store.AddProduct(entity.Product{SKU: "SKU", Name: "Tornillo", Stock: stock, Price: decimal.NewFromInt(1), Active: true})
}

func (f *fixture) stock(t *testing.T, productID int64) int64 {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *fixture) movementCount(t *testing.T) int {
	t.Helper()
	list, err := f.store.Movements().List(context.Background(), entity.MovementFilter{})
	require.NoError(t, err)
	return len(list)
}

func entry(pid, qty int64) inventory.ApplyInput {
	return inventory.ApplyInput{Kind: entity.MovementEntry, ProductID: pid, Quantity: qty}
}

func exit(pid, qty int64) inventory.ApplyInput {
	return inventory.ApplyInput{Kind: entity.MovementExit, ProductID: pid, Quantity: qty}
}

// ──────────────────────────────────────────────────────────────────────────────
// Apply
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_EntradaSalidaYStockInsuficiente(t *testing.T) {
	f := newFixture(t)
	pid := f.product(50)
	ctx := context.Background()

	res, err := f.ledger.Apply(ctx, exit(pid, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(30), res.NewStock)
	assert.NotZero(t, res.MovementID)

	_, err = f.ledger.Apply(ctx, exit(pid, 40))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(30), f.stock(t, pid), "el stock no cambia tras el rechazo")
	assert.Equal(t, 1, f.movementCount(t), "no se inserta movimiento rechazado")
}

func TestApply_Validacion(t *testing.T) {
	f := newFixture(t)
	pid := f.product(5)

	_, err := f.ledger.Apply(context.Background(), inventory.ApplyInput{Kind: "ajuste", ProductID: 0, Quantity: 0})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "Tipo inválido", verr.Fields["tipo"])
	assert.Equal(t, "La cantidad debe ser mayor a 0", verr.Fields["cantidad"])
	assert.Contains(t, verr.Fields, "producto_id")

	_, err = f.ledger.Apply(context.Background(), exit(pid, -3))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(5), f.stock(t, pid))
}

func TestApply_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Apply(context.Background(), entry(999, 1))
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.movementCount(t))
}

func TestApply_FechaPorDefectoYRecorteDeTextos(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	ledger := inventory.NewMovementLedger(store, store.Movements(), logger.Nop(), inventory.WithClock(func() time.Time { return fixed }))
	pid := store.AddProduct(entity.Product{SKU: "X", Name: "X", Active: true})

	_, err := ledger.Apply(context.Background(), inventory.ApplyInput{
		Kind: entity.MovementEntry, ProductID: pid, Quantity: 3, Reference: "  FAC-1 ", Notes: " llegada ",
	})
	require.NoError(t, err)

	list, err := ledger.List(context.Background(), entity.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fixed, list[0].OccurredAt)
	assert.Equal(t, "FAC-1", list[0].Reference)
	assert.Equal(t, "llegada", list[0].Notes)
}

func TestApply_SalidaSobreProductoInactivo(t *testing.T) {
	f := newFixture(t)
	pid := f.product(5)
	require.NoError(t, f.store.Products().Deactivate(context.Background(), pid, time.Now()))

	res, err := f.ledger.Apply(context.Background(), exit(pid, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.NewStock)
}

func TestApply_FalloDeCommitNoDejaRastro(t *testing.T) {
	f := newFixture(t)
	pid := f.product(10)
	f.store.FailNextCommit(errors.New("conexión perdida"))

	_, err := f.ledger.Apply(context.Background(), exit(pid, 4))
	require.ErrorIs(t, err, domain.ErrTransactionFailure)
	assert.Equal(t, int64(10), f.stock(t, pid))
	assert.Equal(t, 0, f.movementCount(t))
	assert.Empty(t, f.auditor.all(), "sin commit no hay auditoría")
}

func TestApply_EmiteAuditoriaYMetricas(t *testing.T) {
	f := newFixture(t)
	pid := f.product(0)
	actor := f.store.AddUser("Ana")

	in := entry(pid, 7)
	in.ResponsibleID = &actor
	res, err := f.ledger.Apply(context.Background(), in)
	require.NoError(t, err)

	events := f.auditor.all()
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditMovementCreated, events[0].Action)
	assert.Equal(t, entity.AuditEntityMovement, events[0].Entity)
	assert.Equal(t, actor, *events[0].ActorID)
	assert.Equal(t, res.NewStock, events[0].After["stock"])

	_, _ = f.ledger.Apply(context.Background(), exit(pid, 100))
	require.Len(t, f.metrics.outcomes[inventory.OpApply], 2)
	assert.NoError(t, f.metrics.outcomes[inventory.OpApply][0])
	assert.ErrorIs(t, f.metrics.outcomes[inventory.OpApply][1], domain.ErrInsufficientStock)
}

func TestApply_AuditoriaUsaActorYNoResponsable(t *testing.T) {
	f := newFixture(t)
	pid := f.product(0)
	responsable := f.store.AddUser("Bodeguero")
	actor := f.store.AddUser("Supervisor")

	_, err := f.ledger.ApplyFromRequest(context.Background(), dto.ApplyMovementRequest{
		Tipo: "entry", ProductoID: pid, Cantidad: 3, ResponsableID: &responsable,
	}, &actor)
	require.NoError(t, err)

	events := f.auditor.all()
	require.Len(t, events, 1)
	require.NotNil(t, events[0].ActorID)
	assert.Equal(t, actor, *events[0].ActorID)

	list, err := f.ledger.List(context.Background(), entity.MovementFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].ResponsibleID)
	assert.Equal(t, responsable, *list[0].ResponsibleID, "el responsable del movimiento se conserva")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reverse
// ──────────────────────────────────────────────────────────────────────────────

func TestReverse_EntradaConsumidaEsInvalida(t *testing.T) {
	f := newFixture(t)
	pid := f.product(0)
	ctx := context.Background()

	in, err := f.ledger.Apply(ctx, entry(pid, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(10), in.NewStock)

	out, err := f.ledger.Apply(ctx, exit(pid, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.NewStock)

	err = f.ledger.Reverse(ctx, in.MovementID, nil)
	require.ErrorIs(t, err, domain.ErrInvalidReversal)
	assert.Equal(t, int64(0), f.stock(t, pid))
	assert.Equal(t, 2, f.movementCount(t), "el movimiento M se conserva")
}

func TestReverse_RestauraStock(t *testing.T) {
	f := newFixture(t)
	pid := f.product(10)
	ctx := context.Background()

	out, err := f.ledger.Apply(ctx, exit(pid, 4))
	require.NoError(t, err)
	require.NoError(t, f.ledger.Reverse(ctx, out.MovementID, nil))
	assert.Equal(t, int64(10), f.stock(t, pid))
	assert.Equal(t, 0, f.movementCount(t))

	err = f.ledger.Reverse(ctx, out.MovementID, nil)
	require.ErrorIs(t, err, domain.ErrNotFound, "un segundo borrado no encuentra el movimiento")
	assert.Equal(t, int64(10), f.stock(t, pid))

	events := f.auditor.all()
	require.Len(t, events, 2)
	assert.Equal(t, entity.AuditMovementReversed, events[1].Action)
}

func TestReverse_IDInvalido(t *testing.T) {
	f := newFixture(t)
	require.ErrorIs(t, f.ledger.Reverse(context.Background(), 0, nil), domain.ErrInvalidInput)
	require.ErrorIs(t, f.ledger.Reverse(context.Background(), 77, nil), domain.ErrNotFound)
}

// Para cualquier secuencia de aplicaciones, revertirlas en orden inverso devuelve el stock inicial.
func TestApplyReverse_Simetria(t *testing.T) {
	f := newFixture(t)
	pid := f.product(25)
	ctx := context.Background()

	ops := []inventory.ApplyInput{entry(pid, 5), exit(pid, 12), entry(pid, 1), exit(pid, 19), entry(pid, 40)}
	var ids []int64
	for _, op := range ops {
		res, err := f.ledger.Apply(ctx, op)
		require.NoError(t, err)
		require.GreaterOrEqual(t, res.NewStock, int64(0))
		ids = append(ids, res.MovementID)
	}
	assert.Equal(t, int64(40), f.stock(t, pid))

	for i := len(ids) - 1; i >= 0; i-- {
		require.NoError(t, f.ledger.Reverse(ctx, ids[i], nil))
		require.GreaterOrEqual(t, f.stock(t, pid), int64(0))
	}
	assert.Equal(t, int64(25), f.stock(t, pid))
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestApply_SalidasConcurrentes(t *testing.T) {
	f := newFixture(t)
	pid := f.product(10)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.ledger.Apply(context.Background(), exit(pid, 6))
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int64(4), f.stock(t, pid))
}

func TestApply_ProductosDisjuntosEnParalelo(t *testing.T) {
	f := newFixture(t)
	const n = 20
	pids := make([]int64, n)
	for i := range pids {
		pids[i] = f.product(100)
	}

	var wg sync.WaitGroup
	for _, pid := range pids {
		for j := 0; j < 5; j++ {
			wg.Add(1)
			go func(pid int64) {
				defer wg.Done()
				_, err := f.ledger.Apply(context.Background(), exit(pid, 3))
				assert.NoError(t, err)
			}(pid)
		}
	}
	wg.Wait()

	for _, pid := range pids {
		assert.Equal(t, int64(85), f.stock(t, pid))
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Adaptadores de request
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyFromRequest(t *testing.T) {
	f := newFixture(t)
	pid := f.product(3)

	res, err := f.ledger.ApplyFromRequest(context.Background(), dto.ApplyMovementRequest{
		Tipo: " EXIT ", ProductoID: pid, Cantidad: 2, FechaMovimiento: "2025-01-31 08:30:00",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.NuevoStock)

	_, err = f.ledger.ApplyFromRequest(context.Background(), dto.ApplyMovementRequest{
		Tipo: "entry", ProductoID: pid, Cantidad: 1, FechaMovimiento: "31/01/2025",
	}, nil)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "fecha_movimiento")
}

func TestListFromRequest_ResumenYFiltros(t *testing.T) {
	f := newFixture(t)
	pid := f.product(0)
	ctx := context.Background()
	for _, in := range []inventory.ApplyInput{entry(pid, 10), exit(pid, 3), entry(pid, 2)} {
		_, err := f.ledger.Apply(ctx, in)
		require.NoError(t, err)
	}

	resp, err := f.ledger.ListFromRequest(ctx, dto.MovementFilterRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 3)
	assert.Equal(t, dto.MovementSummaryDTO{TotalEntradas: 12, TotalSalidas: 3, Balance: 9}, resp.Summary)
	assert.Equal(t, dto.DefaultPageLimit, resp.Page.Limit)

	resp, err = f.ledger.ListFromRequest(ctx, dto.MovementFilterRequest{Tipo: "exit"})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(3), resp.Items[0].Cantidad)

	_, err = f.ledger.ListFromRequest(ctx, dto.MovementFilterRequest{Tipo: "ajuste"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}
