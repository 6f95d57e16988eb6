// Package audit entrega eventos de auditoría fuera del camino crítico de los ledgers.
// Registrar nunca falla para el llamador: los errores del destino se registran en el log y se descartan.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// DropCounter cuenta eventos perdidos (opcional; p.ej. métricas Prometheus).
type DropCounter interface {
	AuditDropped()
}

// Recorder encola eventos y los escribe en el destino desde una goroutine propia.
type Recorder struct {
	sink    repository.AuditRepository
	queue   chan *entity.AuditEvent
	timeout time.Duration
	log     *logger.Logger
	drops   DropCounter

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewRecorder arranca el worker. buffer es la capacidad de la cola; timeout acota cada escritura.
func NewRecorder(sink repository.AuditRepository, buffer int, timeout time.Duration, log *logger.Logger, drops DropCounter) *Recorder {
	if buffer <= 0 {
		buffer = 1
	}
	r := &Recorder{
		sink:    sink,
		queue:   make(chan *entity.AuditEvent, buffer),
		timeout: timeout,
		log:     log.Component("audit"),
		drops:   drops,
		done:    make(chan struct{}),
	}
	go r.loop()
	return r
}

// Record encola el evento sin bloquear. Completa ID y OccurredAt si vienen vacíos.
// Con la cola llena o el recorder cerrado, el evento se descarta con un warning.
func (r *Recorder) Record(_ context.Context, e entity.AuditEvent) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.drop(&e, "recorder cerrado")
		return
	}
	select {
	case r.queue <- &e:
	default:
		r.drop(&e, "cola de auditoría llena")
	}
}

func (r *Recorder) drop(e *entity.AuditEvent, reason string) {
	r.log.Warn().Str("evento_id", e.ID).Str("accion", e.Action).Str("entidad_id", e.EntityID).Msg(reason)
	if r.drops != nil {
		r.drops.AuditDropped()
	}
}

func (r *Recorder) loop() {
	defer close(r.done)
	for e := range r.queue {
		r.write(e)
	}
}

func (r *Recorder) write(e *entity.AuditEvent) {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if err := r.sink.Create(ctx, e); err != nil {
		r.log.Error().Err(err).Str("evento_id", e.ID).Str("accion", e.Action).Msg("no se pudo registrar la auditoría")
		if r.drops != nil {
			r.drops.AuditDropped()
		}
	}
}

// Close deja de aceptar eventos y espera a que se escriban los encolados.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Nop descarta todos los eventos (AUDIT_SINK=none).
type Nop struct{}

func (Nop) Record(context.Context, entity.AuditEvent) {}
