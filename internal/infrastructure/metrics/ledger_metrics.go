package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados posibles de una operación del ledger (label outcome).
const (
	OutcomeOK                = "ok"
	OutcomeValidation        = "validation"
	OutcomeNotFound          = "not_found"
	OutcomeInsufficientStock = "insufficient_stock"
	OutcomeInvalidReversal   = "invalid_reversal"
	OutcomeFailure           = "failure"
)

// Ledger métricas Prometheus de las operaciones de inventario y pedidos.
type Ledger struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	auditDrops prometheus.Counter
}

// NewLedger registra las métricas en un registro propio (más las del proceso y runtime).
func NewLedger(namespace string) *Ledger {
	reg := prometheus.NewRegistry()
	l := &Ledger{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_operations_total",
			Help:      "Operaciones del ledger por operación y resultado.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_operation_duration_seconds",
			Help:      "Duración de las operaciones del ledger.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		auditDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_dropped_total",
			Help:      "Eventos de auditoría descartados (cola llena o error del destino).",
		}),
	}
	reg.MustRegister(
		l.operations,
		l.duration,
		l.auditDrops,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return l
}

// Observe registra una operación terminada.
func (l *Ledger) Observe(operation string, err error, elapsed time.Duration) {
	l.operations.WithLabelValues(operation, Outcome(err)).Inc()
	l.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// AuditDropped cuenta un evento de auditoría perdido.
func (l *Ledger) AuditDropped() {
	l.auditDrops.Inc()
}

// Handler expone el registro en formato Prometheus.
func (l *Ledger) Handler() http.Handler {
	return promhttp.HandlerFor(l.registry, promhttp.HandlerOpts{})
}

// Registry para tests o para registrar colectores adicionales.
func (l *Ledger) Registry() *prometheus.Registry {
	return l.registry
}

// Outcome clasifica err según la taxonomía de errores del dominio.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrInvalidInput):
		return OutcomeValidation
	case errors.Is(err, domain.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrInsufficientStock):
		return OutcomeInsufficientStock
	case errors.Is(err, domain.ErrInvalidReversal):
		return OutcomeInvalidReversal
	default:
		return OutcomeFailure
	}
}
