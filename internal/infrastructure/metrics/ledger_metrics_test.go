package metrics_test

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
)

func TestOutcome(t *testing.T) {
	cases := map[string]error{
		metrics.OutcomeOK:                nil,
		metrics.OutcomeValidation:        domain.NewValidationError("x", nil),
		metrics.OutcomeNotFound:          fmt.Errorf("movimiento 3: %w", domain.ErrNotFound),
		metrics.OutcomeInsufficientStock: domain.ErrInsufficientStock,
		metrics.OutcomeInvalidReversal:   domain.ErrInvalidReversal,
		metrics.OutcomeFailure:           errors.New("conexión rechazada"),
	}
	for want, err := range cases {
		assert.Equal(t, want, metrics.Outcome(err))
	}
}

func TestLedger_ObserveCuentaPorResultado(t *testing.T) {
	m := metrics.NewLedger("test")
	m.Observe("movement_apply", nil, 10*time.Millisecond)
	m.Observe("movement_apply", nil, 5*time.Millisecond)
	m.Observe("movement_apply", domain.ErrInsufficientStock, time.Millisecond)
	m.AuditDropped()

	body := scrape(t, m)
	assert.Contains(t, body, `test_ledger_operations_total{operation="movement_apply",outcome="ok"} 2`)
	assert.Contains(t, body, `test_ledger_operations_total{operation="movement_apply",outcome="insufficient_stock"} 1`)
	assert.Contains(t, body, `test_ledger_operation_duration_seconds_count{operation="movement_apply"} 3`)
	assert.Contains(t, body, `test_audit_events_dropped_total 1`)

	n, err := testutil.GatherAndCount(m.Registry(), "test_ledger_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func scrape(t *testing.T, m *metrics.Ledger) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	b, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(b)
}
