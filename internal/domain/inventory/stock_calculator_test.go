package inventory_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

func TestApplyDelta(t *testing.T) {
	cases := []struct {
		name     string
		current  int64
		kind     entity.MovementKind
		quantity int64
		want     int64
		wantErr  error
	}{
		{"entrada suma", 0, entity.MovementEntry, 10, 10, nil},
		{"salida resta", 50, entity.MovementExit, 20, 30, nil},
		{"salida deja en cero", 10, entity.MovementExit, 10, 0, nil},
		{"salida mayor al stock", 30, entity.MovementExit, 40, 30, domain.ErrInsufficientStock},
		{"tipo desconocido", 5, entity.MovementKind("adjust"), 1, 5, domain.ErrInvalidInput},
		{"entrada que desborda int64", 5, entity.MovementEntry, math.MaxInt64, 5, domain.ErrInvalidInput},
		{"entrada justo en el máximo", 5, entity.MovementEntry, math.MaxInt64 - 5, math.MaxInt64, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := inventory.ApplyDelta(tc.current, tc.kind, tc.quantity)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReverseDelta(t *testing.T) {
	t.Run("revertir entrada resta", func(t *testing.T) {
		got, err := inventory.ReverseDelta(15, entity.MovementEntry, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(5), got)
	})

	t.Run("revertir salida suma", func(t *testing.T) {
		got, err := inventory.ReverseDelta(0, entity.MovementExit, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(10), got)
	})

	t.Run("revertir salida que desborda int64 es ValidationError", func(t *testing.T) {
		got, err := inventory.ReverseDelta(5, entity.MovementExit, math.MaxInt64)
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "cantidad")
		assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
		assert.Equal(t, int64(5), got)
	})

	t.Run("revertir entrada consumida es InvalidReversal", func(t *testing.T) {
		got, err := inventory.ReverseDelta(0, entity.MovementEntry, 10)
		require.ErrorIs(t, err, domain.ErrInvalidReversal)
		assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
		assert.Equal(t, int64(0), got)
	})
}

// Para cualquier stock S, aplicar y luego revertir devuelve exactamente S.
func TestApplyReverse_Simetria(t *testing.T) {
	for _, start := range []int64{0, 1, 7, 50, 1000} {
		for _, q := range []int64{1, 3, 7, 50} {
			for _, kind := range []entity.MovementKind{entity.MovementEntry, entity.MovementExit} {
				after, err := inventory.ApplyDelta(start, kind, q)
				if err != nil {
					require.ErrorIs(t, err, domain.ErrInsufficientStock)
					continue
				}
				back, err := inventory.ReverseDelta(after, kind, q)
				require.NoError(t, err)
				assert.Equal(t, start, back, "kind=%s start=%d q=%d", kind, start, q)
			}
		}
	}
}
