package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvalidReversal    = errors.New("no se puede eliminar el movimiento porque deja el stock en negativo")
	ErrTransactionFailure = errors.New("fallo en la transacción")
)

// ValidationError agrupa los errores por campo detectados antes de cualquier escritura.
// errors.Is(err, ErrInvalidInput) es verdadero para cualquier ValidationError.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// NewValidationError construye un ValidationError; fields puede ser nil.
func NewValidationError(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// IsKnown indica si err pertenece a la taxonomía de errores del ledger.
func IsKnown(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidReversal) ||
		errors.Is(err, ErrTransactionFailure)
}

// AsTransactionFailure clasifica errores del almacén (conexión, constraints, commit) como
// ErrTransactionFailure conservando la causa. Los errores de dominio se devuelven intactos.
func AsTransactionFailure(err error) error {
	if err == nil || IsKnown(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransactionFailure, err)
}
