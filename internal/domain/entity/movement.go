package entity

import "time"

// MovementKind tipo de movimiento de inventario.
type MovementKind string

// Tipos de movimiento.
const (
	MovementEntry MovementKind = "entry" // entrada: suma stock
	MovementExit  MovementKind = "exit"  // salida: resta stock
)

// Valid indica si el tipo es entry o exit.
func (k MovementKind) Valid() bool {
	return k == MovementEntry || k == MovementExit
}

// Inverse devuelve el tipo que deshace el efecto de k.
func (k MovementKind) Inverse() MovementKind {
	if k == MovementEntry {
		return MovementExit
	}
	return MovementEntry
}

// Movement registro inmutable de un cambio de stock (tabla movimientos).
// Solo puede eliminarse, y eliminarlo revierte su efecto.
type Movement struct {
	ID            int64
	Kind          MovementKind
	ProductID     int64
	Quantity      int64 // siempre > 0; el signo lo da Kind
	ResponsibleID *int64
	Reference     string
	Notes         string
	OccurredAt    time.Time
}

// MovementView movimiento con datos del producto y del responsable para listados.
// ProductName vacío y ProductStock nil cuando el producto ya no existe.
type MovementView struct {
	Movement
	ProductName     string
	ProductSKU      string
	ProductStock    *int64
	ResponsibleName *string
}

// MovementFilter filtros para listar movimientos.
type MovementFilter struct {
	Search string
	Kind   MovementKind
	Limit  int
	Offset int
}

// MovementSummary totales de entradas y salidas para un filtro.
type MovementSummary struct {
	TotalEntries int64
	TotalExits   int64
	Balance      int64
}
