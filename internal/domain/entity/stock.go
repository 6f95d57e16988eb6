package entity

import "time"

// Stock es la vista bloqueable del contador de un producto: lo que devuelve
// GetForUpdate dentro de la transacción del llamador.
type Stock struct {
	ProductID int64
	Quantity  int64
	Active    bool
	UpdatedAt time.Time
}
