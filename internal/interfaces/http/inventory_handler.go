package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP de movimientos y alertas de stock.
type InventoryHandler struct {
	ledger        *inventory.MovementLedger
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.MovementLedger, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, replenishment: replenishment}
}

// ApplyMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMovementRequest  true  "tipo (entry|exit), producto_id, cantidad, responsable_id, referencia, notas, fecha_movimiento"
// @Success      201   {object}  dto.ApplyMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) ApplyMovement(c *fiber.Ctx) error {
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	actor := GetActorID(c)
	if in.ResponsableID == nil {
		in.ResponsableID = actor
	}
	out, err := h.ledger.ApplyFromRequest(c.UserContext(), in, actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ReverseMovement godoc
// @Summary      Eliminar movimiento (revierte su efecto en el stock)
// @Tags         inventory
// @Produce      json
// @Param        id   path      int  true  "ID del movimiento"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [delete]
func (h *InventoryHandler) ReverseMovement(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.ledger.Reverse(c.UserContext(), id, GetActorID(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Movimiento eliminado"})
}

// ListMovements godoc
// @Summary      Listar movimientos con totales
// @Tags         inventory
// @Produce      json
// @Param        search  query  string  false  "Producto, SKU, referencia o notas"
// @Param        tipo    query  string  false  "entry | exit"
// @Param        limit   query  int     false  "Máximo 200"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var in dto.MovementFilterRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.ledger.ListFromRequest(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetLowStock godoc
// @Summary      Productos en o bajo su stock mínimo
// @Description  Mayor déficit primero, con cantidad sugerida para volver al doble del mínimo.
// @Tags         inventory
// @Produce      json
// @Success      200  {array}   dto.LowStockItemDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) GetLowStock(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateLowStockReport(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}
