package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/purchasing"
)

// OrderHandler maneja las peticiones HTTP de pedidos de compra.
type OrderHandler struct {
	ledger *purchasing.OrderLedger
}

func NewOrderHandler(ledger *purchasing.OrderLedger) *OrderHandler {
	return &OrderHandler{ledger: ledger}
}

// Create godoc
// @Summary      Crear pedido de compra
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateOrderRequest  true  "numero_pedido, proveedor_id, productos[{producto_id, cantidad}]"
// @Success      201   {object}  dto.CreateOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.CreadoPor == nil {
		in.CreadoPor = GetActorID(c)
	}
	out, err := h.ledger.CreateFromRequest(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar pedidos con conteo por estado
// @Tags         orders
// @Produce      json
// @Param        search  query  string  false  "Número, proveedor o notas"
// @Param        estado  query  string  false  "pendiente | confirmado | enviado | en_transito | entregado | cancelado"
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var in dto.OrderFilterRequest
	if err := c.QueryParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.ledger.ListFromRequest(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener pedido con sus líneas
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "ID del pedido"
// @Success      200  {object}  dto.OrderDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.ledger.GetDTO(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateStatus godoc
// @Summary      Cambiar estado del pedido (no mueve stock)
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path  int                           true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "estado"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	status := purchasing.ParseStatus(in.Estado)
	if err := h.ledger.UpdateStatus(c.UserContext(), id, status, GetActorID(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Estado actualizado", "estado": string(status)})
}

// Delete godoc
// @Summary      Eliminar pedido y sus líneas
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "ID del pedido"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.ledger.Delete(c.UserContext(), id, GetActorID(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Pedido eliminado"})
}
