package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/purchasing"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements     *inventory.MovementLedger
	Replenishment *inventory.ReplenishmentUseCase
	Orders        *purchasing.OrderLedger
	Logger        *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", RequestContext(deps.Logger))

	// Inventario
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Movements, deps.Replenishment)
	invGroup.Post("/movements", inventoryHandler.ApplyMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Delete("/movements/:id", inventoryHandler.ReverseMovement)
	invGroup.Get("/low-stock", inventoryHandler.GetLowStock)

	// Pedidos de compra
	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.Orders)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Patch("/:id/status", orderHandler.UpdateStatus)
	orders.Delete("/:id", orderHandler.Delete)
}
