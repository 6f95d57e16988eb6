package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Locals y cabeceras de contexto de la petición.
const (
	LocalActorID   = "actor_id"
	LocalRequestID = "request_id"

	HeaderActorID   = "X-Usuario-ID"
	HeaderRequestID = "X-Request-ID"
)

// RequestContext asigna un request id (o propaga el recibido) y extrae el usuario actor opcional
// de X-Usuario-ID. La autenticación queda fuera de este servicio: el gateway es quien fija la cabecera.
func RequestContext(log *logger.Logger) fiber.Handler {
	log = log.Component("http")
	return func(c *fiber.Ctx) error {
		requestID := strings.TrimSpace(c.Get(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Locals(LocalRequestID, requestID)
		c.Set(HeaderRequestID, requestID)

		if raw := strings.TrimSpace(c.Get(HeaderActorID)); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
					Code:    "VALIDATION",
					Message: "cabecera " + HeaderActorID + " inválida",
					Fields:  map[string]string{HeaderActorID: "Debe ser un entero positivo"},
				})
			}
			c.Locals(LocalActorID, id)
		}

		err := c.Next()
		log.Debug().
			Str("request_id", requestID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Msg("request")
		return err
	}
}

// GetActorID devuelve el usuario actor de la petición; nil si no vino la cabecera.
func GetActorID(c *fiber.Ctx) *int64 {
	id, ok := c.Locals(LocalActorID).(int64)
	if !ok {
		return nil
	}
	return &id
}

// GetRequestID devuelve el request id asignado por RequestContext.
func GetRequestID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRequestID).(string)
	return s
}
