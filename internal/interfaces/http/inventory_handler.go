package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dmorales/farmapos-api/internal/application/inventory"
)

// InventoryHandler expone la verificación de consistencia bajo demanda.
type InventoryHandler struct {
	consistency *inventory.ConsistencyUseCase
}

func NewInventoryHandler(consistency *inventory.ConsistencyUseCase) *InventoryHandler {
	return &InventoryHandler{consistency: consistency}
}

// CheckConsistency compara el Stock Ledger con la suma de lotes por producto
// y devuelve las divergencias. Solo reporta, nunca corrige.
func (h *InventoryHandler) CheckConsistency(c *fiber.Ctx) error {
	divergences, err := h.consistency.CheckConsistency(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"consistent":  len(divergences) == 0,
		"divergences": divergences,
	})
}
