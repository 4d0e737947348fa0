package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dmorales/farmapos-api/internal/application/batches"
	"github.com/dmorales/farmapos-api/internal/application/dto"
)

// BatchHandler maneja las peticiones HTTP del Batch Ledger (protegido).
type BatchHandler struct {
	uc *batches.UseCase
}

func NewBatchHandler(uc *batches.UseCase) *BatchHandler {
	return &BatchHandler{uc: uc}
}

// Create registra un lote recibido.
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in.ActorID = GetUserID(c)
	resp, err := h.uc.CreateBatch(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Update aplica un parche de metadatos sobre un lote (las cantidades solo
// cambian vía movimientos).
func (h *BatchHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in.BatchID = c.Params("id")
	in.ActorID = GetUserID(c)
	resp, err := h.uc.UpdateBatch(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// ExpiryStatus devuelve el estado de vencimiento de un lote.
func (h *BatchHandler) ExpiryStatus(c *fiber.Ctx) error {
	resp, err := h.uc.CheckBatchExpiration(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// RecordMovement registra un movimiento manual sobre un lote.
func (h *BatchHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in.BatchID = c.Params("id")
	in.ActorID = GetUserID(c)
	resp, err := h.uc.RecordMovement(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Movements lista el libro de auditoría de un lote.
func (h *BatchHandler) Movements(c *fiber.Ctx) error {
	list, err := h.uc.GetBatchMovements(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "movements": list})
}

// Allocate calcula y consume una asignación FIFO por vencimiento.
func (h *BatchHandler) Allocate(c *fiber.Ctx) error {
	var in dto.AllocateRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in.ActorID = GetUserID(c)
	allocations, err := h.uc.AllocateForSale(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"allocations": allocations})
}

// ListByProduct lista los lotes de un producto, vencimiento ascendente.
func (h *BatchHandler) ListByProduct(c *fiber.Ctx) error {
	list, err := h.uc.GetBatchesByProduct(c.Context(), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "batches": list})
}

// Expiring lista lotes con saldo que vencen dentro del horizonte dado.
func (h *BatchHandler) Expiring(c *fiber.Ctx) error {
	list, err := h.uc.GetExpiringBatches(c.Context(), c.QueryInt("days"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "batches": list})
}

// Summary devuelve el resumen global del inventario por lotes (cacheado).
func (h *BatchHandler) Summary(c *fiber.Ctx) error {
	resp, err := h.uc.GetInventorySummary(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Delete elimina un lote sin movimientos.
func (h *BatchHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteBatch(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "lote eliminado"})
}
