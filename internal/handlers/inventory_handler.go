package handlers

import (
	"tupperstock/internal/services"

	"github.com/gofiber/fiber/v2"
)

// InventoryHandler exposes manual stock corrections.
type InventoryHandler struct {
	service *services.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(service *services.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// RegisterRoutes registers the inventory routes behind auth.
func (h *InventoryHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	inventoryRoutes := router.Group("/inventory", auth)
	inventoryRoutes.Post("/adjust", h.HandleAdjust)
}

// HandleAdjust increments or decrements a variant's stock.
func (h *InventoryHandler) HandleAdjust(c *fiber.Ctx) error {
	var req services.AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	result, err := h.service.Adjust(c.UserContext(), req)
	if err != nil {
		return respondError(c, "Failed to adjust inventory", err)
	}
	return c.JSON(result)
}
