package handlers

import (
	"log"

	"tupperstock/internal/models"
	"tupperstock/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles checkout.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
}

// HandleCreateOrder submits the checkout form as a platform order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req models.OrderRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing request body: %v", err)
		return badBody(c, err)
	}

	order, err := h.service.PlaceOrder(c.UserContext(), &req)
	if err != nil {
		return respondError(c, "Failed to create order via REST API", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"order":   order,
	})
}
