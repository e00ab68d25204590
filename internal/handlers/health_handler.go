package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ShopPinger reaches the commerce platform with an authenticated call.
type ShopPinger interface {
	ShopName(ctx context.Context) (string, error)
}

// HealthHandler reports liveness and platform reachability.
type HealthHandler struct {
	shop ShopPinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(shop ShopPinger) *HealthHandler {
	return &HealthHandler{shop: shop}
}

// RegisterRoutes registers /health.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth answers 200 when the platform answers, 503 otherwise.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	now := time.Now().Format(time.RFC3339)
	name, err := h.shop.ShopName(ctx)
	if err != nil {
		log.Printf("Health check could not reach the platform: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "unhealthy",
			"time":     now,
			"platform": "unreachable",
			"error":    err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"time":     now,
		"platform": "connected",
		"shop":     name,
	})
}
