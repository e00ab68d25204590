package handlers

import (
	"log"
	"net/url"

	"tupperstock/internal/models"
	"tupperstock/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for carts.
type CartHandler struct {
	service *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/carts")
	cartRoutes.Post("/", h.HandleCreateCart)
	cartRoutes.Get("/:id", h.HandleGetCart)
	cartRoutes.Post("/:id/items", h.HandleAddItem)
	cartRoutes.Patch("/:id/items/:variantId", h.HandleUpdateQuantity)
	cartRoutes.Delete("/:id/items/:variantId", h.HandleRemoveItem)
	cartRoutes.Delete("/:id/items", h.HandleClearCart)
}

// variantParam returns the variantId path parameter. Clients send the
// global id percent-encoded since it contains slashes.
func variantParam(c *fiber.Ctx) string {
	raw := c.Params("variantId")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

// HandleCreateCart starts an empty cart.
func (h *CartHandler) HandleCreateCart(c *fiber.Ctx) error {
	cart, err := h.service.Create()
	if err != nil {
		return respondError(c, "Could not create cart", err)
	}
	return c.Status(fiber.StatusCreated).JSON(cart)
}

// HandleGetCart returns a cart by id.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.Get(c.Params("id"))
	if err != nil {
		return respondError(c, "Cart not found", err)
	}
	return c.JSON(cart)
}

// HandleAddItem adds one unit of the posted product.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var product models.CartProduct
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing cart item: %v", err)
		return badBody(c, err)
	}
	cart, err := h.service.AddItem(c.Params("id"), product)
	if err != nil {
		return respondError(c, "Could not add item", err)
	}
	return c.JSON(cart)
}

// quantityRequest is the body of a quantity update.
type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

// HandleUpdateQuantity sets the quantity of a cart line.
func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var req quantityRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if req.Quantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  map[string]string{"quantity": "Field 'quantity' failed on the 'required' tag"},
		})
	}
	cart, err := h.service.UpdateQuantity(c.Params("id"), variantParam(c), *req.Quantity)
	if err != nil {
		return respondError(c, "Could not update item", err)
	}
	return c.JSON(cart)
}

// HandleRemoveItem drops a cart line.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cart, err := h.service.RemoveItem(c.Params("id"), variantParam(c))
	if err != nil {
		return respondError(c, "Could not remove item", err)
	}
	return c.JSON(cart)
}

// HandleClearCart empties a cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	cart, err := h.service.Clear(c.Params("id"))
	if err != nil {
		return respondError(c, "Could not clear cart", err)
	}
	return c.JSON(cart)
}
