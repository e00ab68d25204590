package handlers

import (
	"strconv"

	"tupperstock/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves products and collections.
type CatalogHandler struct {
	service *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/related", h.HandleRelatedProducts)
	productRoutes.Get("/:handle", h.HandleGetProduct)

	collectionRoutes := router.Group("/collections")
	collectionRoutes.Get("/", h.HandleListCollections)
	collectionRoutes.Get("/:handle/products", h.HandleGetCollectionProducts)
}

// pageParam reads the "first" query value. Zero means it was not sent and
// the service default applies.
func pageParam(c *fiber.Ctx) (int, error) {
	raw := c.Query("first")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, &services.ValidationError{
			Message: "first must be between 1 and " + strconv.Itoa(services.MaxPageSize),
		}
	}
	return n, nil
}

// HandleListProducts lists one page of products with optional filters.
func (h *CatalogHandler) HandleListProducts(c *fiber.Ctx) error {
	first, err := pageParam(c)
	if err != nil {
		return respondError(c, "Failed to fetch products", err)
	}
	page, err := h.service.ListProducts(c.UserContext(), services.ProductFilter{
		First:    first,
		After:    c.Query("after"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Exclude:  c.Query("exclude"),
	})
	if err != nil {
		return respondError(c, "Failed to fetch products", err)
	}
	return c.JSON(page)
}

// HandleGetProduct returns one product by handle.
func (h *CatalogHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("handle"))
	if err != nil {
		return respondError(c, "Failed to fetch product", err)
	}
	return c.JSON(product)
}

// HandleRelatedProducts returns a bare array of related products.
func (h *CatalogHandler) HandleRelatedProducts(c *fiber.Ctx) error {
	related, err := h.service.RelatedProducts(
		c.UserContext(),
		c.Query("productId"),
		c.QueryInt("limit", 0),
		c.Query("collections"),
	)
	if err != nil {
		return respondError(c, "Failed to fetch related products", err)
	}
	return c.JSON(related)
}

// HandleListCollections lists the store's collections.
func (h *CatalogHandler) HandleListCollections(c *fiber.Ctx) error {
	collections, err := h.service.ListCollections(c.UserContext())
	if err != nil {
		return respondError(c, "Failed to fetch collections", err)
	}
	return c.JSON(fiber.Map{"collections": collections})
}

// HandleGetCollectionProducts lists one page of a collection's products.
func (h *CatalogHandler) HandleGetCollectionProducts(c *fiber.Ctx) error {
	first, err := pageParam(c)
	if err != nil {
		return respondError(c, "Failed to fetch collection products", err)
	}
	page, err := h.service.GetCollectionProducts(
		c.UserContext(),
		c.Params("handle"),
		first,
		c.Query("after"),
	)
	if err != nil {
		return respondError(c, "Failed to fetch collection products", err)
	}
	return c.JSON(page)
}
