package handlers

import (
	"errors"
	"fmt"
	"log"

	"tupperstock/internal/repositories"
	"tupperstock/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const (
	msgPhoneInUse = "Este número de telefone já está associado a outro cliente. Por favor, use um número diferente ou contacte-nos para assistência."
	msgStockCheck = "Erro ao verificar stock do produto"
)

// respondError writes err with the status its kind maps to. message is used
// for failures that have no more specific text.
func respondError(c *fiber.Ctx, message string, err error) error {
	var (
		verr     *services.ValidationError
		serr     *services.StockError
		checkErr *services.StockCheckError
		limitErr *services.StockLimitError
		platErr  *repositories.PlatformError
	)

	switch {
	case errors.As(err, &verr):
		body := fiber.Map{"message": verr.Message, "error": verr.Message}
		if len(verr.Fields) > 0 {
			body["errors"] = verr.Fields
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)

	case errors.As(err, &serr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":           "Insufficient stock",
			"error":             serr.Error(),
			"variantId":         serr.VariantID,
			"requestedQuantity": serr.Requested,
			"availableQuantity": serr.Available,
		})

	case errors.As(err, &checkErr):
		log.Printf("%s: %v", message, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": message,
			"error":   msgStockCheck,
		})

	case errors.As(err, &limitErr):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Stock limit reached",
			"error":   limitErr.Error(),
			"cart":    limitErr.Cart,
		})

	case errors.Is(err, repositories.ErrPhoneInUse):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": message,
			"error":   msgPhoneInUse,
			"details": "Phone number already exists",
		})

	case errors.Is(err, services.ErrVariantLookup):
		log.Printf("%s: %v", message, err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": message,
			"error":   "Failed to get variant details",
		})

	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})

	case errors.As(err, &platErr):
		log.Printf("%s: %v", message, err)
		body := fiber.Map{
			"message": message,
			"error":   message,
		}
		if len(platErr.Body) > 0 {
			body["details"] = platErr.Body
		} else {
			body["details"] = platErr.Err.Error()
		}
		if platErr.Status != 0 {
			body["platformStatus"] = platErr.Status
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}

	log.Printf("%s: %v", message, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// badBody answers a request whose body could not be parsed.
func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

// validationFailed answers with validator field errors.
func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
