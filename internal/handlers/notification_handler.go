package handlers

import (
	"fmt"

	"tupperstock/internal/services"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler exposes the test-email tool.
type NotificationHandler struct {
	service *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// RegisterRoutes registers the notification routes behind auth.
func (h *NotificationHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	notificationRoutes := router.Group("/notifications", auth)
	notificationRoutes.Get("/test-email", h.HandleTestEmailUsage)
	notificationRoutes.Post("/test-email", h.HandleSendTestEmail)
}

// TestEmailRequest is the body of a test-email send.
type TestEmailRequest struct {
	Email             string `json:"email"`
	TestType          string `json:"testType"`
	CustomerStructure string `json:"customerStructure"`
}

// HandleTestEmailUsage describes how to call the endpoint.
func (h *NotificationHandler) HandleTestEmailUsage(c *fiber.Ctx) error {
	return c.JSON(services.TestEmailUsage())
}

// HandleSendTestEmail sends a sample order confirmation.
func (h *NotificationHandler) HandleSendTestEmail(c *fiber.Ctx) error {
	var req TestEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	testType := req.TestType
	if testType == "" {
		testType = services.TestEmailDelivery
	}

	sent, err := h.service.SendTestEmail(c.UserContext(), req.Email, testType, req.CustomerStructure)
	if err != nil {
		return respondError(c, "Failed to send test email", err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  fmt.Sprintf("Test %s email sent successfully", testType),
		"emailId":  sent.EmailID,
		"testType": testType,
	})
}
