package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"tupperstock/internal/models"
	"tupperstock/pkg/mailer"
)

// Test email kinds.
const (
	TestEmailPickup   = "pickup"
	TestEmailDelivery = "delivery"
)

// CustomerShapeExisting makes the sample customer carry a platform id, as a
// matched existing customer does. Any other shape leaves it out.
const CustomerShapeExisting = "existing"

// Mailer delivers one email and returns its provider id.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) (string, error)
}

// SentEmail is the result of a successful send.
type SentEmail struct {
	EmailID   string `json:"emailId"`
	OrderName string `json:"orderName"`
	To        string `json:"to"`
}

// NotificationService renders and sends customer emails.
type NotificationService struct {
	mailer Mailer
	from   string
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(m Mailer, from string) *NotificationService {
	return &NotificationService{mailer: m, from: from}
}

// SendOrderConfirmation emails the order confirmation to the customer.
func (s *NotificationService) SendOrderConfirmation(ctx context.Context, data models.OrderConfirmation) (*SentEmail, error) {
	to := strings.TrimSpace(data.Customer.Email)
	if to == "" {
		return nil, invalid("Customer email is required")
	}

	html, text, err := renderConfirmation(data)
	if err != nil {
		return nil, err
	}

	id, err := s.mailer.Send(ctx, mailer.Message{
		From:    s.from,
		To:      []string{to},
		Subject: fmt.Sprintf("Confirmação de Encomenda %s - TupperStock", data.OrderName),
		HTML:    html,
		Text:    text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send confirmation for %s: %w", data.OrderName, err)
	}
	log.Printf("Order confirmation for %s sent to %s (id %s)", data.OrderName, to, id)
	return &SentEmail{EmailID: id, OrderName: data.OrderName, To: to}, nil
}

// SendTestEmail sends a confirmation built from sample data. testType
// defaults to delivery.
func (s *NotificationService) SendTestEmail(ctx context.Context, email, testType, customerShape string) (*SentEmail, error) {
	if strings.TrimSpace(email) == "" {
		return nil, invalid("Email address is required")
	}
	if testType == "" {
		testType = TestEmailDelivery
	}
	if testType != TestEmailPickup && testType != TestEmailDelivery {
		return nil, invalid("Invalid test type. Must be 'pickup' or 'delivery'")
	}
	return s.SendOrderConfirmation(ctx, sampleConfirmation(email, testType, customerShape))
}

// TestEmailUsage describes the test-email endpoint.
func TestEmailUsage() map[string]any {
	return map[string]any{
		"message": "Email test endpoint",
		"usage": map[string]string{
			"delivery":         "POST with { email: 'test@example.com' } to send a test delivery confirmation email",
			"pickup":           "POST with { email: 'test@example.com', testType: 'pickup' } to send a test pickup confirmation email",
			"existingCustomer": "POST with { email: 'test@example.com', customerStructure: 'existing' } to test existing customer structure",
			"orderCustomer":    "POST with { email: 'test@example.com', customerStructure: 'order' } to test order customer structure",
		},
	}
}

func renderConfirmation(data models.OrderConfirmation) (string, string, error) {
	view := confirmationView(data)

	var html, text bytes.Buffer
	if err := confirmationHTML.Execute(&html, view); err != nil {
		return "", "", fmt.Errorf("render confirmation html: %w", err)
	}
	if err := confirmationText.Execute(&text, view); err != nil {
		return "", "", fmt.Errorf("render confirmation text: %w", err)
	}
	return html.String(), text.String(), nil
}

func confirmationView(data models.OrderConfirmation) emailView {
	firstName := data.Customer.FirstName
	if firstName == "" {
		firstName = "Cliente"
	}
	createdAt := data.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	view := emailView{
		FirstName: firstName,
		OrderName: data.OrderName,
		OrderDate: formatDatePT(createdAt),
		Total:     data.Total,
		Pickup:    data.DeliveryOption == models.DeliveryPickup,
	}
	for _, item := range data.Items {
		image := item.Image
		if image == "" {
			image = imagePlaceholder
		}
		view.Items = append(view.Items, emailItem{
			Title:        item.Title,
			VariantTitle: item.VariantTitle,
			Quantity:     item.Quantity,
			Price:        item.Price,
			Image:        image,
		})
	}
	if data.PickupDetails != nil {
		view.PickupDate = data.PickupDetails.Date
		view.PickupTime = data.PickupDetails.Time
	}
	if a := data.ShippingAddress; a != nil && !view.Pickup {
		view.HasAddress = true
		view.AddressName = strings.TrimSpace(a.FirstName + " " + a.LastName)
		view.AddressLine = strings.TrimSpace(a.Address1 + " " + a.Address2)
		view.AddressZipCity = strings.TrimSpace(a.Zip + " " + a.City)
		view.AddressCountry = a.Country
	}
	return view
}

const sampleImage = "https://images.unsplash.com/photo-1582735689369-4fe89db7114c?w=120&h=120&fit=crop&crop=center"

func sampleConfirmation(email, testType, customerShape string) models.OrderConfirmation {
	customer := models.Customer{FirstName: "João", LastName: "Silva", Email: email, Phone: "+351912345678"}
	if customerShape == CustomerShapeExisting {
		customer.ID = 12345
	}

	data := models.OrderConfirmation{
		OrderID:   "12345",
		OrderName: "#TEST-001",
		Customer:  customer,
		Items: []models.ConfirmationItem{
			{Title: "Tupperware Premium Container", Quantity: 2, Price: "24.99", VariantTitle: "1.5L - Azul", Image: sampleImage},
			{Title: "Tupperware Fresh & Go Set", Quantity: 1, Price: "39.99", VariantTitle: "Pack de 3", Image: sampleImage},
		},
		Total:          "89.97",
		Currency:       orderCurrency,
		DeliveryOption: testType,
		Note:           "Teste de confirmação de encomenda",
		CreatedAt:      time.Now(),
	}

	if testType == TestEmailPickup {
		data.Total = "64.98"
		data.PickupDetails = &models.PickupAppointment{Date: "2024-12-25", Time: "14:30"}
		return data
	}

	data.ShippingAddress = &models.ShippingAddress{
		FirstName: "João",
		LastName:  "Silva",
		Address1:  "Rua das Flores, 123",
		Address2:  "2º Esquerdo",
		City:      "Ponta Delgada",
		Country:   countryPortugal,
		Zip:       "9500-445",
		Phone:     "+351912345678",
	}
	return data
}
