package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Delivery options offered at checkout.
const (
	DeliveryPickup   = "pickup"
	DeliveryDelivery = "delivery"
)

// OrderRequest is the checkout form posted by the storefront.
type OrderRequest struct {
	Items            []OrderItemRequest `json:"items"`
	DeliveryOption   string             `json:"deliveryOption"`
	PickupForm       *PickupForm        `json:"pickupForm"`
	DeliveryForm     *DeliveryForm      `json:"deliveryForm"`
	SelectedLocation string             `json:"selectedLocation"`
	// TotalPrice is what the browser computed. It is informational only.
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CartID     string          `json:"cartId,omitempty"`
}

// OrderItemRequest is one cart line as submitted at checkout.
type OrderItemRequest struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	Image     *string         `json:"image"`
	VariantID string          `json:"variantId" validate:"required"`
}

// PickupForm is filled in when the customer collects the order.
type PickupForm struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

// DeliveryForm is filled in for home delivery.
type DeliveryForm struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"required"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

// ContactDetails is the part common to both forms.
type ContactDetails struct {
	Name  string
	Email string
	Phone string
}

// Contact returns the contact details of the form matching DeliveryOption.
func (r *OrderRequest) Contact() (ContactDetails, bool) {
	switch r.DeliveryOption {
	case DeliveryPickup:
		if r.PickupForm != nil {
			return ContactDetails{Name: r.PickupForm.Name, Email: r.PickupForm.Email, Phone: r.PickupForm.Phone}, true
		}
	case DeliveryDelivery:
		if r.DeliveryForm != nil {
			return ContactDetails{Name: r.DeliveryForm.Name, Email: r.DeliveryForm.Email, Phone: r.DeliveryForm.Phone}, true
		}
	}
	return ContactDetails{}, false
}

// OrderDraft is the order payload sent to the platform's REST API.
type OrderDraft struct {
	LineItems         []LineItem       `json:"line_items"`
	TotalPrice        string           `json:"total_price"`
	Currency          string           `json:"currency"`
	FinancialStatus   string           `json:"financial_status"`
	FulfillmentStatus string           `json:"fulfillment_status"`
	Customer          *CustomerDraft   `json:"customer,omitempty"`
	CustomerID        int64            `json:"customer_id,omitempty"`
	ShippingAddress   *ShippingAddress `json:"shipping_address"`
	Note              string           `json:"note"`
	Tags              string           `json:"tags"`
}

// LineItem is a variant and a quantity.
type LineItem struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

// CustomerDraft makes the platform create a customer with the order.
type CustomerDraft struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Customer is a customer record owned by the platform.
type Customer struct {
	ID        int64  `json:"id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// ShippingAddress uses the platform's field names.
type ShippingAddress struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Address1     string `json:"address1"`
	Address2     string `json:"address2"`
	City         string `json:"city"`
	Region       string `json:"region,omitempty"`
	State        string `json:"state,omitempty"`
	Province     string `json:"province,omitempty"`
	ProvinceCode string `json:"province_code,omitempty"`
	Country      string `json:"country"`
	CountryCode  string `json:"country_code,omitempty"`
	Zip          string `json:"zip"`
	Phone        string `json:"phone"`
}

// PlacedOrder is the platform's answer to an order creation.
type PlacedOrder struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	TotalPrice      string           `json:"total_price"`
	Currency        string           `json:"currency"`
	Customer        *Customer        `json:"customer"`
	ShippingAddress *ShippingAddress `json:"shipping_address"`
	Note            string           `json:"note"`
	Tags            string           `json:"tags"`
	CreatedAt       string           `json:"created_at"`
}

// OrderSummary is returned to the storefront after a successful checkout.
type OrderSummary struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Total           string           `json:"total"`
	Currency        string           `json:"currency"`
	Customer        *Customer        `json:"customer"`
	ShippingAddress *ShippingAddress `json:"shippingAddress"`
	Note            string           `json:"note"`
	Tags            string           `json:"tags"`
	CreatedAt       string           `json:"createdAt"`
}

// VariantStock is the inventory view of a variant.
type VariantStock struct {
	ID                int64  `json:"id"`
	ProductID         int64  `json:"product_id"`
	Title             string `json:"title"`
	InventoryQuantity int    `json:"inventory_quantity"`
	InventoryItemID   int64  `json:"inventory_item_id"`
}

// OrderConfirmation carries everything the confirmation email needs. It is
// also the body of the order.created event.
type OrderConfirmation struct {
	OrderID         string             `json:"orderId"`
	OrderName       string             `json:"orderName"`
	Customer        Customer           `json:"customer"`
	Items           []ConfirmationItem `json:"items"`
	Total           string             `json:"total"`
	Currency        string             `json:"currency"`
	ShippingAddress *ShippingAddress   `json:"shippingAddress,omitempty"`
	DeliveryOption  string             `json:"deliveryOption"`
	PickupDetails   *PickupAppointment `json:"pickupDetails,omitempty"`
	Note            string             `json:"note,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// ConfirmationItem is one line of the confirmation email.
type ConfirmationItem struct {
	Title        string `json:"title"`
	Quantity     int    `json:"quantity"`
	Price        string `json:"price"`
	VariantTitle string `json:"variantTitle,omitempty"`
	Image        string `json:"image,omitempty"`
}

// PickupAppointment is the slot the customer chose for collection.
type PickupAppointment struct {
	Date string `json:"date"`
	Time string `json:"time"`
}
