package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"tupperstock/internal/models"
	"tupperstock/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	orderCurrency          = "EUR"
	orderFinancialStatus   = "pending"
	orderFulfillmentStatus = "unfulfilled"
)

// CartClearer empties a cart once its order is placed.
type CartClearer interface {
	Clear(id string) (*models.Cart, error)
}

// OrderService turns a checkout form into a platform order.
type OrderService struct {
	variants  repositories.VariantRepository
	customers repositories.CustomerRepository
	orders    repositories.OrderRepository
	inventory *InventoryService
	events    OrderEventPublisher
	carts     CartClearer
	checkout  CheckoutConfig
	validate  *validator.Validate
}

// NewOrderService creates a new OrderService. events and carts may be nil.
func NewOrderService(
	variants repositories.VariantRepository,
	customers repositories.CustomerRepository,
	orders repositories.OrderRepository,
	inventory *InventoryService,
	events OrderEventPublisher,
	carts CartClearer,
	checkout CheckoutConfig,
) *OrderService {
	return &OrderService{
		variants:  variants,
		customers: customers,
		orders:    orders,
		inventory: inventory,
		events:    events,
		carts:     carts,
		checkout:  checkout,
		validate:  validator.New(),
	}
}

// PlaceOrder validates the request, checks stock and creates the order.
// Once the platform has accepted the order nothing else can fail it: stock
// decrement, the confirmation event and clearing the cart are only logged.
func (s *OrderService) PlaceOrder(ctx context.Context, req *models.OrderRequest) (*models.OrderSummary, error) {
	contact, err := s.validateRequest(req)
	if err != nil {
		return nil, err
	}

	lines, total, err := orderLines(req.Items)
	if err != nil {
		return nil, err
	}
	if err := s.inventory.CheckStock(ctx, lines); err != nil {
		return nil, err
	}

	draft := &models.OrderDraft{
		LineItems:         lines,
		TotalPrice:        total.StringFixed(2),
		Currency:          orderCurrency,
		FinancialStatus:   orderFinancialStatus,
		FulfillmentStatus: orderFulfillmentStatus,
		ShippingAddress:   s.checkout.shippingAddress(req, contact),
		Note:              orderNote(req),
		Tags:              req.DeliveryOption,
	}
	if req.DeliveryOption == models.DeliveryDelivery {
		if fee, ok := s.deliveryFeeLine(ctx); ok {
			draft.LineItems = append(draft.LineItems, fee)
		}
	}

	existing := s.findCustomer(ctx, contact)
	if existing != nil {
		log.Printf("Using existing customer %d for %s", existing.ID, contact.Email)
		draft.CustomerID = existing.ID
	} else {
		first, last := SplitName(contact.Name)
		draft.Customer = &models.CustomerDraft{
			FirstName: first,
			LastName:  last,
			Email:     contact.Email,
			Phone:     InternationalPhone(contact.Phone),
		}
	}

	placed, err := s.orders.Create(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	log.Printf("Order %s (%d) created", placed.Name, placed.ID)

	s.inventory.DecrementAll(ctx, draft.LineItems)
	s.publishCreated(ctx, req, contact, placed)
	s.clearCart(req.CartID)

	customer := placed.Customer
	if customer == nil {
		customer = existing
	}
	return &models.OrderSummary{
		ID:              placed.ID,
		Name:            placed.Name,
		Total:           placed.TotalPrice,
		Currency:        placed.Currency,
		Customer:        customer,
		ShippingAddress: placed.ShippingAddress,
		Note:            placed.Note,
		Tags:            placed.Tags,
		CreatedAt:       placed.CreatedAt,
	}, nil
}

func (s *OrderService) validateRequest(req *models.OrderRequest) (models.ContactDetails, error) {
	if len(req.Items) == 0 {
		return models.ContactDetails{}, invalid("No items in order")
	}
	if req.DeliveryOption == "" {
		return models.ContactDetails{}, invalid("Delivery option not selected")
	}
	if req.DeliveryOption != models.DeliveryPickup && req.DeliveryOption != models.DeliveryDelivery {
		return models.ContactDetails{}, invalid("Invalid delivery option %q", req.DeliveryOption)
	}

	var form any
	if req.DeliveryOption == models.DeliveryPickup && req.PickupForm != nil {
		form = req.PickupForm
	} else if req.DeliveryOption == models.DeliveryDelivery && req.DeliveryForm != nil {
		form = req.DeliveryForm
	}
	if form == nil {
		return models.ContactDetails{}, invalid("Missing %s details", req.DeliveryOption)
	}
	if err := s.validate.Struct(form); err != nil {
		return models.ContactDetails{}, validationError("Invalid customer details", err)
	}

	for i := range req.Items {
		if err := s.validate.Struct(req.Items[i]); err != nil {
			return models.ContactDetails{}, validationError(fmt.Sprintf("Invalid order item %d", i+1), err)
		}
	}

	contact, _ := req.Contact()
	return contact, nil
}

// orderLines converts request items into platform lines and sums the order
// total from the submitted unit prices.
func orderLines(items []models.OrderItemRequest) ([]models.LineItem, decimal.Decimal, error) {
	lines := make([]models.LineItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		id, err := models.ParseNumericID(item.VariantID)
		if err != nil {
			return nil, decimal.Zero, invalid("Invalid variantId %q", item.VariantID)
		}
		lines = append(lines, models.LineItem{VariantID: id, Quantity: item.Quantity})
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return lines, total, nil
}

func (s *OrderService) deliveryFeeLine(ctx context.Context) (models.LineItem, bool) {
	variants, err := s.variants.ProductVariants(ctx, s.checkout.DeliveryFeeProductID)
	if err != nil {
		log.Printf("Delivery fee not added: %v", err)
		return models.LineItem{}, false
	}
	if len(variants) == 0 {
		log.Printf("Delivery fee not added: product %d has no variants", s.checkout.DeliveryFeeProductID)
		return models.LineItem{}, false
	}
	return models.LineItem{VariantID: variants[0].ID, Quantity: 1}, true
}

// findCustomer looks for an existing customer by email, by the phone as
// typed and by the international phone. Search failures count as misses.
func (s *OrderService) findCustomer(ctx context.Context, contact models.ContactDetails) *models.Customer {
	lookups := []struct {
		kind  string
		value string
		find  func(context.Context, string) (*models.Customer, error)
	}{
		{"email", contact.Email, s.customers.FindByEmail},
		{"phone", contact.Phone, s.customers.FindByPhone},
		{"phone", InternationalPhone(contact.Phone), s.customers.FindByPhone},
	}
	for _, l := range lookups {
		if l.value == "" {
			continue
		}
		c, err := l.find(ctx, l.value)
		if err != nil {
			log.Printf("Customer search by %s failed: %v", l.kind, err)
			continue
		}
		if c != nil {
			return c
		}
	}
	return nil
}

func (s *OrderService) publishCreated(ctx context.Context, req *models.OrderRequest, contact models.ContactDetails, placed *models.PlacedOrder) {
	if s.events == nil {
		return
	}
	if err := s.events.OrderCreated(ctx, confirmationFor(req, contact, placed)); err != nil {
		log.Printf("Failed to publish order.created for %s: %v", placed.Name, err)
	}
}

func (s *OrderService) clearCart(id string) {
	if id == "" || s.carts == nil {
		return
	}
	if _, err := s.carts.Clear(id); err != nil {
		log.Printf("Failed to clear cart %s: %v", id, err)
	}
}

// confirmationFor collects what the confirmation email shows.
func confirmationFor(req *models.OrderRequest, contact models.ContactDetails, placed *models.PlacedOrder) models.OrderConfirmation {
	first, last := SplitName(contact.Name)
	customer := models.Customer{FirstName: first, LastName: last, Email: contact.Email, Phone: contact.Phone}
	if placed.Customer != nil && placed.Customer.Email != "" {
		customer = *placed.Customer
	}

	items := make([]models.ConfirmationItem, 0, len(req.Items))
	for _, item := range req.Items {
		ci := models.ConfirmationItem{
			Title:    item.Name,
			Quantity: item.Quantity,
			Price:    item.Price.StringFixed(2),
		}
		if item.Image != nil {
			ci.Image = *item.Image
		}
		items = append(items, ci)
	}

	createdAt, err := time.Parse(time.RFC3339, placed.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}

	data := models.OrderConfirmation{
		OrderID:         strconv.FormatInt(placed.ID, 10),
		OrderName:       placed.Name,
		Customer:        customer,
		Items:           items,
		Total:           placed.TotalPrice,
		Currency:        placed.Currency,
		ShippingAddress: placed.ShippingAddress,
		DeliveryOption:  req.DeliveryOption,
		Note:            placed.Note,
		CreatedAt:       createdAt,
	}
	if req.DeliveryOption == models.DeliveryPickup && req.PickupForm != nil {
		data.PickupDetails = &models.PickupAppointment{Date: req.PickupForm.Date, Time: req.PickupForm.Time}
	}
	return data
}
