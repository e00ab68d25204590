package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tupperstock/internal/models"
	"tupperstock/pkg/shopify"
)

// ShopifyOrderRepository creates orders through the Admin REST API.
type ShopifyOrderRepository struct {
	client *shopify.Client
}

// NewShopifyOrderRepository creates a new ShopifyOrderRepository.
func NewShopifyOrderRepository(client *shopify.Client) *ShopifyOrderRepository {
	return &ShopifyOrderRepository{client: client}
}

// Create posts the draft. A refusal because of a duplicate phone number is
// reported as ErrPhoneInUse; every other refusal as *PlatformError.
func (r *ShopifyOrderRepository) Create(ctx context.Context, draft *models.OrderDraft) (*models.PlacedOrder, error) {
	raw, err := r.client.CreateOrder(ctx, draft)
	if err != nil {
		var apiErr *shopify.APIError
		if errors.As(err, &apiErr) {
			if apiErr.PhoneTaken() {
				return nil, fmt.Errorf("create order: %w", ErrPhoneInUse)
			}
			return nil, &PlatformError{Op: "create order", Status: apiErr.StatusCode, Body: rawBody(apiErr.Body), Err: err}
		}
		return nil, &PlatformError{Op: "create order", Err: err}
	}

	var order models.PlacedOrder
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, &PlatformError{Op: "create order", Err: fmt.Errorf("decode order: %w", err)}
	}
	return &order, nil
}

// ShopifyCustomerRepository searches platform customers.
type ShopifyCustomerRepository struct {
	client *shopify.Client
}

// NewShopifyCustomerRepository creates a new ShopifyCustomerRepository.
func NewShopifyCustomerRepository(client *shopify.Client) *ShopifyCustomerRepository {
	return &ShopifyCustomerRepository{client: client}
}

// FindByEmail returns the first customer with that email, or nil.
func (r *ShopifyCustomerRepository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	return r.search(ctx, "email:"+email)
}

// FindByPhone returns the first customer with that phone, or nil.
func (r *ShopifyCustomerRepository) FindByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	return r.search(ctx, "phone:"+phone)
}

func (r *ShopifyCustomerRepository) search(ctx context.Context, query string) (*models.Customer, error) {
	customers, err := r.client.SearchCustomers(ctx, query)
	if err != nil {
		return nil, platformError("search customers "+query, err)
	}
	if len(customers) == 0 {
		return nil, nil
	}
	c := customers[0]
	return &models.Customer{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
	}, nil
}

// ShopifyVariantRepository reads variant stock and sets inventory levels at
// one location.
type ShopifyVariantRepository struct {
	client     *shopify.Client
	locationID int64
}

// NewShopifyVariantRepository creates a new ShopifyVariantRepository.
func NewShopifyVariantRepository(client *shopify.Client, locationID int64) *ShopifyVariantRepository {
	return &ShopifyVariantRepository{client: client, locationID: locationID}
}

func toVariantStock(v shopify.Variant) models.VariantStock {
	return models.VariantStock{
		ID:                v.ID,
		ProductID:         v.ProductID,
		Title:             v.Title,
		InventoryQuantity: v.InventoryQuantity,
		InventoryItemID:   v.InventoryItemID,
	}
}

// Get fetches a variant. An unknown variant is ErrNotFound.
func (r *ShopifyVariantRepository) Get(ctx context.Context, variantID int64) (*models.VariantStock, error) {
	v, err := r.client.GetVariant(ctx, variantID)
	if err != nil {
		return nil, platformError(fmt.Sprintf("get variant %d", variantID), err)
	}
	stock := toVariantStock(*v)
	return &stock, nil
}

// ProductVariants lists the variants of a product.
func (r *ShopifyVariantRepository) ProductVariants(ctx context.Context, productID int64) ([]models.VariantStock, error) {
	variants, err := r.client.ProductVariants(ctx, productID)
	if err != nil {
		return nil, platformError(fmt.Sprintf("product %d variants", productID), err)
	}
	out := make([]models.VariantStock, 0, len(variants))
	for _, v := range variants {
		out = append(out, toVariantStock(v))
	}
	return out, nil
}

// SetAvailable overwrites the available quantity of an inventory item.
func (r *ShopifyVariantRepository) SetAvailable(ctx context.Context, inventoryItemID int64, available int) error {
	if err := r.client.SetInventoryLevel(ctx, r.locationID, inventoryItemID, available); err != nil {
		return platformError(fmt.Sprintf("set inventory item %d", inventoryItemID), err)
	}
	return nil
}
