package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
)

// Variant is the Admin REST view of a product variant.
type Variant struct {
	ID                int64  `json:"id"`
	ProductID         int64  `json:"product_id"`
	Title             string `json:"title"`
	Price             string `json:"price"`
	SKU               string `json:"sku"`
	InventoryQuantity int    `json:"inventory_quantity"`
	InventoryItemID   int64  `json:"inventory_item_id"`
}

// Customer is the Admin REST view of a customer.
type Customer struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Metafield is the Admin REST view of a product metafield. Value is kept raw
// because Shopify sends strings, numbers or JSON depending on Type.
type Metafield struct {
	ID          int64           `json:"id"`
	Namespace   string          `json:"namespace"`
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
}

// GetVariant fetches variants/{id}.json.
func (c *Client) GetVariant(ctx context.Context, id int64) (*Variant, error) {
	var resp struct {
		Variant *Variant `json:"variant"`
	}
	if err := c.REST(ctx, fiber.MethodGet, fmt.Sprintf("variants/%d.json", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Variant == nil {
		return nil, fmt.Errorf("variant %d: empty response", id)
	}
	return resp.Variant, nil
}

// ProductVariants fetches products/{id}/variants.json.
func (c *Client) ProductVariants(ctx context.Context, productID int64) ([]Variant, error) {
	var resp struct {
		Variants []Variant `json:"variants"`
	}
	if err := c.REST(ctx, fiber.MethodGet, fmt.Sprintf("products/%d/variants.json", productID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Variants, nil
}

// SearchCustomers runs customers/search.json with a Shopify search query such
// as "email:ana@example.com".
func (c *Client) SearchCustomers(ctx context.Context, query string) ([]Customer, error) {
	var resp struct {
		Customers []Customer `json:"customers"`
	}
	q := url.Values{"query": {query}}
	if err := c.REST(ctx, fiber.MethodGet, "customers/search.json", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Customers, nil
}

// CreateOrder posts {"order": order} to orders.json and returns the raw
// "order" member of the answer.
func (c *Client) CreateOrder(ctx context.Context, order any) (json.RawMessage, error) {
	var resp struct {
		Order json.RawMessage `json:"order"`
	}
	if err := c.REST(ctx, fiber.MethodPost, "orders.json", nil, map[string]any{"order": order}, &resp); err != nil {
		return nil, err
	}
	return resp.Order, nil
}

// SetInventoryLevel overwrites the available quantity of an inventory item at
// a location.
func (c *Client) SetInventoryLevel(ctx context.Context, locationID, inventoryItemID int64, available int) error {
	payload := map[string]any{
		"location_id":       locationID,
		"inventory_item_id": inventoryItemID,
		"available":         available,
	}
	return c.REST(ctx, fiber.MethodPost, "inventory_levels/set.json", nil, payload, nil)
}

// ProductIDByHandle looks a product up by handle. ok is false when no product
// has that handle.
func (c *Client) ProductIDByHandle(ctx context.Context, handle string) (id int64, ok bool, err error) {
	var resp struct {
		Products []struct {
			ID int64 `json:"id"`
		} `json:"products"`
	}
	q := url.Values{"handle": {handle}, "fields": {"id"}}
	if err := c.REST(ctx, fiber.MethodGet, "products.json", q, nil, &resp); err != nil {
		return 0, false, err
	}
	if len(resp.Products) == 0 {
		return 0, false, nil
	}
	return resp.Products[0].ID, true, nil
}

// ProductMetafields fetches products/{id}/metafields.json.
func (c *Client) ProductMetafields(ctx context.Context, productID int64) ([]Metafield, error) {
	var resp struct {
		Metafields []Metafield `json:"metafields"`
	}
	if err := c.REST(ctx, fiber.MethodGet, fmt.Sprintf("products/%d/metafields.json", productID), nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Metafields, nil
}
