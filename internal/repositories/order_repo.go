package repositories

import (
	"context"

	"tupperstock/internal/models"
)

// OrderRepository submits orders to the platform. Orders are not stored
// locally.
type OrderRepository interface {
	Create(ctx context.Context, draft *models.OrderDraft) (*models.PlacedOrder, error)
}

// CustomerRepository looks up existing platform customers. A miss is
// (nil, nil).
type CustomerRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	FindByPhone(ctx context.Context, phone string) (*models.Customer, error)
}

// VariantRepository reads variant stock and writes inventory levels.
type VariantRepository interface {
	Get(ctx context.Context, variantID int64) (*models.VariantStock, error)
	ProductVariants(ctx context.Context, productID int64) ([]models.VariantStock, error)
	SetAvailable(ctx context.Context, inventoryItemID int64, available int) error
}

// CartRepository persists carts.
type CartRepository interface {
	Create(cart *models.Cart) error
	GetByID(id string) (*models.Cart, error)
	Save(cart *models.Cart) error
}
