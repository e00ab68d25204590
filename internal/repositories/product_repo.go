package repositories

import (
	"context"

	"tupperstock/internal/models"
)

// ProductRepository reads products from the catalog.
type ProductRepository interface {
	List(ctx context.Context, first int, after string) (*models.ProductPage, error)
	GetByHandle(ctx context.Context, handle string) (*models.Product, error)
	Metafields(ctx context.Context, handle string) ([]models.Metafield, error)
}

// CollectionRepository reads collections and their products.
type CollectionRepository interface {
	List(ctx context.Context, first int) ([]models.Collection, error)
	Products(ctx context.Context, handle string, first int, after string) (*models.CollectionPage, error)
}
