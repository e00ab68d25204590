package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"tupperstock/internal/models"
	"tupperstock/internal/repositories"
)

// MaxPageSize is the largest page the platform serves.
const MaxPageSize = 250

const (
	defaultPageSize    = 20
	collectionsPerPage = 50
	defaultRelated     = 4
)

// Cache stores JSON-encodable values. found is false on a miss.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (found bool, err error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// ProductFilter narrows a product listing.
type ProductFilter struct {
	First    int
	After    string
	Category string
	Search   string
	Exclude  string
}

// CatalogService reads and reshapes the product catalog.
type CatalogService struct {
	products      repositories.ProductRepository
	collections   repositories.CollectionRepository
	cache         Cache
	cacheTTL      time.Duration
	deliveryFeeID string
}

// NewCatalogService creates a new CatalogService. cache may be nil.
func NewCatalogService(products repositories.ProductRepository, collections repositories.CollectionRepository, cache Cache, cacheTTL time.Duration, deliveryFeeProductID int64) *CatalogService {
	return &CatalogService{
		products:      products,
		collections:   collections,
		cache:         cache,
		cacheTTL:      cacheTTL,
		deliveryFeeID: models.ProductGID(deliveryFeeProductID),
	}
}

// cached runs load unless key is in the cache, and stores its result.
func cached[T any](ctx context.Context, s *CatalogService, key string, load func() (T, error)) (T, error) {
	var value T
	if s.cache != nil {
		found, err := s.cache.Get(ctx, key, &value)
		if err != nil {
			log.Printf("Catalog cache read failed for %s: %v", key, err)
		} else if found {
			return value, nil
		}
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
			log.Printf("Catalog cache write failed for %s: %v", key, err)
		}
	}
	return value, nil
}

func pageSize(first int) (int, error) {
	if first == 0 {
		return defaultPageSize, nil
	}
	if first < 1 || first > MaxPageSize {
		return 0, invalid("first must be between 1 and %d", MaxPageSize)
	}
	return first, nil
}

// ListProducts fetches a page of products and filters it. The delivery fee
// product is never listed. TotalCount counts what is left after filtering.
func (s *CatalogService) ListProducts(ctx context.Context, f ProductFilter) (*models.ProductPage, error) {
	first, err := pageSize(f.First)
	if err != nil {
		return nil, err
	}

	page, err := cached(ctx, s, fmt.Sprintf("products:%d:%s", first, f.After), func() (*models.ProductPage, error) {
		return s.products.List(ctx, first, f.After)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := s.filter(page.Products, f)
	return &models.ProductPage{
		Products:   products,
		PageInfo:   page.PageInfo,
		TotalCount: len(products),
	}, nil
}

func (s *CatalogService) filter(in []models.Product, f ProductFilter) []models.Product {
	search := strings.ToLower(f.Search)
	out := make([]models.Product, 0, len(in))
	for _, p := range in {
		if p.ID == s.deliveryFeeID {
			continue
		}
		if f.Exclude != "" && p.ID == f.Exclude {
			continue
		}
		if f.Category != "" && f.Category != "all" && !inCategory(p, f.Category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func inCategory(p models.Product, category string) bool {
	if p.ProductType == category || p.Category == category {
		return true
	}
	for _, tag := range p.Tags {
		if tag == category {
			return true
		}
	}
	return false
}

// GetProduct fetches a product by handle with its metafields. Metafield
// failures are logged and leave the list empty.
func (s *CatalogService) GetProduct(ctx context.Context, handle string) (*models.Product, error) {
	if handle == "" {
		return nil, invalid("Product handle is required")
	}

	product, err := cached(ctx, s, "product:"+handle, func() (*models.Product, error) {
		p, err := s.products.GetByHandle(ctx, handle)
		if err != nil {
			return nil, err
		}
		fields, err := s.products.Metafields(ctx, handle)
		if err != nil {
			log.Printf("Metafields not available for %s: %v", handle, err)
		}
		if fields != nil {
			p.Metafields = fields
		}
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", handle, err)
	}
	return product, nil
}

// ListCollections returns the store's collections.
func (s *CatalogService) ListCollections(ctx context.Context) ([]models.Collection, error) {
	collections, err := cached(ctx, s, "collections", func() ([]models.Collection, error) {
		return s.collections.List(ctx, collectionsPerPage)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return collections, nil
}

// GetCollectionProducts returns a page of a collection's products.
func (s *CatalogService) GetCollectionProducts(ctx context.Context, handle string, first int, after string) (*models.CollectionPage, error) {
	if handle == "" {
		return nil, invalid("Collection handle is required")
	}
	n, err := pageSize(first)
	if err != nil {
		return nil, err
	}

	page, err := cached(ctx, s, fmt.Sprintf("collection:%s:%d:%s", handle, n, after), func() (*models.CollectionPage, error) {
		return s.collections.Products(ctx, handle, n, after)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get collection %s products: %w", handle, err)
	}
	return page, nil
}

// RelatedProducts collects up to limit products that share a collection with
// productID, then tops up from the general listing. collectionsJSON is the
// raw JSON array of {handle,title} the storefront sends; a malformed value is
// treated as no collections.
func (s *CatalogService) RelatedProducts(ctx context.Context, productID string, limit int, collectionsJSON string) ([]models.Product, error) {
	if productID == "" {
		return nil, invalid("Product ID is required")
	}
	if limit <= 0 {
		limit = defaultRelated
	}
	if limit*3 > MaxPageSize {
		limit = MaxPageSize / 3
	}

	var refs []models.CollectionRef
	if collectionsJSON != "" {
		if err := json.Unmarshal([]byte(collectionsJSON), &refs); err != nil {
			log.Printf("Ignoring malformed collections parameter %q: %v", collectionsJSON, err)
			refs = nil
		}
	}

	related := make([]models.Product, 0, limit)
	seen := map[string]bool{productID: true, s.deliveryFeeID: true}
	take := func(products []models.Product) {
		for _, p := range products {
			if len(related) >= limit {
				return
			}
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			related = append(related, p)
		}
	}

	for _, ref := range refs {
		if len(related) >= limit {
			break
		}
		if ref.Handle == "" {
			continue
		}
		page, err := s.GetCollectionProducts(ctx, ref.Handle, limit*2, "")
		if err != nil {
			log.Printf("Error fetching related products from collection %s: %v", ref.Handle, err)
			continue
		}
		take(page.Products)
	}

	if len(related) < limit {
		page, err := s.ListProducts(ctx, ProductFilter{First: limit * 3})
		if err != nil {
			log.Printf("Error filling related products: %v", err)
		} else {
			take(page.Products)
		}
	}
	return related, nil
}
