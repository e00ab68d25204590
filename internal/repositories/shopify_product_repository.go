package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"tupperstock/internal/models"
	"tupperstock/pkg/shopify"

	"github.com/shopspring/decimal"
)

// defaultCategory is used for products without a product type.
const defaultCategory = "storage"

// ShopifyProductRepository reads the catalog from the Storefront API and
// product metafields from the Admin API.
type ShopifyProductRepository struct {
	client *shopify.Client
}

// NewShopifyProductRepository creates a new ShopifyProductRepository.
func NewShopifyProductRepository(client *shopify.Client) *ShopifyProductRepository {
	return &ShopifyProductRepository{client: client}
}

type money struct {
	Amount string `json:"amount"`
}

type rawVariant struct {
	ID                string                  `json:"id"`
	Title             string                  `json:"title"`
	AvailableForSale  bool                    `json:"availableForSale"`
	QuantityAvailable int                     `json:"quantityAvailable"`
	Price             money                   `json:"price"`
	SelectedOptions   []models.SelectedOption `json:"selectedOptions"`
	Image             *models.Image           `json:"image"`
}

type rawProduct struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Handle           string   `json:"handle"`
	Description      string   `json:"description"`
	DescriptionHTML  string   `json:"descriptionHtml"`
	Vendor           string   `json:"vendor"`
	ProductType      string   `json:"productType"`
	Tags             []string `json:"tags"`
	TotalInventory   int      `json:"totalInventory"`
	AvailableForSale bool     `json:"availableForSale"`
	CreatedAt        string   `json:"createdAt"`
	UpdatedAt        string   `json:"updatedAt"`
	PriceRange       struct {
		MinVariantPrice money `json:"minVariantPrice"`
	} `json:"priceRange"`
	CompareAtPriceRange *struct {
		MinVariantPrice *money `json:"minVariantPrice"`
	} `json:"compareAtPriceRange"`
	Images struct {
		Edges []struct {
			Node models.Image `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []struct {
			Node rawVariant `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
	Options     []models.ProductOption `json:"options"`
	Collections *struct {
		Edges []struct {
			Node models.CollectionRef `json:"node"`
		} `json:"edges"`
	} `json:"collections"`
}

type rawProductConnection struct {
	PageInfo models.PageInfo `json:"pageInfo"`
	Edges    []struct {
		Node rawProduct `json:"node"`
	} `json:"edges"`
}

func amount(m *money) float64 {
	if m == nil || m.Amount == "" {
		return 0
	}
	d, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// toProduct flattens a platform product into the storefront shape.
func toProduct(p rawProduct) models.Product {
	price := amount(&p.PriceRange.MinVariantPrice)
	original := price
	if p.CompareAtPriceRange != nil {
		if compareAt := amount(p.CompareAtPriceRange.MinVariantPrice); compareAt > 0 {
			original = compareAt
		}
	}

	description := p.DescriptionHTML
	if description == "" {
		description = p.Description
	}
	category := p.ProductType
	if category == "" {
		category = defaultCategory
	}

	out := models.Product{
		ID:               p.ID,
		Name:             p.Title,
		Description:      description,
		Price:            price,
		OriginalPrice:    original,
		Category:         category,
		Images:           make([]string, 0, len(p.Images.Edges)),
		Handle:           p.Handle,
		AvailableForSale: p.AvailableForSale,
		Variants:         make([]models.Variant, 0, len(p.Variants.Edges)),
		Options:          p.Options,
		Tags:             p.Tags,
		Vendor:           p.Vendor,
		ProductType:      p.ProductType,
		TotalInventory:   p.TotalInventory,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Collections:      []models.CollectionRef{},
		Metafields:       []models.Metafield{},
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if out.Options == nil {
		out.Options = []models.ProductOption{}
	}
	for i, edge := range p.Images.Edges {
		if i == 0 {
			url := edge.Node.URL
			out.Image = &url
		}
		out.Images = append(out.Images, edge.Node.URL)
	}
	for _, edge := range p.Variants.Edges {
		v := edge.Node
		opts := v.SelectedOptions
		if opts == nil {
			opts = []models.SelectedOption{}
		}
		out.Variants = append(out.Variants, models.Variant{
			ID:                v.ID,
			Title:             v.Title,
			Price:             amount(&v.Price),
			AvailableForSale:  v.AvailableForSale,
			QuantityAvailable: v.QuantityAvailable,
			SelectedOptions:   opts,
			Image:             v.Image,
		})
	}
	if p.Collections != nil {
		for _, edge := range p.Collections.Edges {
			out.Collections = append(out.Collections, edge.Node)
		}
	}
	return out
}

func toProducts(conn rawProductConnection) []models.Product {
	products := make([]models.Product, 0, len(conn.Edges))
	for _, edge := range conn.Edges {
		products = append(products, toProduct(edge.Node))
	}
	return products
}

func pageVariables(first int, after string) map[string]any {
	vars := map[string]any{"first": first}
	if after != "" {
		vars["after"] = after
	}
	return vars
}

// List fetches one page of products.
func (r *ShopifyProductRepository) List(ctx context.Context, first int, after string) (*models.ProductPage, error) {
	var data struct {
		Products *rawProductConnection `json:"products"`
	}
	if err := r.client.Storefront(ctx, productsQuery, pageVariables(first, after), &data); err != nil {
		return nil, platformError("list products", err)
	}
	if data.Products == nil {
		return nil, &PlatformError{Op: "list products", Err: fmt.Errorf("no products data received")}
	}
	products := toProducts(*data.Products)
	return &models.ProductPage{
		Products:   products,
		PageInfo:   data.Products.PageInfo,
		TotalCount: len(products),
	}, nil
}

// GetByHandle fetches a single product. Metafields are not included.
func (r *ShopifyProductRepository) GetByHandle(ctx context.Context, handle string) (*models.Product, error) {
	var data struct {
		Product *rawProduct `json:"product"`
	}
	if err := r.client.Storefront(ctx, productByHandleQuery, map[string]any{"handle": handle}, &data); err != nil {
		return nil, platformError("get product "+handle, err)
	}
	if data.Product == nil {
		return nil, fmt.Errorf("product %s: %w", handle, ErrNotFound)
	}
	p := toProduct(*data.Product)
	return &p, nil
}

// Metafields returns the product's metafields. The Admin GraphQL API is tried
// first; when it yields nothing the REST API is used and metaobject
// references are resolved to display values.
func (r *ShopifyProductRepository) Metafields(ctx context.Context, handle string) ([]models.Metafield, error) {
	fields, err := r.graphqlMetafields(ctx, handle)
	if err != nil {
		log.Printf("Admin GraphQL metafields unavailable for %s: %v", handle, err)
	}
	if len(fields) > 0 {
		return fields, nil
	}
	fields, err = r.restMetafields(ctx, handle)
	if err != nil {
		return nil, platformError("metafields "+handle, err)
	}
	return fields, nil
}

func (r *ShopifyProductRepository) graphqlMetafields(ctx context.Context, handle string) ([]models.Metafield, error) {
	var data struct {
		Product *struct {
			Metafields struct {
				Edges []struct {
					Node models.Metafield `json:"node"`
				} `json:"edges"`
			} `json:"metafields"`
		} `json:"productByIdentifier"`
	}
	if err := r.client.Admin(ctx, adminProductMetafieldsQuery, map[string]any{"handle": handle}, &data); err != nil {
		return nil, err
	}
	if data.Product == nil {
		return nil, nil
	}
	fields := make([]models.Metafield, 0, len(data.Product.Metafields.Edges))
	for _, edge := range data.Product.Metafields.Edges {
		fields = append(fields, edge.Node)
	}
	return fields, nil
}

func (r *ShopifyProductRepository) restMetafields(ctx context.Context, handle string) ([]models.Metafield, error) {
	productID, ok, err := r.client.ProductIDByHandle(ctx, handle)
	if err != nil || !ok {
		return nil, err
	}
	raw, err := r.client.ProductMetafields(ctx, productID)
	if err != nil {
		return nil, err
	}

	fields := make([]models.Metafield, 0, len(raw))
	for _, mf := range raw {
		value := metafieldText(mf.Value)
		if isMetaobjectReference(mf.Type) {
			value = r.resolveMetaobjects(ctx, mf.Type, value)
		}
		fields = append(fields, models.Metafield{
			ID:          fmt.Sprintf("%d", mf.ID),
			Namespace:   mf.Namespace,
			Key:         mf.Key,
			Value:       value,
			Type:        mf.Type,
			Description: mf.Description,
		})
	}
	return fields, nil
}

// metafieldText turns a REST metafield value into text. Strings are
// unquoted; numbers and JSON are kept as written.
func metafieldText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func isMetaobjectReference(kind string) bool {
	return kind == "metaobject_reference" || kind == "list.metaobject_reference"
}

// resolveMetaobjects replaces metaobject ids with their display values
// joined by ", ". On a malformed value the original text is kept.
func (r *ShopifyProductRepository) resolveMetaobjects(ctx context.Context, kind, value string) string {
	refs := []string{value}
	if strings.HasPrefix(kind, "list.") {
		if err := json.Unmarshal([]byte(value), &refs); err != nil {
			log.Printf("Error parsing metaobject references %q: %v", value, err)
			return value
		}
	}

	values := make([]string, 0, len(refs))
	for _, ref := range refs {
		v, err := r.metaobjectDisplayValue(ctx, ref)
		if err != nil {
			log.Printf("Metaobject %s unavailable: %v", ref, err)
			continue
		}
		if v != "" {
			values = append(values, v)
		}
	}
	return strings.Join(values, ", ")
}

func (r *ShopifyProductRepository) metaobjectDisplayValue(ctx context.Context, id string) (string, error) {
	var data struct {
		Metaobject *struct {
			Fields []struct {
				Key   string `json:"key"`
				Value string `json:"value"`
			} `json:"fields"`
		} `json:"metaobject"`
	}
	if err := r.client.Admin(ctx, metaobjectQuery, map[string]any{"id": id}, &data); err != nil {
		return "", err
	}
	if data.Metaobject == nil || len(data.Metaobject.Fields) == 0 {
		return "", nil
	}
	for _, f := range data.Metaobject.Fields {
		if (f.Key == "title" || f.Key == "name" || f.Key == "value") && f.Value != "" {
			return f.Value, nil
		}
	}
	return data.Metaobject.Fields[0].Value, nil
}

// ShopifyCollectionRepository reads collections from the Storefront API.
type ShopifyCollectionRepository struct {
	client *shopify.Client
}

// NewShopifyCollectionRepository creates a new ShopifyCollectionRepository.
func NewShopifyCollectionRepository(client *shopify.Client) *ShopifyCollectionRepository {
	return &ShopifyCollectionRepository{client: client}
}

// List fetches the first collections of the store.
func (r *ShopifyCollectionRepository) List(ctx context.Context, first int) ([]models.Collection, error) {
	var data struct {
		Collections *struct {
			Edges []struct {
				Node struct {
					ID          string `json:"id"`
					Title       string `json:"title"`
					Handle      string `json:"handle"`
					Description string `json:"description"`
					Image       *struct {
						URL string `json:"url"`
					} `json:"image"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"collections"`
	}
	if err := r.client.Storefront(ctx, collectionsQuery, map[string]any{"first": first}, &data); err != nil {
		return nil, platformError("list collections", err)
	}
	if data.Collections == nil {
		return nil, &PlatformError{Op: "list collections", Err: fmt.Errorf("no collections data received")}
	}

	collections := make([]models.Collection, 0, len(data.Collections.Edges))
	for _, edge := range data.Collections.Edges {
		n := edge.Node
		c := models.Collection{ID: n.ID, Title: n.Title, Handle: n.Handle, Description: n.Description}
		if n.Image != nil && n.Image.URL != "" {
			url := n.Image.URL
			c.Image = &url
		}
		collections = append(collections, c)
	}
	return collections, nil
}

// Products fetches one page of a collection's products.
func (r *ShopifyCollectionRepository) Products(ctx context.Context, handle string, first int, after string) (*models.CollectionPage, error) {
	var data struct {
		Collection *struct {
			ID       string               `json:"id"`
			Title    string               `json:"title"`
			Handle   string               `json:"handle"`
			Products rawProductConnection `json:"products"`
		} `json:"collection"`
	}
	vars := pageVariables(first, after)
	vars["handle"] = handle
	if err := r.client.Storefront(ctx, collectionProductsQuery, vars, &data); err != nil {
		return nil, platformError("collection products "+handle, err)
	}
	if data.Collection == nil {
		return nil, fmt.Errorf("collection %s: %w", handle, ErrNotFound)
	}

	products := toProducts(data.Collection.Products)
	return &models.CollectionPage{
		Products:   products,
		PageInfo:   data.Collection.Products.PageInfo,
		TotalCount: len(products),
		Collection: models.CollectionRef{
			ID:     data.Collection.ID,
			Title:  data.Collection.Title,
			Handle: data.Collection.Handle,
		},
	}, nil
}
